package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"learnmap/internal/app"
	"learnmap/internal/config"
	"learnmap/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "learnmap",
		Short:         "Learning tracker API: skills, resources and suggestions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newSuggestCmd())
	return root
}

// loadContainer reads config, applies the log settings and builds the
// container. Callers own Close.
func loadContainer(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.App.LogLevel != "" {
		if err := logger.SetLevel(cfg.App.LogLevel); err != nil {
			logrus.WithError(err).Warn("invalid LOG_LEVEL, keeping info")
		}
	}
	logger.SetFormat(cfg.App.LogFormat)

	return app.NewContainer(ctx, cfg)
}

func closeContainer(c *app.Container) {
	if err := c.Close(); err != nil {
		logger.L.WithError(err).Warn("cleanup error")
	}
}
