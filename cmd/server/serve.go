package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"learnmap/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, then serve the HTTP API and websocket feed",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := loadContainer(ctx)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	if err := c.Migrate(ctx); err != nil {
		return errors.Wrap(err, "migrate")
	}

	addr, err := app.ListenAddr(c.Config.App.HTTPPort)
	if err != nil {
		return errors.Wrap(err, "invalid HTTP port")
	}

	a, err := app.New(ctx, c)
	if err != nil {
		return err
	}
	return a.Serve(ctx, addr)
}
