package main

import (
	"github.com/spf13/cobra"

	"learnmap/internal/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer closeContainer(c)

			if err := c.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Component(cmd.Context(), "migration").WithField("driver", c.DB.Driver).Info("schema up to date")
			return nil
		},
	}
}
