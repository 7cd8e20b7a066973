package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"learnmap/internal/database/seeder"
)

func newSeedCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user with a starter skill graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := loadContainer(ctx)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			if err := c.Migrate(ctx); err != nil {
				return err
			}

			st := &seeder.State{
				Accounts:  c.AuthService,
				Skills:    c.SkillService,
				Resources: c.ResourceService,
			}
			seeders := seeder.Defaults()
			seeders[0] = seeder.DemoUserSeeder{Email: email, Password: password}
			if err := (seeder.Runner{Seeders: seeders}).Run(ctx, st); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded user %s (%d skills)\n", st.UserID, len(st.SkillIDs))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", seeder.DemoEmail, "demo account email")
	cmd.Flags().StringVar(&password, "password", seeder.DemoPassword, "demo account password")
	return cmd
}
