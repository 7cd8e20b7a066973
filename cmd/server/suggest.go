package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"learnmap/internal/suggest"
)

// The suggest command always uses the keyword table so it works without
// a database or provider credentials.
func newSuggestCmd() *cobra.Command {
	var goal string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Print keyword skill suggestions for a learning goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(goal) == "" {
				return errors.New("--goal is required")
			}
			res := suggest.Keyword{}.Skills(cmd.Context(), goal, nil)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "learning goal, e.g. \"become a web developer\"")
	return cmd
}
