package main

import (
	"fmt"

	"github.com/metalagman/prprun"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools granted to the agent by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, tool := range prprun.DefaultAllowedTools() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), tool); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
