package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	opts := &runOptions{}
	root := &cobra.Command{
		Use:           "prprun",
		Short:         "Run an AI coding agent against a PRP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPRP(cmd, opts)
		},
	}

	addRunFlags(root, opts)

	root.AddCommand(newQuickstartCmd())
	root.AddCommand(newToolsCmd())

	return root
}
