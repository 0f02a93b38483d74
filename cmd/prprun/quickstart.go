package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newQuickstartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "Show examples and usage instructions",
		Run: func(cmd *cobra.Command, _ []string) {
			printQuickstart(cmd.OutOrStdout())
		},
	}
}

func printQuickstart(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Quickstart Guide for prprun

1. Headless text run
   Resolve PRPs/<feature>.md under --root and print the agent's answer.

   prprun --prp user-auth

2. Single JSON document
   Pretty-print the agent's result document; a summary goes to stderr.

   prprun --prp user-auth --output-format json

3. Streaming JSON events
   One JSON event per line on stdout, progress on stderr.

   prprun --prp-path PRPs/user-auth.md --output-format stream-json | jq .type

4. Interactive session
   Feed the prompt to the agent and keep chatting.

   prprun --prp user-auth --interactive --tty

Flags can also be set in .prprun.yaml (project root or $HOME) or through
PRPRUN_* environment variables, e.g. PRPRUN_OUTPUT_FORMAT=stream-json.`)
}
