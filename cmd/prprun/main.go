// Package main is the entry point for the prprun CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/metalagman/prprun"
)

var exitFn = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)

	stop()
	exitFn(exitCode(os.Stderr, err))
}

// exitCode prints failures the relay has not already reported and returns
// the status to exit with.
func exitCode(w io.Writer, err error) int {
	var exitErr *prprun.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		_, _ = fmt.Fprintln(w, err)
	}

	return prprun.ExitCode(err)
}
