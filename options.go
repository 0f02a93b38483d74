package prprun

import (
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// RunOptions defines the streams and logger used for one relay run.
type RunOptions struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

// RunOption configures runtime behavior for relaying an agent.
type RunOption func(*RunOptions)

// WithStdin sets the caller's input stream, used by interactive runs.
func WithStdin(r io.Reader) RunOption {
	return func(o *RunOptions) { o.stdin = r }
}

// WithStdout sets the sink for forwarded agent output.
func WithStdout(w io.Writer) RunOption {
	return func(o *RunOptions) { o.stdout = w }
}

// WithStderr sets the diagnostic sink.
func WithStderr(w io.Writer) RunOption {
	return func(o *RunOptions) { o.stderr = w }
}

// WithLogger sets the structured logger used for debug events.
func WithLogger(l zerolog.Logger) RunOption {
	return func(o *RunOptions) { o.logger = l }
}

func resolveRunOptions(opts []RunOption) (RunOptions, error) {
	out := defaultRunOptions()
	for _, opt := range opts {
		opt(&out)
	}

	if out.stdout == nil {
		return RunOptions{}, errors.New("stdout is required")
	}

	if out.stderr == nil {
		return RunOptions{}, errors.New("stderr is required")
	}

	return out, nil
}

func defaultRunOptions() RunOptions {
	return RunOptions{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: zerolog.Nop(),
	}
}
