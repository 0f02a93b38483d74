package prprun

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCommand indicates the agent command is missing.
	ErrEmptyCommand = errors.New("agent command is empty")
	// ErrEmptyPrompt indicates an empty prompt was provided.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrNoPRP indicates neither a PRP feature name nor a PRP path was given.
	ErrNoPRP = errors.New("must supply a PRP feature name or path")
	// ErrPRPNotFound indicates the PRP file does not exist.
	ErrPRPNotFound = errors.New("PRP not found")
	// ErrRunFailed indicates the agent exited with a non-zero code.
	ErrRunFailed = errors.New("agent run failed")
	// ErrInterrupted indicates the run was cancelled before the agent exited.
	ErrInterrupted = errors.New("interrupted by user")
	// ErrResultSchemaInvalid indicates a result document does not satisfy the result schema.
	ErrResultSchemaInvalid = errors.New("result does not match schema")
)

// ExitError carries the exit status the caller should terminate with.
// Failures wrapped in an ExitError have already been reported on the
// diagnostic stream.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Relay.Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}

	return 1
}
