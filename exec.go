package prprun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// terminateGrace bounds how long Wait waits for output after the agent was
// asked to terminate.
const terminateGrace = 5 * time.Second

// newCommand builds the agent command. Cancelling ctx sends SIGTERM to the
// agent so it is never left running after the relay returns.
func newCommand(ctx context.Context, argv []string, workDir string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.Cancel = func() error {
		return terminate(cmd.Process)
	}
	cmd.WaitDelay = terminateGrace

	return cmd
}

// terminate asks the process to exit, returning nil if it already has.
func terminate(proc *os.Process) error {
	if proc == nil {
		return nil
	}

	err := proc.Signal(syscall.SIGTERM)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}

	return err
}

// exitStatus extracts the exit code of a finished agent. Agents killed by a
// signal report 128+signal, as shells do.
func exitStatus(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}

	if code := exitErr.ExitCode(); code > 0 {
		return code
	}

	return 1
}

func runPassthrough(
	ctx context.Context,
	argv []string,
	workDir string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
) error {
	cmd := newCommand(ctx, argv, workDir)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

func runCapture(ctx context.Context, argv []string, workDir string, stdout, stderr io.Writer) error {
	cmd := newCommand(ctx, argv, workDir)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

// runWithTTY starts the agent inside a pseudo-terminal, types the prompt into
// it and then bridges the caller's terminal until the agent exits.
func runWithTTY(
	ctx context.Context,
	argv []string,
	workDir string,
	prompt string,
	stdin io.Reader,
	stdout io.Writer,
) error {
	cmd := newCommand(ctx, argv, workDir)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_ = pty.InheritSize(f, ptmx)

		if state, err := term.MakeRaw(int(f.Fd())); err == nil {
			defer func() { _ = term.Restore(int(f.Fd()), state) }()
		}
	}

	done := make(chan struct{})

	go func() {
		_, _ = io.Copy(stdout, ptmx)
		close(done)
	}()

	if !strings.HasSuffix(prompt, "\n") {
		prompt += "\n"
	}

	if _, err := io.WriteString(ptmx, prompt); err != nil {
		_ = terminate(cmd.Process)
		_ = cmd.Wait()
		_ = ptmx.Close()
		<-done

		return fmt.Errorf("write prompt: %w", err)
	}

	if stdin != nil {
		// Blocks on the caller's input until it closes; the copy ends with the process.
		go func() { _, _ = io.Copy(ptmx, stdin) }()
	}

	err = cmd.Wait()
	_ = ptmx.Close()

	<-done

	return err
}
