package prprun

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Relay runs the agent CLI and delivers its output in the configured format.
type Relay struct {
	cfg    AgentConfig
	schema *resultSchema
}

// NewRelay validates cfg and constructs a relay. An empty command runs
// DefaultExecutable.
func NewRelay(cfg AgentConfig) (*Relay, error) {
	if len(cfg.Cmd) == 0 {
		cfg.Cmd = []string{DefaultExecutable}
	}

	if strings.TrimSpace(cfg.Cmd[0]) == "" {
		return nil, ErrEmptyCommand
	}

	format, err := ParseFormat(string(cfg.OutputFormat))
	if err != nil {
		return nil, err
	}

	cfg.OutputFormat = format
	cfg.Cmd = append([]string(nil), cfg.Cmd...)
	cfg.ExtraArgs = append([]string(nil), cfg.ExtraArgs...)
	cfg.AllowedTools = append([]string(nil), cfg.AllowedTools...)

	schema, err := compileResultSchema(cfg.ResultSchema)
	if err != nil {
		return nil, err
	}

	return &Relay{cfg: cfg, schema: schema}, nil
}

// Run launches the agent with prompt and blocks until its output has been
// relayed and it has exited. Agent failures and interruptions are reported
// on the diagnostic stream and returned as *ExitError.
func (r *Relay) Run(ctx context.Context, prompt string, opts ...RunOption) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	o, err := resolveRunOptions(opts)
	if err != nil {
		return fmt.Errorf("resolve options: %w", err)
	}

	if r.cfg.Interactive {
		return r.runInteractive(ctx, prompt, o)
	}

	argv := headlessArgs(r.cfg, prompt)
	o.logger.Debug().
		Strs("argv", redactPrompt(argv)).
		Str("format", string(r.cfg.OutputFormat)).
		Str("work_dir", r.cfg.WorkDir).
		Msg("starting agent")

	switch r.cfg.OutputFormat {
	case FormatJSON:
		return r.relayDocument(ctx, argv, o)
	case FormatStreamJSON:
		return r.relayStream(ctx, argv, o)
	default:
		return r.relayText(ctx, argv, o)
	}
}

func (r *Relay) runInteractive(ctx context.Context, prompt string, o RunOptions) error {
	argv := interactiveArgs(r.cfg)
	o.logger.Debug().Strs("argv", argv).Bool("tty", r.cfg.UseTTY).Msg("starting interactive agent")

	var err error
	if r.cfg.UseTTY {
		err = runWithTTY(ctx, argv, r.cfg.WorkDir, prompt, o.stdin, o.stdout)
	} else {
		err = runPassthrough(ctx, argv, r.cfg.WorkDir, strings.NewReader(prompt), o.stdout, o.stderr)
	}

	return r.outcome(ctx, o, err, nil)
}

func (r *Relay) relayText(ctx context.Context, argv []string, o RunOptions) error {
	err := runPassthrough(ctx, argv, r.cfg.WorkDir, o.stdin, o.stdout, o.stderr)

	return r.outcome(ctx, o, err, nil)
}

// outcome translates the agent's termination into the relay result. stderr
// is the agent's captured diagnostic output, if any.
func (r *Relay) outcome(ctx context.Context, o RunOptions, runErr error, stderr []byte) error {
	if runErr == nil {
		o.logger.Debug().Int("exit_code", 0).Msg("agent exited")

		return nil
	}

	d := diagnostics{w: o.stderr}

	if ctx.Err() != nil {
		o.logger.Debug().Err(ctx.Err()).Msg("agent interrupted")
		d.interrupted()

		return &ExitError{Code: InterruptedExitCode, Err: ErrInterrupted}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		code := exitStatus(exitErr)
		o.logger.Debug().Int("exit_code", code).Msg("agent exited")
		d.childFailed(r.cfg.Cmd[0], code, stderr)

		return &ExitError{Code: code, Err: fmt.Errorf("%w: %w", ErrRunFailed, runErr)}
	}

	return fmt.Errorf("run agent: %w", runErr)
}
