package prprun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

type streamStats struct {
	forwarded int
	malformed int
	schemaErr error
}

func (r *Relay) relayStream(ctx context.Context, argv []string, o RunOptions) error {
	cmd := newCommand(ctx, argv, r.cfg.WorkDir)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return r.outcome(ctx, o, err, nil)
	}

	stats, relayErr := r.relayEvents(stdout, o)
	if relayErr != nil {
		// Nobody drains the pipe any more.
		_ = terminate(cmd.Process)
	}

	waitErr := cmd.Wait()
	o.logger.Debug().
		Int("forwarded", stats.forwarded).
		Int("malformed", stats.malformed).
		Msg("event stream closed")

	if relayErr != nil && ctx.Err() == nil {
		return relayErr
	}

	if err := r.outcome(ctx, o, waitErr, stderr.Bytes()); err != nil {
		return err
	}

	if stats.schemaErr != nil {
		return &ExitError{Code: 1, Err: stats.schemaErr}
	}

	return nil
}

// relayEvents consumes the agent's stream-json output. Each event's
// diagnostic echo is written before the event itself is forwarded.
func (r *Relay) relayEvents(src io.Reader, o RunOptions) (streamStats, error) {
	var stats streamStats

	d := diagnostics{w: o.stderr}

	for ev, err := range DecodeEvents(src) {
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				stats.malformed++
				d.parseWarning(perr)

				continue
			}

			return stats, err
		}

		echo(d, ev)

		if ev.Type() == EventResult {
			if err := r.schema.validate(ev.Fields); err != nil {
				d.schemaMismatch(err)
				stats.schemaErr = err
			}
		}

		if _, err := o.stdout.Write(append(ev.Raw, '\n')); err != nil {
			return stats, fmt.Errorf("forward event: %w", err)
		}

		stats.forwarded++
	}

	return stats, nil
}

// echo mirrors the interesting part of an event on the diagnostic stream.
func echo(d diagnostics, ev Event) {
	switch ev.Type() {
	case EventSystem:
		if ev.Subtype() == SubtypeInit {
			d.sessionStarted(ev.SessionID())
		}
	case EventAssistant:
		d.assistant(ev.ContentPreview(PreviewLength))
	case EventResult:
		d.finalResult(ev)
	}
}
