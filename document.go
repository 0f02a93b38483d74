package prprun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

const documentIndent = "  "

func (r *Relay) relayDocument(ctx context.Context, argv []string, o RunOptions) error {
	var stdout, stderr bytes.Buffer

	runErr := runCapture(ctx, argv, r.cfg.WorkDir, &stdout, &stderr)
	if err := r.outcome(ctx, o, runErr, stderr.Bytes()); err != nil {
		return err
	}

	d := diagnostics{w: o.stderr}

	doc, pretty, parseErr := parseDocument(stdout.Bytes())
	if parseErr != nil {
		d.documentError(parseErr)
	}

	if _, err := o.stdout.Write(append(pretty, '\n')); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	m, isObject := doc.(map[string]any)
	if isObject && getString(m, "type") == EventResult {
		d.summary(m)
	}

	if parseErr == nil {
		if err := r.schema.validate(doc); err != nil {
			d.schemaMismatch(err)

			return &ExitError{Code: 1, Err: err}
		}
	}

	return nil
}

// parseDocument decodes the agent's full output and returns it with its
// indented encoding. Output that is not valid JSON is replaced by an
// {"error", "raw"} document so callers always receive JSON.
func parseDocument(out []byte) (any, []byte, error) {
	raw := bytes.TrimSpace(out)

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		fallback := map[string]any{
			"error": "Failed to parse JSON output",
			"raw":   string(out),
		}

		return fallback, encodeIndented(fallback), err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", documentIndent); err != nil {
		return doc, encodeIndented(doc), nil
	}

	return doc, pretty.Bytes(), nil
}

func encodeIndented(v any) []byte {
	var b bytes.Buffer

	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", documentIndent)
	_ = enc.Encode(v)

	return bytes.TrimRight(b.Bytes(), "\n")
}
