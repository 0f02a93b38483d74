package prprun

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.Bold)
	warnColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed)
	sessionColor = color.New(color.FgCyan)
)

// diagnostics writes the human-readable echo. Its wording is not a stable
// interface; only its presence for parse and process failures is.
type diagnostics struct {
	w io.Writer
}

func (d diagnostics) sessionStarted(id string) {
	_, _ = sessionColor.Fprintf(d.w, "Session started: %s\n", id)
}

func (d diagnostics) assistant(preview string) {
	_, _ = fmt.Fprintf(d.w, "Assistant: %s\n", preview)
}

func (d diagnostics) finalResult(ev Event) {
	_, _ = headingColor.Fprintln(d.w, "\nFinal result:")
	_, _ = fmt.Fprintf(d.w, "  Success: %t\n", ev.Subtype() == SubtypeSuccess)
	_, _ = fmt.Fprintf(d.w, "  Cost: $%.4f\n", getNumber(ev.Fields, "cost_usd"))
	_, _ = fmt.Fprintf(d.w, "  Duration: %sms\n", formatValue(ev.Fields, "duration_ms"))
	_, _ = fmt.Fprintf(d.w, "  Turns: %s\n", formatValue(ev.Fields, "num_turns"))

	if result := ev.Fields["result"]; truthy(result) {
		_, _ = fmt.Fprintf(d.w, "\nResult text:\n%v\n", result)
	}
}

func (d diagnostics) summary(doc map[string]any) {
	session := getString(doc, "session_id")
	if session == "" {
		session = "unknown"
	}

	_, _ = headingColor.Fprintln(d.w, "\nSummary:")
	_, _ = fmt.Fprintf(d.w, "  Success: %t\n", !truthy(doc["is_error"]))
	_, _ = fmt.Fprintf(d.w, "  Cost: $%.4f\n", getNumber(doc, "cost_usd"))
	_, _ = fmt.Fprintf(d.w, "  Duration: %sms\n", formatValue(doc, "duration_ms"))
	_, _ = fmt.Fprintf(d.w, "  Session: %s\n", session)
}

func (d diagnostics) parseWarning(perr *ParseError) {
	_, _ = warnColor.Fprintf(d.w, "Warning: %v: %s\n", perr, perr.Line)
}

func (d diagnostics) documentError(err error) {
	_, _ = warnColor.Fprintf(d.w, "Error parsing JSON output: %v\n", err)
}

func (d diagnostics) schemaMismatch(err error) {
	_, _ = warnColor.Fprintf(d.w, "Warning: %v\n", err)
}

func (d diagnostics) childFailed(executable string, code int, stderr []byte) {
	_, _ = failColor.Fprintf(d.w, "%s failed with exit code %d\n", filepath.Base(executable), code)

	if msg := strings.TrimRight(string(stderr), "\n"); msg != "" {
		_, _ = fmt.Fprintf(d.w, "Error: %s\n", msg)
	}
}

func (d diagnostics) interrupted() {
	_, _ = failColor.Fprintln(d.w, "\nInterrupted by user")
}
