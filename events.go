package prprun

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Event types recognized by the diagnostic echo.
const (
	EventSystem    = "system"
	EventAssistant = "assistant"
	EventResult    = "result"

	SubtypeInit    = "init"
	SubtypeSuccess = "success"
)

// Event is one JSON object read from the agent's stream-json output.
type Event struct {
	// Raw is the compacted original line, forwarded downstream as is.
	Raw json.RawMessage
	// Fields is the decoded object.
	Fields map[string]any
}

// Type returns the "type" discriminator, or "" if absent.
func (e Event) Type() string { return getString(e.Fields, "type") }

// Subtype returns the "subtype" discriminator, or "" if absent.
func (e Event) Subtype() string { return getString(e.Fields, "subtype") }

// SessionID returns the "session_id" field, or "" if absent.
func (e Event) SessionID() string { return getString(e.Fields, "session_id") }

// ContentPreview returns the first n characters of message.content followed
// by an ellipsis.
func (e Event) ContentPreview(n int) string {
	return truncate(messageContent(e.Fields), n) + "..."
}

// ParseError reports a stream line that is not a JSON object.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON line: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errNotObject    = errors.New("event is not a JSON object")
	errInvalidUTF8  = errors.New("event is not valid UTF-8")
	errDuplicateKey = errors.New("duplicate key")
)

// DecodeEvents yields one Event per non-blank line of r as soon as the line
// is complete. Malformed lines are yielded as a *ParseError and decoding
// continues; a read failure is yielded once and ends the sequence.
func DecodeEvents(r io.Reader) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		br := bufio.NewReader(r)

		for {
			line, readErr := br.ReadBytes('\n')

			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				ev, err := parseEvent(trimmed)
				if err != nil {
					if !yield(Event{}, &ParseError{Line: string(trimmed), Err: err}) {
						return
					}
				} else if !yield(ev, nil) {
					return
				}
			}

			if readErr != nil {
				if !errors.Is(readErr, io.EOF) {
					yield(Event{}, fmt.Errorf("read events: %w", readErr))
				}

				return
			}
		}
	}
}

func parseEvent(line []byte) (Event, error) {
	// Unmarshal replaces bad bytes with U+FFFD but Compact keeps them.
	if !utf8.Valid(line) {
		return Event{}, errInvalidUTF8
	}

	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		return Event{}, err
	}

	// "null" decodes into a nil map without error.
	if fields == nil {
		return Event{}, errNotObject
	}

	if err := checkDuplicateKeys(line); err != nil {
		return Event{}, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, line); err != nil {
		return Event{}, err
	}

	return Event{Raw: compact.Bytes(), Fields: fields}, nil
}

// checkDuplicateKeys rejects objects that repeat a top-level key, since the
// decoded fields keep only the last value while the forwarded line keeps all.
func checkDuplicateKeys(obj []byte) error {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, _ := tok.(string)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w %q", errDuplicateKey, key)
		}

		seen[key] = struct{}{}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
	}

	return nil
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)

	return s
}

// getNumber returns the numeric value of key, or 0.
func getNumber(m map[string]any, key string) float64 {
	f, _ := m[key].(float64)

	return f
}

// formatValue renders a scalar field for diagnostics, defaulting to "0".
func formatValue(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// truthy follows JSON-ish truthiness: null, false, 0, "" and empty
// containers are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func messageContent(fields map[string]any) string {
	msg, _ := fields["message"].(map[string]any)

	switch c := msg["content"].(type) {
	case nil:
		return ""
	case string:
		return c
	case []any:
		var b strings.Builder

		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}

			if text := getString(block, "text"); text != "" {
				b.WriteString(text)
			}
		}

		if b.Len() > 0 {
			return b.String()
		}
	}

	data, err := json.Marshal(msg["content"])
	if err != nil {
		return ""
	}

	return string(data)
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}

	return s
}
