package prprun

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrompt = "build the thing"

func TestNewRelayDefaults(t *testing.T) {
	relay, err := NewRelay(AgentConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultExecutable}, relay.cfg.Cmd)
	assert.Equal(t, FormatText, relay.cfg.OutputFormat)
}

func TestNewRelayErrors(t *testing.T) {
	_, err := NewRelay(AgentConfig{Cmd: []string{" "}})
	require.ErrorIs(t, err, ErrEmptyCommand)

	_, err = NewRelay(AgentConfig{OutputFormat: "yaml"})
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = NewRelay(AgentConfig{ResultSchema: "{"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile result schema")
}

func TestRunEmptyPrompt(t *testing.T) {
	relay, err := NewRelay(AgentConfig{})
	require.NoError(t, err)

	err = relay.Run(context.Background(), "  \n")
	require.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestRunOptionsValidation(t *testing.T) {
	relay, err := NewRelay(AgentConfig{})
	require.NoError(t, err)

	err = relay.Run(context.Background(), testPrompt, WithStdout(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout is required")
}

func TestRunTextPassthrough(t *testing.T) {
	agent := mockAgent(t, "text", 0)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}}, testPrompt)
	require.NoError(t, res.err)
	assert.Equal(t, "hello from agent\n", res.stdout.String())
	assert.Empty(t, res.stderr.String())
}

func TestRunTextExitCode(t *testing.T) {
	agent := mockAgent(t, "text", 2)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}}, testPrompt)
	require.ErrorIs(t, res.err, ErrRunFailed)
	assert.Equal(t, 2, ExitCode(res.err))
	assert.Contains(t, res.stderr.String(), "mockagent failed with exit code 2")
	assert.Contains(t, res.stderr.String(), "boom")
}

func TestRunHeadlessArgv(t *testing.T) {
	agent := mockAgent(t, "argv", 0)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}}, testPrompt)
	require.NoError(t, res.err)

	var got []string
	require.NoError(t, json.Unmarshal(res.stdout.Bytes(), &got))
	assert.Equal(t, []string{
		"-p", testPrompt,
		"--allowedTools", strings.Join(DefaultAllowedTools(), ","),
		"--output-format", "text",
	}, got)
}

func TestRunInteractivePromptOnStdin(t *testing.T) {
	agent := mockAgent(t, "stdin", 0)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}, Interactive: true}, testPrompt)
	require.NoError(t, res.err)
	assert.Equal(t, testPrompt, res.stdout.String())
}

func TestRunInteractiveArgv(t *testing.T) {
	agent := mockAgent(t, "argv", 0)

	cfg := AgentConfig{Cmd: []string{agent}, Interactive: true, OutputFormat: FormatJSON}
	res := runRelay(t, context.Background(), cfg, testPrompt)
	require.NoError(t, res.err)

	var got []string
	require.NoError(t, json.Unmarshal(res.stdout.Bytes(), &got))
	assert.Equal(t, []string{"--allowedTools", strings.Join(DefaultAllowedTools(), ",")}, got)
}

func TestRunInteractiveExitCode(t *testing.T) {
	agent := mockAgent(t, "stdin", 4)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}, Interactive: true}, testPrompt)
	assert.Equal(t, 4, ExitCode(res.err))
	assert.Contains(t, res.stderr.String(), "failed with exit code 4")
}

func TestRunJSONResultSummary(t *testing.T) {
	agent := mockAgent(t, "json", 0)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}, OutputFormat: FormatJSON}, testPrompt)
	require.NoError(t, res.err)

	want := `{
  "type": "result",
  "subtype": "success",
  "cost_usd": 0.02,
  "duration_ms": 1500,
  "num_turns": 3,
  "session_id": "abc"
}
`
	assert.Equal(t, want, res.stdout.String())

	diag := res.stderr.String()
	assert.Contains(t, diag, "Success: true")
	assert.Contains(t, diag, "Cost: $0.0200")
	assert.Contains(t, diag, "Duration: 1500ms")
	assert.Contains(t, diag, "Session: abc")
}

func TestRunJSONMalformedOutput(t *testing.T) {
	agent := mockAgent(t, "json-bad", 0)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}, OutputFormat: FormatJSON}, testPrompt)
	require.NoError(t, res.err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(res.stdout.Bytes(), &got))
	assert.Equal(t, "Failed to parse JSON output", got["error"])
	assert.Equal(t, "not json at all\n", got["raw"])
	assert.Contains(t, res.stderr.String(), "Error parsing JSON output")
	assert.NotContains(t, res.stderr.String(), "Summary:")
}

func TestRunJSONExitCode(t *testing.T) {
	agent := mockAgent(t, "json", 3)

	res := runRelay(t, context.Background(), AgentConfig{Cmd: []string{agent}, OutputFormat: FormatJSON}, testPrompt)
	assert.Equal(t, 3, ExitCode(res.err))
	assert.Empty(t, res.stdout.String())
	assert.Contains(t, res.stderr.String(), "Error: boom")
	assert.NotContains(t, res.stderr.String(), "Summary:")
}

func TestRunJSONResultSchema(t *testing.T) {
	agent := mockAgent(t, "json", 0)

	cfg := AgentConfig{
		Cmd:          []string{agent},
		OutputFormat: FormatJSON,
		ResultSchema: `{"type":"object","required":["is_error"]}`,
	}
	res := runRelay(t, context.Background(), cfg, testPrompt)
	require.ErrorIs(t, res.err, ErrResultSchemaInvalid)
	assert.Equal(t, 1, ExitCode(res.err))
	assert.Contains(t, res.stdout.String(), `"session_id": "abc"`)
	assert.Contains(t, res.stderr.String(), "is_error")
}

func TestRunStreamJSON(t *testing.T) {
	agent := mockAgent(t, "stream", 0)

	cfg := AgentConfig{Cmd: []string{agent}, OutputFormat: FormatStreamJSON}
	res := runRelay(t, context.Background(), cfg, testPrompt)
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimRight(res.stdout.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `{"type":"system","subtype":"init","session_id":"mock-session"}`, lines[0])
	assert.Contains(t, lines[1], strings.Repeat("X", 150))
	assert.Equal(t, `{"type":"user","message":{"content":"tool output"}}`, lines[2])
	assert.Contains(t, lines[3], `"result":"all done"`)

	diag := res.stderr.String()
	assert.Contains(t, diag, "Session started: mock-session")
	assert.Contains(t, diag, "Assistant: "+strings.Repeat("X", PreviewLength)+"...\n")
	assert.Equal(t, 1, strings.Count(diag, "Warning:"))
	assert.Contains(t, diag, "not-json")
	assert.Contains(t, diag, "Cost: $0.5000")
	assert.Contains(t, diag, "Turns: 2")
	assert.Contains(t, diag, "Result text:\nall done")
	assert.NotContains(t, diag, "tool output")
}

func TestRunStreamJSONExitCode(t *testing.T) {
	agent := mockAgent(t, "stream", 5)

	cfg := AgentConfig{Cmd: []string{agent}, OutputFormat: FormatStreamJSON}
	res := runRelay(t, context.Background(), cfg, testPrompt)
	require.ErrorIs(t, res.err, ErrRunFailed)
	assert.Equal(t, 5, ExitCode(res.err))
	assert.Equal(t, 4, strings.Count(res.stdout.String(), "\n"))
	assert.Contains(t, res.stderr.String(), "failed with exit code 5")
	assert.Contains(t, res.stderr.String(), "Error: boom")
}

// cancelOnWrite cancels the run once the first event has been forwarded.
type cancelOnWrite struct {
	mu     sync.Mutex
	w      io.Writer
	cancel context.CancelFunc
}

func (c *cancelOnWrite) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	return c.w.Write(p)
}

func TestRunStreamJSONInterrupted(t *testing.T) {
	agent := mockAgent(t, "hang", 0)

	relay, err := NewRelay(AgentConfig{Cmd: []string{agent}, OutputFormat: FormatStreamJSON})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := &runResult{}
	start := time.Now()
	res.err = relay.Run(ctx, testPrompt,
		WithStdout(&cancelOnWrite{w: &res.stdout, cancel: cancel}),
		WithStderr(&res.stderr),
	)

	require.ErrorIs(t, res.err, ErrInterrupted)
	assert.Equal(t, InterruptedExitCode, ExitCode(res.err))
	assert.Less(t, time.Since(start), 20*time.Second)
	assert.Contains(t, res.stderr.String(), "Interrupted by user")
	assert.Contains(t, res.stdout.String(), `"session_id":"slow"`)
}

func TestRunMissingExecutable(t *testing.T) {
	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			cfg := AgentConfig{Cmd: []string{"definitely-missing-binary"}, OutputFormat: format}
			res := runRelay(t, context.Background(), cfg, testPrompt)
			require.Error(t, res.err)

			var exitErr *ExitError
			assert.False(t, errors.As(res.err, &exitErr))
			assert.Equal(t, 1, ExitCode(res.err))
		})
	}
}
