// Package prprun runs an LLM agent CLI against a Product Requirement Prompt
// and relays its output as text, a JSON document or a JSON-lines stream.
package prprun

import (
	"fmt"
	"strings"
)

// Format selects how headless agent output is relayed.
type Format string

const (
	// FormatText passes the agent output through unchanged.
	FormatText Format = "text"
	// FormatJSON captures the whole output as one JSON document.
	FormatJSON Format = "json"
	// FormatStreamJSON relays one JSON event per line as it arrives.
	FormatStreamJSON Format = "stream-json"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatStreamJSON}
}

// ParseFormat validates an output format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimSpace(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatStreamJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// AgentConfig describes how to run the agent.
type AgentConfig struct {
	// Cmd is the agent executable followed by any leading arguments.
	Cmd          []string `json:"cmd,omitempty"           mapstructure:"cmd"`
	Interactive  bool     `json:"interactive,omitempty"   mapstructure:"interactive"`
	OutputFormat Format   `json:"output_format,omitempty" mapstructure:"output_format"`
	AllowedTools []string `json:"allowed_tools,omitempty" mapstructure:"allowed_tools"`
	ExtraArgs    []string `json:"extra_args,omitempty"    mapstructure:"extra_args"`
	MaxTurns     int      `json:"max_turns,omitempty"     mapstructure:"max_turns"`
	WorkDir      string   `json:"work_dir,omitempty"      mapstructure:"work_dir"`
	UseTTY       bool     `json:"use_tty,omitempty"       mapstructure:"use_tty"`
	// ResultSchema is an optional JSON schema applied to result documents.
	ResultSchema string `json:"result_schema,omitempty" mapstructure:"result_schema"`
}
