package prprun

import (
	"strconv"
	"strings"
)

func headlessArgs(cfg AgentConfig, prompt string) []string {
	out := make([]string, 0, len(cfg.Cmd)+len(cfg.ExtraArgs)+8)
	out = append(out, cfg.Cmd...)
	out = append(out, "-p", prompt, "--allowedTools", allowedToolsArg(cfg.AllowedTools))

	if cfg.MaxTurns > 0 && !hasFlag(cfg.ExtraArgs, "--max-turns") {
		out = append(out, "--max-turns", strconv.Itoa(cfg.MaxTurns))
	}

	out = append(out, "--output-format", string(cfg.OutputFormat))

	return append(out, cfg.ExtraArgs...)
}

// interactiveArgs carries no output format; the agent renders its own session.
func interactiveArgs(cfg AgentConfig) []string {
	out := make([]string, 0, len(cfg.Cmd)+len(cfg.ExtraArgs)+2)
	out = append(out, cfg.Cmd...)
	out = append(out, "--allowedTools", allowedToolsArg(cfg.AllowedTools))

	return append(out, cfg.ExtraArgs...)
}

func allowedToolsArg(tools []string) string {
	if len(tools) == 0 {
		tools = DefaultAllowedTools()
	}

	return strings.Join(tools, ",")
}

func hasFlag(argv []string, name string) bool {
	for _, arg := range argv {
		if arg == name || strings.HasPrefix(arg, name+"=") {
			return true
		}
	}

	return false
}

// redactPrompt replaces the prompt argument for logging.
func redactPrompt(argv []string) []string {
	out := append([]string(nil), argv...)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "-p" {
			out[i+1] = "<prompt:" + strconv.Itoa(len(out[i+1])) + " bytes>"

			break
		}
	}

	return out
}
