package prprun

const (
	// DefaultExecutable is the agent CLI invoked when none is configured.
	DefaultExecutable = "claude"
	// PRPDir is the directory, relative to the project root, holding PRP files.
	PRPDir = "PRPs"
	// PRPExt is the file extension of PRP files.
	PRPExt = ".md"
	// InterruptedExitCode is the exit status used when a run is interrupted.
	InterruptedExitCode = 1
	// PreviewLength is the number of characters of assistant content echoed.
	PreviewLength = 100
)

var defaultAllowedTools = [...]string{
	"Edit",
	"Bash",
	"Write",
	"MultiEdit",
	"NotebookEdit",
	"WebFetch",
	"Agent",
	"LS",
	"Grep",
	"Read",
	"NotebookRead",
	"TodoRead",
	"TodoWrite",
	"WebSearch",
}

// DefaultAllowedTools returns the capability allow-list granted to the agent.
func DefaultAllowedTools() []string {
	return append([]string(nil), defaultAllowedTools[:]...)
}
