package prprun

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// ResolvePRPPath picks the PRP file to run. An explicit path wins; otherwise
// feature resolves to <root>/PRPs/<feature>.md.
func ResolvePRPPath(root, feature, path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return path, nil
	}

	if strings.TrimSpace(feature) == "" {
		return "", ErrNoPRP
	}

	return filepath.Join(root, PRPDir, feature+PRPExt), nil
}

// ReadPrompt reads the PRP at path and composes the agent prompt from it.
func ReadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPRPNotFound, path)
		}

		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return ComposePrompt(string(data))
}

// ComposePrompt prefixes the PRP text with the workflow header.
func ComposePrompt(prp string) (string, error) {
	tmpl, err := template.New("prompt").Parse(promptTemplate)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, promptData{Header: PromptHeader, PRP: prp}); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}

	return b.String(), nil
}

type promptData struct {
	Header string
	PRP    string
}

var promptTemplate = `{{ .Header }}{{ .PRP }}`

// PromptHeader is the fixed guidance placed before every PRP.
const PromptHeader = `Ingest and understand the Product Requirement Prompt (PRP) below in detail.

    # WORKFLOW GUIDANCE:

    ## Planning Phase
    - Think hard before you code. Create a comprehensive plan addressing all requirements.
    - Break down complex tasks into smaller, manageable steps.
    - Use the TodoWrite tool to create and track your implementation plan.
    - Identify implementation patterns from existing code to follow.

    ## Implementation Phase
    - Follow code conventions and patterns found in existing files.
    - Implement one component at a time and verify it works correctly.
    - Write clear, maintainable code with appropriate comments.
    - Consider error handling, edge cases, and potential security issues.
    - Use type hints to ensure type safety.

    ## Testing Phase
    - Test each component thoroughly as you build it.
    - Use the provided validation gates to verify your implementation.
    - Verify that all requirements have been satisfied.
    - Run the project tests when finished and output "DONE" when they pass.

    ## Example Implementation Approach:
    1. Analyze the PRP requirements in detail
    2. Search for and understand existing patterns in the codebase
    3. Search the Web and gather additional context and examples
    4. Create a step-by-step implementation plan with TodoWrite
    5. Implement core functionality first, then additional features
    6. Test and validate each component
    7. Ensure all validation gates pass

    ***When you are finished, move the completed PRP to the PRPs/completed folder***
    `
