//go:build ignore

// Command mockagent stands in for the agent CLI in tests. MOCK_AGENT_MODE
// selects what it writes to stdout; MOCK_AGENT_EXIT sets its exit status.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const resultDoc = `{"type":"result","subtype":"success","cost_usd":0.02,"duration_ms":1500,"num_turns":3,"session_id":"abc"}`

func main() {
	switch os.Getenv("MOCK_AGENT_MODE") {
	case "argv":
		_ = json.NewEncoder(os.Stdout).Encode(os.Args[1:])
	case "stdin":
		data, _ := io.ReadAll(os.Stdin)
		_, _ = os.Stdout.Write(data)
	case "json":
		fmt.Println(resultDoc)
	case "json-bad":
		fmt.Println("not json at all")
	case "stream":
		lines := []string{
			`{"type":"system","subtype":"init","session_id":"mock-session"}`,
			`{"type":"assistant","message":{"content":"` + strings.Repeat("X", 150) + `"}}`,
			`not-json`,
			``,
			`{"type":"user","message":{"content":"tool output"}}`,
			`{"type":"result","subtype":"success","cost_usd":0.5,"duration_ms":42,"num_turns":2,"result":"all done","session_id":"mock-session"}`,
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	case "hang":
		fmt.Println(`{"type":"system","subtype":"init","session_id":"slow"}`)
		time.Sleep(30 * time.Second)
	default:
		fmt.Println("hello from agent")
	}

	if code, _ := strconv.Atoi(os.Getenv("MOCK_AGENT_EXIT")); code != 0 {
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(code)
	}
}
