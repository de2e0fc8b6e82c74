package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"sleuth/pkg/api"
	"sleuth/pkg/state"
)

// ExtractStackTraceTool pulls stack traces out of free-form text (issue
// bodies, log pastes) so the model works from a structured view instead of
// the raw noise.
type ExtractStackTraceTool struct{}

func NewExtractStackTraceTool() *ExtractStackTraceTool { return &ExtractStackTraceTool{} }

func (t *ExtractStackTraceTool) Name() string { return "extract_stack_trace" }

func (t *ExtractStackTraceTool) Description() string {
	return "Extract stack traces and error lines from text or from a stored artifact. Reports \"none found\" when the text has no trace."
}

func (t *ExtractStackTraceTool) Parameters() map[string]any {
	return map[string]any{
		"text": map[string]any{
			"type":        "string",
			"description": "Text to scan. Omit when using 'artifact'.",
		},
		"artifact": map[string]any{
			"type":        "string",
			"description": "Artifact name to scan instead of inline text.",
		},
	}
}

func (t *ExtractStackTraceTool) RequiredParameters() []string { return nil }

func (t *ExtractStackTraceTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	text := optionalStringArg(args, "text", "")
	if artifact := optionalStringArg(args, "artifact", ""); artifact != "" {
		content, err := sess.Artifacts.Read(artifact)
		if err != nil {
			return nil, err
		}
		text = content
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("provide 'text' or 'artifact' to scan")
	}

	traces := ExtractStackTraces(text)
	if len(traces) == 0 {
		return api.TextResult("No stack trace found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d stack trace(s) found:\n", len(traces))
	for i, tr := range traces {
		fmt.Fprintf(&sb, "\n--- trace %d ---\n%s\n", i+1, tr)
	}
	return api.TextResult(strings.TrimRight(sb.String(), "\n")), nil
}

var traceStartRegex = regexp.MustCompile(
	`(?i)^(Traceback \(most recent call last\):|panic:|goroutine \d+ \[|Exception in thread|Unhandled exception|[\w.$]+(Exception|Error)(:|\s)|Caused by:)`,
)

var traceContinuationRegex = regexp.MustCompile(
	`^\s+(at\s|File\s"|[\w./-]+\.(go|py|java|js|ts|rb):\d+|\.{3}\s\d+\smore|raise\s|\w)`,
)

// goFrameRegex matches Go routine frames, which sit at column zero:
// "main.main()" or "pkg/mod.Func(0x1, ...)".
var goFrameRegex = regexp.MustCompile(`^[\w./@\-]+\(.*\)$`)

// ExtractStackTraces scans text line by line, collecting runs that look like
// stack traces across Python, Go, Java, and JavaScript conventions. A single
// blank line inside a run is kept (Go separates the panic header from the
// goroutine dump with one); anything else ends the run.
func ExtractStackTraces(text string) []string {
	lines := strings.Split(text, "\n")

	var traces []string
	var current []string
	inTrace := false
	pendingBlank := false

	flush := func() {
		// A lone header line is noise, not a trace.
		if len(current) >= 2 {
			traces = append(traces, strings.TrimRight(strings.Join(current, "\n"), "\n"))
		}
		current = nil
		inTrace = false
		pendingBlank = false
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		isStart := traceStartRegex.MatchString(trimmed)
		isCont := traceContinuationRegex.MatchString(line) || goFrameRegex.MatchString(line)

		switch {
		case !inTrace && isStart:
			current = append(current, line)
			inTrace = true
		case inTrace && trimmed == "":
			pendingBlank = true
		case inTrace && (isCont || isStart):
			if pendingBlank {
				current = append(current, "")
				pendingBlank = false
			}
			current = append(current, line)
		case inTrace:
			flush()
		}
	}
	flush()

	return traces
}
