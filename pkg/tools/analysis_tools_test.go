package tools

import (
	"context"
	"testing"

	"sleuth/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonTrace = `Some intro text from the issue.

Traceback (most recent call last):
  File "app.py", line 10, in <module>
    main()
  File "app.py", line 6, in main
    1 / 0
ZeroDivisionError: division by zero

Thanks for looking into this!`

const goTrace = `panic: runtime error: index out of range [3] with length 3

goroutine 1 [running]:
main.pick(...)
	/srv/app/main.go:14
main.main()
	/srv/app/main.go:9 +0x1d`

func TestExtractStackTracesPython(t *testing.T) {
	t.Parallel()
	traces := ExtractStackTraces(pythonTrace)
	require.Len(t, traces, 1)
	assert.Contains(t, traces[0], "Traceback (most recent call last):")
	assert.Contains(t, traces[0], "ZeroDivisionError")
	assert.NotContains(t, traces[0], "Thanks for looking")
}

func TestExtractStackTracesGoPanic(t *testing.T) {
	t.Parallel()
	traces := ExtractStackTraces(goTrace)
	require.NotEmpty(t, traces)
	assert.Contains(t, traces[0], "panic: runtime error")
}

func TestExtractStackTracesNone(t *testing.T) {
	t.Parallel()
	assert.Empty(t, ExtractStackTraces("just a normal paragraph\nwith two lines"))
}

func TestExtractStackTracesIgnoresLoneHeader(t *testing.T) {
	t.Parallel()
	// A single matching line with no continuation is noise, not a trace.
	assert.Empty(t, ExtractStackTraces("panic: something\n\nunrelated"))
}

func TestExtractStackTraceToolFromText(t *testing.T) {
	t.Parallel()
	tool := NewExtractStackTraceTool()

	res, err := tool.Execute(context.Background(), map[string]any{"text": pythonTrace}, state.NewSession())
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "1 stack trace(s) found")
	assert.Contains(t, res.Content[0].Text, "ZeroDivisionError")
}

func TestExtractStackTraceToolFromArtifact(t *testing.T) {
	t.Parallel()
	sess := state.NewSession()
	sess.Artifacts.Write("issue_thread", goTrace)

	res, err := NewExtractStackTraceTool().Execute(context.Background(), map[string]any{"artifact": "issue_thread"}, sess)
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "panic: runtime error")
}

func TestExtractStackTraceToolNoInput(t *testing.T) {
	t.Parallel()
	_, err := NewExtractStackTraceTool().Execute(context.Background(), map[string]any{}, state.NewSession())
	require.Error(t, err)
}

func TestExtractStackTraceToolReportsNoneFound(t *testing.T) {
	t.Parallel()
	res, err := NewExtractStackTraceTool().Execute(context.Background(), map[string]any{"text": "all good here"}, state.NewSession())
	require.NoError(t, err)
	assert.Equal(t, "No stack trace found.", res.Content[0].Text)
}
