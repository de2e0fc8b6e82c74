package tools

import (
	"context"
	"testing"

	"sleuth/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLsEmptyStore(t *testing.T) {
	t.Parallel()
	res, err := NewLsTool().Execute(context.Background(), map[string]any{}, state.NewSession())
	require.NoError(t, err)
	assert.Equal(t, "No artifacts stored yet.", res.Content[0].Text)
}

func TestWriteThenLsThenRead(t *testing.T) {
	t.Parallel()
	sess := state.NewSession()
	ctx := context.Background()

	_, err := NewWriteFileTool().Execute(ctx, map[string]any{
		"name":    "findings",
		"content": "the bug is in retry.go",
	}, sess)
	require.NoError(t, err)

	lsRes, err := NewLsTool().Execute(ctx, map[string]any{}, sess)
	require.NoError(t, err)
	assert.Contains(t, lsRes.Content[0].Text, "findings (22 chars)")

	readRes, err := NewReadFileTool().Execute(ctx, map[string]any{"name": "findings"}, sess)
	require.NoError(t, err)
	assert.Equal(t, "the bug is in retry.go", readRes.Content[0].Text)
}

func TestReadFileMissingArtifact(t *testing.T) {
	t.Parallel()
	_, err := NewReadFileTool().Execute(context.Background(), map[string]any{"name": "nope"}, state.NewSession())
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrArtifactNotFound)
}

func TestWriteFileMissingArgs(t *testing.T) {
	t.Parallel()
	_, err := NewWriteFileTool().Execute(context.Background(), map[string]any{"name": "x"}, state.NewSession())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content")
}

func TestOffloadObservationCap(t *testing.T) {
	t.Parallel()

	longFirstLine := "ERROR: " + string(make([]byte, 500))
	obs := offloadObservation("huge_artifact", 99999, longFirstLine)
	assert.LessOrEqual(t, len(obs), 200)
	assert.True(t, len(obs) == 200 && obs[197:] == "...", "truncated observation ends with ellipsis")

	short := offloadObservation("note", 12, "one line\nsecond line")
	assert.Contains(t, short, `artifact "note"`)
	assert.Contains(t, short, "First line: one line")
	assert.NotContains(t, short, "second line")
}
