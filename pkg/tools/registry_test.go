package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrderPreserved(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(NewThinkTool())
	r.Register(NewLsTool())
	r.Register(NewReadFileTool())

	schemas := r.Schemas()
	require.Len(t, schemas, 3)
	assert.Equal(t, "think", schemas[0].Name)
	assert.Equal(t, "ls", schemas[1].Name)
	assert.Equal(t, "read_file", schemas[2].Name)
}

func TestRegistrySubset(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(NewThinkTool())
	r.Register(NewLsTool())
	r.Register(NewReadFileTool())
	r.Register(NewWriteFileTool())

	sub := r.Subset("ls", "think", "no_such_tool")

	_, ok := sub.Get("ls")
	assert.True(t, ok)
	_, ok = sub.Get("think")
	assert.True(t, ok)
	_, ok = sub.Get("write_file")
	assert.False(t, ok, "subset must not leak unlisted tools")
	assert.Len(t, sub.Schemas(), 2, "unknown names are skipped silently")
}

func TestRegistryUnregister(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(NewLsTool())
	r.Register(NewThinkTool())

	r.Unregister("ls")
	_, ok := r.Get("ls")
	assert.False(t, ok)

	schemas := r.Schemas()
	require.Len(t, schemas, 1)
	assert.Equal(t, "think", schemas[0].Name)
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(NewLsTool())
	r.Register(NewThinkTool())
	r.Register(NewLsTool()) // same name again

	schemas := r.Schemas()
	require.Len(t, schemas, 2)
	assert.Equal(t, "ls", schemas[0].Name)
}
