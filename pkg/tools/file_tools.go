package tools

import (
	"context"
	"fmt"
	"strings"

	"sleuth/pkg/api"
	"sleuth/pkg/state"
)

// The artifact file set tools. These operate on the session's virtual files,
// never the real filesystem: large retrieved content lives here so the
// transcript stays small, and sub-sessions hand findings forward by writing
// them as artifacts.

//----------------------------------------------------------------
// ls
//----------------------------------------------------------------

type LsTool struct{}

func NewLsTool() *LsTool { return &LsTool{} }

func (t *LsTool) Name() string { return "ls" }

func (t *LsTool) Description() string {
	return "List all artifacts in the session's virtual file set with their sizes."
}

func (t *LsTool) Parameters() map[string]any {
	return map[string]any{}
}

func (t *LsTool) RequiredParameters() []string { return nil }

func (t *LsTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	infos := sess.Artifacts.List()
	if len(infos) == 0 {
		return api.TextResult("No artifacts stored yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d artifact(s):\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(&sb, "  %s (%d chars)\n", info.Name, info.Size)
	}
	return api.TextResult(strings.TrimRight(sb.String(), "\n")), nil
}

//----------------------------------------------------------------
// read_file
//----------------------------------------------------------------

type ReadFileTool struct{}

func NewReadFileTool() *ReadFileTool { return &ReadFileTool{} }

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read the full content of an artifact from the session's virtual file set."
}

func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "Artifact name as shown by ls.",
		},
	}
}

func (t *ReadFileTool) RequiredParameters() []string { return []string{"name"} }

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}

	content, err := sess.Artifacts.Read(name)
	if err != nil {
		return nil, err
	}
	return api.TextResult(content), nil
}

//----------------------------------------------------------------
// write_file
//----------------------------------------------------------------

type WriteFileTool struct{}

func NewWriteFileTool() *WriteFileTool { return &WriteFileTool{} }

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return "Write (or overwrite) an artifact in the session's virtual file set. Use this to park notes, findings, or draft sections instead of repeating them in conversation."
}

func (t *WriteFileTool) Parameters() map[string]any {
	return map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "Artifact name. Writing an existing name replaces its content.",
		},
		"content": map[string]any{
			"type":        "string",
			"description": "Full content to store.",
		},
	}
}

func (t *WriteFileTool) RequiredParameters() []string { return []string{"name", "content"} }

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}

	sess.Artifacts.Write(name, content)
	return api.TextResult(fmt.Sprintf("Wrote artifact %q (%d chars).", name, len(content))), nil
}
