package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"sleuth/pkg/github"
	"sleuth/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGithub serves canned responses for tool tests.
type fakeGithub struct {
	files   map[string]*github.RepoFile
	matches []github.CodeMatch
	tree    []github.TreeEntry
	issue   *github.Issue
	meta    *github.RepoMeta
	err     error
}

func (f *fakeGithub) GetFile(ctx context.Context, owner, repo, path, ref string) (*github.RepoFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	file, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("get %s/%s:%s: not found", owner, repo, path)
	}
	return file, nil
}

func (f *fakeGithub) SearchCode(ctx context.Context, owner, repo, query string, limit int) ([]github.CodeMatch, error) {
	return f.matches, f.err
}

func (f *fakeGithub) ListTree(ctx context.Context, owner, repo, ref string) ([]github.TreeEntry, error) {
	return f.tree, f.err
}

func (f *fakeGithub) GetIssue(ctx context.Context, ref github.IssueRef) (*github.Issue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.issue, nil
}

func (f *fakeGithub) GetRepoMeta(ctx context.Context, owner, repo string) (*github.RepoMeta, error) {
	return f.meta, f.err
}

func newRepoSession() *state.Session {
	sess := state.NewSession()
	sess.Repo = "acme/widget"
	return sess
}

func TestReadRepoFileInlineSmallContent(t *testing.T) {
	t.Parallel()
	svc := &fakeGithub{files: map[string]*github.RepoFile{
		"main.go": {Path: "main.go", Content: "package main\n", Size: 13},
	}}
	tool := NewReadRepoFileTool(svc)
	sess := newRepoSession()

	res, err := tool.Execute(context.Background(), map[string]any{"path": "main.go"}, sess)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", res.Content[0].Text)
	assert.Equal(t, 0, sess.Artifacts.Len(), "small files stay inline")
}

func TestReadRepoFileOffloadsLargeContent(t *testing.T) {
	t.Parallel()
	big := "// generated\n" + strings.Repeat("x", 50000)
	svc := &fakeGithub{files: map[string]*github.RepoFile{
		"pkg/big/file.go": {Path: "pkg/big/file.go", Content: big, Size: len(big)},
	}}
	tool := NewReadRepoFileTool(svc)
	sess := newRepoSession()

	res, err := tool.Execute(context.Background(), map[string]any{"path": "pkg/big/file.go"}, sess)
	require.NoError(t, err)

	obs := res.Content[0].Text
	assert.LessOrEqual(t, len(obs), 200, "observation must stay short")
	assert.Contains(t, obs, "file_pkg_big_file.go")
	assert.NotContains(t, obs, strings.Repeat("x", 100), "raw content must not leak into the transcript")

	stored, err := sess.Artifacts.Read("file_pkg_big_file.go")
	require.NoError(t, err)
	assert.Equal(t, big, stored, "artifact holds the full content")
}

func TestReadRepoFileNoRepoInScope(t *testing.T) {
	t.Parallel()
	tool := NewReadRepoFileTool(&fakeGithub{})
	sess := state.NewSession() // no Repo set

	_, err := tool.Execute(context.Background(), map[string]any{"path": "main.go"}, sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repository in scope")
}

func TestReadRepoFileExplicitRepoOverridesSession(t *testing.T) {
	t.Parallel()
	tool := NewReadRepoFileTool(&fakeGithub{files: map[string]*github.RepoFile{}})
	sess := newRepoSession()

	_, err := tool.Execute(context.Background(), map[string]any{
		"path": "main.go",
		"repo": "not a repo name",
	}, sess)
	require.Error(t, err, "explicit repo argument is validated, not silently replaced")
}

func TestSearchCodeFormatsMatches(t *testing.T) {
	t.Parallel()
	svc := &fakeGithub{matches: []github.CodeMatch{
		{Path: "pkg/a.go", Fragments: []string{"func Retry() {"}},
		{Path: "pkg/b.go"},
	}}
	tool := NewSearchCodeTool(svc)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "Retry"}, newRepoSession())
	require.NoError(t, err)

	out := res.Content[0].Text
	assert.Contains(t, out, "2 match(es)")
	assert.Contains(t, out, "pkg/a.go")
	assert.Contains(t, out, "func Retry() {")
}

func TestSearchCodeNoMatches(t *testing.T) {
	t.Parallel()
	tool := NewSearchCodeTool(&fakeGithub{})

	res, err := tool.Execute(context.Background(), map[string]any{"query": "nothing"}, newRepoSession())
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "No code matches")
}

func TestListRepoTreeOffloadsLargeListing(t *testing.T) {
	t.Parallel()
	var tree []github.TreeEntry
	for i := 0; i < 200; i++ {
		tree = append(tree, github.TreeEntry{Path: fmt.Sprintf("internal/pkg%03d/file.go", i), Type: "blob", Size: 100})
	}
	tool := NewListRepoTreeTool(&fakeGithub{tree: tree})
	sess := newRepoSession()

	res, err := tool.Execute(context.Background(), map[string]any{}, sess)
	require.NoError(t, err)

	obs := res.Content[0].Text
	assert.LessOrEqual(t, len(obs), 200)
	assert.Contains(t, obs, "tree_acme_widget")

	stored, err := sess.Artifacts.Read("tree_acme_widget")
	require.NoError(t, err)
	assert.Contains(t, stored, "internal/pkg199/file.go")
}

func TestGetIssueAlwaysOffloadsThread(t *testing.T) {
	t.Parallel()
	svc := &fakeGithub{issue: &github.Issue{
		Title:  "Crash on startup",
		State:  "open",
		Author: "reporter",
		Body:   "It crashes.",
		Comments: []github.IssueComment{
			{Author: "dev", Body: "Can you share a stack trace?"},
		},
	}}
	tool := NewGetIssueTool(svc)
	sess := newRepoSession()

	res, err := tool.Execute(context.Background(), map[string]any{"ref": "acme/widget#7"}, sess)
	require.NoError(t, err)

	obs := res.Content[0].Text
	assert.LessOrEqual(t, len(obs), 200)
	assert.Contains(t, obs, "acme/widget#7")
	assert.Contains(t, obs, "issue_acme_widget_7")

	thread, err := sess.Artifacts.Read("issue_acme_widget_7")
	require.NoError(t, err)
	assert.Contains(t, thread, "Crash on startup")
	assert.Contains(t, thread, "Can you share a stack trace?")
}

func TestGetIssueRejectsMalformedRef(t *testing.T) {
	t.Parallel()
	tool := NewGetIssueTool(&fakeGithub{})

	_, err := tool.Execute(context.Background(), map[string]any{"ref": "not-a-ref"}, newRepoSession())
	require.Error(t, err)
	var verr *github.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRepoInfoRendersMetadata(t *testing.T) {
	t.Parallel()
	svc := &fakeGithub{meta: &github.RepoMeta{
		FullName:      "acme/widget",
		Description:   "A widget",
		Language:      "Go",
		Stars:         42,
		DefaultBranch: "main",
		Topics:        []string{"tools"},
	}}
	tool := NewRepoInfoTool(svc)

	res, err := tool.Execute(context.Background(), map[string]any{}, newRepoSession())
	require.NoError(t, err)

	out := res.Content[0].Text
	assert.Contains(t, out, "acme/widget: A widget")
	assert.Contains(t, out, "Stars: 42")
	assert.Contains(t, out, "Default branch: main")
	assert.Contains(t, out, "Topics: tools")
}
