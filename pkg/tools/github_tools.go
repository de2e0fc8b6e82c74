package tools

import (
	"context"
	"fmt"
	"strings"

	"sleuth/pkg/api"
	"sleuth/pkg/github"
	"sleuth/pkg/state"
)

// GitHub retrieval tools. Every tool resolves its repository scope from the
// "repo" argument first and the session marker second, and validates it
// before any API call. Content that can be large (file bodies, issue
// threads, tree listings) is offloaded to the artifact store; the transcript
// only carries a short observation naming the artifact.

// offloadThreshold is the content size above which results leave the
// transcript and land in the artifact store.
const offloadThreshold = 1500

// resolveRepo picks the repository scope for one call.
func resolveRepo(args map[string]any, sess *state.Session) (owner, repo string, err error) {
	name := optionalStringArg(args, "repo", sess.Repo)
	if name == "" {
		return "", "", fmt.Errorf("no repository in scope: pass 'repo' as \"owner/repo\" or start the session with one")
	}
	return github.ValidateRepoName(name)
}

// artifactNameFor flattens a repo-relative path into an artifact name.
func artifactNameFor(prefix, path string) string {
	return prefix + "_" + strings.NewReplacer("/", "_", "#", "_").Replace(path)
}

//----------------------------------------------------------------
// search_code
//----------------------------------------------------------------

type SearchCodeTool struct {
	svc github.Service
}

func NewSearchCodeTool(svc github.Service) *SearchCodeTool {
	return &SearchCodeTool{svc: svc}
}

func (t *SearchCodeTool) Name() string { return "search_code" }

func (t *SearchCodeTool) Description() string {
	return "Search code in the repository under investigation. Returns matching file paths with text fragments."
}

func (t *SearchCodeTool) Parameters() map[string]any {
	return map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "Search terms (GitHub code search syntax).",
		},
		"repo": map[string]any{
			"type":        "string",
			"description": "Repository as \"owner/repo\". Defaults to the session's repository.",
		},
		"limit": map[string]any{
			"type":        "integer",
			"description": "Maximum number of matches (default 10).",
		},
	}
}

func (t *SearchCodeTool) RequiredParameters() []string { return []string{"query"} }

func (t *SearchCodeTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	owner, repo, err := resolveRepo(args, sess)
	if err != nil {
		return nil, err
	}
	limit := optionalIntArg(args, "limit", 10)

	matches, err := t.svc.SearchCode(ctx, owner, repo, query, limit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return api.TextResult(fmt.Sprintf("No code matches for %q in %s/%s.", query, owner, repo)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d match(es) for %q:\n", len(matches), query)
	for _, m := range matches {
		fmt.Fprintf(&sb, "- %s\n", m.Path)
		for _, frag := range m.Fragments {
			frag = strings.TrimSpace(frag)
			if frag != "" {
				fmt.Fprintf(&sb, "    %s\n", strings.ReplaceAll(frag, "\n", "\n    "))
			}
		}
	}
	return api.TextResult(strings.TrimRight(sb.String(), "\n")), nil
}

//----------------------------------------------------------------
// read_repo_file
//----------------------------------------------------------------

type ReadRepoFileTool struct {
	svc github.Service
}

func NewReadRepoFileTool(svc github.Service) *ReadRepoFileTool {
	return &ReadRepoFileTool{svc: svc}
}

func (t *ReadRepoFileTool) Name() string { return "read_repo_file" }

func (t *ReadRepoFileTool) Description() string {
	return "Fetch one file from the repository. Large files are stored as artifacts; read them with read_file."
}

func (t *ReadRepoFileTool) Parameters() map[string]any {
	return map[string]any{
		"path": map[string]any{
			"type":        "string",
			"description": "File path inside the repository.",
		},
		"repo": map[string]any{
			"type":        "string",
			"description": "Repository as \"owner/repo\". Defaults to the session's repository.",
		},
		"ref": map[string]any{
			"type":        "string",
			"description": "Branch, tag, or commit SHA. Defaults to the default branch.",
		},
	}
}

func (t *ReadRepoFileTool) RequiredParameters() []string { return []string{"path"} }

func (t *ReadRepoFileTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	owner, repo, err := resolveRepo(args, sess)
	if err != nil {
		return nil, err
	}
	ref := optionalStringArg(args, "ref", "")

	file, err := t.svc.GetFile(ctx, owner, repo, path, ref)
	if err != nil {
		return nil, err
	}

	if len(file.Content) <= offloadThreshold {
		return api.TextResult(file.Content), nil
	}

	artifact := artifactNameFor("file", file.Path)
	sess.Artifacts.Write(artifact, file.Content)
	return api.TextResult(offloadObservation(artifact, len(file.Content), file.Content)), nil
}

//----------------------------------------------------------------
// list_repo_tree
//----------------------------------------------------------------

type ListRepoTreeTool struct {
	svc github.Service
}

func NewListRepoTreeTool(svc github.Service) *ListRepoTreeTool {
	return &ListRepoTreeTool{svc: svc}
}

func (t *ListRepoTreeTool) Name() string { return "list_repo_tree" }

func (t *ListRepoTreeTool) Description() string {
	return "List the repository's full file tree. Large listings are stored as artifacts."
}

func (t *ListRepoTreeTool) Parameters() map[string]any {
	return map[string]any{
		"repo": map[string]any{
			"type":        "string",
			"description": "Repository as \"owner/repo\". Defaults to the session's repository.",
		},
		"ref": map[string]any{
			"type":        "string",
			"description": "Branch, tag, or commit SHA. Defaults to HEAD.",
		},
	}
}

func (t *ListRepoTreeTool) RequiredParameters() []string { return nil }

func (t *ListRepoTreeTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	owner, repo, err := resolveRepo(args, sess)
	if err != nil {
		return nil, err
	}
	ref := optionalStringArg(args, "ref", "")

	entries, err := t.svc.ListTree(ctx, owner, repo, ref)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%s: %d entries\n", owner, repo, len(entries))
	for _, e := range entries {
		if e.Type == "tree" {
			fmt.Fprintf(&sb, "%s/\n", e.Path)
		} else {
			fmt.Fprintf(&sb, "%s (%d)\n", e.Path, e.Size)
		}
	}
	listing := strings.TrimRight(sb.String(), "\n")

	if len(listing) <= offloadThreshold {
		return api.TextResult(listing), nil
	}

	artifact := artifactNameFor("tree", owner+"_"+repo)
	sess.Artifacts.Write(artifact, listing)
	return api.TextResult(offloadObservation(artifact, len(listing), listing)), nil
}

//----------------------------------------------------------------
// get_issue
//----------------------------------------------------------------

type GetIssueTool struct {
	svc github.Service
}

func NewGetIssueTool(svc github.Service) *GetIssueTool {
	return &GetIssueTool{svc: svc}
}

func (t *GetIssueTool) Name() string { return "get_issue" }

func (t *GetIssueTool) Description() string {
	return "Fetch a GitHub issue with its full comment thread. The thread is stored as an artifact; the observation carries only a short summary."
}

func (t *GetIssueTool) Parameters() map[string]any {
	return map[string]any{
		"ref": map[string]any{
			"type":        "string",
			"description": "Issue URL (https://github.com/owner/repo/issues/123) or short form owner/repo#123.",
		},
	}
}

func (t *GetIssueTool) RequiredParameters() []string { return []string{"ref"} }

func (t *GetIssueTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	refStr, err := stringArg(args, "ref")
	if err != nil {
		return nil, err
	}
	ref, err := github.ParseIssueRef(refStr)
	if err != nil {
		return nil, err
	}

	issue, err := t.svc.GetIssue(ctx, ref)
	if err != nil {
		return nil, err
	}

	thread := FormatIssueThread(issue)
	artifact := artifactNameFor("issue", ref.String())
	sess.Artifacts.Write(artifact, thread)

	obs := fmt.Sprintf("Fetched %s [%s] %q by %s, %d comment(s). Full thread in artifact %q.",
		ref, issue.State, issue.Title, issue.Author, len(issue.Comments), artifact)
	if len(obs) > 200 {
		obs = obs[:197] + "..."
	}
	return api.TextResult(obs), nil
}

// FormatIssueThread renders an issue plus comments as markdown for offload.
func FormatIssueThread(issue *github.Issue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s [%s]\n\n", issue.Title, issue.State)
	fmt.Fprintf(&sb, "Author: %s\n", issue.Author)
	if len(issue.Labels) > 0 {
		fmt.Fprintf(&sb, "Labels: %s\n", strings.Join(issue.Labels, ", "))
	}
	fmt.Fprintf(&sb, "\n%s\n", issue.Body)
	for _, c := range issue.Comments {
		fmt.Fprintf(&sb, "\n---\n**%s** (%s):\n%s\n", c.Author, c.CreatedAt.Format("2006-01-02"), c.Body)
	}
	return sb.String()
}

//----------------------------------------------------------------
// repo_info
//----------------------------------------------------------------

type RepoInfoTool struct {
	svc github.Service
}

func NewRepoInfoTool(svc github.Service) *RepoInfoTool {
	return &RepoInfoTool{svc: svc}
}

func (t *RepoInfoTool) Name() string { return "repo_info" }

func (t *RepoInfoTool) Description() string {
	return "Show repository metadata: description, language, stars, default branch, topics."
}

func (t *RepoInfoTool) Parameters() map[string]any {
	return map[string]any{
		"repo": map[string]any{
			"type":        "string",
			"description": "Repository as \"owner/repo\". Defaults to the session's repository.",
		},
	}
}

func (t *RepoInfoTool) RequiredParameters() []string { return nil }

func (t *RepoInfoTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	owner, repo, err := resolveRepo(args, sess)
	if err != nil {
		return nil, err
	}

	meta, err := t.svc.GetRepoMeta(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", meta.FullName, meta.Description)
	fmt.Fprintf(&sb, "Language: %s | Stars: %d | Forks: %d | Open issues: %d\n",
		meta.Language, meta.Stars, meta.Forks, meta.OpenIssues)
	fmt.Fprintf(&sb, "Default branch: %s", meta.DefaultBranch)
	if len(meta.Topics) > 0 {
		fmt.Fprintf(&sb, "\nTopics: %s", strings.Join(meta.Topics, ", "))
	}
	return api.TextResult(sb.String()), nil
}
