// Package github wraps the GitHub REST API behind a narrow Service
// interface so tools and tests never touch the SDK types directly.
package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v66/github"
)

// Service is the capability surface the investigation tools need.
type Service interface {
	// GetFile fetches one file's decoded content. Empty ref means the
	// default branch.
	GetFile(ctx context.Context, owner, repo, path, ref string) (*RepoFile, error)
	// SearchCode runs a code search scoped to one repository.
	SearchCode(ctx context.Context, owner, repo, query string, limit int) ([]CodeMatch, error)
	// ListTree returns the full recursive file listing.
	ListTree(ctx context.Context, owner, repo, ref string) ([]TreeEntry, error)
	// GetIssue fetches an issue with its full comment thread.
	GetIssue(ctx context.Context, ref IssueRef) (*Issue, error)
	// GetRepoMeta fetches repository metadata.
	GetRepoMeta(ctx context.Context, owner, repo string) (*RepoMeta, error)
}

// RepoFile is one fetched repository file.
type RepoFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int    `json:"size"`
}

// CodeMatch is one code search hit with its matched fragments.
type CodeMatch struct {
	Path      string   `json:"path"`
	Fragments []string `json:"fragments,omitempty"`
}

// TreeEntry is one node of the repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
	Size int    `json:"size,omitempty"`
}

// Issue is a fetched issue with its comment thread.
type Issue struct {
	Ref      IssueRef       `json:"-"`
	Title    string         `json:"title"`
	State    string         `json:"state"`
	Author   string         `json:"author"`
	Body     string         `json:"body"`
	Labels   []string       `json:"labels,omitempty"`
	Comments []IssueComment `json:"comments,omitempty"`
}

// IssueComment is one comment on an issue.
type IssueComment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// RepoMeta is repository-level metadata.
type RepoMeta struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	OpenIssues    int      `json:"open_issues"`
	DefaultBranch string   `json:"default_branch"`
	Topics        []string `json:"topics,omitempty"`
}

// client implements Service on top of google/go-github.
type client struct {
	gh      *gh.Client
	timeout time.Duration
}

// NewService creates a Service. An empty token means unauthenticated access
// (works for public repositories at a lower rate limit).
func NewService(token string, timeout time.Duration) Service {
	c := gh.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{gh: c, timeout: timeout}
}

func (c *client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *client) GetFile(ctx context.Context, owner, repo, path, ref string) (*RepoFile, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var opts *gh.RepositoryContentGetOptions
	if ref != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: ref}
	}

	fileContent, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s:%s: %w", owner, repo, path, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("%s/%s:%s is a directory, not a file", owner, repo, path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s:%s: %w", owner, repo, path, err)
	}

	return &RepoFile{
		Path:    fileContent.GetPath(),
		Content: content,
		Size:    fileContent.GetSize(),
	}, nil
}

func (c *client) SearchCode(ctx context.Context, owner, repo, query string, limit int) ([]CodeMatch, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	scoped := fmt.Sprintf("%s repo:%s/%s", query, owner, repo)
	result, _, err := c.gh.Search.Code(ctx, scoped, &gh.SearchOptions{
		TextMatch:   true,
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("search code in %s/%s: %w", owner, repo, err)
	}

	matches := make([]CodeMatch, 0, len(result.CodeResults))
	for _, r := range result.CodeResults {
		m := CodeMatch{Path: r.GetPath()}
		for _, tm := range r.TextMatches {
			m.Fragments = append(m.Fragments, tm.GetFragment())
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (c *client) ListTree(ctx context.Context, owner, repo, ref string) ([]TreeEntry, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if ref == "" {
		ref = "HEAD"
	}

	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("list tree of %s/%s: %w", owner, repo, err)
	}

	entries := make([]TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, TreeEntry{
			Path: e.GetPath(),
			Type: e.GetType(),
			Size: e.GetSize(),
		})
	}
	return entries, nil
}

func (c *client) GetIssue(ctx context.Context, ref IssueRef) (*Issue, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	ghIssue, _, err := c.gh.Issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("get issue %s: %w", ref, err)
	}

	issue := &Issue{
		Ref:    ref,
		Title:  ghIssue.GetTitle(),
		State:  ghIssue.GetState(),
		Author: ghIssue.GetUser().GetLogin(),
		Body:   ghIssue.GetBody(),
	}
	for _, l := range ghIssue.Labels {
		issue.Labels = append(issue.Labels, l.GetName())
	}

	comments, _, err := c.gh.Issues.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	})
	if err != nil {
		// The issue itself is already fetched; return it without the thread.
		return issue, nil
	}
	for _, cm := range comments {
		issue.Comments = append(issue.Comments, IssueComment{
			Author:    cm.GetUser().GetLogin(),
			Body:      cm.GetBody(),
			CreatedAt: cm.GetCreatedAt().Time,
		})
	}

	return issue, nil
}

func (c *client) GetRepoMeta(ctx context.Context, owner, repo string) (*RepoMeta, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("get repository %s/%s: %w", owner, repo, err)
	}

	return &RepoMeta{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		DefaultBranch: r.GetDefaultBranch(),
		Topics:        r.Topics,
	}, nil
}
