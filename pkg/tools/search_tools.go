package tools

import (
	"context"
	"fmt"
	"strings"

	"sleuth/pkg/api"
	"sleuth/pkg/research"
	"sleuth/pkg/state"
	"sleuth/pkg/utils"
)

// SearchWebTool runs a web search and offloads each retrieved page to the
// artifact store. The observation lists titles, URLs, and artifact names.
// With a summarizer attached, page content is compressed before offload.
type SearchWebTool struct {
	searcher   research.Searcher
	summarizer *research.Summarizer
}

// NewSearchWebTool creates the search tool. summarizer may be nil.
func NewSearchWebTool(searcher research.Searcher, summarizer *research.Summarizer) *SearchWebTool {
	return &SearchWebTool{
		searcher:   searcher,
		summarizer: summarizer,
	}
}

func (t *SearchWebTool) Name() string { return "search_web" }

func (t *SearchWebTool) Description() string {
	return "Search the web for error messages, library issues, or fixes. Each result's content is stored as an artifact; read them with read_file."
}

func (t *SearchWebTool) Parameters() map[string]any {
	return map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "Search query. Include exact error messages in quotes where possible.",
		},
		"max_results": map[string]any{
			"type":        "integer",
			"description": "Maximum number of results (default 3).",
		},
	}
}

func (t *SearchWebTool) RequiredParameters() []string { return []string{"query"} }

func (t *SearchWebTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	maxResults := optionalIntArg(args, "max_results", 3)

	results, err := t.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return api.TextResult(fmt.Sprintf("No web results for %q.", query)), nil
	}

	prefix := utils.GenerateTimestampPrefix()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d result(s) for %q:\n", len(results), query)
	for i, r := range results {
		content := r.RawContent
		if content == "" {
			content = r.Content
		}
		if t.summarizer != nil {
			content = t.summarizer.Summarize(ctx, r)
		}

		artifact := fmt.Sprintf("search_%s%d", prefix, i+1)
		sess.Artifacts.Write(artifact, fmt.Sprintf("# %s\n%s\n\n%s", r.Title, r.URL, content))
		fmt.Fprintf(&sb, "- %s (%s) -> artifact %q\n", r.Title, r.URL, artifact)
	}
	return api.TextResult(strings.TrimRight(sb.String(), "\n")), nil
}
