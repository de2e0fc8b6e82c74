// Package research provides web search for error investigation. Tavily has
// no official Go SDK, so the client speaks the HTTP API directly.
package research

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const tavilyEndpoint = "https://api.tavily.com/search"

// Searcher is the web search capability surface.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// SearchResult is one retrieved page.
type SearchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`               // Tavily's extracted summary snippet
	RawContent string  `json:"raw_content,omitempty"` // full page text when available
	Score      float64 `json:"score,omitempty"`
}

// TavilyClient implements Searcher against the Tavily REST API.
type TavilyClient struct {
	apiKey     string
	httpClient *http.Client
}

// NewTavilyClient creates a search client. Timeout bounds each request.
func NewTavilyClient(apiKey string, timeout time.Duration) *TavilyClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TavilyClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tavilyRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
	SearchDepth       string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

// Search runs one query and returns up to maxResults pages with raw content.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily api key is not configured")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	body, err := json.Marshal(tavilyRequest{
		Query:             query,
		MaxResults:        maxResults,
		IncludeRawContent: true,
		SearchDepth:       "basic",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tavily response read failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(payload))
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		return nil, fmt.Errorf("tavily returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("tavily response parse failed: %w", err)
	}

	return parsed.Results, nil
}
