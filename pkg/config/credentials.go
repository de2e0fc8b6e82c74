package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials holds the secrets read from the environment. They live in
// .env (or the real environment), never in config.json.
type Credentials struct {
	// GithubToken authenticates GitHub API calls. Optional: unauthenticated
	// access works for public repositories at a lower rate limit.
	GithubToken string
	// TavilyAPIKey authenticates web search. Required only when the search
	// tools are in play.
	TavilyAPIKey string
}

// LoadCredentials reads .env (if present) and the process environment.
// A missing .env file is fine; the environment may already carry the keys.
func LoadCredentials() *Credentials {
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env file")
	}

	return &Credentials{
		GithubToken:  os.Getenv("GITHUB_TOKEN"),
		TavilyAPIKey: os.Getenv("TAVILY_API_KEY"),
	}
}

// LogStatus reports which credentials are present, with values masked.
func (c *Credentials) LogStatus() {
	slog.Info("Credential status",
		"github_token", maskSecret(c.GithubToken),
		"tavily_api_key", maskSecret(c.TavilyAPIKey),
	)
}

// RequireSearch returns an error when web search is requested without a key.
func (c *Credentials) RequireSearch() error {
	if c.TavilyAPIKey == "" {
		return fmt.Errorf("TAVILY_API_KEY is not set; web search tools are unavailable")
	}
	return nil
}

// maskSecret keeps the first 4 characters and hides the rest.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", 8)
}
