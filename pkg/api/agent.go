package api

import (
	"context"

	"sleuth/pkg/llm"
)

// Investigator defines the interface for the component that turns one
// incoming request into a final report.
type Investigator interface {
	HandleMessage(ctx context.Context, msg *UnifiedMessage) llm.Message
	SetResponder(responder MessageResponder)
}
