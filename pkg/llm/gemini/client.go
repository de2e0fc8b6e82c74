package gemini

import (
	"context"
	"fmt"
	"strings"

	"sleuth/pkg/llm"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GeminiClient Google Gemini API client
type GeminiClient struct {
	client       *genai.Client
	model        string
	useThought   bool
	debugEnabled bool
}

// NewGeminiClient creates a Gemini client with a single model and API key
func NewGeminiClient(apiKey string, model string, useThought bool) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		useThought: useThought,
	}, nil
}

func (g *GeminiClient) Provider() string {
	return "gemini"
}

// SetDebug toggles raw exchange dumping.
func (g *GeminiClient) SetDebug(enabled bool) {
	g.debugEnabled = enabled
}

// Chat implements llm.LLMClient.
func (g *GeminiClient) Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolSchema) (*llm.Completion, error) {
	apiMessages, systemInstruction := g.convertMessages(messages)
	genaiTools := g.convertTools(tools)

	var thinkingCfg *genai.ThinkingConfig
	if g.useThought {
		thinkingCfg = &genai.ThinkingConfig{
			IncludeThoughts: true,
		}
	}

	debugger := llm.NewExchangeDebugger(ctx, "gemini", g.debugEnabled)
	defer debugger.Close()

	if reqDump, err := json.Marshal(apiMessages); err == nil {
		debugger.WriteString(">>> request")
		debugger.Write(reqDump)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, apiMessages, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Tools:             genaiTools,
		ThinkingConfig:    thinkingCfg,
	})
	if err != nil {
		return nil, err
	}

	if respDump, err := json.Marshal(resp); err == nil {
		debugger.WriteString("<<< response")
		debugger.Write(respDump)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	candidate := resp.Candidates[0]

	msg := llm.Message{Role: "assistant"}
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			if part.Thought {
				msg.AddContentBlock(llm.NewThinkingBlock(part.Text))
			} else {
				msg.AddContentBlock(llm.NewTextBlock(part.Text))
			}
		}

		if part.FunctionCall != nil {
			argsB, _ := json.Marshal(part.FunctionCall.Args)
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Function: llm.FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(argsB),
				},
				// Save original FunctionCall for reconstruction (includes
				// thought_signature, etc.)
				Meta: map[string]any{
					"gemini_function_call": part.FunctionCall,
				},
			})
		}
	}

	var usage *llm.LLMUsage
	if resp.UsageMetadata != nil {
		u := resp.UsageMetadata
		usage = &llm.LLMUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
			ThoughtsTokens:   int(u.ThoughtsTokenCount),
			CachedTokens:     int(u.CachedContentTokenCount),
		}
	}

	stopReason := normalizeStopReason(string(candidate.FinishReason))
	if len(msg.ToolCalls) > 0 {
		stopReason = llm.StopReasonToolUse
	}
	if usage != nil {
		usage.StopReason = stopReason
	}

	return &llm.Completion{
		Message:    msg,
		StopReason: stopReason,
		Usage:      usage,
	}, nil
}

// convertMessages converts the transcript to GenAI format
func (g *GeminiClient) convertMessages(messages []llm.Message) ([]*genai.Content, *genai.Content) {
	var genaiContents []*genai.Content
	var systemInstruction *genai.Content

	for _, msg := range messages {
		if msg.Role == "system" {
			// System role as SystemInstruction
			var parts []*genai.Part
			for _, block := range msg.Content {
				if block.Type == llm.BlockTypeText && block.Text != "" {
					parts = append(parts, &genai.Part{Text: block.Text})
				}
			}
			if len(parts) > 0 {
				systemInstruction = &genai.Content{Parts: parts}
			}
			continue
		}

		if msg.Role == "tool" {
			// Tool results are part of user role in Gemini
			genaiContents = append(genaiContents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{
					{
						FunctionResponse: &genai.FunctionResponse{
							Name:     msg.ToolName,
							Response: map[string]any{"result": msg.GetTextContent()},
						},
					},
				},
			})
			continue
		}

		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}

		var parts []*genai.Part
		// Gemini requires echoing previous tool calls before their responses
		if len(msg.ToolCalls) > 0 {
			for _, tc := range msg.ToolCalls {
				// Use original FunctionCall if available (includes thought_signature)
				if tc.Meta != nil {
					if originalFC, ok := tc.Meta["gemini_function_call"].(*genai.FunctionCall); ok {
						parts = append(parts, &genai.Part{
							FunctionCall: originalFC,
						})
						continue
					}
				}

				// Rebuild manually if original data is missing (may miss thought_signature)
				var args map[string]any
				json.Unmarshal([]byte(tc.Function.Arguments), &args)
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						Name: tc.Function.Name,
						Args: args,
					},
				})
			}
		}

		for _, block := range msg.Content {
			switch block.Type {
			case llm.BlockTypeText:
				if block.Text == "" {
					continue
				}
				parts = append(parts, &genai.Part{Text: block.Text})

			case llm.BlockTypeThinking:
				if block.Text == "" {
					continue
				}
				// Mark reasoning content as Thought when echoing back
				parts = append(parts, &genai.Part{
					Text:    block.Text,
					Thought: true,
				})
			}
		}

		if len(parts) > 0 {
			genaiContents = append(genaiContents, &genai.Content{
				Role:  role,
				Parts: parts,
			})
		}
	}

	return genaiContents, systemInstruction
}

// convertTools converts provider-neutral schemas to GenAI declarations. The
// JSON round-trip lets genai.Schema parse the raw property map.
func (g *GeminiClient) convertTools(tools []llm.ToolSchema) []*genai.Tool {
	var fds []*genai.FunctionDeclaration
	for _, t := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}

		rawSchema := map[string]any{
			"type":       "object",
			"properties": t.Parameters,
		}
		if len(t.Required) > 0 {
			rawSchema["required"] = t.Required
		}

		schemaB, _ := json.Marshal(rawSchema)
		var schema genai.Schema
		if err := json.Unmarshal(schemaB, &schema); err == nil {
			fd.Parameters = &schema
		}

		fds = append(fds, fd)
	}

	if len(fds) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: fds}}
}

func normalizeStopReason(reason string) string {
	switch strings.ToUpper(reason) {
	case "STOP", "":
		return llm.StopReasonStop
	case "MAX_TOKENS", "FINISH_REASON_MAX_TOKENS":
		return llm.StopReasonLength
	default:
		return strings.ToLower(reason)
	}
}

// IsTransientError implements the llm.LLMClient interface
func (g *GeminiClient) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()

	// 1. Google API common 503 Service Unavailable / Overloaded
	if strings.Contains(errMsg, "503") || strings.Contains(strings.ToLower(errMsg), "overloaded") {
		return true
	}

	// 2. 429 Too Many Requests (Rate Limit)
	if strings.Contains(errMsg, "429") || strings.Contains(strings.ToLower(errMsg), "resource exhausted") {
		return true
	}

	// 3. 500 Internal Error (occasional Gemini hiccups)
	if strings.Contains(errMsg, "500") || strings.Contains(strings.ToLower(errMsg), "internal error") {
		return true
	}

	return false
}
