// Package anthropicclient adapts the Anthropic SDK to the engine's
// llm.ChatClient contract: one prompt in, one schema-conformant struct out.
package anthropicclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/intelligencedev/ragas-engine/internal/observability"
)

const defaultMaxTokens int64 = 2048

const jsonModeSystemPrompt = "You respond with a single JSON object matching the requested schema and nothing else: no markdown fences, no commentary."

// Config holds the settings needed to construct a Client.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
}

// Client issues structured-output prompts against the Anthropic Messages API.
type Client struct {
	sdk       anthropic.Client
	model     string
	maxTokens int64
}

// New constructs a Client. httpClient may be nil to use http.DefaultClient.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		sdk:       anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Prompt sends text as a single user turn and decodes the model's reply into out.
func (c *Client) Prompt(ctx context.Context, text string, out any) error {
	log := observability.LoggerWithTrace(ctx)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: jsonModeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	start := time.Now()
	resp, err := c.sdk.Messages.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Dur("duration", dur).Msg("anthropic_judge_error")
		return fmt.Errorf("anthropicclient: messages.new: %w", err)
	}

	var raw strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			raw.WriteString(block.Text)
		}
	}
	body := extractJSONObject(raw.String())
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("anthropicclient: decode response: %w", err)
	}
	log.Debug().Str("model", c.model).Dur("duration", dur).Msg("anthropic_judge_ok")
	return nil
}

// extractJSONObject trims leading/trailing prose and markdown fences that
// some models emit around an otherwise valid JSON object.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}
