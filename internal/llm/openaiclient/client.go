// Package openaiclient adapts the OpenAI SDK to the engine's
// llm.ChatClient and llm.EmbeddingModel contracts.
package openaiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/intelligencedev/ragas-engine/internal/observability"
)

const jsonModeSystemPrompt = "You respond with a single JSON object matching the requested schema and nothing else."

// Config holds the settings needed to construct a Client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

// Client issues structured-output chat prompts and embedding requests
// against an OpenAI-compatible endpoint.
type Client struct {
	sdk            sdk.Client
	model          string
	embeddingModel string
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
		model = sdk.ChatModelGPT4o
	}
	embedModel := strings.TrimSpace(cfg.EmbeddingModel)
	if embedModel == "" {
		embedModel = string(sdk.EmbeddingModelTextEmbedding3Small)
	}
	return &Client{
		sdk:            sdk.NewClient(opts...),
		model:          model,
		embeddingModel: embedModel,
	}
}

// Prompt sends text as a single user turn in JSON mode and decodes the
// reply into out.
func (c *Client) Prompt(ctx context.Context, text string, out any) error {
	log := observability.LoggerWithTrace(ctx)

	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(c.model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(jsonModeSystemPrompt),
			sdk.UserMessage(text),
		},
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &sdk.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	comp, err := c.sdk.Chat.Completions.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Dur("duration", dur).Msg("openai_judge_error")
		return fmt.Errorf("openaiclient: chat completion: %w", err)
	}
	if len(comp.Choices) == 0 {
		return fmt.Errorf("openaiclient: empty choices")
	}
	content := comp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("openaiclient: decode response: %w", err)
	}
	log.Debug().Str("model", c.model).Dur("duration", dur).Msg("openai_judge_ok")
	return nil
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.sdk.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Model: c.embeddingModel,
		Input: sdk.EmbeddingNewParamsInputUnion{OfString: sdk.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("openaiclient: embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openaiclient: empty embedding data")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
