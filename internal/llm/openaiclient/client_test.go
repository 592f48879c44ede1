package openaiclient

import (
	"testing"

	sdk "github.com/openai/openai-go/v2"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesModelDefaults(t *testing.T) {
	t.Parallel()

	c := New(Config{APIKey: "sk-test"}, nil)
	require.Equal(t, sdk.ChatModelGPT4o, c.model)
	require.Equal(t, string(sdk.EmbeddingModelTextEmbedding3Small), c.embeddingModel)
}

func TestNewHonorsExplicitModels(t *testing.T) {
	t.Parallel()

	c := New(Config{APIKey: "sk-test", Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-large"}, nil)
	require.Equal(t, "gpt-4o-mini", c.model)
	require.Equal(t, "text-embedding-3-large", c.embeddingModel)
}
