package modelstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
)

func TestChatClientStoreGetFallsBackToDefault(t *testing.T) {
	t.Parallel()

	registered := llm.ChatClientFunc(func(context.Context, string, any) error { return nil })
	def := llm.ChatClientFunc(func(context.Context, string, any) error { return nil })
	store := NewChatClientStore(map[string]llm.ChatClient{"m1": registered}, def, map[string]string{"m1": "openai"})

	require.NotNil(t, store.Get("m1"))
	require.NotNil(t, store.Get("unregistered"))

	provider, ok := store.ProviderOf("m1")
	require.True(t, ok)
	require.Equal(t, "openai", provider)

	_, ok = store.ProviderOf("unregistered")
	require.False(t, ok)

	require.ElementsMatch(t, []string{"m1"}, store.ModelIDs())
}

func TestEmbeddingModelStoreGetFallsBackToDefault(t *testing.T) {
	t.Parallel()

	registered := llm.EmbeddingModelFunc(func(context.Context, string) ([]float32, error) { return nil, nil })
	store := NewEmbeddingModelStore(map[string]llm.EmbeddingModel{"m1": registered}, nil, nil)

	require.NotNil(t, store.Get("m1"))
	require.Nil(t, store.Get("unregistered"))
}
