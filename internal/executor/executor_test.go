package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/modelstore"
	"github.com/intelligencedev/ragas-engine/internal/ratelimit"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func newExecutorForTest(clients map[string]llm.ChatClient, embeds map[string]llm.EmbeddingModel) *Executor {
	chatStore := modelstore.NewChatClientStore(clients, nil, nil)
	embedStore := modelstore.NewEmbeddingModelStore(embeds, nil, nil)
	limiters := ratelimit.NewProviderRegistry(nil, nil)
	return New(chatStore, embedStore, limiters)
}

type stringResponse struct {
	Value string `json:"value"`
}

func TestExecuteLLMPreservesInputOrder(t *testing.T) {
	t.Parallel()

	clients := map[string]llm.ChatClient{
		"slow": testsupport.NewScriptedChatClient(`{"value":"slow"}`),
		"fast": testsupport.NewScriptedChatClient(`{"value":"fast"}`),
	}
	exec := newExecutorForTest(clients, nil)

	results, err := exec.ExecuteLLM(context.Background(), []string{"slow", "fast"}, "prompt", func() any { return &stringResponse{} })
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "slow", results[0].ModelID)
	require.Equal(t, "fast", results[1].ModelID)
	require.True(t, results[0].IsSuccess())
	require.True(t, results[1].IsSuccess())
}

func TestExecuteLLMCapturesPerModelFailure(t *testing.T) {
	t.Parallel()

	clients := map[string]llm.ChatClient{
		"good": testsupport.NewScriptedChatClient(`{"value":"ok"}`),
		"bad":  testsupport.FailingChatClient{},
	}
	exec := newExecutorForTest(clients, nil)

	results, err := exec.ExecuteLLM(context.Background(), []string{"good", "bad"}, "prompt", func() any { return &stringResponse{} })
	require.NoError(t, err)
	require.True(t, results[0].IsSuccess())
	require.False(t, results[1].IsSuccess())
	require.Error(t, results[1].Err)
}

func TestExecuteLLMUnregisteredModelFails(t *testing.T) {
	t.Parallel()

	exec := newExecutorForTest(nil, nil)
	results, err := exec.ExecuteLLM(context.Background(), []string{"ghost"}, "prompt", func() any { return &stringResponse{} })
	require.NoError(t, err)
	require.False(t, results[0].IsSuccess())
}

func TestExecuteEmbeddingOnModel(t *testing.T) {
	t.Parallel()

	embeds := map[string]llm.EmbeddingModel{
		"m1": testsupport.NewScriptedEmbeddingModel([]float32{1, 2, 3}),
	}
	exec := newExecutorForTest(nil, embeds)

	res := exec.ExecuteEmbeddingOnModel(context.Background(), "m1", "hello")
	require.True(t, res.IsSuccess())
	require.Equal(t, []float32{1, 2, 3}, res.Result.([]float32))
}

func TestExecuteComputeRunsEveryModel(t *testing.T) {
	t.Parallel()

	exec := newExecutorForTest(nil, nil)
	results, err := exec.ExecuteCompute(context.Background(), []string{"a", "b"}, func(_ context.Context, modelID string) (any, error) {
		return modelID + "-computed", nil
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "a-computed", results[0].Result)
	require.Equal(t, "b-computed", results[1].Result)
}

func TestRunAsyncDeliversOutcome(t *testing.T) {
	t.Parallel()

	ch := RunAsync(context.Background(), func(context.Context) (int, error) { return 42, nil })
	out := <-ch
	require.NoError(t, out.Err)
	require.Equal(t, 42, out.Value)
}
