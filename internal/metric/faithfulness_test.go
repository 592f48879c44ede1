package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/aggregate"
	"github.com/intelligencedev/ragas-engine/internal/executor"
	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/modelstore"
	"github.com/intelligencedev/ragas-engine/internal/ratelimit"
	"github.com/intelligencedev/ragas-engine/internal/sample"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func newTestExecutor(clients map[string]llm.ChatClient) *executor.Executor {
	return newTestExecutorWithEmbeddings(clients, nil)
}

func newTestExecutorWithEmbeddings(clients map[string]llm.ChatClient, embeds map[string]llm.EmbeddingModel) *executor.Executor {
	chatStore := modelstore.NewChatClientStore(clients, nil, nil)
	embedStore := modelstore.NewEmbeddingModelStore(embeds, nil, nil)
	limiters := ratelimit.NewProviderRegistry(nil, nil)
	return executor.New(chatStore, embedStore, limiters)
}

func TestFaithfulnessHalfScore(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(
		`{"statements": ["stmt1", "stmt2"]}`,
		`{"verdicts": [{"statement":"stmt1","reason":"supported","verdict":1},{"statement":"stmt2","reason":"not supported","verdict":0}]}`,
	)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})

	m := NewFaithfulness(Base{
		Executor:        exec,
		DefaultModelIDs: []string{"m1"},
		Aggregation:     aggregate.Average,
	})

	s := sample.NewBuilder().
		UserInput("What is Java?").
		Response("Java is a language. It was created by Oracle.").
		RetrievedContexts("Java is a programming language.").
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.AggregatedScore, 1e-9)
	require.InDelta(t, 0.5, result.ModelScores["m1"], 1e-9)
	require.Len(t, result.Steps, 3)
	require.Empty(t, result.ExcludedModels)
}

func TestFaithfulnessNoResponseReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewFaithfulness(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Build()
	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}

func TestFaithfulnessAllModelsFailedIsFatal(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(map[string]llm.ChatClient{"m1": testsupport.FailingChatClient{}})
	m := NewFaithfulness(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInput("q").
		Response("r").
		RetrievedContexts("c").
		Build()

	_, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.Error(t, err)
	var fatal *executor.AllModelsFailedError
	require.ErrorAs(t, err, &fatal)
}
