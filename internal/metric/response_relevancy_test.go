package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/sample"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func TestResponseRelevancyMeanCosineSimilarity(t *testing.T) {
	t.Parallel()

	chatClient := testsupport.NewScriptedChatClient(
		`{"questions": [{"question":"q1","noncommittal":0},{"question":"q2","noncommittal":0}]}`,
	)
	embedModel := testsupport.NewScriptedEmbeddingModel(
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{0, 1},
	)
	exec := newTestExecutorWithEmbeddings(
		map[string]llm.ChatClient{"m1": chatClient},
		map[string]llm.EmbeddingModel{"m1": embedModel},
	)
	m := NewResponseRelevancy(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("What is Go?").Response("Go is a language.").Build()
	result, err := m.SingleTurnScore(context.Background(), ResponseRelevancyConfig{}, s)
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.AggregatedScore, 1e-9)
}

func TestResponseRelevancyNoncommittalZeroesScore(t *testing.T) {
	t.Parallel()

	chatClient := testsupport.NewScriptedChatClient(
		`{"questions": [{"question":"q1","noncommittal":1}]}`,
	)
	embedModel := testsupport.NewScriptedEmbeddingModel([]float32{1, 0}, []float32{1, 0})
	exec := newTestExecutorWithEmbeddings(
		map[string]llm.ChatClient{"m1": chatClient},
		map[string]llm.EmbeddingModel{"m1": embedModel},
	)
	m := NewResponseRelevancy(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Response("evasive answer").Build()
	result, err := m.SingleTurnScore(context.Background(), ResponseRelevancyConfig{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.ModelScores["m1"])
}
