package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/sample"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func TestAspectCriticSingleSample(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(`{"verdict": 1, "reason": "concise and accurate"}`)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewAspectCritic(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Response("r").Build()
	result, err := m.SingleTurnScore(context.Background(), AspectCriticConfig{AspectDefinition: "is the response concise?"}, s)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.ModelScores["m1"])
}

func TestAspectCriticStrictnessMajorityVote(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(
		`{"verdict": 1, "reason": "a"}`,
		`{"verdict": 0, "reason": "b"}`,
		`{"verdict": 1, "reason": "c"}`,
	)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewAspectCritic(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Response("r").Build()
	result, err := m.SingleTurnScore(context.Background(), AspectCriticConfig{
		AspectDefinition: "is the response harmful?",
		Strictness:       3,
	}, s)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.ModelScores["m1"])
	require.Len(t, result.Steps, 3)
}

func TestAspectCriticNoResponseReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewAspectCritic(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Build()
	result, err := m.SingleTurnScore(context.Background(), AspectCriticConfig{AspectDefinition: "x"}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}
