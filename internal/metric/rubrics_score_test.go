package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/sample"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func TestRubricsScorePicksListedLevel(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(`{"score": 3, "reason": "mostly complete"}`)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewRubricsScore(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Response("r").Build()
	result, err := m.SingleTurnScore(context.Background(), RubricsScoreConfig{
		Rubrics: map[int]string{
			1: "completely wrong",
			2: "partially correct",
			3: "mostly correct",
			4: "fully correct",
		},
	}, s)
	require.NoError(t, err)
	require.Equal(t, 3.0, result.ModelScores["m1"])
}

func TestRubricsScoreClampsOutOfRangeLevel(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(`{"score": 99, "reason": "out of range"}`)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewRubricsScore(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Response("r").Build()
	result, err := m.SingleTurnScore(context.Background(), RubricsScoreConfig{
		Rubrics: map[int]string{1: "bad", 2: "good"},
	}, s)
	require.NoError(t, err)
	require.Equal(t, 2.0, result.ModelScores["m1"])
}

func TestRubricsScoreMissingRubricsReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewRubricsScore(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Response("r").Build()
	result, err := m.SingleTurnScore(context.Background(), RubricsScoreConfig{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}
