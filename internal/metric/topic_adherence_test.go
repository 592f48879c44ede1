package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/sample"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func TestTopicAdherenceFractionOnTopic(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(
		`{"verdict": 1, "reason": "about weather"}`,
		`{"verdict": 0, "reason": "off topic, about sports"}`,
	)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewTopicAdherence(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(
			sample.Human("what's the weather?"),
			sample.AI("it's sunny today"),
			sample.Human("who won the game?"),
			sample.AI("the home team won 3-1"),
		).
		ReferenceTopics("weather").
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.ModelScores["m1"], 1e-9)
	require.Len(t, result.Steps, 2)
}

func TestTopicAdherenceMultiTurnScoreMatchesSingleTurn(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(`{"verdict": 1, "reason": "about weather"}`)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewTopicAdherence(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(
			sample.Human("what's the weather?"),
			sample.AI("it's sunny today"),
		).
		ReferenceTopics("weather").
		Build()

	result, err := m.MultiTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.ModelScores["m1"])
}

func TestTopicAdherenceNoTopicsReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewTopicAdherence(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(sample.Human("hi"), sample.AI("hello")).
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}

func TestTopicAdherenceNoAITurnsReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewTopicAdherence(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(sample.Human("hi")).
		ReferenceTopics("weather").
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}
