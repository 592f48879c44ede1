package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/sample"
)

func TestToolCallAccuracyExactMatch(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewToolCallAccuracy(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(
			sample.Human("book a flight"),
			sample.AI("", sample.ToolCall{Name: "search_flights", Arguments: map[string]any{"dest": "SFO"}}),
			sample.AI("", sample.ToolCall{Name: "book_flight", Arguments: map[string]any{"id": "f1"}}),
		).
		ReferenceToolCalls(
			sample.ToolCall{Name: "search_flights", Arguments: map[string]any{"dest": "SFO"}},
			sample.ToolCall{Name: "book_flight", Arguments: map[string]any{"id": "f1"}},
		).
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.AggregatedScore)
}

func TestToolCallAccuracyPartialMatch(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewToolCallAccuracy(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(
			sample.AI("", sample.ToolCall{Name: "search_flights", Arguments: map[string]any{"dest": "SFO"}}),
			sample.AI("", sample.ToolCall{Name: "book_hotel", Arguments: map[string]any{"id": "h1"}}),
		).
		ReferenceToolCalls(
			sample.ToolCall{Name: "search_flights", Arguments: map[string]any{"dest": "SFO"}},
			sample.ToolCall{Name: "book_flight", Arguments: map[string]any{"id": "f1"}},
		).
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.5, result.AggregatedScore)
}

func TestToolCallAccuracyMatchesNestedArgumentValues(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewToolCallAccuracy(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(
			sample.AI("", sample.ToolCall{Name: "search_flights", Arguments: map[string]any{
				"dests": []any{"SFO", "JFK"},
				"prefs": map[string]any{"window_seat": true},
			}}),
		).
		ReferenceToolCalls(
			sample.ToolCall{Name: "search_flights", Arguments: map[string]any{
				"dests": []any{"SFO", "JFK"},
				"prefs": map[string]any{"window_seat": true},
			}},
		).
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.AggregatedScore)
}

func TestToolCallAccuracyMultiTurnScoreMatchesSingleTurn(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewToolCallAccuracy(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInputMessages(
			sample.AI("", sample.ToolCall{Name: "search_flights", Arguments: map[string]any{"dest": "SFO"}}),
		).
		ReferenceToolCalls(
			sample.ToolCall{Name: "search_flights", Arguments: map[string]any{"dest": "SFO"}},
		).
		Build()

	result, err := m.MultiTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.AggregatedScore)
}

func TestToolCallAccuracyNoReferenceReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewToolCallAccuracy(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().Build()
	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}
