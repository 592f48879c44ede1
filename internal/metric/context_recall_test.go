package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/sample"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func TestContextRecallHappyPath(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(
		`{"classifications": [{"statement":"Java is a programming language.","reason":"r","attributed":1},{"statement":"Java was created by Sun Microsystems.","reason":"r","attributed":1}]}`,
	)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewContextRecall(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInput("What is Java?").
		Reference("Java is a programming language. Java was created by Sun Microsystems.").
		RetrievedContexts("Java is a high-level language.", "Sun Microsystems created Java.").
		Build()

	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.AggregatedScore, 1e-9)
}

func TestContextRecallNoReferenceReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewContextRecall(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Build()
	result, err := m.SingleTurnScore(context.Background(), Config{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}
