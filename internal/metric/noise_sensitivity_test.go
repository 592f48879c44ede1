package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/sample"
	"github.com/intelligencedev/ragas-engine/internal/testsupport"
)

func TestNoiseSensitivityLowerIsBetter(t *testing.T) {
	t.Parallel()

	client := testsupport.NewScriptedChatClient(
		`{"statements": ["s1", "s2", "s3"]}`,
		`{"relevant": true, "verdicts": [
			{"statement":"s1","faithful":1,"contradictsReference":1},
			{"statement":"s2","faithful":1,"contradictsReference":1},
			{"statement":"s3","faithful":1,"contradictsReference":0}
		]}`,
	)
	exec := newTestExecutor(map[string]llm.ChatClient{"m1": client})
	m := NewNoiseSensitivity(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().
		UserInput("q").
		Response("resp").
		Reference("ref").
		RetrievedContexts("ctx1").
		Build()

	result, err := m.SingleTurnScore(context.Background(), NoiseSensitivityConfig{}, s)
	require.NoError(t, err)
	require.InDelta(t, 2.0/3.0, result.AggregatedScore, 1e-9)
}

func TestNoiseSensitivityNoReferenceReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewNoiseSensitivity(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().UserInput("q").Response("resp").RetrievedContexts("c").Build()
	result, err := m.SingleTurnScore(context.Background(), NoiseSensitivityConfig{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}
