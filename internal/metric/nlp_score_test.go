package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intelligencedev/ragas-engine/internal/nlp"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

func TestNLPScoreBLEUIdenticalIsOne(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewNLPScore(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().Response("the cat sat on the mat").Reference("the cat sat on the mat").Build()
	result, err := m.SingleTurnScore(context.Background(), NLPScoreConfig{Method: NLPScoreBLEU}, s)
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.AggregatedScore, 1e-9)
}

func TestNLPScoreRougeL(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewNLPScore(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().Response("the cat sat on the mat").Reference("the cat sat on the mat").Build()
	result, err := m.SingleTurnScore(context.Background(), NLPScoreConfig{Method: NLPScoreRougeL}, s)
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.AggregatedScore, 1e-9)
}

func TestNLPScoreStringSimilarityMatchesPackageFunction(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewNLPScore(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().Response("kitten").Reference("sitting").Build()
	result, err := m.SingleTurnScore(context.Background(), NLPScoreConfig{
		Method:           NLPScoreStringSimilarity,
		SimilarityMethod: nlp.Levenshtein,
	}, s)
	require.NoError(t, err)
	want := nlp.StringSimilarity("kitten", "sitting", nlp.Levenshtein)
	require.InDelta(t, want, result.AggregatedScore, 1e-9)
}

func TestNLPScoreMissingReferenceReturnsZero(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(nil)
	m := NewNLPScore(Base{Executor: exec, DefaultModelIDs: []string{"m1"}})

	s := sample.NewBuilder().Response("r").Build()
	result, err := m.SingleTurnScore(context.Background(), NLPScoreConfig{}, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.AggregatedScore)
}
