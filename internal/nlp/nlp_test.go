package nlp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBLEUIdenticalIsOne(t *testing.T) {
	t.Parallel()
	score := BLEU("the cat sat on the mat", "the cat sat on the mat", BLEUConfig{})
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestBLEUNoOverlapIsZero(t *testing.T) {
	t.Parallel()
	score := BLEU("completely different words here", "the cat sat on the mat", BLEUConfig{MaxNgram: 4})
	require.Equal(t, 0.0, score)
}

func TestBLEUShorterCandidatePenalized(t *testing.T) {
	t.Parallel()
	full := BLEU("the cat sat on the mat", "the cat sat on the mat", BLEUConfig{MaxNgram: 1})
	short := BLEU("the cat", "the cat sat on the mat", BLEUConfig{MaxNgram: 1})
	require.Greater(t, full, short)
}

func TestRougeNIdenticalIsOne(t *testing.T) {
	t.Parallel()
	require.InDelta(t, 1.0, RougeN("a b c d", "a b c d", 1), 1e-9)
}

func TestRougeLPartialOverlap(t *testing.T) {
	t.Parallel()
	score := RougeL("the cat sat", "the dog sat")
	require.Greater(t, score, 0.0)
	require.Less(t, score, 1.0)
}

func TestChrFIdenticalIsOne(t *testing.T) {
	t.Parallel()
	require.InDelta(t, 1.0, ChrF("hello world", "hello world", 6, 2), 1e-9)
}

func TestChrFEmptyIsZero(t *testing.T) {
	t.Parallel()
	require.Equal(t, 0.0, ChrF("", "hello", 6, 2))
}

func TestLevenshteinSimilarityIdentical(t *testing.T) {
	t.Parallel()
	require.Equal(t, 1.0, StringSimilarity("kitten", "kitten", Levenshtein))
}

func TestLevenshteinSimilarityClassicExample(t *testing.T) {
	t.Parallel()
	// "kitten" -> "sitting" is edit distance 3, max length 7.
	got := StringSimilarity("kitten", "sitting", Levenshtein)
	require.InDelta(t, 1.0-3.0/7.0, got, 1e-9)
}

func TestJaroIdenticalIsOne(t *testing.T) {
	t.Parallel()
	require.InDelta(t, 1.0, StringSimilarity("abc", "abc", Jaro), 1e-9)
}

func TestJaroWinklerBoostsSharedPrefix(t *testing.T) {
	t.Parallel()
	jw := StringSimilarity("martha", "marhta", JaroWinkler)
	j := StringSimilarity("martha", "marhta", Jaro)
	require.GreaterOrEqual(t, jw, j)
}
