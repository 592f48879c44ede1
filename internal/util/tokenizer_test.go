package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountTokensSplitsWordsAndPunctuation(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, CountTokens(""))
	require.Equal(t, 2, CountTokens("hello world"))
	require.Equal(t, 3, CountTokens("hello, world"))
}
