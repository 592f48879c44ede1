package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplateSubstitutesKnownKeys(t *testing.T) {
	t.Parallel()
	got := Template("Question: {question}\nContext: {context}", map[string]string{
		"question": "What is Go?",
		"context":  "Go is a language.",
	})
	require.Equal(t, "Question: What is Go?\nContext: Go is a language.", got)
}

func TestTemplateLeavesUnknownPlaceholdersUntouched(t *testing.T) {
	t.Parallel()
	got := Template("{known} and {unknown}", map[string]string{"known": "x"})
	require.Equal(t, "x and {unknown}", got)
}

func TestTemplateNoPlaceholders(t *testing.T) {
	t.Parallel()
	got := Template("plain text", nil)
	require.Equal(t, "plain text", got)
}
