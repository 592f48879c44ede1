// Package render implements the minimal `{key}` placeholder substitution
// metric prompts are built from — intentionally not text/template: metric
// prompts are short, fixed, and never need control flow.
package render

import "strings"

// Template renders to a prompt by replacing every `{key}` occurrence with
// vars[key]. A placeholder with no matching var is left untouched, so a
// caller can spot a missing binding instead of silently emitting "".
func Template(tmpl string, vars map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		open := strings.IndexByte(tmpl[i:], '{')
		if open == -1 {
			b.WriteString(tmpl[i:])
			break
		}
		open += i
		close := strings.IndexByte(tmpl[open:], '}')
		if close == -1 {
			b.WriteString(tmpl[i:])
			break
		}
		close += open
		key := tmpl[open+1 : close]
		b.WriteString(tmpl[i:open])
		if v, ok := vars[key]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(tmpl[open : close+1])
		}
		i = close + 1
	}
	return b.String()
}
