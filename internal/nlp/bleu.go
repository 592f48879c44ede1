// Package nlp implements the pure computational metrics (§ NLP metrics):
// BLEU, ROUGE-1/2/L, chrF, and string-similarity variants. None of these
// call an LLM; every function is a pure (response, reference) -> [0,1]
// score.
package nlp

import (
	"math"
	"strings"
)

// BLEUConfig configures modified n-gram precision with brevity penalty.
type BLEUConfig struct {
	MaxNgram int  // default 4
	Smooth   bool // replace a zero n-gram precision with 1/(2*candidate n-gram count)
}

// BLEU computes the BLEU score of candidate against reference.
func BLEU(candidate, reference string, cfg BLEUConfig) float64 {
	maxN := cfg.MaxNgram
	if maxN <= 0 {
		maxN = 4
	}
	candTokens := tokenize(candidate)
	refTokens := tokenize(reference)
	if len(candTokens) == 0 {
		return 0
	}

	logSum := 0.0
	usable := 0
	for n := 1; n <= maxN; n++ {
		if len(candTokens) < n {
			break
		}
		candCounts := ngramCounts(candTokens, n)
		refCounts := ngramCounts(refTokens, n)

		matched := 0
		total := 0
		for gram, c := range candCounts {
			total += c
			if rc, ok := refCounts[gram]; ok {
				if rc < c {
					matched += rc
				} else {
					matched += c
				}
			}
		}
		if total == 0 {
			continue
		}
		precision := float64(matched) / float64(total)
		if precision == 0 {
			if cfg.Smooth {
				precision = 1.0 / float64(2*total)
			} else {
				return 0
			}
		}
		logSum += math.Log(precision)
		usable++
	}
	if usable == 0 {
		return 0
	}
	geoMean := math.Exp(logSum / float64(usable))

	bp := brevityPenalty(len(candTokens), len(refTokens))
	return bp * geoMean
}

func brevityPenalty(candLen, refLen int) float64 {
	if candLen >= refLen {
		return 1.0
	}
	if candLen == 0 {
		return 0
	}
	return math.Exp(1.0 - float64(refLen)/float64(candLen))
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		gram := strings.Join(tokens[i:i+n], " ")
		counts[gram]++
	}
	return counts
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}
