package nlp

// RougeN computes ROUGE-N (F1 of n-gram overlap) between candidate and
// reference.
func RougeN(candidate, reference string, n int) float64 {
	candTokens := tokenize(candidate)
	refTokens := tokenize(reference)
	if len(candTokens) < n || len(refTokens) < n {
		return 0
	}
	candCounts := ngramCounts(candTokens, n)
	refCounts := ngramCounts(refTokens, n)

	overlap := 0
	for gram, rc := range refCounts {
		if cc, ok := candCounts[gram]; ok {
			if cc < rc {
				overlap += cc
			} else {
				overlap += rc
			}
		}
	}
	candTotal := countTotal(candCounts)
	refTotal := countTotal(refCounts)
	if candTotal == 0 || refTotal == 0 {
		return 0
	}
	precision := float64(overlap) / float64(candTotal)
	recall := float64(overlap) / float64(refTotal)
	return f1(precision, recall)
}

// RougeL computes ROUGE-L: F-measure over the longest common subsequence.
func RougeL(candidate, reference string) float64 {
	candTokens := tokenize(candidate)
	refTokens := tokenize(reference)
	if len(candTokens) == 0 || len(refTokens) == 0 {
		return 0
	}
	lcs := lcsLength(candTokens, refTokens)
	precision := float64(lcs) / float64(len(candTokens))
	recall := float64(lcs) / float64(len(refTokens))
	return f1(precision, recall)
}

func countTotal(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

func lcsLength(a, b []string) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}
	return dp[len(a)][len(b)]
}
