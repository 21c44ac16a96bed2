package storemap

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is a successful store resolution.
type Match struct {
	StoreID string
	Name    string // canonical name from the reference table
	Score   int    // similarity score, 0-100
}

// Resolver finds the best store_id for a free-text store name. Resolution
// failure is not an error: the export keeps the store_id column empty.
type Resolver struct {
	entries   []Entry
	threshold int
}

// NewResolver creates a resolver over the given table. A nil or empty table
// is valid and resolves everything to no match.
func NewResolver(entries []Entry, threshold int) *Resolver {
	return &Resolver{entries: entries, threshold: threshold}
}

// Resolve returns the entry with the highest similarity score at or above
// the threshold. Ties keep the first occurrence in the reference table.
func (r *Resolver) Resolve(name string) *Match {
	name = strings.TrimSpace(name)
	if name == "" || len(r.entries) == 0 {
		return nil
	}

	normalized := strings.ToUpper(name)

	var best *Match
	for _, e := range r.entries {
		score := similarityScore(normalized, strings.ToUpper(e.Name))
		if score < r.threshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &Match{StoreID: e.StoreID, Name: e.Name, Score: score}
		}
	}

	return best
}

// similarityScore rates two uppercased names 0-100 using containment checks,
// Levenshtein distance and subsequence ranking, keeping whichever method
// scores highest. Containment matters most here: PDFs print truncated store
// names ("ACME CORP") that are substrings of the canonical entry.
func similarityScore(s1, s2 string) int {
	if s1 == s2 {
		return 100
	}

	if strings.Contains(s1, s2) {
		return 75 + (25 * len(s2) / len(s1))
	}
	if strings.Contains(s2, s1) {
		return 75 + (25 * len(s1) / len(s2))
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 0
	}
	levenshteinScore := 100 * (maxLen - distance) / maxLen

	// Subsequence rank: lower rank means the match starts earlier.
	fuzzyLibScore := 0
	if rank := fuzzy.RankMatch(s2, s1); rank >= 0 && rank < len(s1) {
		fuzzyLibScore = 60 - (rank * 40 / len(s1))
	}

	if levenshteinScore > fuzzyLibScore {
		return levenshteinScore
	}
	return fuzzyLibScore
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	// Two rows instead of the full matrix.
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
