package storemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEntries = []Entry{
	{Name: "Christchurch FDC Produce", StoreID: "S01"},
	{Name: "Auckland FDC Produce", StoreID: "S02"},
	{Name: "PAK N SAVE ALBANY", StoreID: "S03"},
	{Name: "My Food Bag Christchurch", StoreID: "S04"},
}

func TestResolve_ExactMatch(t *testing.T) {
	r := NewResolver(testEntries, 75)

	match := r.Resolve("Christchurch FDC Produce")
	require.NotNil(t, match)
	assert.Equal(t, "S01", match.StoreID)
	assert.Equal(t, 100, match.Score)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	match := NewResolver(testEntries, 75).Resolve("pak n save albany")
	require.NotNil(t, match)
	assert.Equal(t, "S03", match.StoreID)
	assert.Equal(t, 100, match.Score)
}

func TestResolve_Containment(t *testing.T) {
	// PDFs truncate store names; the printed fragment is a substring of
	// the canonical entry.
	match := NewResolver(testEntries, 75).Resolve("PAK N SAVE ALBANY STORE 123")
	require.NotNil(t, match)
	assert.Equal(t, "S03", match.StoreID)
	assert.GreaterOrEqual(t, match.Score, 75)
}

func TestResolve_MinorTypo(t *testing.T) {
	match := NewResolver(testEntries, 75).Resolve("Christchurch FDC Produse")
	require.NotNil(t, match)
	assert.Equal(t, "S01", match.StoreID)
}

func TestResolve_BelowThreshold(t *testing.T) {
	assert.Nil(t, NewResolver(testEntries, 75).Resolve("Completely Different Shop"))
}

func TestResolve_EmptyInputs(t *testing.T) {
	r := NewResolver(testEntries, 75)

	assert.Nil(t, r.Resolve(""))
	assert.Nil(t, r.Resolve("   "))
	assert.Nil(t, NewResolver(nil, 75).Resolve("PAK N SAVE ALBANY"))
}

func TestResolve_TieKeepsFirstEntry(t *testing.T) {
	entries := []Entry{
		{Name: "Wellington Depot", StoreID: "FIRST"},
		{Name: "Wellington Depot", StoreID: "SECOND"},
	}

	match := NewResolver(entries, 75).Resolve("Wellington Depot")
	require.NotNil(t, match)
	assert.Equal(t, "FIRST", match.StoreID)
}

func TestResolve_ThresholdZeroAlwaysMatches(t *testing.T) {
	match := NewResolver(testEntries, 0).Resolve("XYZ")
	assert.NotNil(t, match)
}

func TestSimilarityScore(t *testing.T) {
	tests := []struct {
		name string
		s1   string
		s2   string
		min  int
		max  int
	}{
		{name: "identical", s1: "ACME CORP", s2: "ACME CORP", min: 100, max: 100},
		{name: "substring", s1: "ACME CORP LTD", s2: "ACME CORP", min: 75, max: 99},
		{name: "one edit", s1: "ACME CORP", s2: "ACME CORB", min: 80, max: 99},
		{name: "unrelated", s1: "ACME CORP", s2: "ZZZZZZZZZ", min: 0, max: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := similarityScore(tt.s1, tt.s2)
			assert.GreaterOrEqual(t, score, tt.min)
			assert.LessOrEqual(t, score, tt.max)
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("abc", "abc"))
	assert.Equal(t, 1, levenshteinDistance("abc", "abd"))
	assert.Equal(t, 3, levenshteinDistance("", "abc"))
	assert.Equal(t, 3, levenshteinDistance("abc", ""))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}
