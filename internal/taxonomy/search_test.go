package taxonomy

import (
	"testing"

	"github.com/Veraticus/tidy-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Category.Name
	}
	return out
}

func defaultIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(testutil.DefaultTaxonomy())
	require.NoError(t, err)
	return idx
}

func TestSearch_EmptyQueryReturnsTaxonomyOrder(t *testing.T) {
	idx := defaultIndex(t)

	got := idx.Search("   ", 0)
	assert.Equal(t, []string{
		"Coffee Shops", "Dining Out", "Groceries",
		"Rent", "Utilities",
		"Fuel", "Parking", "Transit",
		"Deleted Category",
	}, names(got))
	for _, m := range got {
		assert.Equal(t, 0, m.Score)
	}

	assert.Len(t, idx.Search("", 4), 4)
}

func TestSearch_Ranking(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "exact match first, case-insensitive",
			query: "GROCERIES",
			want:  []string{"Groceries"},
		},
		{
			name:  "prefix beats substring",
			query: "par",
			want:  []string{"Parking"},
		},
		{
			name:  "substring beats subsequence",
			query: "in",
			// "Housing" carries the group-label matches.
			want: []string{"Parking", "Dining Out", "Rent", "Utilities"},
		},
		{
			name:  "subsequence match",
			query: "cfs",
			want:  []string{"Coffee Shops"},
		},
		{
			name:  "group label matches",
			query: "housing",
			want:  []string{"Rent", "Utilities"},
		},
		{
			name:  "full label is exact",
			query: "transport / fuel",
			want:  []string{"Fuel"},
		},
		{
			name:  "no match",
			query: "zzz",
			want:  []string{},
		},
	}

	idx := defaultIndex(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(idx.Search(tt.query, 0)))
		})
	}
}

func TestSearch_TieBreaks(t *testing.T) {
	idx, err := Build(testutil.NewTaxonomy().
		Group(2, "A", testutil.Cat(10, "Travel Insurance"), testutil.Cat(11, "Travel")).
		Group(3, "B", testutil.Cat(12, "Tram"), testutil.Cat(13, "Taxi")).
		Build())
	require.NoError(t, err)

	// Prefix tier: shorter names first, equal lengths keep taxonomy order.
	got := idx.Search("t", 0)
	assert.Equal(t, []string{"Tram", "Taxi", "Travel", "Travel Insurance"}, names(got))
	for _, m := range got {
		assert.Equal(t, ScorePrefix, m.Score)
	}

	// Exact outranks a longer prefix match.
	got = idx.Search("travel", 0)
	assert.Equal(t, []string{"Travel", "Travel Insurance"}, names(got))
	assert.Equal(t, ScoreExact, got[0].Score)
	assert.Equal(t, ScorePrefix, got[1].Score)
}

func TestSearch_ExactNameIsAlwaysTop(t *testing.T) {
	idx := defaultIndex(t)
	for _, e := range idx.pickable {
		got := idx.Search(e.Category.Name, 3)
		require.NotEmpty(t, got, e.Category.Name)
		assert.Equal(t, e.Category.ID, got[0].Category.ID, "query %q", e.Category.Name)
		assert.Equal(t, ScoreExact, got[0].Score)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	idx := defaultIndex(t)
	other := defaultIndex(t)

	for _, q := range []string{"", "t", "in", "s", "food", "ou"} {
		first := idx.Search(q, 0)
		assert.Equal(t, first, idx.Search(q, 0), "query %q", q)
		assert.Equal(t, first, other.Search(q, 0), "query %q across snapshots", q)
	}
}

func TestSearch_LimitTruncatesAfterRanking(t *testing.T) {
	idx := defaultIndex(t)

	all := idx.Search("e", 0)
	require.Greater(t, len(all), 2)
	assert.Equal(t, all[:2], idx.Search("e", 2))
}

func TestSearch_NeverReturnsSentinel(t *testing.T) {
	idx := defaultIndex(t)
	for _, m := range idx.Search("uncategorized", 0) {
		assert.False(t, m.Category.IsUncategorized())
	}
}

func TestIsSubsequence(t *testing.T) {
	assert.True(t, isSubsequence("", "abc"))
	assert.True(t, isSubsequence("ac", "abc"))
	assert.False(t, isSubsequence("ca", "abc"))
	assert.True(t, isSubsequence("café", "le café"))
}
