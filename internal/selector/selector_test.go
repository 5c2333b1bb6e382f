package selector

import (
	"testing"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/taxonomy"
	"github.com/Veraticus/tidy-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *taxonomy.Index {
	t.Helper()
	idx, err := taxonomy.Build(testutil.DefaultTaxonomy())
	require.NoError(t, err)
	return idx
}

func txn(desc string) model.Transaction {
	return testutil.Unclassified(7, model.LedgerChecking, "2024-02-14", desc, "-12.34")
}

func candidateNames(s *Selector) []string {
	out := make([]string, 0, len(s.Matches()))
	for _, m := range s.Matches() {
		out = append(out, m.Category.Name)
	}
	return out
}

func TestNew_SeedsQueryFromDescription(t *testing.T) {
	s := New(newIndex(t), txn("Groceries"), 0)

	assert.Equal(t, "Groceries", s.Query())
	assert.Equal(t, AwaitingInput, s.State())
	require.NotEmpty(t, s.Matches())
	assert.Equal(t, "Groceries", s.Matches()[0].Category.Name)
	assert.Equal(t, 0, s.Highlighted())

	_, ok := s.Decision()
	assert.False(t, ok)
}

func TestSelector_ConfirmAppliesHighlighted(t *testing.T) {
	s := New(newIndex(t), txn("t"), 0)
	assert.Equal(t, []string{"Transit", "Rent", "Utilities", "Dining Out", "Deleted Category", "Fuel", "Parking"}, candidateNames(s))

	s.Next()
	s.Next()
	s.Prev()
	require.NoError(t, s.Confirm())

	d, ok := s.Decision()
	require.True(t, ok)
	assert.Equal(t, model.DecisionApply, d.Kind)
	assert.Equal(t, 50, d.Category.ID)
	assert.Equal(t, Applied, s.State())
}

func TestSelector_HighlightIsClamped(t *testing.T) {
	s := New(newIndex(t), txn("t"), 3)
	require.Len(t, s.Matches(), 3)

	s.Prev()
	assert.Equal(t, 0, s.Highlighted())

	for range 10 {
		s.Next()
	}
	assert.Equal(t, 2, s.Highlighted())
}

func TestSelector_SetQueryResetsHighlight(t *testing.T) {
	s := New(newIndex(t), txn("t"), 0)
	s.Next()
	s.Next()

	s.SetQuery("fuel")
	assert.Equal(t, "fuel", s.Query())
	assert.Equal(t, 0, s.Highlighted())
	assert.Equal(t, "Fuel", s.Matches()[0].Category.Name)
}

func TestSelector_Select(t *testing.T) {
	s := New(newIndex(t), txn("t"), 0)

	assert.True(t, s.Select(3))
	assert.Equal(t, 2, s.Highlighted())
	assert.False(t, s.Select(0))
	assert.False(t, s.Select(99))
	assert.Equal(t, 2, s.Highlighted())

	require.NoError(t, s.Confirm())
	d, _ := s.Decision()
	assert.Equal(t, "Utilities", d.Category.Name)
}

func TestSelector_ConfirmWithoutCandidates(t *testing.T) {
	s := New(newIndex(t), txn("WHOLEFDS MKT #10234"), 0)
	require.Empty(t, s.Matches())
	assert.Equal(t, -1, s.Highlighted())

	err := s.Confirm()
	require.ErrorIs(t, err, ErrNoCandidates)
	assert.Equal(t, AwaitingInput, s.State())

	// Still editable after the failed confirm.
	s.SetQuery("groc")
	require.NoError(t, s.Confirm())
	d, ok := s.Decision()
	require.True(t, ok)
	assert.Equal(t, 42, d.Category.ID)
}

func TestSelector_SingleCandidateRequiresConfirm(t *testing.T) {
	s := New(newIndex(t), txn("groceries"), 0)
	require.Len(t, s.Matches(), 1)

	assert.Equal(t, AwaitingInput, s.State())
	_, ok := s.Decision()
	assert.False(t, ok)
}

func TestSelector_TerminalStatesIgnoreInput(t *testing.T) {
	tests := []struct {
		resolve func(*Selector)
		name    string
		want    model.DecisionKind
		state   State
	}{
		{name: "skip", resolve: (*Selector).Skip, want: model.DecisionSkip, state: Skipped},
		{name: "quit", resolve: (*Selector).Quit, want: model.DecisionQuit, state: Quit},
		{
			name: "apply",
			resolve: func(s *Selector) {
				_ = s.Confirm()
			},
			want:  model.DecisionApply,
			state: Applied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(newIndex(t), txn("t"), 0)
			tt.resolve(s)

			before, ok := s.Decision()
			require.True(t, ok)
			assert.Equal(t, tt.want, before.Kind)

			s.SetQuery("fuel")
			s.Next()
			assert.False(t, s.Select(2))
			s.Skip()
			s.Quit()
			require.NoError(t, s.Confirm())

			after, _ := s.Decision()
			assert.Equal(t, before, after)
			assert.Equal(t, tt.state, s.State())
			assert.Equal(t, "t", s.Query())
		})
	}
}

func TestSelector_SkipAndQuitCarryNoCategory(t *testing.T) {
	s := New(newIndex(t), txn("t"), 0)
	s.Skip()
	d, ok := s.Decision()
	require.True(t, ok)
	assert.Equal(t, model.SkipDecision(), d)

	s = New(newIndex(t), txn("t"), 0)
	s.Quit()
	d, ok = s.Decision()
	require.True(t, ok)
	assert.Equal(t, model.QuitDecision(), d)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting input", AwaitingInput.String())
	assert.Equal(t, "applied", Applied.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "quit", Quit.String())
	assert.Equal(t, "unknown", State(42).String())
}
