package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/selector"
	"github.com/Veraticus/tidy-ledger/internal/taxonomy"
	"github.com/Veraticus/tidy-ledger/internal/testutil"
	"github.com/Veraticus/tidy-ledger/internal/tui/themes"
	"github.com/Veraticus/tidy-ledger/internal/tui/tuitest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T, desc string) Model {
	t.Helper()
	idx, err := taxonomy.Build(testutil.DefaultTaxonomy())
	require.NoError(t, err)
	txn := testutil.Unclassified(3, model.LedgerChecking, "2024-02-20", desc, "-54.10")

	cfg := defaultConfig()
	cfg.Theme = themes.Default
	return newModel(selector.New(idx, txn, 0), cfg, 1)
}

func update(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	return tuitest.Drive(t, m, msgs...)
}

func TestModel_SeededFromDescription(t *testing.T) {
	m := testModel(t, "groc")

	assert.Equal(t, "groc", m.input.Value())
	assert.Equal(t, "Groceries", m.Selector().Matches()[0].Category.Name)

	view := m.View()
	assert.Contains(t, view, "Transaction 1")
	assert.Contains(t, view, "#3")
	assert.Contains(t, view, "2024-02-20")
	assert.Contains(t, view, "checking")
	assert.Contains(t, view, "-54.10")
	assert.Contains(t, view, "Food / Groceries")
}

func TestModel_LongDescriptionQueryMatchesInput(t *testing.T) {
	desc := "GROCERY OUTLET " + strings.Repeat("X", 124)
	m := testModel(t, desc)

	assert.Len(t, m.input.Value(), m.input.CharLimit)
	assert.Equal(t, m.input.Value(), m.Selector().Query())
}

func TestModel_EnterConfirmsHighlighted(t *testing.T) {
	m := testModel(t, "t")

	m, cmd := update(t, m, tuitest.Key(tea.KeyDown), tuitest.Key(tea.KeyDown), tuitest.Key(tea.KeyUp))
	assert.False(t, tuitest.IsQuit(cmd))

	m, cmd = update(t, m, tuitest.Key(tea.KeyEnter))
	assert.True(t, tuitest.IsQuit(cmd))

	d, ok := m.Decision()
	require.True(t, ok)
	assert.Equal(t, model.DecisionApply, d.Kind)
	assert.Equal(t, 50, d.Category.ID)
	assert.Contains(t, m.View(), "Housing / Rent")
}

func TestModel_TypingRefinesQuery(t *testing.T) {
	m := testModel(t, "")
	require.Len(t, m.Selector().Matches(), 9)

	m, _ = update(t, m, tuitest.Type("fue")...)
	assert.Equal(t, "fue", m.Selector().Query())
	assert.Equal(t, "Fuel", m.Selector().Matches()[0].Category.Name)

	m, _ = update(t, m, tuitest.Key(tea.KeyBackspace))
	assert.Equal(t, "fu", m.Selector().Query())
}

func TestModel_NoCandidatesStaysOpen(t *testing.T) {
	m := testModel(t, "WHOLEFDS MKT")
	require.Empty(t, m.Selector().Matches())

	m, cmd := update(t, m, tuitest.Key(tea.KeyEnter))
	assert.False(t, tuitest.IsQuit(cmd))
	assert.Equal(t, selector.AwaitingInput, m.Selector().State())
	assert.Contains(t, m.View(), "no matching categories")
	assert.Contains(t, m.View(), "refine the query or skip")

	// Editing clears the warning.
	m, _ = update(t, m, tuitest.Key(tea.KeyBackspace))
	assert.NotContains(t, m.View(), "refine the query or skip")
}

func TestModel_SkipAndQuit(t *testing.T) {
	tests := []struct {
		name string
		want model.DecisionKind
		key  tea.KeyType
	}{
		{name: "ctrl+s skips", key: tea.KeyCtrlS, want: model.DecisionSkip},
		{name: "ctrl+q quits", key: tea.KeyCtrlQ, want: model.DecisionQuit},
		{name: "ctrl+c quits", key: tea.KeyCtrlC, want: model.DecisionQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t, "groc")
			m, cmd := update(t, m, tuitest.Key(tt.key))
			assert.True(t, tuitest.IsQuit(cmd))

			d, ok := m.Decision()
			require.True(t, ok)
			assert.Equal(t, tt.want, d.Kind)
		})
	}
}

func TestModel_SingleCandidateNeedsEnter(t *testing.T) {
	m := testModel(t, "groceries")
	require.Len(t, m.Selector().Matches(), 1)

	_, ok := m.Decision()
	assert.False(t, ok)
}

func TestModel_HelpToggle(t *testing.T) {
	m := testModel(t, "")
	assert.Contains(t, m.View(), "Ctrl+S")
	assert.NotContains(t, m.View(), "previous")

	m, _ = update(t, m, tuitest.Key(tea.KeyF1))
	assert.Contains(t, m.View(), "previous")
}

func TestModel_WindowResize(t *testing.T) {
	m := testModel(t, "")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Equal(t, 60, m.width)

	for _, line := range strings.Split(m.renderTransaction(), "\n") {
		assert.LessOrEqual(t, len([]rune(tuitest.StripANSI(line))), 60)
	}
}

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		msg   tea.KeyMsg
		name  string
		retry bool
	}{
		{name: "y retries", msg: tuitest.Runes("y"), retry: true},
		{name: "enter retries", msg: tuitest.Key(tea.KeyEnter), retry: true},
		{name: "n aborts", msg: tuitest.Runes("n"), retry: false},
		{name: "esc aborts", msg: tuitest.Key(tea.KeyEsc), retry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newConfirmModel(errors.New("GET /api/transactions: remote unavailable"), themes.Default)
			assert.Contains(t, m.View(), "remote unavailable")

			cm, cmd := tuitest.Drive(t, m, tt.msg)
			assert.True(t, tuitest.IsQuit(cmd))
			assert.True(t, cm.answered)
			assert.Equal(t, tt.retry, cm.retry)
		})
	}

	m := newConfirmModel(errors.New("boom"), themes.Default)
	cm, cmd := tuitest.Drive(t, m, tuitest.Runes("x"))
	assert.Nil(t, cmd)
	assert.False(t, cm.answered)
}
