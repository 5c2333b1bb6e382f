package tui

import (
	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/selector"
	"github.com/Veraticus/tidy-ledger/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the category picker for a single transaction. It wraps a
// selector.Selector and exits the program once the selector resolves.
type Model struct {
	theme    themes.Theme
	sel      *selector.Selector
	help     help.Model
	input    textinput.Model
	status   string
	keymap   KeyMap
	position int
	width    int
	showHelp bool
	quitting bool
}

// newModel creates the picker. position is the 1-based count of transactions
// presented so far in the session.
func newModel(sel *selector.Selector, cfg Config, position int) Model {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "type to filter categories"
	input.CharLimit = 120
	input.SetValue(sel.Query())
	input.CursorEnd()
	input.Focus()
	// SetValue truncates to CharLimit; rank on what the operator sees.
	if q := input.Value(); q != sel.Query() {
		sel.SetQuery(q)
	}

	h := help.New()
	h.Styles.ShortKey = cfg.Theme.Bold
	h.Styles.ShortDesc = cfg.Theme.Subtitle

	return Model{
		theme:    cfg.Theme,
		sel:      sel,
		help:     h,
		input:    input,
		keymap:   DefaultKeyMap(),
		position: position,
		width:    cfg.Width,
		showHelp: cfg.ShowHelp,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.sel.Quit()
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keymap.Skip):
			m.sel.Skip()
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keymap.Confirm):
			if err := m.sel.Confirm(); err != nil {
				m.status = "No category matches; refine the query or skip."
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keymap.Up):
			m.sel.Prev()
			return m, nil

		case key.Matches(msg, m.keymap.Down):
			m.sel.Next()
			return m, nil

		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.sel.Query() {
		m.sel.SetQuery(q)
		m.status = ""
	}
	return m, cmd
}

// Decision returns the operator's resolution, or false if the program ended
// without one.
func (m Model) Decision() (model.Decision, bool) {
	return m.sel.Decision()
}

// Selector exposes the underlying state machine for tests.
func (m Model) Selector() *selector.Selector {
	return m.sel
}

// confirmModel asks whether a failed remote call should be retried.
type confirmModel struct {
	theme    themes.Theme
	err      error
	answered bool
	retry    bool
}

func newConfirmModel(err error, theme themes.Theme) confirmModel {
	return confirmModel{err: err, theme: theme}
}

// Init initializes the model.
func (m confirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmKeys.Yes):
		m.answered, m.retry = true, true
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.No):
		m.answered, m.retry = true, false
		return m, tea.Quit
	}
	return m, nil
}
