package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.renderResolved()
	}

	sections := []string{
		m.renderTransaction(),
		m.input.View(),
		m.renderCandidates(),
	}
	if m.status != "" {
		sections = append(sections, m.theme.StatusWarning.Render(m.status))
	}
	if m.showHelp {
		sections = append(sections, m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// renderTransaction renders the detail block of the transaction being classified.
func (m Model) renderTransaction() string {
	txn := m.sel.Transaction()

	amount := m.theme.Credit
	if txn.Amount.IsNegative() {
		amount = m.theme.Debit
	}

	rows := []string{
		m.theme.Title.Render(fmt.Sprintf("Transaction %d", m.position)) +
			"  " + m.theme.Subtitle.Render(fmt.Sprintf("#%d", txn.ID)),
		m.detailRow("Date", txn.Date.Format(model.DateLayout)),
		m.detailRow("Ledger", string(txn.Ledger)),
		m.theme.Label.Render("Amount") + amount.Render(txn.Amount.StringFixed(2)),
		m.detailRow("Description", txn.Description),
	}

	box := m.theme.RoundedBox
	if m.width > 4 {
		box = box.Width(m.width - 2)
	}
	return box.Render(strings.Join(rows, "\n"))
}

func (m Model) detailRow(label, value string) string {
	return m.theme.Label.Render(label) + m.theme.Normal.Render(value)
}

// renderCandidates renders the ranked candidate list with the highlight.
func (m Model) renderCandidates() string {
	matches := m.sel.Matches()
	if len(matches) == 0 {
		return m.theme.Subtitle.Render("  (no matching categories)")
	}

	highlighted := m.sel.Highlighted()
	lines := make([]string, len(matches))
	for i, match := range matches {
		line := fmt.Sprintf("%2d. %s", i+1, match.Label())
		if i == highlighted {
			lines[i] = m.theme.Selected.Render("▸ " + line)
			continue
		}
		lines[i] = m.theme.Candidate.Render("  " + line)
	}
	return strings.Join(lines, "\n")
}

// renderResolved is the line left in the scrollback once the picker exits.
func (m Model) renderResolved() string {
	txn := m.sel.Transaction()
	d, ok := m.sel.Decision()
	if !ok {
		return ""
	}

	summary := fmt.Sprintf("#%d %s %s", txn.ID, txn.Date.Format(model.DateLayout), txn.Description)
	switch d.Kind {
	case model.DecisionApply:
		return m.theme.Normal.Render(summary) + "  " + m.theme.StatusSuccess.Render("→ "+m.resolvedLabel()) + "\n"
	case model.DecisionSkip:
		return m.theme.Normal.Render(summary) + "  " + m.theme.Subtitle.Render("skipped") + "\n"
	default:
		return m.theme.Subtitle.Render("Quitting.") + "\n"
	}
}

func (m Model) resolvedLabel() string {
	d, _ := m.sel.Decision()
	for _, match := range m.sel.Matches() {
		if match.Category.ID == d.Category.ID {
			return match.Label()
		}
	}
	return d.Category.Name
}

// View renders the retry question.
func (m confirmModel) View() string {
	if m.answered {
		if m.retry {
			return m.theme.Subtitle.Render("Retrying: "+m.err.Error()) + "\n"
		}
		return m.theme.Subtitle.Render("Not retrying: "+m.err.Error()) + "\n"
	}
	return m.theme.StatusError.Render("Request failed: ") + m.theme.Normal.Render(m.err.Error()) + "\n" +
		m.theme.Bold.Render("Retry? ") + m.theme.Subtitle.Render("[y/n]") + "\n"
}
