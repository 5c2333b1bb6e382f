package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/selector"
	"github.com/Veraticus/tidy-ledger/internal/session"
	"github.com/Veraticus/tidy-ledger/internal/taxonomy"
	tea "github.com/charmbracelet/bubbletea"
)

// Prompter implements session.Prompter with one inline bubbletea program per
// question. Programs render without the alternate screen so audit lines and
// notifications stay in the scrollback between transactions.
type Prompter struct {
	config    Config
	position  int
	currentID int64
}

// Ensure we implement the interface.
var _ session.Prompter = (*Prompter)(nil)

// New creates a TUI prompter.
func New(opts ...Option) *Prompter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Prompter{config: cfg}
}

// Resolve runs the category picker for txn.
func (p *Prompter) Resolve(ctx context.Context, txn model.Transaction, index *taxonomy.Index) (model.Decision, error) {
	if p.position == 0 || txn.ID != p.currentID {
		p.position++
		p.currentID = txn.ID
	}
	sel := selector.New(index, txn, p.config.Limit)

	final, err := p.run(ctx, newModel(sel, p.config, p.position))
	if err != nil {
		return model.Decision{}, err
	}

	m, ok := final.(Model)
	if !ok {
		return model.Decision{}, fmt.Errorf("unexpected TUI model %T", final)
	}
	if d, ok := m.Decision(); ok {
		return d, nil
	}
	return model.QuitDecision(), nil
}

// ConfirmRetry asks whether the failed remote call should be attempted again.
func (p *Prompter) ConfirmRetry(ctx context.Context, err error) (bool, error) {
	final, runErr := p.run(ctx, newConfirmModel(err, p.config.Theme))
	if runErr != nil {
		return false, runErr
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected TUI model %T", final)
	}
	return m.retry, nil
}

// Notify prints a status line above the next prompt.
func (p *Prompter) Notify(level session.Level, msg string) {
	style := p.config.Theme.StatusInfo
	switch level {
	case session.LevelSuccess:
		style = p.config.Theme.StatusSuccess
	case session.LevelWarning:
		style = p.config.Theme.StatusWarning
	}
	_, _ = fmt.Fprintln(p.config.Output, style.Render(msg))
}

// Position returns how many distinct transactions have been shown.
func (p *Prompter) Position() int {
	return p.position
}

func (p *Prompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	program := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithInput(p.config.Input),
		tea.WithOutput(p.config.Output),
	)

	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, tea.ErrInterrupted) || errors.Is(err, tea.ErrProgramKilled) {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}
	return final, nil
}
