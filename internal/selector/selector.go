// Package selector implements the per-transaction category picker: a small
// state machine that turns operator input into exactly one Decision.
package selector

import (
	"errors"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/taxonomy"
)

// ErrNoCandidates is returned by Confirm when the current query matches nothing.
var ErrNoCandidates = errors.New("no matching categories")

// DefaultLimit caps how many candidates are shown for a query.
const DefaultLimit = 10

// State is where the selector is in its lifecycle.
type State int

// Selector states. Every state other than AwaitingInput is terminal.
const (
	AwaitingInput State = iota
	Applied
	Skipped
	Quit
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting input"
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Searcher ranks categories for a query. *taxonomy.Index satisfies it.
type Searcher interface {
	Search(query string, limit int) []taxonomy.Match
}

// Selector holds the query, ranked candidates and highlight for one transaction.
// It is not safe for concurrent use.
type Selector struct {
	index     Searcher
	txn       model.Transaction
	query     string
	matches   []taxonomy.Match
	decision  model.Decision
	limit     int
	highlight int
	state     State
}

// New starts a selector for txn with the query seeded from its description.
func New(index Searcher, txn model.Transaction, limit int) *Selector {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Selector{
		index: index,
		txn:   txn,
		limit: limit,
	}
	s.search(txn.Description)
	return s
}

func (s *Selector) search(q string) {
	s.query = q
	s.matches = s.index.Search(q, s.limit)
	s.highlight = 0
}

// SetQuery replaces the query, re-ranks, and moves the highlight to the top candidate.
func (s *Selector) SetQuery(q string) {
	if s.resolved() {
		return
	}
	s.search(q)
}

// Next moves the highlight down one candidate, stopping at the last.
func (s *Selector) Next() {
	if s.resolved() || s.highlight >= len(s.matches)-1 {
		return
	}
	s.highlight++
}

// Prev moves the highlight up one candidate, stopping at the first.
func (s *Selector) Prev() {
	if s.resolved() || s.highlight == 0 {
		return
	}
	s.highlight--
}

// Select highlights the n-th candidate (1-based). It reports whether n was in range.
func (s *Selector) Select(n int) bool {
	if s.resolved() || n < 1 || n > len(s.matches) {
		return false
	}
	s.highlight = n - 1
	return true
}

// Confirm applies the highlighted candidate.
func (s *Selector) Confirm() error {
	if s.resolved() {
		return nil
	}
	if len(s.matches) == 0 {
		return ErrNoCandidates
	}
	s.decision = model.ApplyDecision(s.matches[s.highlight].Category)
	s.state = Applied
	return nil
}

// Skip leaves the transaction unclassified.
func (s *Selector) Skip() {
	if s.resolved() {
		return
	}
	s.decision = model.SkipDecision()
	s.state = Skipped
}

// Quit ends the session without touching the transaction.
func (s *Selector) Quit() {
	if s.resolved() {
		return
	}
	s.decision = model.QuitDecision()
	s.state = Quit
}

func (s *Selector) resolved() bool {
	return s.state != AwaitingInput
}

// State returns the current state.
func (s *Selector) State() State {
	return s.state
}

// Decision returns the resolution, or false while still awaiting input.
func (s *Selector) Decision() (model.Decision, bool) {
	if !s.resolved() {
		return model.Decision{}, false
	}
	return s.decision, true
}

// Transaction returns the transaction being classified.
func (s *Selector) Transaction() model.Transaction {
	return s.txn
}

// Query returns the current query text.
func (s *Selector) Query() string {
	return s.query
}

// Matches returns the ranked candidates for the current query.
func (s *Selector) Matches() []taxonomy.Match {
	return s.matches
}

// Highlighted returns the index of the highlighted candidate, or -1 if there are none.
func (s *Selector) Highlighted() int {
	if len(s.matches) == 0 {
		return -1
	}
	return s.highlight
}
