// Package session drives a classification run: it loads the taxonomy, walks
// the unclassified transactions of one ledger month, asks the operator for a
// decision on each, and applies it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tidy-ledger/internal/applier"
	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/Veraticus/tidy-ledger/internal/cursor"
	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/taxonomy"
)

// Prompter is the operator side of a session.
type Prompter interface {
	// Resolve blocks until the operator decides what to do with txn.
	Resolve(ctx context.Context, txn model.Transaction, index *taxonomy.Index) (model.Decision, error)
	// ConfirmRetry asks whether a failed remote call should be attempted again.
	ConfirmRetry(ctx context.Context, err error) (bool, error)
	// Notify shows a one-line status message.
	Notify(level Level, msg string)
}

// Level grades a status message.
type Level int

// Status message levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
)

// Applier performs category mutations. *applier.Applier satisfies it.
type Applier interface {
	Apply(ctx context.Context, txnID int64, categoryID int) (applier.Result, error)
}

// Config wires a Controller.
type Config struct {
	Taxonomy taxonomy.Source
	Pages    cursor.PageFetcher
	Applier  Applier
	Prompter Prompter
	Window   model.MonthWindow
	Ledger   model.Ledger
	PageSize int
}

// State is a snapshot of a run.
type State struct {
	Window  model.MonthWindow
	Ledger  model.Ledger
	Current int64
	Offset  int
	Pages   int
	Stats   model.Stats
	Quit    bool
	Done    bool
}

// Controller runs one session. It is single-use and not safe for concurrent use.
type Controller struct {
	cfg    Config
	cursor *cursor.Cursor
	index  *taxonomy.Index
	state  State
}

// New validates cfg and creates a controller.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Taxonomy == nil:
		return nil, fmt.Errorf("%w: taxonomy source is required", common.ErrInvalidConfig)
	case cfg.Pages == nil:
		return nil, fmt.Errorf("%w: transaction source is required", common.ErrInvalidConfig)
	case cfg.Applier == nil:
		return nil, fmt.Errorf("%w: applier is required", common.ErrInvalidConfig)
	case cfg.Prompter == nil:
		return nil, fmt.Errorf("%w: prompter is required", common.ErrInvalidConfig)
	case cfg.Ledger == "":
		return nil, fmt.Errorf("%w: ledger is required", common.ErrInvalidConfig)
	case cfg.Window.Start.IsZero() || !cfg.Window.End.After(cfg.Window.Start):
		return nil, fmt.Errorf("%w: month window is required", common.ErrInvalidConfig)
	case cfg.PageSize < 1:
		return nil, fmt.Errorf("%w: page size must be positive, got %d", common.ErrInvalidConfig, cfg.PageSize)
	}

	return &Controller{
		cfg:    cfg,
		cursor: cursor.New(cfg.Pages, cfg.Ledger, cfg.Window, cfg.PageSize),
		state: State{
			Ledger: cfg.Ledger,
			Window: cfg.Window,
		},
	}, nil
}

// State returns a snapshot of the run so far.
func (c *Controller) State() State {
	s := c.state
	s.Offset = c.cursor.Offset()
	s.Pages = c.cursor.PagesFetched()
	return s
}

// Run classifies until the month is exhausted or the operator quits, and
// returns the counters accumulated either way. A taxonomy load failure is
// fatal; remote failures later in the run are offered to the operator for
// retry before they abort it.
func (c *Controller) Run(ctx context.Context) (model.Stats, error) {
	idx, err := taxonomy.Load(ctx, c.cfg.Taxonomy)
	if err != nil {
		return c.state.Stats, err
	}
	c.index = idx

	slog.Info("Starting classification session",
		"ledger", c.cfg.Ledger,
		"month", c.cfg.Window.Label(),
		"page_size", c.cfg.PageSize)

	for {
		txn, ok, err := c.next(ctx)
		if err != nil {
			return c.state.Stats, err
		}
		if !ok {
			c.state.Done = true
			break
		}

		c.state.Current = txn.ID
		c.state.Stats.Seen++

		quit, err := c.classify(ctx, txn)
		c.state.Current = 0
		if err != nil {
			return c.state.Stats, err
		}
		if quit {
			c.state.Quit = true
			break
		}
	}

	slog.Info("Classification session finished",
		"seen", c.state.Stats.Seen,
		"applied", c.state.Stats.Applied,
		"skipped", c.state.Stats.Skipped,
		"rejected", c.state.Stats.Rejected,
		"quit", c.state.Quit)
	return c.state.Stats, nil
}

// next pulls the next transaction, offering the operator a retry at the same
// offset when a page fetch fails.
func (c *Controller) next(ctx context.Context) (model.Transaction, bool, error) {
	for {
		txn, ok, err := c.cursor.Next(ctx)
		if err == nil {
			return txn, ok, nil
		}
		if !common.IsRetryable(err) {
			return model.Transaction{}, false, err
		}

		slog.Warn("Page fetch failed", "offset", c.cursor.Offset(), "error", err)
		retry, promptErr := c.cfg.Prompter.ConfirmRetry(ctx, err)
		if promptErr != nil {
			return model.Transaction{}, false, promptErr
		}
		if !retry {
			return model.Transaction{}, false, err
		}
	}
}

// classify resolves one transaction. It reports true when the operator quit.
func (c *Controller) classify(ctx context.Context, txn model.Transaction) (bool, error) {
	for {
		decision, err := c.cfg.Prompter.Resolve(ctx, txn, c.index)
		if err != nil {
			return false, err
		}

		switch decision.Kind {
		case model.DecisionQuit:
			return true, nil
		case model.DecisionSkip:
			c.state.Stats.Skipped++
			slog.Debug("Skipped transaction", "transaction_id", txn.ID)
			return false, nil
		case model.DecisionApply:
		default:
			return false, fmt.Errorf("unknown decision %q", decision.Kind)
		}

		retry, err := c.apply(ctx, txn, decision.Category)
		if err != nil || !retry {
			return false, err
		}
	}
}

// apply sends the mutation. It reports true when the operator asked to
// decide on the same transaction again after a failure.
func (c *Controller) apply(ctx context.Context, txn model.Transaction, cat model.Category) (bool, error) {
	label := cat.Name
	if entry, ok := c.index.Lookup(cat.ID); ok {
		label = entry.Label()
	}

	res, err := c.cfg.Applier.Apply(ctx, txn.ID, cat.ID)
	switch {
	case err == nil:
		c.state.Stats.Applied++
		switch {
		case res.DryRun:
			c.cfg.Prompter.Notify(LevelInfo, fmt.Sprintf("Would assign %s to #%d (dry run)", label, txn.ID))
		case res.Created:
			c.cfg.Prompter.Notify(LevelSuccess, fmt.Sprintf("Assigned %s to #%d", label, txn.ID))
		default:
			c.cfg.Prompter.Notify(LevelInfo, fmt.Sprintf("#%d already in %s", txn.ID, label))
		}
		return false, nil

	case errors.Is(err, common.ErrRemoteRejected):
		c.state.Stats.Skipped++
		c.state.Stats.Rejected++
		slog.Warn("Category assignment rejected", "transaction_id", txn.ID, "category_id", cat.ID, "error", err)
		c.cfg.Prompter.Notify(LevelWarning, fmt.Sprintf("Rejected: %s was not assigned to #%d, counted as skipped", label, txn.ID))
		return false, nil

	case common.IsRetryable(err), errors.Is(err, common.ErrMalformedResponse):
		// Mutations are idempotent; re-prompting may replay the same one.
		retry, promptErr := c.cfg.Prompter.ConfirmRetry(ctx, err)
		if promptErr != nil {
			return false, promptErr
		}
		if !retry {
			return false, err
		}
		return true, nil

	default:
		return false, err
	}
}
