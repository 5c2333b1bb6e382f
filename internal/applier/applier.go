// Package applier turns an operator's Apply decision into exactly one
// category mutation against the ledger API.
package applier

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/tidy-ledger/internal/ledger"
)

// Assigner sends category mutations. *ledger.Client satisfies it.
type Assigner interface {
	AssignCategory(ctx context.Context, txnID int64, categoryID int) (ledger.Assignment, error)
	Describe(req ledger.Request) string
}

// Result is the outcome of a successful Apply.
type Result struct {
	Message       string
	TransactionID int64
	CategoryID    int
	// Created is false when the transaction already had the category.
	Created bool
	DryRun  bool
}

// Option configures an Applier.
type Option func(*Applier)

// WithDryRun renders mutations to w instead of sending them.
func WithDryRun(w io.Writer) Option {
	return func(a *Applier) {
		a.dryRun = true
		a.out = w
	}
}

// Applier performs category assignments. There is no hidden retry: each
// Apply issues at most one request, and the caller decides whether to retry.
type Applier struct {
	assigner Assigner
	out      io.Writer
	dryRun   bool
}

// New creates an applier around assigner.
func New(assigner Assigner, opts ...Option) *Applier {
	a := &Applier{assigner: assigner}
	for _, opt := range opts {
		opt(a)
	}
	if a.out == nil {
		a.out = io.Discard
	}
	return a
}

// DryRun reports whether mutations are only rendered.
func (a *Applier) DryRun() bool {
	return a.dryRun
}

// Describe renders the mutation for txnID as the equivalent curl command.
func (a *Applier) Describe(txnID int64, categoryID int) string {
	return a.assigner.Describe(ledger.AssignCategoryRequest(txnID, categoryID))
}

// Apply assigns categoryID to txnID. Errors wrap common.ErrRemoteRejected
// when the remote system refused the mutation and common.ErrRemoteUnavailable
// when it could not be reached.
func (a *Applier) Apply(ctx context.Context, txnID int64, categoryID int) (Result, error) {
	if a.dryRun {
		if _, err := fmt.Fprintf(a.out, "%s  # dry run, not sent\n", a.Describe(txnID, categoryID)); err != nil {
			return Result{}, fmt.Errorf("failed to render dry run: %w", err)
		}
		return Result{
			TransactionID: txnID,
			CategoryID:    categoryID,
			Message:       "dry run",
			DryRun:        true,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ack, err := a.assigner.AssignCategory(ctx, txnID, categoryID)
	if err != nil {
		slog.Debug("Category assignment failed",
			"transaction_id", txnID,
			"category_id", categoryID,
			"error", err)
		return Result{}, fmt.Errorf("failed to assign category %d to transaction %d: %w", categoryID, txnID, err)
	}

	slog.Info("Assigned category",
		"transaction_id", txnID,
		"category_id", categoryID,
		"created", ack.Created)

	return Result{
		TransactionID: ack.TransactionID,
		CategoryID:    ack.CategoryID,
		Created:       ack.Created,
		Message:       ack.Message,
	}, nil
}
