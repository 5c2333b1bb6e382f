// Package cursor pages through one ledger month and yields only the
// transactions that still carry the uncategorized sentinel.
package cursor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tidy-ledger/internal/ledger"
	"github.com/Veraticus/tidy-ledger/internal/model"
)

// PageFetcher lists one page of transactions. *ledger.Client satisfies it.
type PageFetcher interface {
	ListTransactions(ctx context.Context, q ledger.ListQuery) ([]model.Transaction, error)
}

// Cursor is a forward-only iterator over the unclassified transactions of a
// ledger month. Pages are requested lazily, one at a time, in the remote
// system's date-descending order, with an offset that only advances after a
// page has been received. It is not safe for concurrent use.
type Cursor struct {
	fetcher  PageFetcher
	ledger   model.Ledger
	window   model.MonthWindow
	buffer   []model.Transaction
	pageSize int
	offset   int
	pages    int
	done     bool
}

// New creates a cursor. pageSize must be positive.
func New(fetcher PageFetcher, l model.Ledger, window model.MonthWindow, pageSize int) *Cursor {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Cursor{
		fetcher:  fetcher,
		ledger:   l,
		window:   window,
		pageSize: pageSize,
	}
}

// Next returns the next unclassified transaction, or false once the month is
// exhausted. On a fetch error nothing advances: calling Next again requests
// the same page.
func (c *Cursor) Next(ctx context.Context) (model.Transaction, bool, error) {
	for len(c.buffer) == 0 {
		if c.done {
			return model.Transaction{}, false, nil
		}
		if err := c.fetch(ctx); err != nil {
			return model.Transaction{}, false, err
		}
	}

	txn := c.buffer[0]
	c.buffer = c.buffer[1:]
	return txn, true, nil
}

func (c *Cursor) fetch(ctx context.Context) error {
	q := ledger.ListQuery{
		Account: c.ledger,
		Start:   c.window.Start,
		End:     c.window.End,
		SortBy:  ledger.SortByDate,
		SortDir: ledger.SortDirDesc,
		Limit:   c.pageSize,
		Offset:  c.offset,
	}

	page, err := c.fetcher.ListTransactions(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions at offset %d: %w", c.offset, err)
	}
	c.pages++

	kept := 0
	for _, txn := range page {
		// The remote end bound is inclusive; the window's is not.
		if !txn.IsUnclassified() || !c.window.Contains(txn.Date) {
			continue
		}
		c.buffer = append(c.buffer, txn)
		kept++
	}

	slog.Debug("Fetched transaction page",
		"ledger", c.ledger,
		"offset", c.offset,
		"received", len(page),
		"unclassified", kept)

	c.offset += c.pageSize
	if len(page) < c.pageSize {
		c.done = true
	}
	return nil
}

// Offset is the offset of the next page to request.
func (c *Cursor) Offset() int {
	return c.offset
}

// PagesFetched counts successful page requests.
func (c *Cursor) PagesFetched() int {
	return c.pages
}

// Exhausted reports whether the final page has been received and fully consumed.
func (c *Cursor) Exhausted() bool {
	return c.done && len(c.buffer) == 0
}
