package ledger

import (
	"strconv"
	"time"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// Sort parameters the transactions endpoint is always queried with.
const (
	SortByDate  = "date"
	SortDirDesc = "desc"
)

// TaxonomyGroup is one entry of the GET /api/taxonomy response.
type TaxonomyGroup struct {
	CategoryCount *int               `json:"category_count"`
	GroupName     string             `json:"group_name"`
	Categories    []TaxonomyCategory `json:"categories"`
	GroupID       int                `json:"group_id"`
}

// TaxonomyCategory is a category nested under its group.
// GroupID is optional on the wire; when present it must match the enclosing group.
type TaxonomyCategory struct {
	GroupID      *int   `json:"group_id,omitempty"`
	CategoryName string `json:"category_name"`
	CategoryID   int    `json:"category_id"`
}

// ListQuery selects one page of transactions.
type ListQuery struct {
	Start   time.Time
	End     time.Time
	Account model.Ledger
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

func (q ListQuery) params() []Param {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortByDate
	}
	sortDir := q.SortDir
	if sortDir == "" {
		sortDir = SortDirDesc
	}

	return []Param{
		{Key: "account", Value: string(q.Account)},
		{Key: "start", Value: q.Start.Format(model.DateLayout)},
		{Key: "end", Value: q.End.Format(model.DateLayout)},
		{Key: "sort_by", Value: sortBy},
		{Key: "sort_dir", Value: sortDir},
		{Key: "limit", Value: strconv.Itoa(q.Limit)},
		{Key: "offset", Value: strconv.Itoa(q.Offset)},
	}
}

type transactionRow struct {
	GroupID     *int            `json:"group_id"`
	CategoryID  *int            `json:"category_id"`
	Account     string          `json:"account"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ID          int64           `json:"id"`
}

type assignBody struct {
	CategoryID int `json:"category_id"`
}

type assignResponse struct {
	Message string `json:"message"`
	Data    struct {
		TxnID      int64 `json:"txn_id"`
		CategoryID int   `json:"category_id"`
	} `json:"data"`
	OK      *bool `json:"ok"`
	Created bool  `json:"created"`
}

// Assignment is the remote system's acknowledgement of a category change.
type Assignment struct {
	Message       string
	TransactionID int64
	CategoryID    int
	Created       bool
}
