package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger identifies which account a transaction was booked against.
type Ledger string

const (
	// LedgerChecking is the checking account ledger.
	LedgerChecking Ledger = "checking"
	// LedgerCredit is the credit card ledger.
	LedgerCredit Ledger = "credit"
)

// Ledgers lists every ledger the API accepts.
var Ledgers = []Ledger{LedgerChecking, LedgerCredit}

// ParseLedger normalizes user input into a Ledger.
func ParseLedger(raw string) (Ledger, error) {
	l := Ledger(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Ledgers {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown ledger %q (use checking or credit)", raw)
}

// Transaction is a ledger entry owned by the remote system.
type Transaction struct {
	Date        time.Time
	Amount      decimal.Decimal
	Ledger      Ledger
	Description string
	ID          int64
	GroupID     int
	CategoryID  int
}

// IsUnclassified reports whether the transaction still carries the sentinel category.
func (t Transaction) IsUnclassified() bool {
	return t.CategoryID == UncategorizedCategoryID
}
