package testutil

import (
	"time"

	"github.com/Veraticus/tidy-ledger/internal/ledger"
	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// TaxonomyBuilder assembles a taxonomy response the way the ledger API shapes it.
//
// Example:
//
//	groups := testutil.NewTaxonomy().
//		Group(1, "Unclassified", testutil.Cat(1, "Uncategorized")).
//		Group(2, "Food", testutil.Cat(42, "Groceries")).
//		Build()
type TaxonomyBuilder struct {
	groups []ledger.TaxonomyGroup
}

// NewTaxonomy starts an empty taxonomy.
func NewTaxonomy() *TaxonomyBuilder {
	return &TaxonomyBuilder{}
}

// Cat builds a category entry.
func Cat(id int, name string) ledger.TaxonomyCategory {
	return ledger.TaxonomyCategory{CategoryID: id, CategoryName: name}
}

// Group appends a group with its categories and a matching category_count.
func (b *TaxonomyBuilder) Group(id int, name string, cats ...ledger.TaxonomyCategory) *TaxonomyBuilder {
	count := len(cats)
	if cats == nil {
		cats = []ledger.TaxonomyCategory{}
	}
	b.groups = append(b.groups, ledger.TaxonomyGroup{
		GroupID:       id,
		GroupName:     name,
		CategoryCount: &count,
		Categories:    cats,
	})
	return b
}

// Build returns the groups in insertion order.
func (b *TaxonomyBuilder) Build() []ledger.TaxonomyGroup {
	out := make([]ledger.TaxonomyGroup, len(b.groups))
	copy(out, b.groups)
	return out
}

// DefaultTaxonomy is a small taxonomy sorted the way the API sorts it:
// groups by name, categories by name within each group.
func DefaultTaxonomy() []ledger.TaxonomyGroup {
	return NewTaxonomy().
		Group(3, "Food", Cat(40, "Coffee Shops"), Cat(41, "Dining Out"), Cat(42, "Groceries")).
		Group(4, "Housing", Cat(50, "Rent"), Cat(51, "Utilities")).
		Group(6, "Savings").
		Group(5, "Transport", Cat(60, "Fuel"), Cat(61, "Parking"), Cat(62, "Transit")).
		Group(1, "Unclassified", Cat(2, "Deleted Category"), Cat(1, "Uncategorized")).
		Build()
}

// Txn builds a transaction on date (YYYY-MM-DD). It panics on a malformed date.
func Txn(id int64, l model.Ledger, date, description, amount string, categoryID int) model.Transaction {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		panic(err)
	}
	groupID := 0
	if categoryID == model.UncategorizedCategoryID {
		groupID = model.UncategorizedGroupID
	}
	return model.Transaction{
		ID:          id,
		Ledger:      l,
		Date:        d,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		GroupID:     groupID,
		CategoryID:  categoryID,
	}
}

// Unclassified builds a transaction still carrying the sentinel category.
func Unclassified(id int64, l model.Ledger, date, description, amount string) model.Transaction {
	return Txn(id, l, date, description, amount, model.UncategorizedCategoryID)
}
