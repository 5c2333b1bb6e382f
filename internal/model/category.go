package model

// Sentinel taxonomy identifiers reserved by the ledger API for transactions
// that have not been classified yet.
const (
	UncategorizedGroupID    = 1
	UncategorizedCategoryID = 1
)

// Group is a top-level taxonomy node. Groups are read-only reference data.
type Group struct {
	Name string
	ID   int
}

// Category is a pickable classification. Each category belongs to exactly one group.
type Category struct {
	Name    string
	ID      int
	GroupID int
}

// IsUncategorized reports whether the category is the "uncategorized" sentinel.
func (c Category) IsUncategorized() bool {
	return c.ID == UncategorizedCategoryID
}
