// Package model defines the core domain models used throughout the application.
package model

// DecisionKind is the terminal state an operator resolves a transaction into.
type DecisionKind string

// Decision kinds.
const (
	DecisionApply DecisionKind = "APPLY"
	DecisionSkip  DecisionKind = "SKIP"
	DecisionQuit  DecisionKind = "QUIT"
)

// Decision is the operator's resolution for a single transaction.
// Category is only meaningful for DecisionApply.
type Decision struct {
	Kind     DecisionKind
	Category Category
}

// ApplyDecision returns a decision assigning the given category.
func ApplyDecision(c Category) Decision {
	return Decision{Kind: DecisionApply, Category: c}
}

// SkipDecision returns a skip decision.
func SkipDecision() Decision {
	return Decision{Kind: DecisionSkip}
}

// QuitDecision returns a quit decision.
func QuitDecision() Decision {
	return Decision{Kind: DecisionQuit}
}

// Stats summarizes a classification run. Rejected mutations are also counted as skipped.
type Stats struct {
	Seen     int
	Applied  int
	Skipped  int
	Rejected int
}
