// Package taxonomy holds the read-only, in-memory snapshot of the remote
// Group/Category tree that a classification session matches against.
package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/Veraticus/tidy-ledger/internal/ledger"
	"github.com/Veraticus/tidy-ledger/internal/model"
)

// Source fetches the raw taxonomy. *ledger.Client satisfies it.
type Source interface {
	GetTaxonomy(ctx context.Context) ([]ledger.TaxonomyGroup, error)
}

// Entry is a category together with its owning group.
type Entry struct {
	Group    model.Group
	Category model.Category
}

// Label renders the entry as "Group / Category".
func (e Entry) Label() string {
	return e.Group.Name + " / " + e.Category.Name
}

// GroupChoices is one group and the categories an operator may pick from it.
type GroupChoices struct {
	Categories []model.Category
	Group      model.Group
}

// Index is an immutable snapshot of the taxonomy. It is safe for concurrent reads.
type Index struct {
	byID   map[int]Entry
	groups []GroupChoices
	// pickable holds every non-sentinel category in taxonomy order.
	pickable []Entry
}

// Load fetches the taxonomy from src and builds an index from it.
func Load(ctx context.Context, src Source) (*Index, error) {
	groups, err := src.GetTaxonomy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	idx, err := Build(groups)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded taxonomy", "groups", len(idx.groups), "categories", len(idx.pickable))
	return idx, nil
}

// Build validates the response and indexes it in a single pass. A taxonomy
// that is structurally inconsistent is rejected as a whole.
func Build(groups []ledger.TaxonomyGroup) (*Index, error) {
	idx := &Index{
		byID:   make(map[int]Entry),
		groups: make([]GroupChoices, 0, len(groups)),
	}
	seenGroups := make(map[int]bool, len(groups))

	for gi, g := range groups {
		if g.GroupID <= 0 {
			return nil, malformed("group #%d has invalid id %d", gi, g.GroupID)
		}
		if seenGroups[g.GroupID] {
			return nil, malformed("duplicate group id %d", g.GroupID)
		}
		seenGroups[g.GroupID] = true

		name := strings.TrimSpace(g.GroupName)
		if name == "" {
			return nil, malformed("group %d has no name", g.GroupID)
		}
		if g.CategoryCount != nil && *g.CategoryCount != len(g.Categories) {
			return nil, malformed("group %d declares %d categories but lists %d",
				g.GroupID, *g.CategoryCount, len(g.Categories))
		}

		group := model.Group{ID: g.GroupID, Name: name}
		choices := GroupChoices{Group: group, Categories: []model.Category{}}

		for _, c := range g.Categories {
			if c.CategoryID <= 0 {
				return nil, malformed("group %d lists category with invalid id %d", g.GroupID, c.CategoryID)
			}
			if c.GroupID != nil && *c.GroupID != g.GroupID {
				return nil, malformed("category %d references group %d but is listed under group %d",
					c.CategoryID, *c.GroupID, g.GroupID)
			}
			if _, dup := idx.byID[c.CategoryID]; dup {
				return nil, malformed("duplicate category id %d", c.CategoryID)
			}
			catName := strings.TrimSpace(c.CategoryName)
			if catName == "" {
				return nil, malformed("category %d has no name", c.CategoryID)
			}

			cat := model.Category{ID: c.CategoryID, Name: catName, GroupID: g.GroupID}
			entry := Entry{Category: cat, Group: group}
			idx.byID[cat.ID] = entry

			if cat.IsUncategorized() {
				continue
			}
			choices.Categories = append(choices.Categories, cat)
			idx.pickable = append(idx.pickable, entry)
		}

		idx.groups = append(idx.groups, choices)
	}

	return idx, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: taxonomy: %s", common.ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// Lookup returns the entry for a category id, including the sentinel.
func (idx *Index) Lookup(categoryID int) (Entry, bool) {
	e, ok := idx.byID[categoryID]
	return e, ok
}

// Len is the number of pickable categories.
func (idx *Index) Len() int {
	return len(idx.pickable)
}

// Groups returns every group in taxonomy order with its pickable categories.
// Groups without categories are present with an empty list.
func (idx *Index) Groups() []GroupChoices {
	out := make([]GroupChoices, len(idx.groups))
	for i, g := range idx.groups {
		out[i] = GroupChoices{
			Group:      g.Group,
			Categories: append([]model.Category{}, g.Categories...),
		}
	}
	return out
}
