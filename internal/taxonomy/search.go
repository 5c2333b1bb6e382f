package taxonomy

import (
	"sort"
	"strings"
)

// Match tiers, best first.
const (
	ScoreExact       = 4
	ScorePrefix      = 3
	ScoreSubstring   = 2
	ScoreSubsequence = 1
)

// Match is a ranked search result.
type Match struct {
	Entry
	Score int
}

type candidate struct {
	Match
	position int
}

// Search ranks pickable categories against query. Results are ordered by
// score, then by shorter category name, then by taxonomy position, so the
// same query over the same snapshot always yields the same list. An empty
// query returns every category in taxonomy order. limit <= 0 means no cap.
func (idx *Index) Search(query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))

	scored := make([]candidate, 0, len(idx.pickable))
	for pos, e := range idx.pickable {
		s := score(q, e)
		if s < 0 {
			continue
		}
		scored = append(scored, candidate{Match: Match{Entry: e, Score: s}, position: pos})
	}

	if q != "" {
		sort.SliceStable(scored, func(i, j int) bool {
			a, b := scored[i], scored[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			la, lb := len([]rune(a.Category.Name)), len([]rune(b.Category.Name))
			if la != lb {
				return la < lb
			}
			return a.position < b.position
		})
	}

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]Match, len(scored))
	for i, c := range scored {
		out[i] = c.Match
	}
	return out
}

// score returns the match tier for q (already lowercased) or -1 for no match.
func score(q string, e Entry) int {
	if q == "" {
		return 0
	}

	name := strings.ToLower(e.Category.Name)
	label := strings.ToLower(e.Label())
	switch {
	case name == q || label == q:
		return ScoreExact
	case strings.HasPrefix(name, q):
		return ScorePrefix
	case strings.Contains(name, q):
		return ScoreSubstring
	case isSubsequence(q, name), strings.Contains(label, q), isSubsequence(q, label):
		return ScoreSubsequence
	default:
		return -1
	}
}

// isSubsequence reports whether every rune of q appears in s in order.
func isSubsequence(q, s string) bool {
	qr := []rune(q)
	i := 0
	for _, r := range s {
		if i == len(qr) {
			break
		}
		if r == qr[i] {
			i++
		}
	}
	return i == len(qr)
}
