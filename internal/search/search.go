// Package search implements symbol search: a fuzzy matcher over
// serialized names with prefix and camelCase-hump bonuses, and a
// full-text substring index over serialized and qualified names. Both are rebuilt wholesale from a fresh
// internal/store.Store.AllNodes snapshot after each indexing pass rather
// than maintained incrementally: the indexes are a derived, disposable
// view over the graph, not persisted state of their own.
package search

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/codestory/codestory/internal/graph"
)

// Reader supplies the full node snapshot search indexes itself from.
type Reader interface {
	AllNodes(ctx context.Context) ([]*graph.Node, error)
}

// Hit is one scored match.
type Hit struct {
	NodeID graph.NodeID
	Score  float64
}

// FuzzyCap and FullTextCap are the default result caps a caller's
// internal/config.Config can override.
const (
	FuzzyCap    = 20
	FullTextCap = 50
)

// Index holds both search structures over one graph snapshot.
type Index struct {
	nodes []*graph.Node
}

// Build takes a full snapshot from r and prepares it for querying. The
// returned Index is immutable; a fresh one is built after every
// indexing pass.
func Build(ctx context.Context, r Reader) (*Index, error) {
	nodes, err := r.AllNodes(ctx)
	if err != nil {
		return nil, err
	}
	return &Index{nodes: nodes}, nil
}

// Fuzzy scores every node's SerializedName against query using a
// prefix-match bonus and a camelCase/snake_case "hump" bonus — a query
// that matches at a word boundary inside the name ranks above one that
// only matches as a contiguous substring elsewhere. Subsequence matches
// where query's characters appear in order, not necessarily contiguous,
// are also scored, below any substring match. Returns at most cap hits
// (<=0 uses FuzzyCap), ordered by descending score then NodeID.
func (idx *Index) Fuzzy(query string, resultCap int) []Hit {
	if resultCap <= 0 {
		resultCap = FuzzyCap
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var hits []Hit
	for _, n := range idx.nodes {
		name := n.SerializedName
		if name == "" {
			continue
		}
		score, ok := fuzzyScore(q, name)
		if !ok {
			continue
		}
		hits = append(hits, Hit{NodeID: n.ID, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].NodeID < hits[j].NodeID
	})
	if len(hits) > resultCap {
		hits = hits[:resultCap]
	}
	return hits
}

// fuzzyScore scores query (already lowercased) against name. Returns
// ok=false if query's characters don't even appear as a subsequence.
func fuzzyScore(q, name string) (float64, bool) {
	lower := strings.ToLower(name)

	if lower == q {
		return 100, true
	}
	if strings.HasPrefix(lower, q) {
		return 80 + humpBonus(name, 0), true
	}
	if idx := strings.Index(lower, q); idx >= 0 {
		return 50 + humpBonus(name, idx), true
	}
	if subsequenceScore, ok := subsequence(q, lower); ok {
		return 10 + subsequenceScore, true
	}
	return 0, false
}

// humpBonus rewards a match that begins at a word boundary: start of
// string, after an underscore, or at an uppercase letter starting a new
// camelCase hump.
func humpBonus(name string, at int) float64 {
	if at == 0 {
		return 10
	}
	runes := []rune(name)
	if at >= len(runes) {
		return 0
	}
	prev := runes[at-1]
	cur := runes[at]
	if prev == '_' || prev == '-' {
		return 8
	}
	if unicode.IsUpper(cur) && !unicode.IsUpper(prev) {
		return 8
	}
	return 0
}

// subsequence reports whether every rune of q appears in name in order,
// awarding a small score that rewards tighter clustering of the
// matched characters (closer together scores higher).
func subsequence(q, name string) (float64, bool) {
	qi := 0
	firstMatch, lastMatch := -1, -1
	for i, r := range name {
		if qi >= len(q) {
			break
		}
		if rune(q[qi]) == r {
			if firstMatch < 0 {
				firstMatch = i
			}
			lastMatch = i
			qi++
		}
	}
	if qi < len(q) {
		return 0, false
	}
	span := lastMatch - firstMatch + 1
	if span <= 0 {
		span = 1
	}
	return float64(len(q)) / float64(span) * 5, true
}

// FullText performs a case-insensitive substring search over both
// SerializedName and QualifiedName, returning at most cap hits (<=0
// uses FullTextCap) ordered by NodeID for determinism, since substring
// matching has no natural score to rank by.
func (idx *Index) FullText(query string, resultCap int) []Hit {
	if resultCap <= 0 {
		resultCap = FullTextCap
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var hits []Hit
	for _, n := range idx.nodes {
		if strings.Contains(strings.ToLower(n.SerializedName), q) ||
			strings.Contains(strings.ToLower(n.QualifiedName), q) {
			hits = append(hits, Hit{NodeID: n.ID, Score: 1})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].NodeID < hits[j].NodeID })
	if len(hits) > resultCap {
		hits = hits[:resultCap]
	}
	return hits
}
