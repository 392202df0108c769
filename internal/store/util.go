package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/codestory/codestory/internal/graph"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// encodeCandidates serializes candidate node IDs as a compact JSON array,
// stored as text since SQLite has no native array type.
func encodeCandidates(ids []graph.NodeID) string {
	if len(ids) == 0 {
		return ""
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeCandidates(s string) []graph.NodeID {
	if s == "" {
		return nil
	}
	var raw []int64
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	out := make([]graph.NodeID, len(raw))
	for i, v := range raw {
		out[i] = graph.NodeID(v)
	}
	return out
}

// joinPlaceholders returns a comma-joined "?" list of length n, used to
// build IN (...) clauses for chunked batch reads.
func joinPlaceholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ",")
}
