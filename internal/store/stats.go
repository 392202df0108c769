package store

import (
	"context"
	"fmt"
)

// GraphStats summarizes one project's graph size for the Controller's
// project summary and diagnostic surfaces.
type GraphStats struct {
	NodeCount  int
	EdgeCount  int
	FileCount  int
	ErrorCount int
}

// Stats runs the four COUNT(*) queries backing GraphStats.
func (s *Store) Stats(ctx context.Context) (GraphStats, error) {
	var st GraphStats
	queries := []struct {
		table string
		dest  *int
	}{
		{"node", &st.NodeCount},
		{"edge", &st.EdgeCount},
		{"file", &st.FileCount},
		{"error", &st.ErrorCount},
	}
	for _, q := range queries {
		row := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+q.table)
		if err := row.Scan(q.dest); err != nil {
			return GraphStats{}, fmt.Errorf("stats: count %s: %w", q.table, err)
		}
	}
	return st, nil
}

// KindCounts returns the number of nodes per NodeKind, for operator
// dashboards wanting a per-kind breakdown.
func (s *Store) KindCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT kind, COUNT(*) FROM node GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("kind counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		out[kind] = n
	}
	return out, rows.Err()
}
