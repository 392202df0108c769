package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/codestory/codestory/internal/graph"
)

const numOccurrenceCols = 7

// Formula-derived batch size: SQLite has a 999 bind variable limit.
const occurrencesBatchSize = 999 / numOccurrenceCols // = 142

// InsertOccurrencesBatch inserts occurrences in chunked multi-row
// statements. Duplicate (element, file, range) rows are ignored rather
// than erroring, since re-extraction of an unchanged file naturally
// re-emits the same occurrences.
func (s *Store) InsertOccurrencesBatch(ctx context.Context, occs []*graph.Occurrence) error {
	for i := 0; i < len(occs); i += occurrencesBatchSize {
		end := i + occurrencesBatchSize
		if end > len(occs) {
			end = len(occs)
		}
		chunk := occs[i:end]

		var b strings.Builder
		b.WriteString(`INSERT OR IGNORE INTO occurrence (element_id, file_node_id, start_line, start_col, end_line, end_col, kind) VALUES `)
		args := make([]any, 0, len(chunk)*numOccurrenceCols)
		for j, o := range chunk {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString("(?,?,?,?,?,?,?)")
			args = append(args, o.ElementID, int64(o.FileNodeID), o.Range.StartLine, o.Range.StartCol,
				o.Range.EndLine, o.Range.EndCol, string(o.Kind))
		}

		if _, err := s.q.ExecContext(ctx, b.String(), args...); err != nil {
			return fmt.Errorf("insert occurrences batch: %w", err)
		}
	}
	return nil
}

// OccurrencesForElement returns every occurrence recorded for a node or
// edge ID.
func (s *Store) OccurrencesForElement(ctx context.Context, elementID int64) ([]*graph.Occurrence, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, element_id, file_node_id, start_line, start_col, end_line, end_col, kind
		FROM occurrence WHERE element_id = ?`, elementID)
	if err != nil {
		return nil, fmt.Errorf("occurrences for element: %w", err)
	}
	defer rows.Close()

	var out []*graph.Occurrence
	for rows.Next() {
		var o graph.Occurrence
		var kind string
		if err := rows.Scan(&o.ID, &o.ElementID, &o.FileNodeID, &o.Range.StartLine, &o.Range.StartCol,
			&o.Range.EndLine, &o.Range.EndCol, &kind); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		o.Kind = graph.OccurrenceKind(kind)
		out = append(out, &o)
	}
	return out, rows.Err()
}
