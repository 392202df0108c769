package store

import (
	"context"
	"fmt"

	"github.com/codestory/codestory/internal/graph"
)

// InsertErrors records the per-file extraction errors captured alongside
// a file's partial results. Extraction failures never abort ingestion;
// they're persisted for the UI's diagnostics panel.
func (s *Store) InsertErrors(ctx context.Context, fileID graph.NodeID, errs []*graph.ErrorInfo) error {
	for _, e := range errs {
		_, err := s.q.ExecContext(ctx, `INSERT INTO error (file_id, line, col, message, fatal, indexed_during_step)
			VALUES (?, ?, ?, ?, ?, ?)`, int64(fileID), e.Line, e.Column, e.Message, e.Fatal, e.IndexedDuringStep)
		if err != nil {
			return fmt.Errorf("insert error: %w", err)
		}
	}
	return nil
}

// ErrorsForFile returns every recorded extraction error for a file.
func (s *Store) ErrorsForFile(ctx context.Context, fileID graph.NodeID) ([]*graph.ErrorInfo, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT line, col, message, fatal, indexed_during_step FROM error WHERE file_id = ?`, int64(fileID))
	if err != nil {
		return nil, fmt.Errorf("errors for file: %w", err)
	}
	defer rows.Close()

	var out []*graph.ErrorInfo
	for rows.Next() {
		var e graph.ErrorInfo
		if err := rows.Scan(&e.Line, &e.Column, &e.Message, &e.Fatal, &e.IndexedDuringStep); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// ClearErrorsForFile drops all recorded errors for a file, called before
// re-recording a fresh set on re-index.
func (s *Store) ClearErrorsForFile(ctx context.Context, fileID graph.NodeID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM error WHERE file_id = ?`, int64(fileID))
	if err != nil {
		return fmt.Errorf("clear errors for file: %w", err)
	}
	return nil
}
