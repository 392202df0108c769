package store

import (
	"context"
	"fmt"

	"github.com/codestory/codestory/internal/graph"
)

// UpsertFile inserts or updates a file row. The file's id must already
// exist as a node (kind FILE) — file rows share the node table's ID
// space via the file.id -> node.id foreign key.
func (s *Store) UpsertFile(ctx context.Context, f *graph.FileInfo) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO file (id, path, language, modification_time, content_hash, indexed, complete, line_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET path=excluded.path, language=excluded.language,
			modification_time=excluded.modification_time, content_hash=excluded.content_hash,
			indexed=excluded.indexed, complete=excluded.complete, line_count=excluded.line_count`,
		int64(f.ID), f.Path, f.Language, f.ModificationTime, f.ContentHash, f.Indexed, f.Complete, f.LineCount)
	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}
	return nil
}

func scanFile(row rowScanner) (*graph.FileInfo, error) {
	var f graph.FileInfo
	if err := row.Scan(&f.ID, &f.Path, &f.Language, &f.ModificationTime, &f.ContentHash, &f.Indexed, &f.Complete, &f.LineCount); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return &f, nil
}

const fileSelectColumns = `id, path, language, modification_time, content_hash, indexed, complete, line_count`

// FileByPath looks up a file row by its path, used by the indexer's
// write-back to find the row a re-indexed file replaces.
func (s *Store) FileByPath(ctx context.Context, path string) (*graph.FileInfo, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+fileSelectColumns+` FROM file WHERE path = ?`, path)
	return scanFile(row)
}

// AllFiles returns every indexed file, for incremental-refresh planning
// and bulk maintenance tasks.
func (s *Store) AllFiles(ctx context.Context) ([]*graph.FileInfo, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+fileSelectColumns+` FROM file`)
	if err != nil {
		return nil, fmt.Errorf("all files: %w", err)
	}
	defer rows.Close()

	var out []*graph.FileInfo
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RemoveFile cascades the deletion of one file: its owned nodes and
// edges, any edge whose raw endpoint was a removed node, and the
// occurrences on every removed element. Edges owned by other files that
// merely *resolved* into this file are not deleted — their source text
// didn't change, so they keep their row and lose only the binding,
// which the next resolve pass recomputes against whatever remains.
// Call inside WithTransaction.
func (s *Store) RemoveFile(ctx context.Context, fileID graph.NodeID) error {
	owned, err := s.NodeIDsOwnedBy(ctx, fileID)
	if err != nil {
		return fmt.Errorf("remove file: collect owned nodes: %w", err)
	}
	owned = append(owned, fileID)

	ownedEdges, err := s.EdgeIDsOwnedBy(ctx, fileID)
	if err != nil {
		return fmt.Errorf("remove file: collect owned edges: %w", err)
	}
	if err := s.DeleteEdges(ctx, ownedEdges); err != nil {
		return fmt.Errorf("remove file: delete owned edges: %w", err)
	}

	// A raw endpoint pointing at a removed node leaves the edge
	// meaningless (the extractor emits placeholders into the edge's own
	// file, so these are normally the file's own, already-deleted
	// edges). chunk of 400: the IDs are bound twice, staying under the
	// 999 bind limit.
	const removeFileChunkSize = 400
	for i := 0; i < len(owned); i += removeFileChunkSize {
		end := i + removeFileChunkSize
		if end > len(owned) {
			end = len(owned)
		}
		chunk := owned[i:end]
		args := make([]any, len(chunk))
		for j, id := range chunk {
			args[j] = int64(id)
		}
		ph := joinPlaceholders(len(chunk))

		if _, err := s.q.ExecContext(ctx, `DELETE FROM edge WHERE source_id IN (`+ph+`) OR target_id IN (`+ph+`)`,
			append(append([]any{}, args...), args...)...); err != nil {
			return fmt.Errorf("remove file: delete raw-referencing edges: %w", err)
		}
	}

	if err := s.ClearResolutionsReferencing(ctx, owned); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	if err := s.DeleteNodes(ctx, owned); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
