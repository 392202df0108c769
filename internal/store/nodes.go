package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/codestory/codestory/internal/graph"
)

const numNodeCols = 9

// Formula-derived batch size: SQLite has a 999 bind variable limit.
const nodesBatchSize = 999 / numNodeCols // = 111

// InsertNodesBatch inserts nodes in chunked multi-row statements and
// returns their assigned IDs in the same order, assigning s.q (a *sql.Tx
// in practice — callers run this inside WithTransaction).
func (s *Store) InsertNodesBatch(ctx context.Context, nodes []*graph.Node) ([]graph.NodeID, error) {
	ids := make([]graph.NodeID, len(nodes))
	for i := 0; i < len(nodes); i += nodesBatchSize {
		end := i + nodesBatchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		chunk := nodes[i:end]

		var b strings.Builder
		b.WriteString(`INSERT INTO node (kind, serialized_name, qualified_name, canonical_id, file_node_id, start_line, start_col, end_line, end_col) VALUES `)
		args := make([]any, 0, len(chunk)*numNodeCols)
		for j, n := range chunk {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString("(?,?,?,?,?,?,?,?,?)")
			var fileNodeID any
			if n.FileNodeID != nil {
				fileNodeID = int64(*n.FileNodeID)
			}
			args = append(args, string(n.Kind), n.SerializedName, n.QualifiedName, n.CanonicalID, fileNodeID,
				n.Range.StartLine, n.Range.StartCol, n.Range.EndLine, n.Range.EndCol)
		}
		b.WriteString(" RETURNING id")

		rows, err := s.q.QueryContext(ctx, b.String(), args...)
		if err != nil {
			return nil, fmt.Errorf("insert nodes batch: %w", err)
		}
		for j := range chunk {
			if !rows.Next() {
				rows.Close()
				return nil, fmt.Errorf("insert nodes batch: expected %d ids, got %d", len(chunk), j)
			}
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan inserted node id: %w", err)
			}
			ids[i+j] = graph.NodeID(id)
		}
		rows.Close()
	}
	return ids, nil
}

// GetNode fetches one node by ID.
func (s *Store) GetNode(ctx context.Context, id graph.NodeID) (*graph.Node, error) {
	row := s.q.QueryRowContext(ctx, `SELECT id, kind, serialized_name, qualified_name, canonical_id, file_node_id,
		start_line, start_col, end_line, end_col FROM node WHERE id = ?`, int64(id))
	return scanNode(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*graph.Node, error) {
	var n graph.Node
	var kind string
	var fileNodeID *int64
	if err := row.Scan(&n.ID, &kind, &n.SerializedName, &n.QualifiedName, &n.CanonicalID, &fileNodeID,
		&n.Range.StartLine, &n.Range.StartCol, &n.Range.EndLine, &n.Range.EndCol); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan node: %w", err)
	}
	n.Kind = graph.NodeKind(kind)
	if fileNodeID != nil {
		id := graph.NodeID(*fileNodeID)
		n.FileNodeID = &id
	}
	return &n, nil
}

// NodeIDsOwnedBy returns the IDs of every node whose file_node_id is
// fileID — the file's symbols and placeholders, not the FILE node
// itself.
func (s *Store) NodeIDsOwnedBy(ctx context.Context, fileID graph.NodeID) ([]graph.NodeID, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id FROM node WHERE file_node_id = ?`, int64(fileID))
	if err != nil {
		return nil, fmt.Errorf("node ids owned by file: %w", err)
	}
	defer rows.Close()

	var out []graph.NodeID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owned node id: %w", err)
		}
		out = append(out, graph.NodeID(id))
	}
	return out, rows.Err()
}

// DeleteNodes removes node rows and their occurrences in chunks. The
// node table's ON DELETE CASCADE covers the dependent file,
// local_symbol, component_access, and bookmark_node rows.
func (s *Store) DeleteNodes(ctx context.Context, ids []graph.NodeID) error {
	const chunkSize = 400
	for i := 0; i < len(ids); i += chunkSize {
		end := i + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[i:end]
		args := make([]any, len(chunk))
		for j, id := range chunk {
			args[j] = int64(id)
		}
		ph := joinPlaceholders(len(chunk))

		if _, err := s.q.ExecContext(ctx, `DELETE FROM occurrence WHERE element_id IN (`+ph+`)`, args...); err != nil {
			return fmt.Errorf("delete node occurrences: %w", err)
		}
		if _, err := s.q.ExecContext(ctx, `DELETE FROM node WHERE id IN (`+ph+`)`, args...); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
	}
	return nil
}

// NodesByKind returns every node of one kind, used to enumerate UNKNOWN
// placeholder nodes for orphan pruning.
func (s *Store) NodesByKind(ctx context.Context, kind graph.NodeKind) ([]*graph.Node, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, kind, serialized_name, qualified_name, canonical_id, file_node_id,
		start_line, start_col, end_line, end_col FROM node WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("nodes by kind: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// DeleteNode removes one node by ID along with its occurrences. Callers
// are expected to have already confirmed the node is safe to remove
// (e.g. no longer referenced by any edge).
func (s *Store) DeleteNode(ctx context.Context, id graph.NodeID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM occurrence WHERE element_id = ?`, int64(id)); err != nil {
		return fmt.Errorf("delete node occurrences: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM node WHERE id = ?`, int64(id)); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	return nil
}

// AllNodes returns every node in the graph, for building a full-pass
// resolver CandidateIndex.
func (s *Store) AllNodes(ctx context.Context) ([]*graph.Node, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, kind, serialized_name, qualified_name, canonical_id, file_node_id,
		start_line, start_col, end_line, end_col FROM node`)
	if err != nil {
		return nil, fmt.Errorf("all nodes: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func scanNodes(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]*graph.Node, error) {
	var out []*graph.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
