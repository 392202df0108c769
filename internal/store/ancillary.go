package store

import (
	"context"
	"fmt"

	"github.com/codestory/codestory/internal/graph"
)

// LocalSymbol is a variable or parameter binding scoped within a
// function body, tracked for local lookups without being promoted to a
// full graph node.
type LocalSymbol struct {
	ID      int64
	OwnerID graph.NodeID
	Name    string
	Range   graph.SourceRange
}

// InsertLocalSymbols records a function's local bindings. The indexer's
// write-back does not call it.
func (s *Store) InsertLocalSymbols(ctx context.Context, owner graph.NodeID, symbols []LocalSymbol) error {
	for _, sym := range symbols {
		_, err := s.q.ExecContext(ctx, `INSERT INTO local_symbol (owner_node_id, name, start_line, start_col, end_line, end_col)
			VALUES (?, ?, ?, ?, ?, ?)`, int64(owner), sym.Name, sym.Range.StartLine, sym.Range.StartCol, sym.Range.EndLine, sym.Range.EndCol)
		if err != nil {
			return fmt.Errorf("insert local symbol: %w", err)
		}
	}
	return nil
}

// LocalSymbolsForOwner returns the local bindings recorded under a
// function/method node.
func (s *Store) LocalSymbolsForOwner(ctx context.Context, owner graph.NodeID) ([]LocalSymbol, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, owner_node_id, name, start_line, start_col, end_line, end_col
		FROM local_symbol WHERE owner_node_id = ?`, int64(owner))
	if err != nil {
		return nil, fmt.Errorf("local symbols for owner: %w", err)
	}
	defer rows.Close()

	var out []LocalSymbol
	for rows.Next() {
		var sym LocalSymbol
		if err := rows.Scan(&sym.ID, &sym.OwnerID, &sym.Name, &sym.Range.StartLine, &sym.Range.StartCol,
			&sym.Range.EndLine, &sym.Range.EndCol); err != nil {
			return nil, fmt.Errorf("scan local symbol: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// RecordComponentAccess logs that the UI opened node via component, for
// the "recently viewed" panel. Best-effort: callers shouldn't fail a
// request over a logging write.
func (s *Store) RecordComponentAccess(ctx context.Context, node graph.NodeID, component string) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO component_access (node_id, component, accessed_at) VALUES (?, ?, ?)`,
		int64(node), component, Now())
	if err != nil {
		return fmt.Errorf("record component access: %w", err)
	}
	return nil
}

// RecentComponentAccess returns the most recently accessed nodes, most
// recent first, capped at limit.
func (s *Store) RecentComponentAccess(ctx context.Context, limit int) ([]graph.NodeID, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT DISTINCT node_id FROM component_access ORDER BY accessed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent component access: %w", err)
	}
	defer rows.Close()

	var out []graph.NodeID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan component access: %w", err)
		}
		out = append(out, graph.NodeID(id))
	}
	return out, rows.Err()
}

// BookmarkCategory is one named group of pinned nodes in the UI's
// bookmark panel.
type BookmarkCategory struct {
	ID   int64
	Name string
}

// CreateBookmarkCategory creates a bookmark group, or returns the
// existing one if name is already taken.
func (s *Store) CreateBookmarkCategory(ctx context.Context, name string) (int64, error) {
	res, err := s.q.ExecContext(ctx, `INSERT INTO bookmark_category (name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET name = excluded.name`, name)
	if err != nil {
		return 0, fmt.Errorf("create bookmark category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		row := s.q.QueryRowContext(ctx, `SELECT id FROM bookmark_category WHERE name = ?`, name)
		if scanErr := row.Scan(&id); scanErr != nil {
			return 0, fmt.Errorf("resolve bookmark category id: %w", scanErr)
		}
	}
	return id, nil
}

// ListBookmarkCategories returns every bookmark group.
func (s *Store) ListBookmarkCategories(ctx context.Context) ([]BookmarkCategory, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name FROM bookmark_category ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list bookmark categories: %w", err)
	}
	defer rows.Close()

	var out []BookmarkCategory
	for rows.Next() {
		var c BookmarkCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan bookmark category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PinNode adds node to a bookmark category with an optional note,
// replacing any existing note for that pin.
func (s *Store) PinNode(ctx context.Context, categoryID int64, node graph.NodeID, note string) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO bookmark_node (category_id, node_id, note) VALUES (?, ?, ?)
		ON CONFLICT(category_id, node_id) DO UPDATE SET note = excluded.note`, categoryID, int64(node), note)
	if err != nil {
		return fmt.Errorf("pin node: %w", err)
	}
	return nil
}

// UnpinNode removes node from a bookmark category.
func (s *Store) UnpinNode(ctx context.Context, categoryID int64, node graph.NodeID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM bookmark_node WHERE category_id = ? AND node_id = ?`, categoryID, int64(node))
	if err != nil {
		return fmt.Errorf("unpin node: %w", err)
	}
	return nil
}

// BookmarkedNode is one pin within a category.
type BookmarkedNode struct {
	NodeID graph.NodeID
	Note   string
}

// NodesInCategory lists every node pinned under a bookmark category.
func (s *Store) NodesInCategory(ctx context.Context, categoryID int64) ([]BookmarkedNode, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT node_id, note FROM bookmark_node WHERE category_id = ?`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("nodes in category: %w", err)
	}
	defer rows.Close()

	var out []BookmarkedNode
	for rows.Next() {
		var b BookmarkedNode
		if err := rows.Scan(&b.NodeID, &b.Note); err != nil {
			return nil, fmt.Errorf("scan bookmarked node: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
