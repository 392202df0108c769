package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/codestory/codestory/internal/extract"
	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/store"
)

// writeFile persists one file's extraction output in a single
// transaction. Re-indexing replaces the file's own symbols and edges but
// never cascades other files' edges away: a CALL edge whose callsite
// identity matches a prior row claims that row (repointing its raw
// endpoints), cross-file resolutions into the replaced nodes are
// cleared for the next resolve pass to recompute, and only then are the
// stale nodes and unclaimed edges dropped. This keeps an incremental
// run of a subset of files equivalent to a full run over the same final
// state — re-indexing a callee file must not lose its callers' edges.
func (ix *Indexer) writeFile(ctx context.Context, r parsedFile) error {
	return ix.Store.WithTransaction(ctx, func(tx *store.Store) error {
		var fileID graph.NodeID
		var staleNodes []graph.NodeID
		var staleEdges []graph.EdgeID
		reindex := false

		existing, err := tx.FileByPath(ctx, r.path)
		switch {
		case err == nil:
			// Re-index: the FILE node keeps its identity; collect the
			// old content now, drop it after the new content is written.
			reindex = true
			fileID = existing.ID
			if staleNodes, err = tx.NodeIDsOwnedBy(ctx, fileID); err != nil {
				return fmt.Errorf("collect stale nodes: %w", err)
			}
			if staleEdges, err = tx.EdgeIDsOwnedBy(ctx, fileID); err != nil {
				return fmt.Errorf("collect stale edges: %w", err)
			}
		case errors.Is(err, store.ErrNotFound):
			fileNode := &graph.Node{Kind: graph.KindFile, SerializedName: filepath.Base(r.path), QualifiedName: r.path}
			ids, err := tx.InsertNodesBatch(ctx, []*graph.Node{fileNode})
			if err != nil {
				return fmt.Errorf("insert file node: %w", err)
			}
			fileID = ids[0]
		default:
			return fmt.Errorf("lookup existing file: %w", err)
		}

		complete := true
		for _, e := range r.result.Errors {
			if e.Fatal {
				complete = false
				break
			}
		}
		if err := tx.UpsertFile(ctx, &graph.FileInfo{
			ID: fileID, Path: r.path, Language: string(r.language),
			ModificationTime: r.modTime, ContentHash: r.contentHash,
			Indexed: true, Complete: complete, LineCount: r.lineCount,
		}); err != nil {
			return fmt.Errorf("upsert file row: %w", err)
		}

		nodes := make([]*graph.Node, len(r.result.Nodes))
		for i, ln := range r.result.Nodes {
			nodes[i] = &graph.Node{
				Kind: ln.Kind, SerializedName: ln.SerializedName, QualifiedName: ln.QualifiedName,
				FileNodeID: &fileID, Range: ln.Range,
			}
		}
		var nodeIDs []graph.NodeID
		if len(nodes) > 0 {
			nodeIDs, err = tx.InsertNodesBatch(ctx, nodes)
			if err != nil {
				return fmt.Errorf("insert nodes: %w", err)
			}
		}

		idFor := func(ref extract.LocalRef) graph.NodeID {
			if ref.IsModule {
				return fileID
			}
			return nodeIDs[ref.Index]
		}

		// CALL edges upsert by callsite identity: an unchanged callsite
		// claims its prior row (and whatever resolution it carried)
		// instead of inserting a duplicate. Everything else inserts
		// fresh.
		claimed := make(map[graph.EdgeID]bool)
		var insertEdges []*graph.Edge
		for _, le := range r.result.Edges {
			e := &graph.Edge{
				Kind: le.Kind, Source: idFor(le.Source), Target: idFor(le.Target),
				FileNodeID: &fileID, Line: le.Line, CallsiteIdentity: le.CallsiteIdentity,
			}
			if reindex && le.Kind == graph.EdgeCall && le.CallsiteIdentity != "" {
				old, err := tx.FindEdgeByCallsite(ctx, le.CallsiteIdentity)
				if err == nil && old.FileNodeID != nil && *old.FileNodeID == fileID {
					if err := tx.UpdateEdgeEndpoints(ctx, old.ID, e.Source, e.Target, e.Line); err != nil {
						return fmt.Errorf("repoint callsite edge: %w", err)
					}
					claimed[old.ID] = true
					continue
				}
				if err != nil && !errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("lookup callsite edge: %w", err)
				}
			}
			insertEdges = append(insertEdges, e)
		}
		if len(insertEdges) > 0 {
			if _, err := tx.InsertEdgesBatch(ctx, insertEdges); err != nil {
				return fmt.Errorf("insert edges: %w", err)
			}
		}

		occs := make([]*graph.Occurrence, len(r.result.Occurrences))
		for i, lo := range r.result.Occurrences {
			occs[i] = &graph.Occurrence{ElementID: int64(idFor(lo.Element)), FileNodeID: fileID, Range: lo.Range, Kind: lo.Kind}
		}
		if len(occs) > 0 {
			if err := tx.InsertOccurrencesBatch(ctx, occs); err != nil {
				return fmt.Errorf("insert occurrences: %w", err)
			}
		}

		if reindex {
			if err := tx.ClearErrorsForFile(ctx, fileID); err != nil {
				return fmt.Errorf("clear stale errors: %w", err)
			}
		}
		if len(r.result.Errors) > 0 {
			if err := tx.InsertErrors(ctx, fileID, r.result.Errors); err != nil {
				return fmt.Errorf("insert errors: %w", err)
			}
		}

		if reindex {
			unclaimed := make([]graph.EdgeID, 0, len(staleEdges))
			for _, id := range staleEdges {
				if !claimed[id] {
					unclaimed = append(unclaimed, id)
				}
			}
			if err := tx.DeleteEdges(ctx, unclaimed); err != nil {
				return fmt.Errorf("delete stale edges: %w", err)
			}
			if err := tx.ClearResolutionsReferencing(ctx, staleNodes); err != nil {
				return fmt.Errorf("clear stale resolutions: %w", err)
			}
			if err := tx.DeleteNodes(ctx, staleNodes); err != nil {
				return fmt.Errorf("delete stale nodes: %w", err)
			}
		}
		return nil
	})
}
