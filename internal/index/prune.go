package index

import (
	"context"
	"fmt"

	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/store"
)

// pruneOrphans removes UNKNOWN placeholder nodes that no edge
// references on any endpoint, raw or resolved. A placeholder whose
// referring edges were all deleted (a re-index dropped them, or their
// file was removed) serves no purpose; one that is still some edge's
// raw endpoint stays even when the edge is resolved, since it carries
// the callee text a later pass rebinds from if the resolution is
// cleared. Returns the number of nodes removed.
func (ix *Indexer) pruneOrphans(ctx context.Context) (int, error) {
	unknowns, err := ix.Store.NodesByKind(ctx, graph.KindUnknown)
	if err != nil {
		return 0, fmt.Errorf("prune orphans: list unknown nodes: %w", err)
	}
	if len(unknowns) == 0 {
		return 0, nil
	}

	ids := make([]graph.NodeID, len(unknowns))
	for i, n := range unknowns {
		ids[i] = n.ID
	}
	referenced, err := ix.Store.ReferencedNodeIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("prune orphans: check references: %w", err)
	}

	pruned := 0
	err = ix.Store.WithTransaction(ctx, func(tx *store.Store) error {
		for _, id := range ids {
			if referenced[id] {
				continue
			}
			if err := tx.DeleteNode(ctx, id); err != nil {
				return fmt.Errorf("delete orphan node %d: %w", id, err)
			}
			pruned++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pruned, nil
}
