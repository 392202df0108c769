// Package index runs the extractor and resolver over a RefreshPlan,
// writing results through internal/store.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/codestory/codestory/internal/extract"
	"github.com/codestory/codestory/internal/lang"
	"github.com/codestory/codestory/internal/plan"
	"github.com/codestory/codestory/internal/resolver"
	"github.com/codestory/codestory/internal/store"
)

// Indexer drives one indexing run: cascading removals, parallel
// extraction fanned in to a single writer, a resolver pass, and orphan
// pruning.
type Indexer struct {
	Store    *store.Store
	Root     string
	Resolver resolver.Config
	Workers  int

	// Telemetry accumulates per-phase durations and per-strategy hit
	// counts across every resolveAll pass this Indexer has run, for test
	// assertions and operator dashboards.
	Telemetry *resolver.Telemetry
}

// New returns an Indexer with a CPU-sized worker pool and the
// resolver's default confidence floor.
func New(s *store.Store, root string) *Indexer {
	return &Indexer{
		Store:     s,
		Root:      root,
		Resolver:  resolver.DefaultConfig(),
		Workers:   runtime.NumCPU(),
		Telemetry: resolver.NewTelemetry(),
	}
}

type parsedFile struct {
	path        string
	language    lang.Language
	result      *extract.IndexResult
	modTime     int64
	contentHash string
	lineCount   int
	err         error
}

// Run executes plan p: removals first, then extraction+write per file
// to_index, then a resolver pass, then orphan pruning. emitFn receives
// Started/Progress/Complete/Failed events in order; pass nil to ignore.
func (ix *Indexer) Run(ctx context.Context, p *plan.RefreshPlan, emitFn EmitFunc) error {
	start := time.Now()
	total := len(p.ToIndex) + len(p.ToRemove)
	emit(emitFn, Started{Total: total})
	processed := 0

	for _, fileID := range p.ToRemove {
		err := ix.Store.WithTransaction(ctx, func(tx *store.Store) error {
			return tx.RemoveFile(ctx, fileID)
		})
		if err != nil {
			err = fmt.Errorf("remove file %d: %w", fileID, err)
			emit(emitFn, Failed{Err: err})
			return err
		}
		processed++
		emit(emitFn, Progress{Current: processed, Total: total})
	}

	if err := ix.extractAndWrite(ctx, p.ToIndex, func() {
		processed++
		emit(emitFn, Progress{Current: processed, Total: total})
	}); err != nil {
		emit(emitFn, Failed{Err: err})
		return err
	}

	if err := ix.resolveAll(ctx); err != nil {
		emit(emitFn, Failed{Err: err})
		return fmt.Errorf("resolve: %w", err)
	}

	pruned, err := ix.pruneOrphans(ctx)
	if err != nil {
		emit(emitFn, Failed{Err: err})
		return fmt.Errorf("prune orphans: %w", err)
	}
	slog.Info("index.run.done", "files", len(p.ToIndex), "removed", len(p.ToRemove), "orphans_pruned", pruned)

	emit(emitFn, Complete{DurationMS: time.Since(start).Milliseconds()})
	return nil
}

// extractAndWrite fans extraction out over a CPU-sized worker pool and
// fans the per-file results into this goroutine, which is the only one
// touching the store: one transaction per file, in channel-arrival
// order. The channel is bounded so at most a pool's worth of extracted
// files is held in memory at once. Extraction is pure (no store access),
// so a per-file extraction error is logged and counted rather than
// aborting the pool — one malformed file never blocks the rest of the
// batch. Write errors do abort: the pool is cancelled and the first
// error returned.
func (ix *Indexer) extractAndWrite(ctx context.Context, paths []string, fileDone func()) error {
	if len(paths) == 0 {
		return nil
	}

	workers := ix.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	g, gctx := errgroup.WithContext(ctx)
	files := make(chan parsedFile, workers)

	g.Go(func() error {
		defer close(files)
		pool, pctx := errgroup.WithContext(gctx)
		pool.SetLimit(workers)
		for _, relPath := range paths {
			relPath := relPath
			if pctx.Err() != nil {
				break
			}
			pool.Go(func() error {
				select {
				case files <- ix.parseOne(relPath):
					return nil
				case <-pctx.Done():
					return pctx.Err()
				}
			})
		}
		return pool.Wait()
	})

	g.Go(func() error {
		for r := range files {
			if err := gctx.Err(); err != nil {
				return err
			}
			if r.err != nil {
				slog.Warn("index.extract.err", "path", r.path, "err", r.err)
				fileDone()
				continue
			}
			// Cancellation is only honored between files; the write in
			// flight runs to commit so storage stays consistent.
			if err := ix.writeFile(context.WithoutCancel(gctx), r); err != nil {
				return fmt.Errorf("write %s: %w", r.path, err)
			}
			fileDone()
		}
		return nil
	})

	return g.Wait()
}

func (ix *Indexer) parseOne(relPath string) parsedFile {
	full := filepath.Join(ix.Root, relPath)
	info, err := os.Stat(full)
	if err != nil {
		return parsedFile{path: relPath, err: fmt.Errorf("stat: %w", err)}
	}
	source, err := os.ReadFile(full)
	if err != nil {
		return parsedFile{path: relPath, err: fmt.Errorf("read: %w", err)}
	}

	extractor, l, ok := extract.ForPath(relPath)
	if !ok {
		return parsedFile{path: relPath, err: fmt.Errorf("unsupported file extension")}
	}
	result, err := extractor.Extract(extract.FileInput{Path: relPath, Language: l, Source: source})
	if err != nil {
		return parsedFile{path: relPath, err: err}
	}

	return parsedFile{
		path:        relPath,
		language:    l,
		result:      result,
		modTime:     info.ModTime().Unix(),
		contentHash: contentHash(source),
		lineCount:   countLines(source),
	}
}

// contentHash lets the refresh planner tell an untouched file from a
// touch-without-edit (mtime bumped, bytes unchanged) on a future pass.
func contentHash(source []byte) string {
	sum := xxh3.Hash(source)
	return fmt.Sprintf("%016x", sum)
}

func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := 1
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	return n
}
