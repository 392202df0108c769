// Package plan computes the set of files to (re)index and remove ahead
// of an indexing run, by comparing what's on disk against what the
// store already knows about.
package plan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zeebo/xxh3"

	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/lang"
)

// defaultIgnoreDirs are directories never worth walking into regardless
// of what the source-group globs say.
var defaultIgnoreDirs = map[string]bool{
	".cache": true, ".claude": true, ".eclipse": true, ".eggs": true,
	".env": true, ".git": true, ".gradle": true, ".hg": true,
	".idea": true, ".maven": true, ".mypy_cache": true, ".nox": true,
	".npm": true, ".nyc_output": true, ".pnpm-store": true,
	".pytest_cache": true, ".ruff_cache": true, ".svn": true, ".tmp": true,
	".tox": true, ".venv": true, ".vs": true, ".vscode": true, ".yarn": true,
	"__pycache__": true, "bin": true, "bower_components": true,
	"build": true, "coverage": true, "dist": true, "env": true,
	"htmlcov": true, "node_modules": true, "obj": true, "out": true,
	"Pods": true, "site-packages": true, "target": true, "temp": true,
	"tmp": true, "vendor": true, "venv": true,
}

// SourceGroup is one named set of glob patterns to include, plus
// gitignore-style exclude patterns layered on top.
type SourceGroup struct {
	Name     string
	Includes []string
	Excludes []string
}

// StoredFile is the subset of a stored file row the planner needs to
// compare against disk state.
type StoredFile struct {
	ID               graph.NodeID
	Path             string
	ModificationTime int64
	Indexed          bool
}

// FileLister abstracts the store's file table for the planner, so
// planning can be tested without a live database.
type FileLister interface {
	AllFiles(ctx context.Context) ([]*graph.FileInfo, error)
}

// RefreshPlan is the output of comparing the source groups against the
// store: paths to (re)index, and file IDs to cascade-remove because
// their file vanished from disk.
type RefreshPlan struct {
	ToIndex  []string
	ToRemove []graph.NodeID
}

// Compute walks root under every group's include globs (skipping
// defaultIgnoreDirs and each group's own excludes), then diffs the
// result against the store's file table:
//   - on disk, missing from store -> index
//   - on disk, in store, but stale (disk mtime newer, or indexed=false) -> re-index
//   - in store, missing from disk -> remove
func Compute(ctx context.Context, root string, groups []SourceGroup, lister FileLister) (*RefreshPlan, error) {
	onDisk, err := walk(root, groups)
	if err != nil {
		return nil, fmt.Errorf("walk source groups: %w", err)
	}

	stored, err := lister.AllFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored files: %w", err)
	}
	storedByPath := make(map[string]*graph.FileInfo, len(stored))
	for _, f := range stored {
		storedByPath[f.Path] = f
	}

	plan := &RefreshPlan{}
	for rel, mtime := range onDisk {
		existing, ok := storedByPath[rel]
		if !ok {
			plan.ToIndex = append(plan.ToIndex, rel)
			continue
		}
		if !existing.Indexed {
			plan.ToIndex = append(plan.ToIndex, rel)
			continue
		}
		if mtime <= existing.ModificationTime {
			continue
		}
		// mtime moved; only re-index if the bytes actually changed, so a
		// touch-without-edit doesn't trigger a full re-extraction.
		if existing.ContentHash == "" {
			plan.ToIndex = append(plan.ToIndex, rel)
			continue
		}
		hash, err := hashFile(filepath.Join(root, rel))
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", rel, err)
		}
		if hash != existing.ContentHash {
			plan.ToIndex = append(plan.ToIndex, rel)
		}
	}
	for rel, f := range storedByPath {
		if _, ok := onDisk[rel]; !ok {
			plan.ToRemove = append(plan.ToRemove, f.ID)
		}
	}

	sort.Strings(plan.ToIndex)
	sort.Slice(plan.ToRemove, func(i, j int) bool { return plan.ToRemove[i] < plan.ToRemove[j] })
	return plan, nil
}

// FullRefresh returns every matched file as ToIndex, ignoring the
// store's current state entirely. Used for a from-scratch rebuild.
func FullRefresh(root string, groups []SourceGroup) (*RefreshPlan, error) {
	onDisk, err := walk(root, groups)
	if err != nil {
		return nil, fmt.Errorf("walk source groups: %w", err)
	}
	paths := make([]string, 0, len(onDisk))
	for rel := range onDisk {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return &RefreshPlan{ToIndex: paths}, nil
}

// ListRelativeFiles returns every path under root matching at least one
// group's include globs and no group's exclude globs, ignoring the
// store entirely. internal/watcher uses this as its poll-time file
// lister, so a watched project's change detection walks the same
// source groups the refresh planner itself uses.
func ListRelativeFiles(root string, groups []SourceGroup) ([]string, error) {
	onDisk, err := walk(root, groups)
	if err != nil {
		return nil, fmt.Errorf("walk source groups: %w", err)
	}
	paths := make([]string, 0, len(onDisk))
	for rel := range onDisk {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths, nil
}

// walk enumerates every file under root matching at least one group's
// include globs and no group's exclude globs, returning a relative-path
// -> modification-time (unix seconds) map.
func walk(root string, groups []SourceGroup) (map[string]int64, error) {
	result := make(map[string]int64)
	fsys := os.DirFS(root)

	err := doublestar.GlobWalk(fsys, "**", func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			if defaultIgnoreDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		// Unknown extensions never enter a plan: the extractor would skip
		// them anyway, and listing them would leave the plan permanently
		// non-empty since they are never recorded as indexed.
		if _, ok := lang.LanguageForExtension(filepath.Ext(path)); !ok {
			return nil
		}
		if !matchesAnyGroup(path, groups) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		result[filepath.ToSlash(path)] = info.ModTime().Unix()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// hashFile returns the hex-encoded xxh3 hash of a file's bytes, the same
// format internal/index stores per indexed file, so plan and indexer
// content hashes are directly comparable.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
}

func matchesAnyGroup(path string, groups []SourceGroup) bool {
	for _, g := range groups {
		included := false
		for _, pattern := range g.Includes {
			if ok, _ := doublestar.Match(pattern, path); ok {
				included = true
				break
			}
		}
		if !included {
			continue
		}
		excluded := false
		for _, pattern := range g.Excludes {
			if ok, _ := doublestar.Match(pattern, path); ok {
				excluded = true
				break
			}
		}
		if !excluded {
			return true
		}
	}
	return false
}
