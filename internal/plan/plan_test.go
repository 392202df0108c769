package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codestory/codestory/internal/graph"
)

type fakeLister struct {
	files []*graph.FileInfo
}

func (f fakeLister) AllFiles(ctx context.Context) ([]*graph.FileInfo, error) {
	return f.files, nil
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestComputeIndexesNewFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	p, err := Compute(context.Background(), root, groups, fakeLister{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToIndex) != 1 || p.ToIndex[0] != "main.go" {
		t.Fatalf("expected [main.go], got %v", p.ToIndex)
	}
	if len(p.ToRemove) != 0 {
		t.Fatalf("expected no removals, got %v", p.ToRemove)
	}
}

func TestComputeSkipsUpToDateFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	info, err := os.Stat(filepath.Join(root, "main.go"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	lister := fakeLister{files: []*graph.FileInfo{
		{ID: 1, Path: "main.go", ModificationTime: info.ModTime().Unix(), Indexed: true},
	}}
	p, err := Compute(context.Background(), root, groups, lister)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToIndex) != 0 {
		t.Fatalf("expected no re-index for up-to-date file, got %v", p.ToIndex)
	}
}

func TestComputeSkipsTouchWithoutEdit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	hash, err := hashFile(filepath.Join(root, "main.go"))
	if err != nil {
		t.Fatalf("hashFile: %v", err)
	}

	future := time.Now().Add(time.Hour).Unix()
	if err := os.Chtimes(filepath.Join(root, "main.go"), time.Unix(future, 0), time.Unix(future, 0)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	lister := fakeLister{files: []*graph.FileInfo{
		{ID: 1, Path: "main.go", ModificationTime: 1, ContentHash: hash, Indexed: true},
	}}
	p, err := Compute(context.Background(), root, groups, lister)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToIndex) != 0 {
		t.Fatalf("expected touch-without-edit to be skipped, got %v", p.ToIndex)
	}
}

func TestComputeReindexesChangedContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	lister := fakeLister{files: []*graph.FileInfo{
		{ID: 1, Path: "main.go", ModificationTime: 1, ContentHash: "deadbeefdeadbeef", Indexed: true},
	}}
	p, err := Compute(context.Background(), root, groups, lister)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToIndex) != 1 || p.ToIndex[0] != "main.go" {
		t.Fatalf("expected main.go re-indexed on content change, got %v", p.ToIndex)
	}
}

func TestComputeReindexesIncompleteFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	info, err := os.Stat(filepath.Join(root, "main.go"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	lister := fakeLister{files: []*graph.FileInfo{
		{ID: 1, Path: "main.go", ModificationTime: info.ModTime().Unix(), Indexed: false},
	}}
	p, err := Compute(context.Background(), root, groups, lister)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToIndex) != 1 {
		t.Fatalf("expected incomplete file to be re-indexed, got %v", p.ToIndex)
	}
}

func TestComputeRemovesDeletedFile(t *testing.T) {
	root := t.TempDir()

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	lister := fakeLister{files: []*graph.FileInfo{
		{ID: 42, Path: "gone.go", ModificationTime: 1, Indexed: true},
	}}
	p, err := Compute(context.Background(), root, groups, lister)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToRemove) != 1 || p.ToRemove[0] != graph.NodeID(42) {
		t.Fatalf("expected [42], got %v", p.ToRemove)
	}
}

func TestComputeHonorsExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "vendor/dep.go", "package vendor")

	groups := []SourceGroup{{
		Name:     "go",
		Includes: []string{"**/*.go"},
		Excludes: []string{"vendor/**"},
	}}
	p, err := Compute(context.Background(), root, groups, fakeLister{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToIndex) != 1 || p.ToIndex[0] != "main.go" {
		t.Fatalf("expected only main.go, got %v", p.ToIndex)
	}
}

func TestComputeSkipsDefaultIgnoreDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "node_modules/pkg/index.go", "package pkg")

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	p, err := Compute(context.Background(), root, groups, fakeLister{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(p.ToIndex) != 1 || p.ToIndex[0] != "main.go" {
		t.Fatalf("expected node_modules skipped, got %v", p.ToIndex)
	}
}

func TestFullRefreshIgnoresStore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "b.go", "package b")

	groups := []SourceGroup{{Name: "go", Includes: []string{"**/*.go"}}}
	p, err := FullRefresh(root, groups)
	if err != nil {
		t.Fatalf("FullRefresh: %v", err)
	}
	if len(p.ToIndex) != 2 {
		t.Fatalf("expected 2 files, got %v", p.ToIndex)
	}
	if len(p.ToRemove) != 0 {
		t.Fatalf("expected no removals from full refresh, got %v", p.ToRemove)
	}
}
