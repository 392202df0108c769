package controller

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codestory/codestory/internal/codeerr"
)

const sampleSource = `package sample

func Greet(name string) string {
	return "hi " + name
}

func Caller() string {
	return Greet("world")
}
`

func newTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sample.go"), []byte(sampleSource), 0o644))
	return root
}

func TestOpenProjectSynthesizesDefaultConfigAndReportsStats(t *testing.T) {
	root := newTestProject(t)
	c := New()
	defer c.Close()

	summary, cerr := c.OpenProject(root)
	require.Nil(t, cerr)
	require.Equal(t, root, summary.Root)

	_, err := os.Stat(filepath.Join(root, "codestory.db"))
	require.NoError(t, err)
}

func TestOpenProjectRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notadir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	c := New()
	defer c.Close()
	_, cerr := c.OpenProject(file)
	require.NotNil(t, cerr)
	require.Equal(t, codeerr.InvalidArgument, cerr.Kind)
}

// A subscriber registered before StartIndexing sees Started, zero or
// more Progress (current monotonically non-decreasing, reaching total),
// then Complete, in that order.
func TestStartIndexingEventOrdering(t *testing.T) {
	root := newTestProject(t)
	c := New()
	defer c.Close()

	_, cerr := c.OpenProject(root)
	require.Nil(t, cerr)

	ch, cancel := c.Subscribe()
	defer cancel()

	require.Nil(t, c.StartIndexing(ModeFull))

	var sawStarted, sawComplete bool
	var total int
	lastCurrent := -1
	timeout := time.After(5 * time.Second)
	for !sawComplete {
		select {
		case env := <-ch:
			switch e := env.Event.(type) {
			case IndexingStarted:
				require.False(t, sawComplete)
				sawStarted = true
				total = e.FileCount
			case IndexingProgress:
				require.True(t, sawStarted, "progress before started")
				require.GreaterOrEqual(t, e.Current, lastCurrent)
				lastCurrent = e.Current
			case IndexingComplete:
				require.True(t, sawStarted)
				sawComplete = true
			case IndexingFailed:
				t.Fatalf("unexpected indexing failure: %s", e.Error)
			}
		case <-timeout:
			t.Fatal("timed out waiting for IndexingComplete")
		}
	}
	require.Equal(t, total, lastCurrent)
}

// A second StartIndexing made while a run is already in flight must
// return success without starting an overlapping run.
func TestStartIndexingCoalescesConcurrentCalls(t *testing.T) {
	root := newTestProject(t)
	c := New()
	defer c.Close()

	_, cerr := c.OpenProject(root)
	require.Nil(t, cerr)

	require.Nil(t, c.StartIndexing(ModeFull))
	require.Nil(t, c.StartIndexing(ModeFull), "a second call while indexing is in flight must coalesce, not error")

	deadline := time.Now().Add(5 * time.Second)
	for {
		c.mu.Lock()
		indexing := c.indexing
		c.mu.Unlock()
		if !indexing {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("indexing never completed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSearchFindsIndexedSymbol(t *testing.T) {
	root := newTestProject(t)
	c := New()
	defer c.Close()

	_, cerr := c.OpenProject(root)
	require.Nil(t, cerr)

	ch, cancel := c.Subscribe()
	defer cancel()
	require.Nil(t, c.StartIndexing(ModeFull))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case env := <-ch:
			if _, ok := env.Event.(IndexingComplete); ok {
				goto indexed
			}
		case <-timeout:
			t.Fatal("timed out waiting for indexing to complete")
		}
	}
indexed:

	hits, cerr := c.Search("Greet")
	require.Nil(t, cerr)
	require.NotEmpty(t, hits)
	found := false
	for _, h := range hits {
		if h.Name == "Greet" {
			found = true
		}
	}
	require.True(t, found)
}

func TestReadWriteFileTextRejectsPathEscape(t *testing.T) {
	root := newTestProject(t)
	c := New()
	defer c.Close()

	_, cerr := c.OpenProject(root)
	require.Nil(t, cerr)

	require.Nil(t, c.WriteFileText("notes.txt", "hello"))
	text, cerr := c.ReadFileText("notes.txt")
	require.Nil(t, cerr)
	require.Equal(t, "hello", text)

	_, cerr = c.ReadFileText("../escape.txt")
	require.NotNil(t, cerr)
	require.Equal(t, codeerr.InvalidArgument, cerr.Kind)
}
