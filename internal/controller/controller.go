package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codestory/codestory/internal/codeerr"
	"github.com/codestory/codestory/internal/config"
	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/index"
	"github.com/codestory/codestory/internal/plan"
	"github.com/codestory/codestory/internal/query"
	"github.com/codestory/codestory/internal/resolver"
	"github.com/codestory/codestory/internal/search"
	"github.com/codestory/codestory/internal/store"
	"github.com/codestory/codestory/internal/watcher"
)

const (
	dbFileName   = "codestory.db"
	uiLayoutFile = "codestory_ui.json"
)

// Controller is the only process-wide state this engine keeps: the open
// project's storage handle, search indexes, and event bus. Its
// lifecycle is open_project -> (any number of operations) -> Close.
type Controller struct {
	bus *eventBus

	mu        sync.Mutex
	root      string
	st        *store.Store
	cfg       *config.Config
	indexer   *index.Indexer
	searchIdx *search.Index
	indexing  bool

	indexCancel   context.CancelFunc
	watcherCancel context.CancelFunc
}

// New returns a Controller with no project open yet.
func New() *Controller {
	return &Controller{bus: newEventBus()}
}

// Subscribe registers a listener for the Controller's event stream,
// delivered in publication order. Call the returned cancel func to stop
// listening.
func (c *Controller) Subscribe() (<-chan Envelope, func()) {
	id, ch := c.bus.Subscribe(0)
	return ch, func() { c.bus.Unsubscribe(id) }
}

// OpenProject opens (creating if necessary) the project's database and
// config at path, replacing any previously open project.
func (c *Controller) OpenProject(path string) (*ProjectSummary, *codeerr.Error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, codeerr.InvalidArgf("resolve project path %q: %v", path, err)
	}
	info, statErr := os.Stat(abs)
	if statErr != nil || !info.IsDir() {
		return nil, codeerr.InvalidArgf("project path %q is not a directory", abs)
	}

	cfg, err := config.Load(abs)
	if err != nil {
		return nil, codeerr.Internalf(err, "load project config")
	}
	st, err := store.OpenPath(filepath.Join(abs, dbFileName))
	if err != nil {
		return nil, codeerr.Internalf(err, "open project store")
	}

	c.mu.Lock()
	if c.st != nil {
		c.stopWatcherLocked()
		c.cancelIndexingLocked()
		c.st.Close()
	}
	c.root = abs
	c.st = st
	c.cfg = cfg
	c.indexer = index.New(st, abs)
	c.indexer.Resolver.MinConfidence = cfg.MinConfidence
	c.mu.Unlock()

	ctx := context.Background()
	if err := c.rebuildSearchIndex(ctx); err != nil {
		return nil, codeerr.Internalf(err, "build search index")
	}

	summary, cerr := c.projectSummary(ctx)
	if cerr != nil {
		return nil, cerr
	}
	c.bus.Publish(StatusUpdate{Message: fmt.Sprintf("opened project %s", abs)})
	return summary, nil
}

// ProjectSummary reports the open project's root and current graph
// size, the same shape OpenProject returns, for callers that want to
// poll it again later (a debug endpoint, a status bar) without
// reopening the project.
func (c *Controller) ProjectSummary() (*ProjectSummary, *codeerr.Error) {
	return c.projectSummary(context.Background())
}

func (c *Controller) projectSummary(ctx context.Context) (*ProjectSummary, *codeerr.Error) {
	c.mu.Lock()
	st, root := c.st, c.root
	c.mu.Unlock()
	if st == nil {
		return nil, codeerr.InvalidArgf("no project open")
	}
	gs, err := st.Stats(ctx)
	if err != nil {
		return nil, codeerr.Internalf(err, "load stats")
	}
	return &ProjectSummary{
		Root: root,
		Stats: Stats{
			NodeCount:  gs.NodeCount,
			EdgeCount:  gs.EdgeCount,
			FileCount:  gs.FileCount,
			ErrorCount: gs.ErrorCount,
		},
	}, nil
}

func (c *Controller) rebuildSearchIndex(ctx context.Context) error {
	c.mu.Lock()
	st := c.st
	c.mu.Unlock()
	if st == nil {
		return fmt.Errorf("no project open")
	}
	idx, err := search.Build(ctx, st)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.searchIdx = idx
	c.mu.Unlock()
	return nil
}

// StartIndexing runs a refresh asynchronously, returning immediately.
// A call received while a run is already in progress is coalesced: it
// returns nil without starting a second concurrent run.
func (c *Controller) StartIndexing(mode IndexMode) *codeerr.Error {
	c.mu.Lock()
	st, root, ix, cfg := c.st, c.root, c.indexer, c.cfg
	if st == nil {
		c.mu.Unlock()
		return codeerr.InvalidArgf("no project open")
	}
	if c.indexing {
		c.mu.Unlock()
		return nil
	}
	c.indexing = true
	ctx, cancel := context.WithCancel(context.Background())
	c.indexCancel = cancel
	c.mu.Unlock()

	go c.runIndexing(ctx, st, root, ix, cfg, mode)
	return nil
}

func (c *Controller) runIndexing(ctx context.Context, st *store.Store, root string, ix *index.Indexer, cfg *config.Config, mode IndexMode) {
	defer func() {
		c.mu.Lock()
		c.indexing = false
		if c.indexCancel != nil {
			c.indexCancel()
			c.indexCancel = nil
		}
		c.mu.Unlock()
	}()

	var p *plan.RefreshPlan
	var err error
	if mode == ModeFull {
		p, err = plan.FullRefresh(root, cfg.SourceGroups)
	} else {
		p, err = plan.Compute(ctx, root, cfg.SourceGroups, st)
	}
	if err != nil {
		c.bus.Publish(IndexingFailed{Error: err.Error()})
		return
	}

	emit := func(e index.Event) {
		switch ev := e.(type) {
		case index.Started:
			c.bus.Publish(IndexingStarted{FileCount: ev.Total})
		case index.Progress:
			c.bus.Publish(IndexingProgress{Current: ev.Current, Total: ev.Total})
		case index.Complete:
			c.bus.Publish(IndexingComplete{DurationMS: ev.DurationMS})
		case index.Failed:
			c.bus.Publish(IndexingFailed{Error: ev.Err.Error()})
		}
	}

	if err := ix.Run(ctx, p, emit); err != nil {
		return
	}
	if err := c.rebuildSearchIndex(ctx); err != nil {
		c.bus.Publish(IndexingFailed{Error: err.Error()})
	}
}

// EnableWatch starts polling the project root for changes, triggering
// an incremental refresh via StartIndexing whenever something moves.
// Calling it again replaces any previously running watcher.
func (c *Controller) EnableWatch() *codeerr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st == nil {
		return codeerr.InvalidArgf("no project open")
	}
	c.stopWatcherLocked()

	root, cfg := c.root, c.cfg
	ctx, cancel := context.WithCancel(context.Background())
	c.watcherCancel = cancel

	w := watcher.New(root, relFileLister{groups: cfg.SourceGroups}, func(context.Context) error {
		if cerr := c.StartIndexing(ModeIncremental); cerr != nil {
			return cerr
		}
		return nil
	})
	go w.Run(ctx)
	return nil
}

func (c *Controller) stopWatcherLocked() {
	if c.watcherCancel != nil {
		c.watcherCancel()
		c.watcherCancel = nil
	}
}

// cancelIndexingLocked signals an in-flight indexing run to stop. The
// run checks the flag between files, so the file currently being
// written finishes and storage stays consistent.
func (c *Controller) cancelIndexingLocked() {
	if c.indexCancel != nil {
		c.indexCancel()
		c.indexCancel = nil
	}
}

type relFileLister struct{ groups []plan.SourceGroup }

func (l relFileLister) ListFiles(root string) ([]string, error) {
	return plan.ListRelativeFiles(root, l.groups)
}

// Search runs the fuzzy matcher first, then appends any full-text hits
// not already present.
func (c *Controller) Search(queryStr string) ([]SearchHit, *codeerr.Error) {
	c.mu.Lock()
	st, idx := c.st, c.searchIdx
	c.mu.Unlock()
	if st == nil || idx == nil {
		return nil, codeerr.InvalidArgf("no project open")
	}

	seen := make(map[graph.NodeID]bool)
	var hits []SearchHit
	ctx := context.Background()

	materialize := func(h search.Hit) (SearchHit, bool) {
		n, err := st.GetNode(ctx, h.NodeID)
		if err != nil {
			return SearchHit{}, false
		}
		out := SearchHit{NodeID: h.NodeID, Name: n.SerializedName, Kind: n.Kind, Line: n.Range.StartLine, Score: h.Score}
		if n.FileNodeID != nil {
			if f, err := st.GetNode(ctx, *n.FileNodeID); err == nil {
				out.FilePath = f.QualifiedName
			}
		}
		return out, true
	}

	for _, h := range idx.Fuzzy(queryStr, c.fuzzyCap()) {
		hit, ok := materialize(h)
		if !ok {
			continue
		}
		seen[h.NodeID] = true
		hits = append(hits, hit)
	}
	for _, h := range idx.FullText(queryStr, c.fullTextCap()) {
		if seen[h.NodeID] {
			continue
		}
		hit, ok := materialize(h)
		if !ok {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (c *Controller) fuzzyCap() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return search.FuzzyCap
	}
	return c.cfg.FuzzySearchCap
}

func (c *Controller) fullTextCap() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return search.FullTextCap
	}
	return c.cfg.FullTextCap
}

// GraphNeighborhood runs query.Neighborhood over the open project.
func (c *Controller) GraphNeighborhood(req GraphRequest) (*query.GraphResponse, *codeerr.Error) {
	st, cerr := c.requireStore()
	if cerr != nil {
		return nil, cerr
	}
	resp, err := query.Neighborhood(context.Background(), st, req.CenterID, req.MaxEdges)
	if err != nil {
		return nil, nodeLookupErr(err, req.CenterID)
	}
	return resp, nil
}

// GraphTrail runs query.Trail over the open project.
func (c *Controller) GraphTrail(dto TrailConfigDto) (*query.GraphResponse, *codeerr.Error) {
	st, cerr := c.requireStore()
	if cerr != nil {
		return nil, cerr
	}
	cfg := query.TrailConfig{
		RootID:           dto.RootID,
		Mode:             query.TrailMode(dto.Mode),
		TargetID:         dto.TargetID,
		Depth:            dto.Depth,
		Direction:        query.TrailDirection(dto.Direction),
		CallerScope:      query.CallerScope(dto.CallerScope),
		EdgeFilter:       dto.EdgeFilter,
		NodeFilter:       dto.NodeFilter,
		ShowUtilityCalls: dto.ShowUtilityCalls,
		MaxNodes:         dto.MaxNodes,
	}
	resp, err := query.Trail(context.Background(), st, cfg)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, codeerr.NotFoundf("%v", err)
		}
		return nil, codeerr.InvalidArgf("%v", err)
	}
	return resp, nil
}

// NodeDetails returns one node plus its occurrences, owning file path,
// and any recorded extraction errors (only non-empty when id is itself
// a FILE node).
func (c *Controller) NodeDetails(id graph.NodeID) (*NodeDetailsDto, *codeerr.Error) {
	st, cerr := c.requireStore()
	if cerr != nil {
		return nil, cerr
	}
	ctx := context.Background()
	n, err := st.GetNode(ctx, id)
	if err != nil {
		return nil, codeerr.NotFoundf("node %d not found", id)
	}

	dto := &NodeDetailsDto{Node: n}
	if n.FileNodeID != nil {
		if f, err := st.GetNode(ctx, *n.FileNodeID); err == nil {
			dto.FilePath = f.QualifiedName
		}
	}
	if occs, err := st.OccurrencesForElement(ctx, int64(id)); err == nil {
		dto.Occurrences = occs
	}
	if n.Kind == graph.KindFile {
		if errs, err := st.ErrorsForFile(ctx, id); err == nil {
			dto.ExtractionErrs = errs
		}
	}
	return dto, nil
}

// ListRootSymbols returns symbols with no MEMBER owner other than a
// structural container (file/module/namespace/package) — the top-level
// declarations of each file, capped at limit (<=0 means no cap).
func (c *Controller) ListRootSymbols(limit int) ([]*graph.Node, *codeerr.Error) {
	st, cerr := c.requireStore()
	if cerr != nil {
		return nil, cerr
	}
	ctx := context.Background()

	allNodes, err := st.AllNodes(ctx)
	if err != nil {
		return nil, codeerr.Internalf(err, "load nodes")
	}
	memberEdges, err := st.AllEdgesOfKind(ctx, graph.EdgeMember)
	if err != nil {
		return nil, codeerr.Internalf(err, "load member edges")
	}

	nonRootOwner := make(map[graph.NodeID]bool)
	for _, e := range memberEdges {
		owner, err := st.GetNode(ctx, e.EffectiveSource())
		if err != nil {
			continue
		}
		if owner.Kind == graph.KindFile || owner.Kind == graph.KindModule ||
			owner.Kind == graph.KindNamespace || owner.Kind == graph.KindPackage {
			continue
		}
		nonRootOwner[e.EffectiveTarget()] = true
	}

	var roots []*graph.Node
	for _, n := range allNodes {
		switch n.Kind {
		case graph.KindFile, graph.KindModule, graph.KindNamespace, graph.KindPackage, graph.KindUnknown:
			continue
		}
		if nonRootOwner[n.ID] {
			continue
		}
		roots = append(roots, n)
		if limit > 0 && len(roots) >= limit {
			break
		}
	}
	return roots, nil
}

// ListChildrenSymbols returns every node owned by parent via a MEMBER
// edge.
func (c *Controller) ListChildrenSymbols(parentID graph.NodeID) ([]*graph.Node, *codeerr.Error) {
	st, cerr := c.requireStore()
	if cerr != nil {
		return nil, cerr
	}
	ctx := context.Background()
	if _, err := st.GetNode(ctx, parentID); err != nil {
		return nil, codeerr.NotFoundf("node %d not found", parentID)
	}

	edges, err := st.EdgesFromSource(ctx, parentID)
	if err != nil {
		return nil, codeerr.Internalf(err, "load edges")
	}
	var children []*graph.Node
	for _, e := range edges {
		if e.Kind != graph.EdgeMember {
			continue
		}
		if n, err := st.GetNode(ctx, e.EffectiveTarget()); err == nil {
			children = append(children, n)
		}
	}
	return children, nil
}

// ReadFileText reads a project-relative path, rejecting anything that
// canonicalizes outside the project root.
func (c *Controller) ReadFileText(path string) (string, *codeerr.Error) {
	full, cerr := c.resolveInRoot(path)
	if cerr != nil {
		return "", cerr
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", codeerr.NotFoundf("file %q not found", path)
		}
		return "", codeerr.Internalf(err, "read %q", path)
	}
	return string(data), nil
}

// WriteFileText writes a project-relative path, rejecting anything that
// canonicalizes outside the project root.
func (c *Controller) WriteFileText(path, text string) *codeerr.Error {
	full, cerr := c.resolveInRoot(path)
	if cerr != nil {
		return cerr
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return codeerr.Internalf(err, "create parent directory for %q", path)
	}
	if err := os.WriteFile(full, []byte(text), 0o644); err != nil {
		return codeerr.Internalf(err, "write %q", path)
	}
	return nil
}

func (c *Controller) resolveInRoot(relPath string) (string, *codeerr.Error) {
	c.mu.Lock()
	root := c.root
	c.mu.Unlock()
	if root == "" {
		return "", codeerr.InvalidArgf("no project open")
	}

	full := filepath.Clean(filepath.Join(root, relPath))
	cleanRoot := filepath.Clean(root)
	if full != cleanRoot && !strings.HasPrefix(full, cleanRoot+string(os.PathSeparator)) {
		return "", codeerr.InvalidArgf("path %q escapes project root", relPath)
	}
	return full, nil
}

// GetUILayout returns the opaque UI blob persisted at
// <root>/codestory_ui.json, or nil if none has been saved yet.
func (c *Controller) GetUILayout() (json.RawMessage, *codeerr.Error) {
	full, cerr := c.resolveInRoot(uiLayoutFile)
	if cerr != nil {
		return nil, cerr
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, codeerr.Internalf(err, "read ui layout")
	}
	return json.RawMessage(data), nil
}

// SetUILayout persists an opaque UI blob at <root>/codestory_ui.json.
func (c *Controller) SetUILayout(blob json.RawMessage) *codeerr.Error {
	if !json.Valid(blob) {
		return codeerr.InvalidArgf("ui layout is not valid json")
	}
	full, cerr := c.resolveInRoot(uiLayoutFile)
	if cerr != nil {
		return cerr
	}
	if err := os.WriteFile(full, blob, 0o644); err != nil {
		return codeerr.Internalf(err, "write ui layout")
	}
	return nil
}

// Close releases the open project's storage handle and stops any
// running watcher. Safe to call when no project is open.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWatcherLocked()
	c.cancelIndexingLocked()
	if c.st == nil {
		return nil
	}
	err := c.st.Close()
	c.st = nil
	c.root = ""
	c.cfg = nil
	c.indexer = nil
	c.searchIdx = nil
	return err
}

// ResolverTelemetry returns the open project's accumulated resolver
// telemetry (per-phase durations, per-strategy hit counts), or nil when
// no project is open.
func (c *Controller) ResolverTelemetry() *resolver.Telemetry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexer == nil {
		return nil
	}
	return c.indexer.Telemetry
}

func (c *Controller) requireStore() (*store.Store, *codeerr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st == nil {
		return nil, codeerr.InvalidArgf("no project open")
	}
	return c.st, nil
}

func nodeLookupErr(err error, id graph.NodeID) *codeerr.Error {
	if errors.Is(err, store.ErrNotFound) {
		return codeerr.NotFoundf("node %d not found", id)
	}
	return codeerr.Internalf(err, "load node %d", id)
}
