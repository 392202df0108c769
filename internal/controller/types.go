// Package controller is the facade an embedding UI or CLI talks to, and
// the only process-wide state this engine keeps: session lifecycle
// (OpenProject), indexing (StartIndexing plus an event bus), queries
// (Search, GraphNeighborhood, GraphTrail, NodeDetails, ListRootSymbols,
// ListChildrenSymbols), file access scoped to the project root, and
// opaque UI layout persistence.
package controller

import (
	"time"

	"github.com/codestory/codestory/internal/graph"
)

// IndexMode selects a full rebuild or an incremental refresh.
type IndexMode string

const (
	ModeFull        IndexMode = "Full"
	ModeIncremental IndexMode = "Incremental"
)

// Stats summarizes one project's graph size for ProjectSummary.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	FileCount  int
	ErrorCount int
}

// ProjectSummary is open_project's result.
type ProjectSummary struct {
	Root  string
	Stats Stats
}

// SearchHit is one search result: the matched node, where it lives, and
// its score.
type SearchHit struct {
	NodeID   graph.NodeID
	Name     string
	Kind     graph.NodeKind
	FilePath string
	Line     int
	Score    float64
}

// GraphRequest parameterizes graph_neighborhood.
type GraphRequest struct {
	CenterID graph.NodeID
	MaxEdges int // 0 uses the query package's default
}

// TrailConfigDto parameterizes graph_trail; mirrors query.TrailConfig
// field-for-field so the Controller boundary doesn't need its own
// traversal logic.
type TrailConfigDto struct {
	RootID           graph.NodeID
	Mode             string
	TargetID         *graph.NodeID
	Depth            int
	Direction        string
	CallerScope      string
	EdgeFilter       []graph.EdgeKind
	NodeFilter       []graph.NodeKind
	ShowUtilityCalls bool
	MaxNodes         int
}

// NodeDetailsDto is node_details' result: the node itself, its owning
// file's path if any, and every recorded occurrence and extraction
// error associated with it.
type NodeDetailsDto struct {
	Node           *graph.Node
	FilePath       string
	Occurrences    []*graph.Occurrence
	ExtractionErrs []*graph.ErrorInfo
}

// Event is the closed set of notifications broadcast to subscribers, in
// publication order.
type Event interface{ isControllerEvent() }

type StatusUpdate struct{ Message string }
type IndexingStarted struct{ FileCount int }
type IndexingProgress struct{ Current, Total int }
type IndexingComplete struct{ DurationMS int64 }
type IndexingFailed struct{ Error string }

func (StatusUpdate) isControllerEvent()     {}
func (IndexingStarted) isControllerEvent()  {}
func (IndexingProgress) isControllerEvent() {}
func (IndexingComplete) isControllerEvent() {}
func (IndexingFailed) isControllerEvent()   {}

// Envelope timestamps an event for subscribers that want ordering
// diagnostics beyond channel delivery order alone.
type Envelope struct {
	ID    string
	At    time.Time
	Event Event
}
