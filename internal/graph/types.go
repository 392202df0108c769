// Package graph defines the symbol graph data model: nodes, edges,
// occurrences, and the file metadata the rest of the engine operates on.
package graph

// NodeID and EdgeID are opaque dense identifiers assigned by storage.
type NodeID int64
type EdgeID int64

// NodeKind is the closed set of symbol kinds a Node may carry.
type NodeKind string

const (
	KindModule    NodeKind = "MODULE"
	KindNamespace NodeKind = "NAMESPACE"
	KindPackage   NodeKind = "PACKAGE"
	KindFile      NodeKind = "FILE"

	KindStruct      NodeKind = "STRUCT"
	KindClass       NodeKind = "CLASS"
	KindInterface   NodeKind = "INTERFACE"
	KindAnnotation  NodeKind = "ANNOTATION"
	KindUnion       NodeKind = "UNION"
	KindEnum        NodeKind = "ENUM"
	KindTypedef     NodeKind = "TYPEDEF"
	KindTypeParam   NodeKind = "TYPE_PARAMETER"
	KindBuiltinType NodeKind = "BUILTIN_TYPE"

	KindFunction NodeKind = "FUNCTION"
	KindMethod   NodeKind = "METHOD"
	KindMacro    NodeKind = "MACRO"

	KindGlobalVariable NodeKind = "GLOBAL_VARIABLE"
	KindField          NodeKind = "FIELD"
	KindVariable       NodeKind = "VARIABLE"
	KindConstant       NodeKind = "CONSTANT"
	KindEnumConstant   NodeKind = "ENUM_CONSTANT"

	KindUnknown NodeKind = "UNKNOWN"
)

// EdgeKind is the closed set of relation kinds an Edge may carry.
type EdgeKind string

const (
	EdgeMember                 EdgeKind = "MEMBER"
	EdgeTypeUsage              EdgeKind = "TYPE_USAGE"
	EdgeUsage                  EdgeKind = "USAGE"
	EdgeCall                   EdgeKind = "CALL"
	EdgeInheritance            EdgeKind = "INHERITANCE"
	EdgeOverride               EdgeKind = "OVERRIDE"
	EdgeTypeArgument           EdgeKind = "TYPE_ARGUMENT"
	EdgeTemplateSpecialization EdgeKind = "TEMPLATE_SPECIALIZATION"
	EdgeInclude                EdgeKind = "INCLUDE"
	EdgeImport                 EdgeKind = "IMPORT"
	EdgeMacroUsage             EdgeKind = "MACRO_USAGE"
	EdgeAnnotationUsage        EdgeKind = "ANNOTATION_USAGE"
	EdgeUnknown                EdgeKind = "UNKNOWN"
)

// OccurrenceKind is the closed set of source-range annotation kinds.
type OccurrenceKind string

const (
	OccDefinition      OccurrenceKind = "DEFINITION"
	OccReference       OccurrenceKind = "REFERENCE"
	OccDeclaration     OccurrenceKind = "DECLARATION"
	OccMacroDefinition OccurrenceKind = "MACRO_DEFINITION"
	OccMacroReference  OccurrenceKind = "MACRO_REFERENCE"
	OccUnknown         OccurrenceKind = "UNKNOWN"
)

// Certainty buckets an edge's confidence for display and filtering.
type Certainty string

const (
	Certain   Certainty = "certain"
	Probable  Certainty = "probable"
	Uncertain Certainty = "uncertain"
)

// Certainty confidence bands: certain >= 0.90, probable >= 0.60,
// otherwise uncertain.
const (
	CertainFloor  = 0.90
	ProbableFloor = 0.60
)

// CertaintyForConfidence derives the certainty band for a confidence value.
func CertaintyForConfidence(confidence float64) Certainty {
	switch {
	case confidence >= CertainFloor:
		return Certain
	case confidence >= ProbableFloor:
		return Probable
	default:
		return Uncertain
	}
}

// SourceRange is a 1-based, inclusive-begin/exclusive-end character range.
type SourceRange struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Node is one symbol in the graph.
type Node struct {
	ID             NodeID
	Kind           NodeKind
	SerializedName string
	QualifiedName  string // optional; empty for many members
	CanonicalID    string // optional stable identity hash; may be left empty
	FileNodeID     *NodeID
	Range          SourceRange
}

// Edge is a directed relation between two graph endpoints.
type Edge struct {
	ID     EdgeID
	Kind   EdgeKind
	Source NodeID
	Target NodeID

	ResolvedSource *NodeID
	ResolvedTarget *NodeID

	FileNodeID *NodeID
	Line       int

	Confidence *float64
	Certainty  *Certainty

	CallsiteIdentity string // "file:caller:offset", used for idempotent CALL upsert
	CandidateTargets []NodeID
}

// EffectiveSource returns resolved_source if present, else source.
func (e *Edge) EffectiveSource() NodeID {
	if e.ResolvedSource != nil {
		return *e.ResolvedSource
	}
	return e.Source
}

// EffectiveTarget returns resolved_target if present, else target.
func (e *Edge) EffectiveTarget() NodeID {
	if e.ResolvedTarget != nil {
		return *e.ResolvedTarget
	}
	return e.Target
}

// Occurrence links an element (node or edge) to a source range.
type Occurrence struct {
	ID         int64
	ElementID  int64 // NodeID or EdgeID; occurrences address both through one opaque ID space
	FileNodeID NodeID
	Range      SourceRange
	Kind       OccurrenceKind
}

// FileInfo describes one indexed source file.
type FileInfo struct {
	ID               NodeID
	Path             string
	Language         string
	ModificationTime int64  // unix seconds
	ContentHash      string // xxh3 of the file's bytes at last index, hex-encoded
	Indexed          bool
	Complete         bool
	LineCount        int
}

// ErrorInfo records a per-file extraction error. Extraction failures never
// abort a file's processing; they are recorded alongside partial results.
type ErrorInfo struct {
	Line              int
	Column            int
	Message           string
	Fatal             bool
	IndexedDuringStep string
}

// SkipList is the closed set of unqualified method names treated as
// semantically generic and therefore never globally resolved (only a
// same-module match, or a `certain` semantic resolver hit, may bind them).
var SkipList = map[string]bool{
	"push": true, "pop": true, "clear": true, "insert": true, "remove": true,
	"extend": true, "truncate": true, "add": true, "sort": true,
	"sort_by": true, "sort_by_key": true, "dedup": true,
}

// IsSkipListed reports whether name is a generic utility method name.
func IsSkipListed(name string) bool {
	return SkipList[name]
}
