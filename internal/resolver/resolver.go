// Package resolver binds unresolved CALL and IMPORT edges to concrete
// node definitions with best-effort confidence, following the staged
// strategy table and skip-list policy this engine is built around.
//
// The resolver is storage-agnostic: callers build a CandidateIndex from
// whatever nodes are in scope for a pass, then call Resolve per edge.
// Resolution reads only; deciding what to persist is the caller's job.
package resolver

import (
	"strings"

	"github.com/codestory/codestory/internal/graph"
)

// Strategy identifies which stage of the resolution table produced a
// decision.
type Strategy string

const (
	StrategySemanticLanguage Strategy = "semantic-language"
	StrategySameFile         Strategy = "same-file"
	StrategySameModule       Strategy = "same-module"
	StrategyGlobalUnique     Strategy = "global-unique"
	StrategySemanticFallback Strategy = "semantic-fallback"
	StrategyFuzzyImport      Strategy = "fuzzy-import"
	StrategyNone             Strategy = ""
)

// Confidence values per stage, exactly the bands the resolver contract
// specifies.
const (
	ConfidenceSameFile     = 0.95
	ConfidenceSameModule   = 0.80
	ConfidenceGlobalUnique = 0.62
	ConfidenceFuzzyImport  = 0.35
)

// Confidence gates. Legacy is the looser historical floor kept for
// compatibility with already-resolved edges written before the default
// floor was raised; new resolution runs use Default.
const (
	MinConfidenceLegacy  = 0.40
	MinConfidenceDefault = 0.60
)

// MaxCandidates bounds how many candidate IDs are retained per edge when
// StoreAllCandidates is enabled.
const MaxCandidates = 8

// Config tunes one resolution pass.
type Config struct {
	// MinConfidence is the active floor; resolutions below it are
	// dropped (target, confidence, and certainty all cleared).
	MinConfidence float64
	// StoreAllCandidates keeps up to MaxCandidates candidate node IDs
	// even when no primary target was accepted, for UI disambiguation.
	StoreAllCandidates bool
	// Semantic is an optional per-language adapter consulted before the
	// structural stages and again as a last resort. Nil skips both.
	Semantic SemanticAdapter
}

// DefaultConfig returns the resolver's default-floor configuration with
// candidate storage enabled and no semantic adapter.
func DefaultConfig() Config {
	return Config{MinConfidence: MinConfidenceDefault, StoreAllCandidates: true}
}

// SemanticSuggestion is one candidate a SemanticAdapter proposes.
type SemanticSuggestion struct {
	Target     graph.NodeID
	Certain    bool
	Confidence float64
}

// SemanticAdapter lets a language-specific resolver contribute candidates
// using cues structural matching can't see (receiver type, same package
// import graph, etc). Implementations are optional; nil disables both
// the semantic-language and semantic-fallback stages.
type SemanticAdapter interface {
	Suggest(req Request) []SemanticSuggestion
}

// Request describes one unresolved edge to resolve.
type Request struct {
	// CalleeName is the raw name seen at the call/import site, possibly
	// qualified (e.g. "pkg.Func", "obj.method", "a::b::C").
	CalleeName string
	// CallerFileID is the FILE node owning the edge's source endpoint.
	CallerFileID graph.NodeID
	// CallerModulePrefix is the qualified-name prefix (module/package)
	// the caller belongs to, used for the same-module stage.
	CallerModulePrefix string
	// IsImport selects the import-edge strategy table (adds the final
	// fuzzy stage); false selects the call-edge table.
	IsImport bool
}

// Decision is the resolver's verdict for one Request.
type Decision struct {
	ResolvedTarget *graph.NodeID
	Confidence     float64
	Certainty      *graph.Certainty
	Strategy       Strategy
	Candidates     []graph.NodeID
}

// simpleName returns the last dot/`::`-separated segment of a possibly
// qualified callee/import name.
func simpleName(name string) string {
	name = strings.TrimSpace(name)
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			return name[idx+len(sep):]
		}
	}
	return name
}
