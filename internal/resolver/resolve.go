package resolver

import (
	"sort"
	"strings"

	"github.com/codestory/codestory/internal/graph"
)

// Resolve runs the staged strategy table for one edge and returns a
// Decision. Resolution for a batch of edges is embarrassingly parallel
// per edge — Resolve only reads idx and cfg.Semantic, both safe for
// concurrent use once built.
func (idx *CandidateIndex) Resolve(req Request, cfg Config) Decision {
	name := simpleName(req.CalleeName)
	skipListed := graph.IsSkipListed(name)

	candidates := idx.collectCandidates(name, req, cfg)

	if cfg.Semantic != nil {
		if d, ok := idx.trySemantic(req, cfg, skipListed); ok {
			return finalize(d, candidates, cfg)
		}
	}

	// same-file: unique candidate in the caller's file. An import refers
	// outside its own file by definition, so this stage is call-only.
	if !req.IsImport && !skipListed {
		if sameFile := idx.byNameIn(name, req.CallerFileID); len(sameFile) == 1 {
			return finalize(decide(sameFile[0], ConfidenceSameFile, StrategySameFile), candidates, cfg)
		}
	}

	// same-module: unique candidate whose qualified name shares the
	// caller's module prefix. Always permitted, even for skip-listed
	// names.
	if req.CallerModulePrefix != "" {
		sameModule := idx.byNameUnderModule(name, req.CallerModulePrefix)
		if req.IsImport {
			sameModule = idx.excludeFile(sameModule, req.CallerFileID)
		}
		if len(sameModule) == 1 {
			return finalize(decide(sameModule[0], ConfidenceSameModule, StrategySameModule), candidates, cfg)
		}
	}

	// global-unique: exactly one candidate by name across the whole graph.
	if !skipListed {
		all := idx.byName[name]
		if req.IsImport {
			all = idx.excludeFile(all, req.CallerFileID)
		}
		if len(all) == 1 {
			return finalize(decide(all[0], ConfidenceGlobalUnique, StrategyGlobalUnique), candidates, cfg)
		}
	}

	// semantic fallback: best semantic candidate if all structural
	// stages failed. Skip-listed names only accept a `certain` hit here.
	if cfg.Semantic != nil {
		if d, ok := idx.trySemanticFallback(req, cfg, skipListed); ok {
			return finalize(d, candidates, cfg)
		}
	}

	if req.IsImport {
		if fuzzy, ok := idx.tryFuzzyImport(name, req); ok {
			return finalize(fuzzy, candidates, cfg)
		}
	}

	return finalize(Decision{Strategy: StrategyNone}, candidates, cfg)
}

func decide(id graph.NodeID, confidence float64, strategy Strategy) Decision {
	certainty := graph.CertaintyForConfidence(confidence)
	return Decision{
		ResolvedTarget: &id,
		Confidence:     confidence,
		Certainty:      &certainty,
		Strategy:       strategy,
	}
}

// collectCandidates gathers up to MaxCandidates plausible targets by name
// for CandidateTargets, independent of whether a primary resolution
// succeeds.
func (idx *CandidateIndex) collectCandidates(name string, req Request, cfg Config) []graph.NodeID {
	if !cfg.StoreAllCandidates {
		return nil
	}
	all := idx.byName[name]
	if len(all) <= MaxCandidates {
		out := make([]graph.NodeID, len(all))
		copy(out, all)
		return out
	}
	return append([]graph.NodeID(nil), all[:MaxCandidates]...)
}

// trySemantic runs the semantic-language stage. A skip-listed name only
// binds here when the adapter claims certainty; otherwise the structural
// stages (where same-module may still match) get their chance.
func (idx *CandidateIndex) trySemantic(req Request, cfg Config, skipListed bool) (Decision, bool) {
	suggestions := cfg.Semantic.Suggest(req)
	if len(suggestions) == 0 {
		return Decision{}, false
	}
	best := suggestions[0]
	if skipListed && !best.Certain {
		return Decision{}, false
	}
	certainty := graph.CertaintyForConfidence(best.Confidence)
	if best.Certain {
		certainty = graph.Certain
	}
	return Decision{
		ResolvedTarget: &best.Target,
		Confidence:     best.Confidence,
		Certainty:      &certainty,
		Strategy:       StrategySemanticLanguage,
	}, true
}

func (idx *CandidateIndex) trySemanticFallback(req Request, cfg Config, skipListed bool) (Decision, bool) {
	suggestions := cfg.Semantic.Suggest(req)
	if len(suggestions) == 0 {
		return Decision{}, false
	}
	best := suggestions[0]
	if skipListed && !best.Certain {
		return Decision{}, false
	}
	certainty := graph.CertaintyForConfidence(best.Confidence)
	if best.Certain {
		certainty = graph.Certain
	}
	return Decision{
		ResolvedTarget: &best.Target,
		Confidence:     best.Confidence,
		Certainty:      &certainty,
		Strategy:       StrategySemanticFallback,
	}, true
}

// tryFuzzyImport performs the import-edge-only final stage: substring
// matching against known symbol names, confidence 0.35. The match is
// deterministic: lexicographically smallest matching name, lowest node
// id within it.
func (idx *CandidateIndex) tryFuzzyImport(name string, req Request) (Decision, bool) {
	lowered := strings.ToLower(name)
	names := make([]string, 0, len(idx.byName))
	for candidateName := range idx.byName {
		names = append(names, candidateName)
	}
	sort.Strings(names)
	for _, candidateName := range names {
		cl := strings.ToLower(candidateName)
		if !strings.Contains(cl, lowered) && !strings.Contains(lowered, cl) {
			continue
		}
		ids := idx.excludeFile(idx.byName[candidateName], req.CallerFileID)
		if len(ids) == 0 {
			continue
		}
		best := ids[0]
		for _, id := range ids[1:] {
			if id < best {
				best = id
			}
		}
		return decide(best, ConfidenceFuzzyImport, StrategyFuzzyImport), true
	}
	return Decision{}, false
}

// finalize applies the minimum-confidence gate: a decision whose
// confidence falls below cfg.MinConfidence has its target/confidence/
// certainty cleared, but candidates are retained when enabled. Edges
// either end up with all three of (resolved_target, confidence,
// certainty) populated, or none of them.
func finalize(d Decision, candidates []graph.NodeID, cfg Config) Decision {
	d.Candidates = candidates
	if d.ResolvedTarget != nil && d.Confidence < cfg.MinConfidence {
		d.ResolvedTarget = nil
		d.Confidence = 0
		d.Certainty = nil
		d.Strategy = StrategyNone
	}
	return d
}
