package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/lang"
	"github.com/codestory/codestory/internal/resolver"
)

// overrideCase describes one language's trait/interface + overriding-impl
// fixture: interfaceQN names the base container, implQN the overriding
// one, and method the name declared on both (the name detectOverrides
// must match to emit OVERRIDE, and the resolver must bind to implQN's
// copy rather than interfaceQN's).
type overrideCase struct {
	language    lang.Language
	path        string
	source      string
	interfaceQN string
	implQN      string
	method      string
}

// overrideCases exercises trait/interface declaration plus same-module
// override resolution across Rust, Java, TypeScript, and C++.
var overrideCases = []overrideCase{
	{
		language: lang.Rust,
		path:     "listener.rs",
		source: `trait EventListener {
    fn handle_event(&self, e: i32);
}

struct ConcreteListener;

impl EventListener for ConcreteListener {
    fn handle_event(&self, e: i32) {
        let _ = e;
    }
}

impl ConcreteListener {
    fn run(&self, e: i32) {
        self.handle_event(e);
    }
}
`,
		interfaceQN: "EventListener",
		implQN:      "ConcreteListener",
		method:      "handle_event",
	},
	{
		language: lang.Java,
		path:     "Listener.java",
		source: `interface EventListener {
    void handleEvent(int e);
}

class ConcreteListener implements EventListener {
    public void handleEvent(int e) {
    }

    public void run(int e) {
        handleEvent(e);
    }
}
`,
		interfaceQN: "EventListener",
		implQN:      "ConcreteListener",
		method:      "handleEvent",
	},
	{
		language: lang.TypeScript,
		path:     "listener.ts",
		source: `interface EventListener {
    handleEvent(e: number): void;
}

class ConcreteListener implements EventListener {
    handleEvent(e: number): void {
    }

    run(e: number): void {
        this.handleEvent(e);
    }
}
`,
		interfaceQN: "EventListener",
		implQN:      "ConcreteListener",
		method:      "handleEvent",
	},
	{
		language: lang.CPP,
		path:     "listener.cpp",
		source: `class EventListener {
public:
    virtual void handleEvent(int e) {
    }
};

class ConcreteListener : public EventListener {
public:
    void handleEvent(int e) override {
    }

    void run(int e) {
        handleEvent(e);
    }
};
`,
		interfaceQN: "EventListener",
		implQN:      "ConcreteListener",
		method:      "handleEvent",
	},
}

func TestExtractInheritanceAndOverrideAcrossLanguages(t *testing.T) {
	for _, tc := range overrideCases {
		tc := tc
		t.Run(string(tc.language), func(t *testing.T) {
			e, err := New(tc.language)
			require.NoError(t, err)
			result, err := e.Extract(FileInput{Path: tc.path, Language: tc.language, Source: []byte(tc.source)})
			require.NoError(t, err)

			implNode, ok := findQualified(result, tc.implQN)
			require.True(t, ok, "expected a node for %s", tc.implQN)

			baseMethod, ok := findQualified(result, tc.interfaceQN+"."+tc.method)
			require.True(t, ok, "expected the base declaration %s.%s", tc.interfaceQN, tc.method)
			implMethod, ok := findQualified(result, tc.implQN+"."+tc.method)
			require.True(t, ok, "expected the overriding declaration %s.%s", tc.implQN, tc.method)
			require.Equal(t, graph.KindMethod, implMethod.Kind)

			var hasInheritance bool
			for _, e := range result.Edges {
				if e.Kind != graph.EdgeInheritance || e.Source != NodeRef(indexOf(result, implNode)) {
					continue
				}
				target := result.Nodes[e.Target.Index]
				if target.SerializedName == tc.interfaceQN {
					hasInheritance = true
				}
			}
			require.True(t, hasInheritance, "expected an INHERITANCE edge from %s to %s", tc.implQN, tc.interfaceQN)

			var hasOverride bool
			for _, e := range result.Edges {
				if e.Kind == graph.EdgeOverride &&
					e.Source == NodeRef(indexOf(result, implMethod)) &&
					e.Target == NodeRef(indexOf(result, baseMethod)) {
					hasOverride = true
				}
			}
			require.True(t, hasOverride, "expected an OVERRIDE edge from %s.%s to %s.%s", tc.implQN, tc.method, tc.interfaceQN, tc.method)

			resolveOverrideCall(t, result, tc)
		})
	}
}

// resolveOverrideCall feeds the file's extracted nodes into a resolver
// CandidateIndex and resolves the CALL edge raised inside the implementing
// type's second method, asserting it binds to the overriding declaration
// (not the trait/interface one) at same-module confidence or better.
func resolveOverrideCall(t *testing.T, result *IndexResult, tc overrideCase) {
	t.Helper()
	fileID := graph.NodeID(1)

	nodes := make([]*graph.Node, len(result.Nodes))
	for i, n := range result.Nodes {
		id := graph.NodeID(i + 1)
		nodes[i] = &graph.Node{
			ID:             id,
			Kind:           n.Kind,
			SerializedName: n.SerializedName,
			QualifiedName:  n.QualifiedName,
			FileNodeID:     &fileID,
		}
	}
	idx := resolver.BuildCandidateIndex(nodes)

	callerNode, ok := findQualified(result, tc.implQN+".run")
	require.True(t, ok, "expected a caller method %s.run", tc.implQN)

	var callEdge *LocalEdge
	for i := range result.Edges {
		e := &result.Edges[i]
		if e.Kind != graph.EdgeCall || e.Source != NodeRef(indexOf(result, callerNode)) {
			continue
		}
		if result.Nodes[e.Target.Index].SerializedName == tc.method {
			callEdge = e
		}
	}
	require.NotNil(t, callEdge, "expected a CALL edge from %s.run to %s", tc.implQN, tc.method)

	callerPrefix := resolver.ModulePrefix(callerNode.QualifiedName)
	require.Equal(t, tc.implQN, callerPrefix)

	d := idx.Resolve(resolver.Request{
		CalleeName:         result.Nodes[callEdge.Target.Index].SerializedName,
		CallerFileID:       fileID,
		CallerModulePrefix: callerPrefix,
	}, resolver.DefaultConfig())

	require.NotNil(t, d.ResolvedTarget, "expected the override call to resolve")
	require.GreaterOrEqual(t, d.Confidence, resolver.ConfidenceSameModule)
	require.NotNil(t, d.Certainty)

	implMethod, ok := findQualified(result, tc.implQN+"."+tc.method)
	require.True(t, ok)
	require.Equal(t, graph.NodeID(indexOf(result, implMethod)+1), *d.ResolvedTarget, "must bind to the overriding method, not the trait/interface declaration")
}

func findQualified(result *IndexResult, qn string) (LocalNode, bool) {
	for _, n := range result.Nodes {
		if n.QualifiedName == qn {
			return n, true
		}
	}
	return LocalNode{}, false
}
