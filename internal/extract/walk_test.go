package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/lang"
)

func extractGo(t *testing.T, source string) *IndexResult {
	t.Helper()
	e, err := New(lang.Go)
	require.NoError(t, err)
	result, err := e.Extract(FileInput{Path: "main.go", Language: lang.Go, Source: []byte(source)})
	require.NoError(t, err)
	return result
}

func findNode(result *IndexResult, kind graph.NodeKind, name string) (LocalNode, bool) {
	for _, n := range result.Nodes {
		if n.Kind == kind && n.SerializedName == name {
			return n, true
		}
	}
	return LocalNode{}, false
}

func TestExtractFunctionDefinition(t *testing.T) {
	result := extractGo(t, `package main

func Greet(name string) string {
	return "hi " + name
}
`)
	n, ok := findNode(result, graph.KindFunction, "Greet")
	require.True(t, ok, "expected a FUNCTION node named Greet")
	require.Equal(t, "Greet", n.QualifiedName)

	var hasMember bool
	for _, e := range result.Edges {
		if e.Kind == graph.EdgeMember && e.Target == NodeRef(indexOf(result, n)) && e.Source == ModuleRef {
			hasMember = true
		}
	}
	require.True(t, hasMember, "expected a MEMBER edge from the module to Greet")

	var hasDefinition bool
	for _, o := range result.Occurrences {
		if o.Kind == graph.OccDefinition && o.Element == NodeRef(indexOf(result, n)) {
			hasDefinition = true
		}
	}
	require.True(t, hasDefinition)
}

func indexOf(result *IndexResult, target LocalNode) int {
	for i, n := range result.Nodes {
		if n == target {
			return i
		}
	}
	return -1
}

func TestExtractCallEmitsUnknownTargetAndIdempotentCallsite(t *testing.T) {
	result := extractGo(t, `package main

func caller() {
	helper()
}
`)
	var callEdge *LocalEdge
	for i := range result.Edges {
		if result.Edges[i].Kind == graph.EdgeCall {
			callEdge = &result.Edges[i]
		}
	}
	require.NotNil(t, callEdge, "expected a CALL edge")
	require.NotEmpty(t, callEdge.CallsiteIdentity)

	target := result.Nodes[callEdge.Target.Index]
	require.Equal(t, graph.KindUnknown, target.Kind)
	require.Equal(t, "helper", target.SerializedName)
}

func TestExtractStructFieldsAndMethods(t *testing.T) {
	result := extractGo(t, `package main

type Repo struct {
	Name string
}

func (r *Repo) Save() error {
	return nil
}
`)
	_, ok := findNode(result, graph.KindStruct, "Repo")
	require.True(t, ok, "expected a STRUCT node named Repo")

	// Go's method receivers are free functions with a receiver field in
	// this grammar, not lexically nested in the struct body, so Save is
	// extracted at module scope — still recorded as a METHOD node since
	// it carries a receiver.
	_, ok = findNode(result, graph.KindMethod, "Save")
	require.True(t, ok, "expected a METHOD node named Save")
}

func TestExtractImportEdge(t *testing.T) {
	result := extractGo(t, `package main

import "fmt"

func main() {
	fmt.Println("hi")
}
`)
	var hasImport bool
	for _, e := range result.Edges {
		if e.Kind == graph.EdgeImport {
			hasImport = true
		}
	}
	require.True(t, hasImport, "expected an IMPORT edge")
}

func TestUnknownExtensionSkipped(t *testing.T) {
	result, err := ExtractFile("README.txt", []byte("hello"))
	require.NoError(t, err)
	require.Nil(t, result)
}
