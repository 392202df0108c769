package extract

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/lang"
)

// treeSitterExtractor implements Extractor over a single LanguageSpec.
type treeSitterExtractor struct {
	spec *lang.LanguageSpec
}

func (e *treeSitterExtractor) Extract(input FileInput) (*IndexResult, error) {
	result := &IndexResult{}

	tree, err := parse(input.Language, input.Source)
	if err != nil {
		result.Errors = append(result.Errors, &graph.ErrorInfo{
			Message:           err.Error(),
			Fatal:             true,
			IndexedDuringStep: "parse",
		})
		return result, nil
	}
	defer tree.Close()

	w := &walker{
		spec:   e.spec,
		source: input.Source,
		path:   input.Path,
		result: result,
	}
	w.walkContainer(tree.RootNode(), ModuleRef, "")
	return result, nil
}

// walker carries per-file state while the AST is traversed.
type walker struct {
	spec   *lang.LanguageSpec
	source []byte
	path   string
	result *IndexResult

	// methodsByContainer records container qualified name -> method
	// names already seen, enabling a same-file OVERRIDE heuristic: a
	// method re-declared in a subtype of an already-walked base.
	methodsByContainer map[string]map[string]LocalRef
	// baseOf records a container's declared base names (from
	// InheritanceFieldNames), for the same-file override pass.
	baseOf map[string][]string
	// containerRefByQN records every type-shaped container's LocalRef by
	// qualified name, so a later impl block (Rust's `impl Type { .. }`)
	// can attach its methods to the type it extends rather than minting
	// a duplicate node.
	containerRefByQN map[string]LocalRef
	// overrideEmitted guards against duplicate OVERRIDE edges when
	// detectOverrides runs once per impl block of the same type.
	overrideEmitted map[[2]LocalRef]bool
}

func sourceRange(n *tree_sitter.Node) graph.SourceRange {
	start := n.StartPosition()
	end := n.EndPosition()
	return graph.SourceRange{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

func nameOf(n *tree_sitter.Node, source []byte, nameField string) string {
	if nameField == "" {
		nameField = "name"
	}
	nameNode := n.ChildByFieldName(nameField)
	if nameNode == nil {
		return ""
	}
	return nodeText(nameNode, source)
}

// declName resolves a type-shaped declaration's name, falling back to
// the parent spec node's "name" field when the grammar nests the actual
// kind (struct_type, interface_type, ...) inside an unnamed wrapper
// (Go's type_spec, and similar shapes elsewhere) whose "type" field
// points back at n.
func declName(n *tree_sitter.Node, source []byte, nameField string) string {
	if name := nameOf(n, source, nameField); name != "" {
		return name
	}
	parent := n.Parent()
	if parent == nil {
		return ""
	}
	if typeField := parent.ChildByFieldName("type"); typeField != nil && typeField.Id() == n.Id() {
		return nameOf(parent, source, nameField)
	}
	return ""
}

// walkContainer walks the direct and nested declarations of a container
// node (the file root, a class/struct body, etc), emitting a Node plus
// MEMBER edge for every declaration it recognizes, and recursing into
// callable bodies for CALL edges and into type declarations for nested
// members, inheritance, and overrides.
func (w *walker) walkContainer(root *tree_sitter.Node, containerRef LocalRef, containerQN string) {
	if w.methodsByContainer == nil {
		w.methodsByContainer = make(map[string]map[string]LocalRef)
		w.baseOf = make(map[string][]string)
		w.containerRefByQN = make(map[string]LocalRef)
		w.overrideEmitted = make(map[[2]LocalRef]bool)
	}

	spec := w.spec
	funcTypes := toSet(spec.FunctionNodeTypes)
	methodTypes := toSet(spec.MethodNodeTypes)
	structTypes := toSet(spec.StructNodeTypes)
	classTypes := toSet(spec.ClassNodeTypes)
	interfaceTypes := toSet(spec.InterfaceNodeTypes)
	enumTypes := toSet(spec.EnumNodeTypes)
	unionTypes := toSet(spec.UnionNodeTypes)
	typedefTypes := toSet(spec.TypedefNodeTypes)
	macroTypes := toSet(spec.MacroNodeTypes)
	annotationTypes := toSet(spec.AnnotationNodeTypes)
	fieldTypes := toSet(spec.FieldNodeTypes)
	enumConstTypes := toSet(spec.EnumConstantNodeTypes)
	variableTypes := toSet(spec.VariableNodeTypes)
	importTypes := toSet(spec.ImportNodeTypes)
	includeTypes := toSet(spec.IncludeNodeTypes)
	implTypes := toSet(spec.ImplNodeTypes)

	walk(root, func(n *tree_sitter.Node) bool {
		if n.Id() == root.Id() {
			return true
		}
		kind := n.Kind()

		switch {
		case funcTypes[kind] || methodTypes[kind]:
			w.emitCallable(n, containerRef, containerQN, methodTypes[kind])
			return false
		case structTypes[kind]:
			w.emitType(n, containerRef, containerQN, graph.KindStruct)
			return false
		case classTypes[kind]:
			w.emitType(n, containerRef, containerQN, graph.KindClass)
			return false
		case interfaceTypes[kind]:
			w.emitType(n, containerRef, containerQN, graph.KindInterface)
			return false
		case enumTypes[kind]:
			w.emitType(n, containerRef, containerQN, graph.KindEnum)
			return false
		case unionTypes[kind]:
			w.emitType(n, containerRef, containerQN, graph.KindUnion)
			return false
		case typedefTypes[kind]:
			w.emitSimple(n, containerRef, containerQN, graph.KindTypedef)
			return false
		case macroTypes[kind]:
			w.emitSimple(n, containerRef, containerQN, graph.KindMacro)
			return false
		case annotationTypes[kind]:
			w.emitSimple(n, containerRef, containerQN, graph.KindAnnotation)
			return false
		case enumConstTypes[kind]:
			w.emitSimple(n, containerRef, containerQN, graph.KindEnumConstant)
			return true
		case fieldTypes[kind]:
			w.emitField(n, containerRef, containerQN)
			return false
		case variableTypes[kind]:
			w.emitVariable(n, containerRef, containerQN)
			return false
		case importTypes[kind] && containerRef == ModuleRef:
			w.emitImport(n, graph.EdgeImport)
			return false
		case includeTypes[kind] && containerRef == ModuleRef:
			w.emitImport(n, graph.EdgeInclude)
			return false
		case implTypes[kind]:
			w.emitImplBlock(n)
			return false
		}
		return true
	})
}

func joinQN(container, name string) string {
	if container == "" {
		return name
	}
	return container + "." + name
}

// emitType handles struct/class/interface/enum/union declarations: a
// Node, a MEMBER edge from its container, INHERITANCE edges per
// InheritanceFieldNames, and recursion into the body for nested members.
func (w *walker) emitType(n *tree_sitter.Node, containerRef LocalRef, containerQN string, kind graph.NodeKind) {
	name := declName(n, w.source, w.spec.NameField)
	if name == "" {
		return
	}
	qn := joinQN(containerQN, name)
	spanNode := n
	if parent := n.Parent(); parent != nil {
		if typeField := parent.ChildByFieldName("type"); typeField != nil && typeField.Id() == n.Id() {
			spanNode = parent
		}
	}
	rng := sourceRange(spanNode)

	ref := w.result.addNode(LocalNode{
		Kind:           kind,
		SerializedName: name,
		QualifiedName:  qn,
		Range:          rng,
	})
	w.result.addOccurrence(LocalOccurrence{Element: ref, Range: rng, Kind: graph.OccDefinition})
	w.result.addEdge(LocalEdge{Kind: graph.EdgeMember, Source: containerRef, Target: ref})
	w.containerRefByQN[qn] = ref

	w.emitInheritance(n, ref, qn)

	w.methodsByContainer[qn] = make(map[string]LocalRef)
	w.walkContainer(n, ref, qn)
	w.detectOverrides(qn)
}

// emitImplBlock handles a method block attached to an already-named type
// rather than declaring one of its own — Rust's `impl Type { .. }` and
// `impl Trait for Type { .. }`. Its methods are keyed under the type named
// by its "type" field; when that type was declared earlier in the same
// file, its existing node is reused rather than minting a duplicate.
func (w *walker) emitImplBlock(n *tree_sitter.Node) {
	typeField := n.ChildByFieldName("type")
	if typeField == nil {
		return
	}
	typeName := simpleTypeName(nodeText(typeField, w.source))
	if typeName == "" {
		return
	}
	implRef, ok := w.containerRefByQN[typeName]
	if !ok {
		implRef = w.result.unknown(typeName, sourceRange(typeField))
		w.containerRefByQN[typeName] = implRef
	}

	w.emitInheritance(n, implRef, typeName)

	if w.methodsByContainer[typeName] == nil {
		w.methodsByContainer[typeName] = make(map[string]LocalRef)
	}
	w.walkContainer(n, implRef, typeName)
	w.detectOverrides(typeName)
}

// simpleTypeName strips generic arguments, reference/pointer sigils, and
// path qualification from a type-shaped field's raw text, e.g.
// "&mut Foo<T>" -> "Foo", "crate::bar::Foo" -> "Foo".
func simpleTypeName(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "&*")
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "mut ")
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, "<("); idx >= 0 {
		text = text[:idx]
	}
	return lastSegment(strings.TrimSpace(text))
}

// emitInheritance reads the language's InheritanceFieldNames off n,
// splits the raw text into candidate base-type names, and emits an
// UNKNOWN-targeted INHERITANCE edge per name. Each entry is tried first
// as a tree-sitter field name, then as a direct child node kind —
// grammars are split on whether a heritage clause is a field
// (tree-sitter-java's "superclass") or an unnamed child
// (tree-sitter-cpp's base_class_clause).
func (w *walker) emitInheritance(n *tree_sitter.Node, ref LocalRef, qn string) {
	if len(w.spec.InheritanceFieldNames) == 0 {
		return
	}
	var bases []string
	seen := make(map[uintptr]bool)
	for _, field := range w.spec.InheritanceFieldNames {
		fieldNode := n.ChildByFieldName(field)
		if fieldNode == nil {
			for i := uint(0); i < n.ChildCount(); i++ {
				if c := n.Child(i); c != nil && c.Kind() == field {
					fieldNode = c
					break
				}
			}
		}
		if fieldNode == nil || seen[fieldNode.Id()] {
			continue
		}
		seen[fieldNode.Id()] = true
		text := nodeText(fieldNode, w.source)
		bases = append(bases, splitBaseNames(text)...)
	}
	if len(bases) == 0 {
		return
	}
	w.baseOf[qn] = bases
	rng := sourceRange(n)
	for _, base := range bases {
		target := w.result.unknown(base, rng)
		w.result.addEdge(LocalEdge{Kind: graph.EdgeInheritance, Source: ref, Target: target})
		w.result.addOccurrence(LocalOccurrence{Element: target, Range: rng, Kind: graph.OccReference})
	}
}

// splitBaseNames extracts bare identifiers from a superclass/interface
// clause's raw text (e.g. "extends Base implements A, B", ": Base,
// IFoo", "(Base1, Base2)"), stripping generic arguments and punctuation.
func splitBaseNames(text string) []string {
	text = strings.NewReplacer(
		"extends", " ", "implements", " ", ":", " ", ",", " ",
		"(", " ", ")", " ", "{", " ", "}", " ", "class", " ",
		"public", " ", "private", " ", "protected", " ", "virtual", " ",
	).Replace(text)
	fields := strings.Fields(text)
	var names []string
	for _, f := range fields {
		if idx := strings.IndexAny(f, "<["); idx >= 0 {
			f = f[:idx]
		}
		f = strings.TrimSpace(f)
		if f != "" {
			names = append(names, f)
		}
	}
	return names
}

// detectOverrides compares a container's newly-declared methods against
// methods already seen on its base type(s), within the same file. This
// is a same-file heuristic only; cross-file override binding belongs to
// the resolver.
func (w *walker) detectOverrides(qn string) {
	bases := w.baseOf[qn]
	if len(bases) == 0 {
		return
	}
	methods := w.methodsByContainer[qn]
	for _, base := range bases {
		baseMethods, ok := w.methodsByContainer[base]
		if !ok {
			continue
		}
		for name, methodRef := range methods {
			baseRef, ok := baseMethods[name]
			if !ok || w.overrideEmitted[[2]LocalRef{methodRef, baseRef}] {
				continue
			}
			w.overrideEmitted[[2]LocalRef{methodRef, baseRef}] = true
			w.result.addEdge(LocalEdge{Kind: graph.EdgeOverride, Source: methodRef, Target: baseRef})
		}
	}
}

// emitSimple handles leaf declarations with no nested members: typedefs,
// macros, annotations, enum constants.
func (w *walker) emitSimple(n *tree_sitter.Node, containerRef LocalRef, containerQN string, kind graph.NodeKind) {
	name := nameOf(n, w.source, w.spec.NameField)
	if name == "" {
		return
	}
	rng := sourceRange(n)
	ref := w.result.addNode(LocalNode{
		Kind:           kind,
		SerializedName: name,
		QualifiedName:  joinQN(containerQN, name),
		Range:          rng,
	})
	w.result.addOccurrence(LocalOccurrence{Element: ref, Range: rng, Kind: graph.OccDefinition})
	w.result.addEdge(LocalEdge{Kind: graph.EdgeMember, Source: containerRef, Target: ref})
}

func (w *walker) emitField(n *tree_sitter.Node, containerRef LocalRef, containerQN string) {
	name := fieldName(n, w.source)
	if name == "" {
		return
	}
	rng := sourceRange(n)
	kind := graph.KindField
	ref := w.result.addNode(LocalNode{
		Kind:           kind,
		SerializedName: name,
		QualifiedName:  joinQN(containerQN, name),
		Range:          rng,
	})
	w.result.addOccurrence(LocalOccurrence{Element: ref, Range: rng, Kind: graph.OccDefinition})
	w.result.addEdge(LocalEdge{Kind: graph.EdgeMember, Source: containerRef, Target: ref})
	w.emitTypeUsage(n, ref)
}

func (w *walker) emitVariable(n *tree_sitter.Node, containerRef LocalRef, containerQN string) {
	name := nameOf(n, w.source, w.spec.NameField)
	if name == "" {
		// Variable declarators rarely expose a "name" field directly on
		// the statement node; try the first declarator child.
		name = firstDeclaratorName(n, w.source)
	}
	if name == "" {
		return
	}
	rng := sourceRange(n)
	kind := graph.KindVariable
	if containerRef == ModuleRef {
		kind = graph.KindGlobalVariable
	}
	ref := w.result.addNode(LocalNode{
		Kind:           kind,
		SerializedName: name,
		QualifiedName:  joinQN(containerQN, name),
		Range:          rng,
	})
	w.result.addOccurrence(LocalOccurrence{Element: ref, Range: rng, Kind: graph.OccDefinition})
	w.result.addEdge(LocalEdge{Kind: graph.EdgeMember, Source: containerRef, Target: ref})
}

// firstDeclaratorName finds the first identifier-shaped descendant of a
// multi-declarator variable statement (e.g. Go's var_declaration).
func firstDeclaratorName(n *tree_sitter.Node, source []byte) string {
	var found string
	walk(n, func(child *tree_sitter.Node) bool {
		if found != "" {
			return false
		}
		switch child.Kind() {
		case "identifier", "field_identifier":
			found = nodeText(child, source)
			return false
		}
		return true
	})
	return found
}

func fieldName(n *tree_sitter.Node, source []byte) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return nodeText(nameNode, source)
	}
	if declNode := n.ChildByFieldName("declarator"); declNode != nil {
		return firstDeclaratorName(declNode, source)
	}
	return firstDeclaratorName(n, source)
}

// emitTypeUsage emits a TYPE_USAGE edge from a field/parameter node to
// the UNKNOWN placeholder named by its "type" field, when present.
func (w *walker) emitTypeUsage(n *tree_sitter.Node, source LocalRef) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	typeText := strings.TrimSpace(nodeText(typeNode, w.source))
	if typeText == "" {
		return
	}
	rng := sourceRange(typeNode)
	target := w.result.unknown(typeText, rng)
	w.result.addEdge(LocalEdge{Kind: graph.EdgeTypeUsage, Source: source, Target: target})
	w.result.addOccurrence(LocalOccurrence{Element: target, Range: rng, Kind: graph.OccReference})
}

// emitCallable handles function/method declarations: a Node, a MEMBER
// edge, same-file-override bookkeeping, and a walk of the body for CALL
// edges.
func (w *walker) emitCallable(n *tree_sitter.Node, containerRef LocalRef, containerQN string, isMethodKind bool) {
	name := nameOf(n, w.source, w.spec.NameField)
	if name == "" {
		// C/C++ function_definitions carry no "name" field; the name sits
		// inside the declarator chain. Anonymous callables (lambdas,
		// arrow functions) have neither and are walked only for their
		// calls below.
		if declNode := n.ChildByFieldName("declarator"); declNode != nil {
			name = firstDeclaratorName(declNode, w.source)
		}
	}
	if name == "" {
		w.walkCallBody(n, containerRef, containerQN)
		return
	}
	kind := graph.KindFunction
	if isMethodKind || containerRef != ModuleRef {
		kind = graph.KindMethod
	}
	qn := joinQN(containerQN, name)
	rng := sourceRange(n)

	ref := w.result.addNode(LocalNode{
		Kind:           kind,
		SerializedName: name,
		QualifiedName:  qn,
		Range:          rng,
	})
	w.result.addOccurrence(LocalOccurrence{Element: ref, Range: rng, Kind: graph.OccDefinition})
	w.result.addEdge(LocalEdge{Kind: graph.EdgeMember, Source: containerRef, Target: ref})

	if kind == graph.KindMethod && containerQN != "" {
		if w.methodsByContainer[containerQN] == nil {
			w.methodsByContainer[containerQN] = make(map[string]LocalRef)
		}
		w.methodsByContainer[containerQN][name] = ref
	}

	w.walkCallBody(n, ref, qn)
}

// walkCallBody walks a callable's body for CALL expressions, emitting an
// UNKNOWN-targeted CALL edge per invocation with an idempotent callsite
// identity, and recurses into any nested function-shaped nodes (closures,
// nested functions) using the enclosing callable as their container.
func (w *walker) walkCallBody(body *tree_sitter.Node, enclosingRef LocalRef, enclosingQN string) {
	callTypes := toSet(w.spec.CallNodeTypes)
	funcTypes := toSet(w.spec.FunctionNodeTypes)

	walk(body, func(n *tree_sitter.Node) bool {
		if n.Id() == body.Id() {
			return true
		}
		kind := n.Kind()
		if callTypes[kind] {
			w.emitCall(n, enclosingRef, enclosingQN)
			return true
		}
		if funcTypes[kind] {
			// Nested/closure function: treat as its own callable with
			// the current callable as container.
			w.emitCallable(n, enclosingRef, enclosingQN, false)
			return false
		}
		return true
	})
}

func (w *walker) emitCall(n *tree_sitter.Node, callerRef LocalRef, callerQN string) {
	callee := calleeName(n, w.source)
	if callee == "" {
		return
	}
	rng := sourceRange(n)
	target := w.result.unknown(callee, rng)
	identity := fmt.Sprintf("%s:%s:%d", w.path, callerQN, n.StartByte())
	w.result.addEdge(LocalEdge{
		Kind:             graph.EdgeCall,
		Source:           callerRef,
		Target:           target,
		Line:             rng.StartLine,
		CallsiteIdentity: identity,
	})
	w.result.addOccurrence(LocalOccurrence{Element: target, Range: rng, Kind: graph.OccReference})
}

// calleeName extracts the invoked symbol's bare name from a call-shaped
// node, stripping receiver/namespace qualification down to the final
// segment (e.g. `obj.Method()` -> "Method", `pkg::func()` -> "func").
func calleeName(n *tree_sitter.Node, source []byte) string {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil {
		fnNode = n.ChildByFieldName("name")
	}
	if fnNode == nil {
		// Fall back to the first identifier-shaped child.
		for i := uint(0); i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "identifier", "field_identifier", "scoped_identifier":
				fnNode = c
			}
			if fnNode != nil {
				break
			}
		}
	}
	if fnNode == nil {
		return ""
	}
	text := nodeText(fnNode, source)
	// Strip receiver/namespace qualification to the final segment.
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(text, sep); idx >= 0 {
			text = text[idx+len(sep):]
		}
	}
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, "(<"); idx >= 0 {
		text = text[:idx]
	}
	return text
}

// emitImport handles an import/include declaration: splits its raw text
// into one or more candidate symbol names and emits an IMPORT/INCLUDE
// edge per name, targeting an UNKNOWN node carrying the verbatim text.
func (w *walker) emitImport(n *tree_sitter.Node, edgeKind graph.EdgeKind) {
	raw := nodeText(n, w.source)
	rng := sourceRange(n)
	for _, name := range importNames(raw, edgeKind) {
		target := w.result.unknown(name, rng)
		w.result.addEdge(LocalEdge{
			Kind:   edgeKind,
			Source: ModuleRef,
			Target: target,
			Line:   rng.StartLine,
		})
		w.result.addOccurrence(LocalOccurrence{Element: target, Range: rng, Kind: graph.OccReference})
	}
}

// importNames expands an import/include statement's raw text into
// candidate symbol names: "a.b.C" -> ["C"], "use x::{A, B as C}" ->
// ["A", "C"], `import * as X from "y"` -> ["y"], `#include "foo/bar.h"`
// -> ["foo/bar"]. Extensions and quotes are stripped from path-shaped
// includes; identifier-shaped imports keep their last segment.
func importNames(raw string, edgeKind graph.EdgeKind) []string {
	raw = strings.TrimSpace(raw)
	if edgeKind == graph.EdgeInclude {
		raw = strings.TrimPrefix(raw, "#include")
		raw = strings.TrimSpace(raw)
		raw = strings.Trim(raw, "\"<>")
		if dot := strings.LastIndex(raw, "."); dot > strings.LastIndex(raw, "/") {
			raw = raw[:dot]
		}
		if raw == "" {
			return nil
		}
		return []string{raw}
	}

	// use x::{A, B as C};  ->  A, C
	if strings.Contains(raw, "{") && strings.Contains(raw, "}") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start >= 0 && end > start {
			inner := raw[start+1 : end]
			var names []string
			for _, part := range strings.Split(inner, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if idx := strings.Index(part, " as "); idx >= 0 {
					part = strings.TrimSpace(part[idx+4:])
				}
				names = append(names, lastSegment(part))
			}
			return names
		}
	}

	// import * as X from "y"; import foo from "y"
	if strings.Contains(raw, "from") {
		start := strings.IndexAny(raw, "\"'")
		end := strings.LastIndexAny(raw, "\"'")
		if start >= 0 && end > start {
			return []string{raw[start+1 : end]}
		}
	}

	// as-aliasing without braces: use a::b as C;
	if idx := strings.Index(raw, " as "); idx >= 0 {
		return []string{strings.TrimSpace(raw[idx+4:])}
	}

	// Strip statement keywords and punctuation, keep the dotted path.
	cleaned := strings.NewReplacer(
		"import", "", "use", "", "extern crate", "", "using", "",
		";", "", "\"", "", "'", "",
	).Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}
	return []string{lastSegment(cleaned)}
}

func lastSegment(path string) string {
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(path, sep); idx >= 0 {
			return path[idx+len(sep):]
		}
	}
	return path
}
