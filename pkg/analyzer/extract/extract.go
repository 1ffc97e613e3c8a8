// Package extract walks one file's syntax tree and records its functions,
// variables, imports, classes, UI components and dependency edges.
package extract

import (
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codescope/pkg/analyzer/complexity"
	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/parser"
)

// Extractor turns parse results into FileAnalysis values. It holds no
// per-file state and is safe for concurrent use.
type Extractor struct {
	calc   *complexity.Calculator
	logger *slog.Logger
}

// Option is a functional option for configuring Extractor.
type Option func(*Extractor)

// WithCalculator sets the complexity calculator used for every function.
func WithCalculator(c *complexity.Calculator) Option {
	return func(e *Extractor) {
		e.calc = c
	}
}

// WithLogger sets the logger for extraction diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// New creates a new extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		calc:   complexity.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract performs a single depth-first walk of result and returns the
// file's entities. Dependency edges are file-local: CalleeFile equals the
// file being scanned until the resolver rewrites them.
func (e *Extractor) Extract(result *parser.ParseResult) models.FileAnalysis {
	x := &fileExtractor{
		path: result.Path,
		src:  result.Source,
		calc: e.calc,
	}
	x.visit(result.Root(), globalScope())

	fa := models.NewFileAnalysis(result.Path)
	fa.Language = string(result.Language)
	fa.Functions = append(fa.Functions, x.functions...)
	fa.Variables = append(fa.Variables, x.variables...)
	fa.Imports = append(fa.Imports, x.imports...)
	fa.Classes = append(fa.Classes, x.classes...)
	fa.Dependencies = append(fa.Dependencies, x.edges...)
	for _, c := range x.components {
		fa.Components = append(fa.Components, c.build())
	}

	e.logger.Debug("extracted file",
		"file", result.Path,
		"functions", len(fa.Functions),
		"components", len(fa.Components),
		"dependencies", len(fa.Dependencies))
	return fa
}

// fileExtractor accumulates the entities of a single file.
type fileExtractor struct {
	path string
	src  []byte
	calc *complexity.Calculator

	functions  []models.FunctionEntity
	variables  []models.VariableEntity
	imports    []models.ImportEntity
	classes    []models.ClassEntity
	components []*componentBuilder
	edges      []models.DependencyEdge
}

func (x *fileExtractor) text(n *sitter.Node) string {
	return parser.GetNodeText(n, x.src)
}

func (x *fileExtractor) location(n *sitter.Node) models.Location {
	start := n.StartPoint()
	return models.Location{
		File:      x.path,
		StartLine: start.Row + 1,
		EndLine:   n.EndPoint().Row + 1,
		Column:    start.Column + 1,
	}
}

func (x *fileExtractor) visitChildren(n *sitter.Node, sc scope) {
	for i := range int(n.NamedChildCount()) {
		if child := n.NamedChild(i); child != nil {
			x.visit(child, sc)
		}
	}
}

func (x *fileExtractor) visit(n *sitter.Node, sc scope) {
	switch n.Type() {
	case "import_statement":
		x.importsFromStatement(n)
		return
	case "function_declaration", "generator_function_declaration":
		if name := x.text(n.ChildByFieldName("name")); name != "" {
			x.recordFunction(n, name, functionKind(n.Type()), sc)
			return
		}
	case "class_declaration", "abstract_class_declaration":
		x.visitClass(n, x.text(n.ChildByFieldName("name")), sc)
		return
	case "lexical_declaration", "variable_declaration":
		kind := declarationKind(n)
		for _, child := range parser.NamedChildren(n) {
			if child.Type() == "variable_declarator" {
				x.visitDeclarator(child, kind, sc)
			} else {
				x.visit(child, sc)
			}
		}
		return
	case "call_expression":
		x.visitCall(n, sc)
	case "new_expression":
		if callee := x.memberChain(n.ChildByFieldName("constructor")); callee != "" {
			x.addEdge(sc, callee, models.EdgeNew, n)
		}
	case "jsx_opening_element", "jsx_self_closing_element":
		x.visitJSXTag(n, sc)
	case "member_expression":
		x.visitPropsAccess(n, sc)
	}
	x.visitChildren(n, sc)
}

// declarationKind reads const/let from a lexical declaration's keyword.
func declarationKind(n *sitter.Node) models.VariableKind {
	if n.Type() == "variable_declaration" {
		return models.VariableVar
	}
	if kw := n.Child(0); kw != nil && kw.Type() == "let" {
		return models.VariableLet
	}
	return models.VariableConst
}

// recordFunction records fn under name, classifies it as a component when it
// returns JSX, and walks its parameters and body in the function's scope.
func (x *fileExtractor) recordFunction(n *sitter.Node, name string, kind models.FunctionKind, sc scope) models.FunctionEntity {
	params := parameterNodes(n)
	loc := x.location(n)

	fn := models.FunctionEntity{
		ID:         models.EntityID(x.path, name, loc.StartLine),
		Name:       name,
		Params:     make([]string, 0, len(params)),
		Location:   loc,
		Complexity: x.calc.Calculate(n.ChildByFieldName("body")),
		IsAsync:    parser.HasToken(n, "async"),
		Kind:       kind,
		File:       x.path,
	}
	for _, p := range params {
		fn.Params = append(fn.Params, x.paramNames(p)...)
	}

	inner := sc.withFunction(name)
	if kind != models.FunctionMethod && returnsJSX(n) {
		fn.IsComponent = true
		comp := newComponent(name, models.ComponentFunction, x.path)
		if len(params) > 0 {
			for _, prop := range propsFromParam(params[0], x.src) {
				comp.addProp(prop)
			}
		}
		x.components = append(x.components, comp)
		inner = inner.withComponent(comp)
	}

	x.functions = append(x.functions, fn)
	x.visitChildren(n, inner)
	return fn
}

// parameterNodes returns a function's parameters, including the bare
// identifier of `x => ...`.
func parameterNodes(fn *sitter.Node) []*sitter.Node {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return []*sitter.Node{p}
	}
	var params []*sitter.Node
	for _, p := range parser.NamedChildren(fn.ChildByFieldName("parameters")) {
		if p.Type() == "this" {
			continue
		}
		params = append(params, p)
	}
	return params
}

// paramNames lists the names a parameter binds. A destructured parameter
// contributes each bound identifier; a top-level rest parameter keeps its
// "..." prefix.
func (x *fileExtractor) paramNames(p *sitter.Node) []string {
	switch p.Type() {
	case "identifier":
		return []string{x.text(p)}
	case "assignment_pattern":
		return x.paramNames(p.ChildByFieldName("left"))
	case "rest_pattern":
		return []string{"..." + restName(p, x.src)}
	case "object_pattern", "array_pattern":
		return boundNames(p, x.src)
	case "required_parameter", "optional_parameter":
		if pattern := p.ChildByFieldName("pattern"); pattern != nil {
			return x.paramNames(pattern)
		}
	}
	return []string{strings.Join(strings.Fields(x.text(p)), " ")}
}

func (x *fileExtractor) visitDeclarator(d *sitter.Node, kind models.VariableKind, sc scope) {
	nameNode := d.ChildByFieldName("name")
	value := d.ChildByFieldName("value")
	if nameNode == nil {
		x.visitChildren(d, sc)
		return
	}

	var hook string
	if value != nil && value.Type() == "call_expression" {
		hook = hookName(value.ChildByFieldName("function"), x.src)
	}
	isState := hook == stateHook && sc.component != nil
	line := d.StartPoint().Row + 1

	switch nameNode.Type() {
	case "identifier":
		v := x.newVariable(x.text(nameNode), kind, line)
		v.TypeNote = x.typeNote(d, value)
		if isState {
			v.IsState = true
			v.TypeNote = stateHook
			sc.component.addState(v)
		}
		x.variables = append(x.variables, v)

		if source := x.requireSource(value); source != "" {
			x.importsFromRequire(nameNode, source)
		}
		if isFunctionValue(value) {
			x.recordFunction(value, v.Name, functionKind(value.Type()), sc)
			return
		}
		if value != nil && value.Type() == "class" {
			x.visitClass(value, v.Name, sc)
			return
		}

	case "array_pattern":
		stateIdx, setterIdx := -1, -1
		if isState {
			stateIdx, setterIdx = stateSlots(nameNode)
		}
		for i, el := range parser.NamedChildren(nameNode) {
			for _, name := range boundNames(el, x.src) {
				v := x.newVariable(name, kind, line)
				switch i {
				case stateIdx:
					v.IsState = true
					v.TypeNote = stateHook
					sc.component.addState(v)
				case setterIdx:
					v.TypeNote = "setter"
				}
				x.variables = append(x.variables, v)
			}
		}
		if source := x.requireSource(value); source != "" {
			x.importsFromRequire(nameNode, source)
		}
		x.visit(nameNode, sc)

	case "object_pattern":
		for _, name := range boundNames(nameNode, x.src) {
			x.variables = append(x.variables, x.newVariable(name, kind, line))
		}
		if source := x.requireSource(value); source != "" {
			x.importsFromRequire(nameNode, source)
		}
		if c := sc.component; c != nil && c.kind == models.ComponentClass && x.text(value) == "this.props" {
			for _, prop := range propsFromParam(nameNode, x.src) {
				c.addProp(prop)
			}
		}
		x.visit(nameNode, sc)
	}

	if value != nil {
		x.visit(value, sc)
	}
}

// stateSlots returns the element positions of the state value and its setter
// in `const [value, setValue] = useState()`, accounting for a leading hole.
func stateSlots(pattern *sitter.Node) (int, int) {
	if first := pattern.Child(1); first != nil && first.IsNamed() {
		return 0, 1
	}
	return -1, 0
}

func (x *fileExtractor) newVariable(name string, kind models.VariableKind, line uint32) models.VariableEntity {
	return models.VariableEntity{
		Name: name,
		Kind: kind,
		File: x.path,
		Line: line,
	}
}

// typeNote returns the TypeScript annotation of a declarator, or "function"
// for function-valued declarators.
func (x *fileExtractor) typeNote(d, value *sitter.Node) string {
	if t := d.ChildByFieldName("type"); t != nil {
		return strings.TrimSpace(strings.TrimPrefix(x.text(t), ":"))
	}
	if isFunctionValue(value) {
		return "function"
	}
	return ""
}

// boundNames lists the identifiers a destructuring pattern binds, in order.
func boundNames(pattern *sitter.Node, src []byte) []string {
	if pattern == nil {
		return nil
	}
	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []string{parser.GetNodeText(pattern, src)}
	case "pair_pattern":
		return boundNames(pattern.ChildByFieldName("value"), src)
	case "object_assignment_pattern", "assignment_pattern":
		return boundNames(pattern.ChildByFieldName("left"), src)
	case "rest_pattern":
		return boundNames(pattern.NamedChild(0), src)
	case "object_pattern", "array_pattern":
		var names []string
		for _, el := range parser.NamedChildren(pattern) {
			names = append(names, boundNames(el, src)...)
		}
		return names
	default:
		return nil
	}
}

func (x *fileExtractor) visitClass(n *sitter.Node, name string, sc scope) {
	if name == "" {
		x.visitChildren(n, sc)
		return
	}

	body := n.ChildByFieldName("body")
	super, heritage := x.superclass(n)
	cls := models.ClassEntity{
		Name:       name,
		SuperClass: super,
		Methods:    []models.FunctionEntity{},
		Properties: []models.VariableEntity{},
		File:       x.path,
		Location:   x.location(n),
	}
	if heritage != nil {
		x.visitChildren(heritage, sc)
	}

	inner := sc.withClass(name)
	if isComponentBase(super) && hasRenderMethod(body, x.src) {
		cls.IsComponent = true
		comp := newComponent(name, models.ComponentClass, x.path)
		x.components = append(x.components, comp)
		inner = inner.withComponent(comp)
	}

	for _, member := range parser.NamedChildren(body) {
		switch member.Type() {
		case "method_definition":
			qualified := inner.qualify(x.text(member.ChildByFieldName("name")))
			cls.Methods = append(cls.Methods, x.recordFunction(member, qualified, models.FunctionMethod, inner))
		case "field_definition", "public_field_definition":
			key := member.ChildByFieldName("property")
			if key == nil {
				key = member.ChildByFieldName("name")
			}
			prop := models.VariableEntity{
				Name: inner.qualify(propertyKey(key, x.src)),
				Kind: models.VariableProperty,
				File: x.path,
				Line: member.StartPoint().Row + 1,
			}
			value := member.ChildByFieldName("value")
			prop.TypeNote = x.typeNote(member, value)
			if isFunctionValue(value) {
				cls.Methods = append(cls.Methods, x.recordFunction(value, prop.Name, models.FunctionMethod, inner))
			} else if value != nil {
				x.visit(value, inner.withFunction(prop.Name))
			}
			cls.Properties = append(cls.Properties, prop)
		default:
			x.visit(member, inner)
		}
	}

	x.classes = append(x.classes, cls)
}

// superclass returns the extends target of a class and its heritage node.
func (x *fileExtractor) superclass(n *sitter.Node) (string, *sitter.Node) {
	for i := range int(n.ChildCount()) {
		heritage := n.Child(i)
		if heritage == nil || heritage.Type() != "class_heritage" {
			continue
		}
		for _, h := range parser.NamedChildren(heritage) {
			switch h.Type() {
			case "extends_clause":
				target := h.ChildByFieldName("value")
				if target == nil {
					target = h.NamedChild(0)
				}
				return x.text(target), heritage
			case "implements_clause":
				continue
			default:
				return x.text(h), heritage
			}
		}
		return "", heritage
	}
	return "", nil
}
