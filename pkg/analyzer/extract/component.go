package extract

import (
	"slices"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/parser"
)

const stateHook = "useState"

// effectHooks take a dependency array as their second argument.
var effectHooks = map[string]bool{
	"useEffect":       true,
	"useLayoutEffect": true,
}

// componentBases are the superclass names that make a class a component
// candidate, bare or namespaced (React.Component).
var componentBases = map[string]bool{
	"Component":     true,
	"PureComponent": true,
}

// componentBuilder accumulates a component's props, hooks, state and effects
// while its body is walked. Each builder belongs to a single file extraction.
type componentBuilder struct {
	name    string
	kind    models.ComponentKind
	file    string
	props   []string
	hooks   []string
	state   []models.VariableEntity
	effects [][]string
}

func newComponent(name string, kind models.ComponentKind, file string) *componentBuilder {
	return &componentBuilder{name: name, kind: kind, file: file}
}

func (c *componentBuilder) addProp(name string) {
	if name != "" && !slices.Contains(c.props, name) {
		c.props = append(c.props, name)
	}
}

func (c *componentBuilder) addHook(name string) {
	if !slices.Contains(c.hooks, name) {
		c.hooks = append(c.hooks, name)
	}
}

func (c *componentBuilder) addState(v models.VariableEntity) {
	c.state = append(c.state, v)
}

func (c *componentBuilder) addEffect(deps []string) {
	c.effects = append(c.effects, deps)
}

func (c *componentBuilder) build() models.ComponentEntity {
	return models.ComponentEntity{
		Name:    c.name,
		Kind:    c.kind,
		File:    c.file,
		Props:   nonNil(c.props),
		Hooks:   nonNil(c.hooks),
		State:   nonNil(c.state),
		Effects: nonNil(c.effects),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// IsHookName reports whether name follows the hook naming convention:
// "use" followed by an uppercase letter.
func IsHookName(name string) bool {
	rest, ok := strings.CutPrefix(name, "use")
	if !ok || rest == "" {
		return false
	}
	r := []rune(rest)[0]
	return r >= 'A' && r <= 'Z'
}

// isCapitalized reports whether name starts with an uppercase letter, the
// convention separating JSX components from intrinsic elements.
func isCapitalized(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// returnsJSX reports whether any return reachable in fn's own body, or an
// arrow's expression body, yields a JSX tree.
func returnsJSX(fn *sitter.Node) bool {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return false
	}
	if body.Type() != "statement_block" {
		return isJSXValue(body)
	}
	return containsJSXReturn(body)
}

func containsJSXReturn(node *sitter.Node) bool {
	for _, child := range parser.NamedChildren(node) {
		nodeType := child.Type()
		if isFunctionNode(nodeType) || nodeType == "class" || nodeType == "class_declaration" {
			continue
		}
		if nodeType == "return_statement" {
			if expr := child.NamedChild(0); expr != nil && isJSXValue(expr) {
				return true
			}
			continue
		}
		if containsJSXReturn(child) {
			return true
		}
	}
	return false
}

// isJSXValue looks through parentheses, ternaries and logical operators for
// a JSX element.
func isJSXValue(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	case "parenthesized_expression":
		return isJSXValue(node.NamedChild(0))
	case "ternary_expression":
		return isJSXValue(node.ChildByFieldName("consequence")) ||
			isJSXValue(node.ChildByFieldName("alternative"))
	case "binary_expression":
		return isJSXValue(node.ChildByFieldName("right"))
	default:
		return false
	}
}

// isComponentBase reports whether a superclass expression names a component base.
func isComponentBase(super string) bool {
	if super == "" {
		return false
	}
	if i := strings.LastIndex(super, "."); i >= 0 {
		super = super[i+1:]
	}
	return componentBases[super]
}

// hasRenderMethod reports whether a class body declares a method named render.
func hasRenderMethod(body *sitter.Node, src []byte) bool {
	for _, member := range parser.NamedChildren(body) {
		if member.Type() != "method_definition" {
			continue
		}
		if parser.GetNodeText(member.ChildByFieldName("name"), src) == "render" {
			return true
		}
	}
	return false
}

// propsFromParam derives prop names from a component's first parameter.
// Destructured keys become props and rest elements are marked with "...";
// a plain identifier is recorded as the props bag itself.
func propsFromParam(param *sitter.Node, src []byte) []string {
	if param == nil {
		return nil
	}
	switch param.Type() {
	case "identifier":
		return []string{parser.GetNodeText(param, src)}
	case "required_parameter", "optional_parameter":
		return propsFromParam(param.ChildByFieldName("pattern"), src)
	case "assignment_pattern":
		return propsFromParam(param.ChildByFieldName("left"), src)
	case "object_pattern":
		var props []string
		for _, el := range parser.NamedChildren(param) {
			switch el.Type() {
			case "shorthand_property_identifier_pattern":
				props = append(props, parser.GetNodeText(el, src))
			case "pair_pattern":
				props = append(props, propertyKey(el.ChildByFieldName("key"), src))
			case "object_assignment_pattern":
				props = append(props, parser.GetNodeText(el.ChildByFieldName("left"), src))
			case "rest_pattern":
				props = append(props, "..."+restName(el, src))
			}
		}
		return props
	default:
		return nil
	}
}

// propertyKey returns an object key without quotes.
func propertyKey(key *sitter.Node, src []byte) string {
	if key == nil {
		return ""
	}
	if key.Type() == "string" {
		return stringValue(key, src)
	}
	return parser.GetNodeText(key, src)
}

func restName(rest *sitter.Node, src []byte) string {
	if inner := rest.NamedChild(0); inner != nil {
		return parser.GetNodeText(inner, src)
	}
	return strings.TrimPrefix(parser.GetNodeText(rest, src), "...")
}

// isFunctionNode reports whether nodeType introduces a function body.
func isFunctionNode(nodeType string) bool {
	switch nodeType {
	case "function_declaration", "generator_function_declaration",
		"function", "function_expression", "generator_function",
		"arrow_function", "method_definition":
		return true
	default:
		return false
	}
}

// functionKind maps a function-valued node type onto a FunctionKind.
func functionKind(nodeType string) models.FunctionKind {
	switch nodeType {
	case "arrow_function":
		return models.FunctionArrow
	case "method_definition":
		return models.FunctionMethod
	case "function_declaration", "generator_function_declaration":
		return models.FunctionDeclaration
	default:
		return models.FunctionExpression
	}
}

// isFunctionValue reports whether node is a function literal.
func isFunctionValue(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	default:
		return false
	}
}
