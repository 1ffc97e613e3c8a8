// Package complexity scores JavaScript and TypeScript function bodies.
package complexity

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultMaxDepth bounds how deep a single body walk descends.
const DefaultMaxDepth = 2048

// decisionTypes are the node types that each add one path through a function.
// for_in_statement covers both for-in and for-of loops.
var decisionTypes = makeSet([]string{
	"if_statement",
	"ternary_expression",
	"for_statement",
	"for_in_statement",
	"while_statement",
	"do_statement",
	"switch_case",
	"switch_default",
	"catch_clause",
})

// Calculator computes the complexity score of function bodies.
type Calculator struct {
	maxDepth int
}

// Option is a functional option for configuring Calculator.
type Option func(*Calculator)

// WithMaxDepth bounds recursion into deeply nested bodies (0 = default).
func WithMaxDepth(depth int) Option {
	return func(c *Calculator) {
		c.maxDepth = depth
	}
}

// New creates a new complexity calculator.
func New(opts ...Option) *Calculator {
	c := &Calculator{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxDepth <= 0 {
		c.maxDepth = DefaultMaxDepth
	}
	return c
}

// Calculate returns 1 plus the decision points in body. Nested functions that
// are scored on their own are skipped. A nil body scores 1. An arrow's
// expression body counts itself, so `x => x ? 1 : 2` scores 2.
func (c *Calculator) Calculate(body *sitter.Node) int {
	if body == nil {
		return 1
	}
	return 1 + decisionWeight(body, body.Type()) + c.countDecisionPoints(body, 0)
}

// Calculate scores body with a default Calculator.
func Calculate(body *sitter.Node) int {
	return New().Calculate(body)
}

// CountDecisionPoints counts branching constructs below node, stopping at
// separately scored functions.
func CountDecisionPoints(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return New().countDecisionPoints(node, 0)
}

func (c *Calculator) countDecisionPoints(node *sitter.Node, depth int) int {
	if depth >= c.maxDepth {
		return 0
	}

	var count int
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		nodeType := child.Type()
		if IsScoredSeparately(child, nodeType) {
			continue
		}
		count += decisionWeight(child, nodeType)
		count += c.countDecisionPoints(child, depth+1)
	}
	return count
}

// decisionWeight is 1 for a branching construct or a short-circuit `&&`/`||`.
func decisionWeight(node *sitter.Node, nodeType string) int {
	if decisionTypes[nodeType] {
		return 1
	}
	if nodeType == "binary_expression" {
		if op := getOperator(node); op == "&&" || op == "||" {
			return 1
		}
	}
	return 0
}

// IsScoredSeparately reports whether node is a function or class whose body
// is attributed to its own entity rather than to the enclosing function.
func IsScoredSeparately(node *sitter.Node, nodeType string) bool {
	switch nodeType {
	case "function_declaration", "generator_function_declaration",
		"class_declaration", "class", "abstract_class_declaration":
		return true
	case "method_definition":
		parent := node.Parent()
		return parent != nil && parent.Type() == "class_body"
	case "arrow_function", "function", "function_expression", "generator_function":
		return IsDeclaratorValue(node)
	default:
		return false
	}
}

// IsDeclaratorValue reports whether node is the value bound to a plain
// identifier by a variable declarator, as in `const f = () => {}`.
func IsDeclaratorValue(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil || parent.Type() != "variable_declarator" {
		return false
	}
	name := parent.ChildByFieldName("name")
	value := parent.ChildByFieldName("value")
	if name == nil || value == nil || name.Type() != "identifier" {
		return false
	}
	return value.StartByte() == node.StartByte() && value.EndByte() == node.EndByte()
}

// getOperator extracts the operator token from a binary expression node.
func getOperator(node *sitter.Node) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child != nil && !child.IsNamed() {
			return child.Type()
		}
	}
	return ""
}

// makeSet converts a slice to a map for O(1) lookups.
func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
