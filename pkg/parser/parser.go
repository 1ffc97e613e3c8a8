// Package parser turns JavaScript, TypeScript and JSX source into tree-sitter syntax trees.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported grammar.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// DefaultParseTimeout bounds a single file parse.
const DefaultParseTimeout = 10 * time.Second

var (
	// ErrFileTooLarge is returned when content exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrSyntax marks a tree that contains error or missing nodes.
	ErrSyntax = errors.New("syntax error")
)

// ParseError describes why a file could not be turned into a usable tree.
type ParseError struct {
	Path   string
	Line   uint32
	Column uint32
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser wraps a tree-sitter parser. A Parser is not safe for concurrent use;
// create one per goroutine.
type Parser struct {
	parser      *sitter.Parser
	maxFileSize int64
	timeout     time.Duration
}

// Option is a functional option for configuring Parser.
type Option func(*Parser)

// WithMaxFileSize sets the maximum content size in bytes (0 = no limit).
func WithMaxFileSize(size int64) Option {
	return func(p *Parser) {
		p.maxFileSize = size
	}
}

// WithTimeout bounds each parse (0 = no limit).
func WithTimeout(d time.Duration) Option {
	return func(p *Parser) {
		p.timeout = d
	}
}

// ParseResult contains the parsed tree and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// Root returns the program node.
func (r *ParseResult) Root() *sitter.Node {
	return r.Tree.RootNode()
}

// Close releases the tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// New creates a new parser instance.
func New(opts ...Option) *Parser {
	p := &Parser{
		parser:  sitter.NewParser(),
		timeout: DefaultParseTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses source using the grammar selected from path. Module syntax,
// JSX and TypeScript annotations are all accepted. A tree containing any error
// node is rejected with a *ParseError wrapping ErrSyntax.
func (p *Parser) Parse(ctx context.Context, source []byte, path string) (*ParseResult, error) {
	return p.ParseLanguage(ctx, source, DetectLanguage(path), path)
}

// ParseLanguage parses source with an explicit grammar.
func (p *Parser) ParseLanguage(ctx context.Context, source []byte, lang Language, path string) (*ParseResult, error) {
	if p.maxFileSize > 0 && int64(len(source)) > p.maxFileSize {
		return nil, &ParseError{Path: path, Err: ErrFileTooLarge}
	}

	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}

	result := &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}

	root := tree.RootNode()
	if root.HasError() {
		line, col := firstErrorPosition(root)
		result.Close()
		return nil, &ParseError{Path: path, Line: line, Column: col, Err: ErrSyntax}
	}

	return result, nil
}

// firstErrorPosition locates the first ERROR or missing node, 1-based.
func firstErrorPosition(root *sitter.Node) (uint32, uint32) {
	var found *sitter.Node
	Walk(root, nil, func(n *sitter.Node, _ []byte) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	if found == nil {
		return 0, 0
	}
	pt := found.StartPoint()
	return pt.Row + 1, pt.Column + 1
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// DetectLanguage selects a grammar from a file name. Anything that is not a
// TypeScript file is parsed with the JavaScript grammar, which accepts JSX.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	default:
		return LangJavaScript
	}
}

// IsSupported reports whether path has a JavaScript or TypeScript extension.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts":
		return !strings.HasSuffix(strings.ToLower(path), ".d.ts")
	default:
		return false
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST calling visitor for each node.
// Returning false from visitor skips the node's children.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// FindNodesByType returns all nodes of a specific type in document order.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	WalkTyped(root, source, func(n *sitter.Node, t string, _ []byte) bool {
		if t == nodeType {
			results = append(results, n)
		}
		return true
	})
	return results
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// NamedChildren returns the named children of node, skipping comments.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := range count {
		child := node.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// HasToken reports whether node has a direct anonymous child of the given type,
// such as the "async" keyword on a function.
func HasToken(node *sitter.Node, token string) bool {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}
