package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/parser"
)

// IsLocalSpecifier is the isLocal heuristic: a bare module name with no
// scope prefix, no path separator and no leading dot.
func IsLocalSpecifier(source string) bool {
	if source == "" {
		return false
	}
	return !strings.HasPrefix(source, "@") &&
		!strings.Contains(source, "/") &&
		!strings.HasPrefix(source, ".")
}

// importsFromStatement records one entity per default, namespace or named
// specifier of an ES import. Side-effect imports record nothing.
func (x *fileExtractor) importsFromStatement(n *sitter.Node) {
	source := stringValue(n.ChildByFieldName("source"), x.src)
	if source == "" {
		return
	}

	for _, child := range parser.NamedChildren(n) {
		if child.Type() != "import_clause" {
			continue
		}
		for _, binding := range parser.NamedChildren(child) {
			switch binding.Type() {
			case "identifier":
				x.addImport(parser.GetNodeText(binding, x.src), source, func(e *models.ImportEntity) {
					e.IsDefault = true
				})
			case "namespace_import":
				name := binding.NamedChild(0)
				x.addImport(parser.GetNodeText(name, x.src), source, func(e *models.ImportEntity) {
					e.IsNamespace = true
				})
			case "named_imports":
				for _, spec := range parser.NamedChildren(binding) {
					if spec.Type() != "import_specifier" {
						continue
					}
					local := spec.ChildByFieldName("alias")
					if local == nil {
						local = spec.ChildByFieldName("name")
					}
					x.addImport(parser.GetNodeText(local, x.src), source, nil)
				}
			}
		}
	}
}

// requireSource returns the module string of a `require('m')` call, or "".
func (x *fileExtractor) requireSource(value *sitter.Node) string {
	if value == nil || value.Type() != "call_expression" {
		return ""
	}
	fn := value.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || parser.GetNodeText(fn, x.src) != "require" {
		return ""
	}
	args := value.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	arg := args.NamedChild(0)
	if arg == nil || arg.Type() != "string" {
		return ""
	}
	return stringValue(arg, x.src)
}

// importsFromRequire records the bindings of `const x = require('m')` and
// `const { a, b: c } = require('m')`.
func (x *fileExtractor) importsFromRequire(pattern *sitter.Node, source string) {
	mark := func(e *models.ImportEntity) { e.IsRequire = true }
	switch pattern.Type() {
	case "identifier":
		x.addImport(parser.GetNodeText(pattern, x.src), source, func(e *models.ImportEntity) {
			e.IsRequire = true
			e.IsDefault = true
		})
	case "object_pattern", "array_pattern":
		for _, name := range boundNames(pattern, x.src) {
			x.addImport(name, source, mark)
		}
	}
}

func (x *fileExtractor) addImport(name, source string, adjust func(*models.ImportEntity)) {
	if name == "" {
		return
	}
	imp := models.ImportEntity{
		Name:    name,
		Source:  source,
		File:    x.path,
		IsLocal: IsLocalSpecifier(source),
	}
	if adjust != nil {
		adjust(&imp)
	}
	x.imports = append(x.imports, imp)
}

// stringValue returns the contents of a string literal without its quotes.
func stringValue(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range parser.NamedChildren(node) {
		if part.Type() == "string_fragment" || part.Type() == "escape_sequence" {
			b.WriteString(parser.GetNodeText(part, src))
		}
	}
	if b.Len() > 0 {
		return b.String()
	}
	return strings.Trim(parser.GetNodeText(node, src), "'\"`")
}
