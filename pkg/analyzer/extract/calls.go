package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/parser"
)

// visitCall records the call edge and, inside a component, any hook usage.
func (x *fileExtractor) visitCall(n *sitter.Node, sc scope) {
	fn := n.ChildByFieldName("function")
	if callee, kind := x.callee(fn); callee != "" {
		x.addEdge(sc, callee, kind, n)
	}

	hook := hookName(fn, x.src)
	if hook == "" || sc.component == nil {
		return
	}
	sc.component.addHook(hook)
	if effectHooks[hook] {
		if deps, ok := x.dependencyArray(n); ok {
			sc.component.addEffect(deps)
		}
	}
}

// callee names the target of a call: `f()` is "f", `a.b.c()` is "a.b.c".
// When the receiver is not a plain chain, as in `get().run()`, only the
// method name is kept.
func (x *fileExtractor) callee(fn *sitter.Node) (string, models.EdgeKind) {
	if fn == nil {
		return "", ""
	}
	switch fn.Type() {
	case "identifier":
		return x.text(fn), models.EdgeCall
	case "member_expression":
		if chain := x.memberChain(fn); chain != "" {
			return chain, models.EdgeMethod
		}
		if prop := fn.ChildByFieldName("property"); prop != nil {
			return x.text(prop), models.EdgeMethod
		}
	}
	return "", ""
}

// memberChain renders identifiers, `this` and dotted member accesses built
// from them. Anything else yields "".
func (x *fileExtractor) memberChain(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier", "this":
		return x.text(n)
	case "member_expression":
		object := x.memberChain(n.ChildByFieldName("object"))
		prop := n.ChildByFieldName("property")
		if object == "" || prop == nil {
			return ""
		}
		switch prop.Type() {
		case "property_identifier", "private_property_identifier":
			return object + "." + x.text(prop)
		}
	}
	return ""
}

// hookName returns the hook a call invokes, for `useX()` and `React.useX()`.
func hookName(fn *sitter.Node, src []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		if name := parser.GetNodeText(fn, src); IsHookName(name) {
			return name
		}
	case "member_expression":
		object := fn.ChildByFieldName("object")
		if object == nil || object.Type() != "identifier" {
			return ""
		}
		if name := parser.GetNodeText(fn.ChildByFieldName("property"), src); IsHookName(name) {
			return name
		}
	}
	return ""
}

// dependencyArray captures the plain identifiers of an effect's array-literal
// second argument.
func (x *fileExtractor) dependencyArray(call *sitter.Node) ([]string, bool) {
	args := parser.NamedChildren(call.ChildByFieldName("arguments"))
	if len(args) < 2 || args[1].Type() != "array" {
		return nil, false
	}
	deps := []string{}
	for _, el := range parser.NamedChildren(args[1]) {
		if el.Type() == "identifier" {
			deps = append(deps, x.text(el))
		}
	}
	return deps, true
}

// visitJSXTag records a composition edge for capitalized element names.
func (x *fileExtractor) visitJSXTag(n *sitter.Node, sc scope) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	switch name.Type() {
	case "identifier", "member_expression", "nested_identifier":
		if tag := x.text(name); isCapitalized(tag) {
			x.addEdge(sc, tag, models.EdgeJSX, n)
		}
	}
}

// visitPropsAccess collects `this.props.X` reads inside class components.
func (x *fileExtractor) visitPropsAccess(n *sitter.Node, sc scope) {
	c := sc.component
	if c == nil || c.kind != models.ComponentClass {
		return
	}
	object := n.ChildByFieldName("object")
	if object == nil || object.Type() != "member_expression" || x.text(object) != "this.props" {
		return
	}
	c.addProp(x.text(n.ChildByFieldName("property")))
}

func (x *fileExtractor) addEdge(sc scope, callee string, kind models.EdgeKind, at *sitter.Node) {
	x.edges = append(x.edges, models.DependencyEdge{
		Caller:     sc.name,
		Callee:     callee,
		File:       x.path,
		CalleeFile: x.path,
		Kind:       kind,
		Line:       at.StartPoint().Row + 1,
	})
}
