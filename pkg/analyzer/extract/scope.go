package extract

import "github.com/panbanda/codescope/pkg/models"

// scope is the traversal context handed down to children by value. Entering a
// function, class or component derives a new scope; leaving it is simply
// returning to the caller's copy.
type scope struct {
	name      string
	class     string
	component *componentBuilder
}

func globalScope() scope {
	return scope{name: models.GlobalScope}
}

func (s scope) withFunction(name string) scope {
	s.name = name
	return s
}

func (s scope) withClass(name string) scope {
	s.class = name
	s.name = name
	return s
}

func (s scope) withComponent(c *componentBuilder) scope {
	s.component = c
	return s
}

// qualify prefixes member with the enclosing class name, if any.
func (s scope) qualify(member string) string {
	if s.class == "" {
		return member
	}
	return s.class + "." + member
}
