package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/parser"
)

func extractSource(t *testing.T, src, path string) models.FileAnalysis {
	t.Helper()

	p := parser.New()
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte(src), path)
	require.NoError(t, err)
	defer result.Close()

	return New().Extract(result)
}

func findFunction(t *testing.T, fa models.FileAnalysis, name string) models.FunctionEntity {
	t.Helper()
	for _, fn := range fa.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found in %v", name, functionNames(fa))
	return models.FunctionEntity{}
}

func functionNames(fa models.FileAnalysis) []string {
	names := make([]string, 0, len(fa.Functions))
	for _, fn := range fa.Functions {
		names = append(names, fn.Name)
	}
	return names
}

func findVariable(t *testing.T, fa models.FileAnalysis, name string) models.VariableEntity {
	t.Helper()
	for _, v := range fa.Variables {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("variable %q not found", name)
	return models.VariableEntity{}
}

func findComponent(t *testing.T, fa models.FileAnalysis, name string) models.ComponentEntity {
	t.Helper()
	for _, c := range fa.Components {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("component %q not found", name)
	return models.ComponentEntity{}
}

type edgeKey struct {
	caller, callee string
	kind           models.EdgeKind
}

func edgeKeys(fa models.FileAnalysis) []edgeKey {
	keys := make([]edgeKey, 0, len(fa.Dependencies))
	for _, e := range fa.Dependencies {
		keys = append(keys, edgeKey{e.Caller, e.Callee, e.Kind})
	}
	return keys
}

func TestExtract_EmptyFile(t *testing.T) {
	fa := extractSource(t, "", "empty.js")

	assert.Equal(t, "empty.js", fa.FileName)
	assert.Equal(t, "javascript", fa.Language)
	assert.Empty(t, fa.Functions)
	assert.Empty(t, fa.Variables)
	assert.Empty(t, fa.Imports)
	assert.Empty(t, fa.Classes)
	assert.Empty(t, fa.Components)
	assert.Empty(t, fa.Dependencies)
	assert.NotNil(t, fa.Functions)
}

func TestExtract_FunctionDeclarations(t *testing.T) {
	src := `function add(a, b = 1, ...rest) {
  return a + b;
}

async function load({ id }, [first]) {
  await fetch(id);
}

function* ids() { yield 1; }
`
	fa := extractSource(t, src, "math.js")

	assert.Equal(t, []string{"add", "load", "ids"}, functionNames(fa))

	add := findFunction(t, fa, "add")
	assert.Equal(t, []string{"a", "b", "...rest"}, add.Params)
	assert.Equal(t, models.FunctionDeclaration, add.Kind)
	assert.Equal(t, "math.js", add.File)
	assert.Equal(t, uint32(1), add.Location.StartLine)
	assert.Equal(t, uint32(3), add.Location.EndLine)
	assert.Equal(t, 1, add.Complexity)
	assert.False(t, add.IsAsync)
	assert.Equal(t, models.EntityID("math.js", "add", 1), add.ID)

	load := findFunction(t, fa, "load")
	assert.True(t, load.IsAsync)
	assert.Equal(t, []string{"id", "first"}, load.Params)
}

func TestExtract_ArrowAndExpressionFunctions(t *testing.T) {
	src := `const double = x => x * 2;
const fetchAll = async (urls) => Promise.all(urls.map(u => fetch(u)));
let legacy = function (a) { return a ? 1 : 0; };
items.forEach(function (item) { process(item); });
`
	fa := extractSource(t, src, "arrows.js")

	assert.Equal(t, []string{"double", "fetchAll", "legacy"}, functionNames(fa))

	double := findFunction(t, fa, "double")
	assert.Equal(t, models.FunctionArrow, double.Kind)
	assert.Equal(t, []string{"x"}, double.Params)

	assert.True(t, findFunction(t, fa, "fetchAll").IsAsync)

	legacy := findFunction(t, fa, "legacy")
	assert.Equal(t, models.FunctionExpression, legacy.Kind)
	assert.Equal(t, 2, legacy.Complexity)

	v := findVariable(t, fa, "double")
	assert.Equal(t, models.VariableConst, v.Kind)
	assert.Equal(t, "function", v.TypeNote)
	assert.Equal(t, models.VariableLet, findVariable(t, fa, "legacy").Kind)

	assert.Contains(t, edgeKeys(fa), edgeKey{"global", "process", models.EdgeCall})
	assert.Contains(t, edgeKeys(fa), edgeKey{"global", "items.forEach", models.EdgeMethod})
	assert.Contains(t, edgeKeys(fa), edgeKey{"fetchAll", "Promise.all", models.EdgeMethod})
	assert.Contains(t, edgeKeys(fa), edgeKey{"fetchAll", "fetch", models.EdgeCall})
}

func TestExtract_DestructuredParamsAreNames(t *testing.T) {
	src := `const pick = ({ a: renamed, b = 2, ...rest }, [x, , y], ...others) => renamed;
function typed({ id }: Props, count?: number) { return id; }
`
	fa := extractSource(t, src, "params.ts")

	assert.Equal(t, []string{"renamed", "b", "rest", "x", "y", "...others"}, findFunction(t, fa, "pick").Params)
	assert.Equal(t, []string{"id", "count"}, findFunction(t, fa, "typed").Params)
}

func TestExtract_ArrowExpressionBodyComplexity(t *testing.T) {
	src := `const both = (a, b) => a && b;
const pick = (x) => x ? 1 : 2;
const blk = (a, b) => { return a && b; };
`
	fa := extractSource(t, src, "arrows.js")

	assert.Equal(t, 2, findFunction(t, fa, "both").Complexity)
	assert.Equal(t, 2, findFunction(t, fa, "pick").Complexity)
	assert.Equal(t, 2, findFunction(t, fa, "blk").Complexity)
}

func TestExtract_Variables(t *testing.T) {
	src := `const a = 1;
let b;
var c = 'x', d = 2;
const { e, f: g, h = 3, ...rest } = obj;
const [i, , j] = list;
`
	fa := extractSource(t, src, "vars.js")

	names := make([]string, 0, len(fa.Variables))
	for _, v := range fa.Variables {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "g", "h", "rest", "i", "j"}, names)

	assert.Equal(t, models.VariableConst, findVariable(t, fa, "a").Kind)
	assert.Equal(t, models.VariableLet, findVariable(t, fa, "b").Kind)
	assert.Equal(t, models.VariableVar, findVariable(t, fa, "d").Kind)
	assert.Equal(t, uint32(4), findVariable(t, fa, "g").Line)
	for _, v := range fa.Variables {
		assert.False(t, v.IsState, v.Name)
	}
}

func TestExtract_TypeScriptAnnotations(t *testing.T) {
	src := `const count: number = 0;
function greet(name: string, title?: string): string {
  return title ? title + name : name;
}
`
	fa := extractSource(t, src, "types.ts")

	assert.Equal(t, "typescript", fa.Language)
	assert.Equal(t, "number", findVariable(t, fa, "count").TypeNote)

	greet := findFunction(t, fa, "greet")
	assert.Equal(t, []string{"name", "title"}, greet.Params)
	assert.Equal(t, 2, greet.Complexity)
}

func TestExtract_CallEdges(t *testing.T) {
	src := `function run() {
  helper();
  api.client.get();
  this.save();
  build().start();
  new Widget();
}
init();
`
	fa := extractSource(t, src, "calls.js")

	assert.Equal(t, []edgeKey{
		{"run", "helper", models.EdgeCall},
		{"run", "api.client.get", models.EdgeMethod},
		{"run", "this.save", models.EdgeMethod},
		{"run", "start", models.EdgeMethod},
		{"run", "build", models.EdgeCall},
		{"run", "Widget", models.EdgeNew},
		{"global", "init", models.EdgeCall},
	}, edgeKeys(fa))

	for _, e := range fa.Dependencies {
		assert.Equal(t, "calls.js", e.File)
		assert.Equal(t, "calls.js", e.CalleeFile)
		assert.False(t, e.IsCrossFile)
	}
	assert.Equal(t, uint32(2), fa.Dependencies[0].Line)
}

func TestExtract_NestedFunctionScopes(t *testing.T) {
	src := `function outer() {
  function inner() { deep(); }
  const cb = () => { fromArrow(); };
  [1].map(() => anon());
  inner();
}
`
	fa := extractSource(t, src, "nested.js")

	assert.Equal(t, []string{"outer", "inner", "cb"}, functionNames(fa))
	keys := edgeKeys(fa)
	assert.Contains(t, keys, edgeKey{"inner", "deep", models.EdgeCall})
	assert.Contains(t, keys, edgeKey{"cb", "fromArrow", models.EdgeCall})
	assert.Contains(t, keys, edgeKey{"outer", "anon", models.EdgeCall})
	assert.Contains(t, keys, edgeKey{"outer", "inner", models.EdgeCall})
}

func TestExtract_Classes(t *testing.T) {
	src := `class Service extends Base {
  static instances = 0;
  name = 'svc';
  constructor(opts) { super(opts); this.opts = opts; }
  async start() { if (this.ready) { this.run(); } }
  stop = () => { this.halt(); };
}
`
	fa := extractSource(t, src, "service.js")

	require.Len(t, fa.Classes, 1)
	cls := fa.Classes[0]
	assert.Equal(t, "Service", cls.Name)
	assert.Equal(t, "Base", cls.SuperClass)
	assert.False(t, cls.IsComponent)

	methods := make([]string, 0, len(cls.Methods))
	for _, m := range cls.Methods {
		methods = append(methods, m.Name)
		assert.Equal(t, models.FunctionMethod, m.Kind)
	}
	assert.Equal(t, []string{"Service.constructor", "Service.start", "Service.stop"}, methods)

	props := make([]string, 0, len(cls.Properties))
	for _, p := range cls.Properties {
		props = append(props, p.Name)
		assert.Equal(t, models.VariableProperty, p.Kind)
	}
	assert.Equal(t, []string{"Service.instances", "Service.name", "Service.stop"}, props)

	start := findFunction(t, fa, "Service.start")
	assert.True(t, start.IsAsync)
	assert.Equal(t, 2, start.Complexity)

	assert.Contains(t, edgeKeys(fa), edgeKey{"Service.start", "this.run", models.EdgeMethod})
	assert.Contains(t, edgeKeys(fa), edgeKey{"Service.stop", "this.halt", models.EdgeMethod})
	assert.Empty(t, fa.Components)
}

func TestExtract_FunctionComponent(t *testing.T) {
	src := `import React, { useState, useEffect } from 'react';

export function Counter({ initial, label = 'Count', ...rest }) {
  const [count, setCount] = useState(initial);
  const [open, setOpen] = useState(false);
  useEffect(() => {
    document.title = label + count;
  }, [count, label, props.x]);
  useEffect(() => {}, []);
  useEffect(() => {});
  return (
    <div {...rest}>
      <Button onClick={() => setCount(count + 1)} />
      {open && <Panel />}
    </div>
  );
}
`
	fa := extractSource(t, src, "Counter.jsx")

	fn := findFunction(t, fa, "Counter")
	assert.True(t, fn.IsComponent)

	c := findComponent(t, fa, "Counter")
	assert.Equal(t, models.ComponentFunction, c.Kind)
	assert.Equal(t, "Counter.jsx", c.File)
	assert.Equal(t, []string{"initial", "label", "...rest"}, c.Props)
	assert.Equal(t, []string{"useState", "useEffect"}, c.Hooks)

	require.Len(t, c.State, 2)
	assert.Equal(t, "count", c.State[0].Name)
	assert.Equal(t, "open", c.State[1].Name)
	assert.True(t, c.State[0].IsState)

	assert.Equal(t, [][]string{{"count", "label"}, {}}, c.Effects)

	count := findVariable(t, fa, "count")
	assert.True(t, count.IsState)
	assert.Equal(t, "useState", count.TypeNote)
	setCount := findVariable(t, fa, "setCount")
	assert.False(t, setCount.IsState)
	assert.Equal(t, "setter", setCount.TypeNote)

	keys := edgeKeys(fa)
	assert.Contains(t, keys, edgeKey{"Counter", "Button", models.EdgeJSX})
	assert.Contains(t, keys, edgeKey{"Counter", "Panel", models.EdgeJSX})
	assert.Contains(t, keys, edgeKey{"Counter", "setCount", models.EdgeCall})
	for _, k := range keys {
		assert.NotEqual(t, "div", k.callee)
	}
}

func TestExtract_ArrowComponentVariants(t *testing.T) {
	src := `const Title = (props) => <h1>{props.text}</h1>;
const Maybe = ({ show }) => show ? <Inner /> : null;
const List = ({ items }) => {
  const render = (i) => <li>{i}</li>;
  return items.map(render);
};
const Frag = () => (<><A /></>);
function helper() { return 'text'; }
`
	fa := extractSource(t, src, "views.jsx")

	assert.True(t, findFunction(t, fa, "Title").IsComponent)
	assert.Equal(t, []string{"props"}, findComponent(t, fa, "Title").Props)
	assert.True(t, findFunction(t, fa, "Maybe").IsComponent)
	assert.True(t, findFunction(t, fa, "Frag").IsComponent)
	assert.False(t, findFunction(t, fa, "List").IsComponent, "JSX only returned by a nested function")
	assert.True(t, findFunction(t, fa, "render").IsComponent)
	assert.False(t, findFunction(t, fa, "helper").IsComponent)
}

func TestExtract_HooksOutsideComponentsIgnored(t *testing.T) {
	src := `function useCounter() {
  const [n, setN] = useState(0);
  return n;
}
`
	fa := extractSource(t, src, "useCounter.js")

	assert.Empty(t, fa.Components)
	assert.False(t, findVariable(t, fa, "n").IsState)
	assert.Contains(t, edgeKeys(fa), edgeKey{"useCounter", "useState", models.EdgeCall})
}

func TestExtract_NamespacedHooksAndNestedScopes(t *testing.T) {
	src := `function Profile({ user }) {
  const [name] = React.useState(user.name);
  const save = () => {
    useSaver(name);
  };
  React.useEffect(() => {}, [name]);
  return <Card name={name} onSave={save} />;
}
`
	fa := extractSource(t, src, "Profile.jsx")

	c := findComponent(t, fa, "Profile")
	assert.Equal(t, []string{"user"}, c.Props)
	assert.Equal(t, []string{"useState", "useSaver", "useEffect"}, c.Hooks)
	require.Len(t, c.State, 1)
	assert.Equal(t, "name", c.State[0].Name)
	assert.Equal(t, [][]string{{"name"}}, c.Effects)
}

func TestExtract_ClassComponent(t *testing.T) {
	src := `import React, { Component } from 'react';

class Greeting extends React.Component {
  handle() { this.props.onGreet(); }
  render() {
    const { name, title } = this.props;
    return <p>{title} {name} {this.props.suffix}</p>;
  }
}

class Plain extends Component {
  draw() { return null; }
}

class Direct extends PureComponent {
  render() { return null; }
}
`
	fa := extractSource(t, src, "Greeting.jsx")

	require.Len(t, fa.Classes, 3)
	assert.True(t, fa.Classes[0].IsComponent)
	assert.Equal(t, "React.Component", fa.Classes[0].SuperClass)
	assert.False(t, fa.Classes[1].IsComponent, "no render method")
	assert.True(t, fa.Classes[2].IsComponent)

	require.Len(t, fa.Components, 2)
	g := findComponent(t, fa, "Greeting")
	assert.Equal(t, models.ComponentClass, g.Kind)
	assert.Equal(t, []string{"onGreet", "name", "title", "suffix"}, g.Props)
	assert.Empty(t, g.Hooks)
}

func TestExtract_Imports(t *testing.T) {
	src := `import React from 'react';
import * as path from 'path';
import { a, b as c } from './local';
import def, { named } from '@scope/pkg';
import 'side-effect';
import lodash from 'lodash/fp';
const fs = require('fs');
const { join, resolve: res } = require('node:path');
`
	fa := extractSource(t, src, "imports.js")

	type imp struct {
		name, source string
		local        bool
	}
	var got []imp
	for _, i := range fa.Imports {
		got = append(got, imp{i.Name, i.Source, i.IsLocal})
		assert.Equal(t, "imports.js", i.File)
	}
	assert.Equal(t, []imp{
		{"React", "react", true},
		{"path", "path", true},
		{"a", "./local", false},
		{"c", "./local", false},
		{"def", "@scope/pkg", false},
		{"named", "@scope/pkg", false},
		{"lodash", "lodash/fp", false},
		{"fs", "fs", true},
		{"join", "node:path", true},
		{"res", "node:path", true},
	}, got)

	assert.True(t, fa.Imports[0].IsDefault)
	assert.True(t, fa.Imports[1].IsNamespace)
	assert.True(t, fa.Imports[7].IsRequire)
	assert.True(t, fa.Imports[8].IsRequire)
}

func TestIsLocalSpecifier(t *testing.T) {
	tests := map[string]bool{
		"react":      true,
		"lodash":     true,
		"@scope/pkg": false,
		"./util":     false,
		"../up":      false,
		"lodash/fp":  false,
		".hidden":    false,
		"":           false,
	}
	for source, want := range tests {
		assert.Equal(t, want, IsLocalSpecifier(source), source)
	}
}

func TestIsHookName(t *testing.T) {
	assert.True(t, IsHookName("useState"))
	assert.True(t, IsHookName("useX"))
	assert.False(t, IsHookName("use"))
	assert.False(t, IsHookName("user"))
	assert.False(t, IsHookName("useful"))
	assert.False(t, IsHookName("reuseState"))
}

func TestExtract_ComplexityAlwaysPositive(t *testing.T) {
	src := `function a() {}
const b = () => 1;
class C { m() {} }
`
	fa := extractSource(t, src, "pos.js")
	require.Len(t, fa.Functions, 3)
	for _, fn := range fa.Functions {
		assert.GreaterOrEqual(t, fn.Complexity, 1, fn.Name)
	}
}

func TestExtractor_ConcurrentUse(t *testing.T) {
	e := New()
	srcs := []string{
		"function a() { b(); }",
		"const C = () => <div />;",
		"class D extends React.Component { render() { return <E />; } }",
	}

	done := make(chan models.FileAnalysis, len(srcs)*4)
	for i := 0; i < len(srcs)*4; i++ {
		go func(src string) {
			p := parser.New()
			defer p.Close()
			result, err := p.Parse(context.Background(), []byte(src), "x.jsx")
			if err != nil {
				done <- models.FileAnalysis{}
				return
			}
			defer result.Close()
			done <- e.Extract(result)
		}(srcs[i%len(srcs)])
	}

	for i := 0; i < len(srcs)*4; i++ {
		fa := <-done
		assert.Equal(t, "x.jsx", fa.FileName)
	}
}
