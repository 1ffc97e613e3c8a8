package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p := New()
	require.NotNil(t, p)
	assert.NotNil(t, p.parser)
	assert.Equal(t, DefaultParseTimeout, p.timeout)
	p.Close()
}

func TestNewWithOptions(t *testing.T) {
	p := New(WithMaxFileSize(1024), WithTimeout(time.Second))
	defer p.Close()

	assert.Equal(t, int64(1024), p.maxFileSize)
	assert.Equal(t, time.Second, p.timeout)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"app.js", LangJavaScript},
		{"component.jsx", LangJavaScript},
		{"module.mjs", LangJavaScript},
		{"common.cjs", LangJavaScript},
		{"app.ts", LangTypeScript},
		{"esm.mts", LangTypeScript},
		{"component.tsx", LangTSX},
		{"APP.TSX", LangTSX},
		{"input", LangJavaScript},
		{"README.md", LangJavaScript},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("src/App.jsx"))
	assert.True(t, IsSupported("src/index.ts"))
	assert.False(t, IsSupported("src/types.d.ts"))
	assert.False(t, IsSupported("main.go"))
	assert.False(t, IsSupported("Makefile"))
}

func TestGetTreeSitterLanguage(t *testing.T) {
	for _, lang := range []Language{LangJavaScript, LangTypeScript, LangTSX} {
		l, err := GetTreeSitterLanguage(lang)
		require.NoError(t, err, lang)
		assert.NotNil(t, l)
	}

	_, err := GetTreeSitterLanguage(Language("cobol"))
	assert.Error(t, err)
}

func TestParse_JavaScriptWithJSX(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte(`import React from 'react';
export function App() {
  return <div className="app">hi</div>;
}
`)
	result, err := p.Parse(context.Background(), src, "App.jsx")
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, LangJavaScript, result.Language)
	assert.Equal(t, "App.jsx", result.Path)
	assert.Equal(t, "program", result.Root().Type())
	assert.NotEmpty(t, FindNodesByType(result.Root(), src, "jsx_element"))
}

func TestParse_TypeScript(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte(`interface Props { title: string }
export const greet = (name: string): string => "hello " + name;
`)
	result, err := p.Parse(context.Background(), src, "greet.ts")
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, LangTypeScript, result.Language)
	assert.Len(t, FindNodesByType(result.Root(), src, "arrow_function"), 1)
}

func TestParse_SyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("function broken( {\n  return 1;\n")
	result, err := p.Parse(context.Background(), src, "broken.js")
	require.Error(t, err)
	assert.Nil(t, result)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "broken.js", perr.Path)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Contains(t, err.Error(), "broken.js")
}

func TestParse_FileTooLarge(t *testing.T) {
	p := New(WithMaxFileSize(8))
	defer p.Close()

	_, err := p.Parse(context.Background(), []byte("const value = 1;"), "big.js")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestParse_EmptySource(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte(""), "empty.js")
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, uint32(0), result.Root().NamedChildCount())
}

func TestGetNodeText(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("const answer = 42;")
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	nums := FindNodesByType(result.Root(), src, "number")
	require.Len(t, nums, 1)
	assert.Equal(t, "42", GetNodeText(nums[0], src))
	assert.Equal(t, "", GetNodeText(nil, src))
	assert.Equal(t, "", GetNodeText(nums[0], []byte("x")))
}

func TestWalk_SkipsChildren(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("function outer() { function inner() {} }")
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	var names []string
	Walk(result.Root(), src, func(n *sitter.Node, source []byte) bool {
		if n.Type() == "function_declaration" {
			names = append(names, GetNodeText(n.ChildByFieldName("name"), source))
			return false
		}
		return true
	})
	assert.Equal(t, []string{"outer"}, names)
}

func TestHasToken(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("async function load() {}\nfunction sync() {}")
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	fns := FindNodesByType(result.Root(), src, "function_declaration")
	require.Len(t, fns, 2)
	assert.True(t, HasToken(fns[0], "async"))
	assert.False(t, HasToken(fns[1], "async"))
}

func TestNamedChildren_SkipsComments(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("f(/* note */ a, b)")
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	args := FindNodesByType(result.Root(), src, "arguments")
	require.Len(t, args, 1)
	children := NamedChildren(args[0])
	require.Len(t, children, 2)
	assert.Equal(t, "a", GetNodeText(children[0], src))
}
