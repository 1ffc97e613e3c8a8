package complexity

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/codescope/pkg/parser"
)

// scoreFunctions parses src and scores every function declaration by name.
func scoreFunctions(t *testing.T, src, path string) map[string]int {
	t.Helper()

	p := parser.New()
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte(src), path)
	require.NoError(t, err)
	defer result.Close()

	c := New()
	scores := make(map[string]int)
	for _, fn := range parser.FindNodesByType(result.Root(), result.Source, "function_declaration") {
		name := parser.GetNodeText(fn.ChildByFieldName("name"), result.Source)
		scores[name] = c.Calculate(fn.ChildByFieldName("body"))
	}
	return scores
}

func TestNew(t *testing.T) {
	c := New()
	require.NotNil(t, c)
	assert.Equal(t, DefaultMaxDepth, c.maxDepth)

	c = New(WithMaxDepth(10))
	assert.Equal(t, 10, c.maxDepth)

	c = New(WithMaxDepth(-1))
	assert.Equal(t, DefaultMaxDepth, c.maxDepth)
}

func TestCalculate_NilBody(t *testing.T) {
	assert.Equal(t, 1, New().Calculate(nil))
	assert.Equal(t, 1, Calculate(nil))
	assert.Equal(t, 0, CountDecisionPoints(nil))
}

func TestCalculate_NoBranching(t *testing.T) {
	scores := scoreFunctions(t, `function straight(a, b) { const c = a + b; return c * 2; }`, "a.js")
	assert.Equal(t, 1, scores["straight"])
}

func TestCalculate_SingleIf(t *testing.T) {
	scores := scoreFunctions(t, `function foo(){ if (x) { return 1; } return 2; }`, "a.js")
	assert.Equal(t, 2, scores["foo"])
}

func TestCalculate_ThreeIfsLoopAndLogicalAnd(t *testing.T) {
	src := `function busy(items, flag) {
  if (!items) { return 0; }
  let total = 0;
  for (let i = 0; i < items.length; i++) {
    total += items[i];
  }
  if (flag && total > 10) { total = 10; }
  if (total < 0) { total = 0; }
  return total;
}`
	scores := scoreFunctions(t, src, "a.js")
	assert.Equal(t, 6, scores["busy"])
}

func TestCalculate_Constructs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"ternary", `return a ? 1 : 2;`, 2},
		{"logical or", `return a || b;`, 2},
		{"nullish is not counted", `return a ?? b;`, 1},
		{"arithmetic is not counted", `return a + b;`, 1},
		{"while", `while (a) { a--; }`, 2},
		{"do while", `do { a--; } while (a);`, 2},
		{"for of", `for (const x of xs) { use(x); }`, 2},
		{"for in", `for (const k in obj) { use(k); }`, 2},
		{"switch", `switch (a) { case 1: break; case 2: break; default: break; }`, 4},
		{"try catch", `try { run(); } catch (e) { log(e); }`, 2},
		{"try finally without catch", `try { run(); } finally { done(); }`, 1},
		{"else if chain", `if (a) { x(); } else if (b) { y(); } else { z(); }`, 3},
		{"anonymous callback counted", `items.forEach(function (i) { if (i) { use(i); } });`, 2},
		{"inline arrow counted", `items.map((i) => i > 0 ? i : 0);`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := scoreFunctions(t, "function subject(a, b, xs, obj, items) {\n"+tt.body+"\n}", "a.js")
			assert.Equal(t, tt.want, scores["subject"])
		})
	}
}

func TestCalculate_ArrowExpressionBodies(t *testing.T) {
	p := parser.New()
	defer p.Close()

	src := []byte(`const both = (a, b) => a && b;
const pick = (x) => x ? 1 : 2;
const blk = (a, b) => { return a && b; };
const plain = (a) => a + 1;
const nested = (a, b, c) => a ? (b || c) : 0;`)
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	c := New()
	scores := make(map[string]int)
	for _, d := range parser.FindNodesByType(result.Root(), src, "variable_declarator") {
		name := parser.GetNodeText(d.ChildByFieldName("name"), src)
		scores[name] = c.Calculate(d.ChildByFieldName("value").ChildByFieldName("body"))
	}

	assert.Equal(t, map[string]int{
		"both":   2,
		"pick":   2,
		"blk":    2,
		"plain":  1,
		"nested": 3,
	}, scores)
}

func TestCalculate_NestedNamedFunctionsExcluded(t *testing.T) {
	src := `function outer(a) {
  function inner(b) {
    if (b) { return 1; }
    if (b > 2) { return 2; }
    return 0;
  }
  const helper = (c) => c && c.ok;
  class Local {
    run() { if (a) { return 1; } }
  }
  return a ? inner(a) : helper(a);
}`
	scores := scoreFunctions(t, src, "a.js")
	assert.Equal(t, 2, scores["outer"], "only the ternary belongs to outer")
	assert.Equal(t, 3, scores["inner"])
}

func TestCalculate_TypeScript(t *testing.T) {
	src := `function pick(value: string | undefined): string {
  if (value === undefined || value.length === 0) {
    return "none";
  }
  return value;
}`
	scores := scoreFunctions(t, src, "pick.ts")
	assert.Equal(t, 3, scores["pick"])
}

func TestCalculate_MaxDepthBoundsWalk(t *testing.T) {
	p := parser.New()
	defer p.Close()

	src := []byte(`function deep(a) { if (a) { if (a) { if (a) { return 1; } } } }`)
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	fns := parser.FindNodesByType(result.Root(), src, "function_declaration")
	require.Len(t, fns, 1)
	body := fns[0].ChildByFieldName("body")

	assert.Equal(t, 4, New().Calculate(body))
	assert.Less(t, New(WithMaxDepth(2)).Calculate(body), 4)
}

func TestIsDeclaratorValue(t *testing.T) {
	p := parser.New()
	defer p.Close()

	src := []byte("const named = () => 1;\nrun(() => 2);\nconst { a } = () => 3;")
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	arrows := parser.FindNodesByType(result.Root(), src, "arrow_function")
	require.Len(t, arrows, 3)

	got := make([]bool, 0, len(arrows))
	for _, a := range arrows {
		got = append(got, IsDeclaratorValue(a))
	}
	assert.Equal(t, []bool{true, false, false}, got)
}

func TestIsScoredSeparately_ObjectMethodsCounted(t *testing.T) {
	p := parser.New()
	defer p.Close()

	src := []byte("class A { m() {} }\nconst o = { m() {} };")
	result, err := p.Parse(context.Background(), src, "a.js")
	require.NoError(t, err)
	defer result.Close()

	var got []bool
	parser.WalkTyped(result.Root(), src, func(n *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType == "method_definition" {
			got = append(got, IsScoredSeparately(n, nodeType))
		}
		return true
	})
	assert.Equal(t, []bool{true, false}, got)
}
