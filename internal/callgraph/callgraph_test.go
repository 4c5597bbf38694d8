package callgraph

import (
	"testing"

	"github.com/summaryInfo/lxgraph/internal/literal"
)

func TestSingleTranslationUnitAToB(t *testing.T) {
	g := New()
	a := g.EnterFunction("a", "t.c", 1, 1, true, false)
	g.MarkDefinitionSite(1, 6)
	g.AddCall("b", 1, 10)
	g.ExitFunction()
	b := g.EnterFunction("b", "t.c", 2, 1, true, false)
	g.MarkDefinitionSite(2, 6)
	g.ExitFunction()

	if len(g.Defs) != 2 {
		t.Fatalf("expected 2 defs, got %d", len(g.Defs))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	e := g.Edges[0]
	if e.Caller != a || e.Callee != b || e.Weight != 1 {
		t.Fatalf("unexpected edge: %+v", e)
	}
	if !a.HasFlag(literal.Defined) || !b.HasFlag(literal.Defined) {
		t.Fatalf("expected both a and b DEFINED")
	}
	if a.FileHandle() != b.FileHandle() {
		t.Fatalf("expected a and b defined in the same file")
	}
}

func TestDeclaredButNeverDefined(t *testing.T) {
	g := New()
	g.EnterFunction("caller", "t.c", 1, 1, true, false)
	g.MarkDefinitionSite(1, 6)
	g.AddCall("undefined_fn", 1, 10)
	g.ExitFunction()

	h, ok := g.Table.Get("undefined_fn")
	if !ok {
		t.Fatalf("expected undefined_fn to be interned")
	}
	if h.HasFlag(literal.Defined) {
		t.Fatalf("expected undefined_fn to lack DEFINED")
	}
	if h.FileHandle() != nil {
		t.Fatalf("expected undefined_fn to have no file")
	}
}

func TestStaticExprCallerForCallOutsideFunction(t *testing.T) {
	g := New()
	g.AddCall("f", 3, 4)

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if g.Edges[0].Caller.Name() != StaticExprCaller {
		t.Fatalf("expected synthetic caller, got %q", g.Edges[0].Caller.Name())
	}
}

func TestFilePathNormalization(t *testing.T) {
	g := New()
	h := g.InternFile("./src/a.c")
	if h.Name() != "src/a.c" {
		t.Fatalf("expected normalized path, got %q", h.Name())
	}
}

func TestDedupDefsAfterSortByFile(t *testing.T) {
	g := New()
	a := g.EnterFunction("a", "t.c", 1, 1, true, false)
	g.ExitFunction()
	g.Defs = append(g.Defs, a) // simulate a second shard's copy of the same handle post-merge
	g.SortDefsByFile()
	g.DedupDefs()
	if len(g.Defs) != 1 {
		t.Fatalf("expected dedup to collapse to 1 def, got %d", len(g.Defs))
	}
}

func TestSortEdgesCanonicalOrdersByFullTuple(t *testing.T) {
	g := New()
	a := g.Table.Put("a")
	b := g.Table.Put("b")
	g.Edges = []Edge{
		{Caller: a, Callee: b, Line: 5, Col: 2},
		{Caller: a, Callee: b, Line: 1, Col: 9},
		{Caller: a, Callee: b, Line: 1, Col: 1},
	}
	g.SortEdgesCanonical()
	if g.Edges[0].Line != 1 || g.Edges[0].Col != 1 {
		t.Fatalf("expected line 1 col 1 first, got %+v", g.Edges[0])
	}
	if g.Edges[2].Line != 5 {
		t.Fatalf("expected line 5 last, got %+v", g.Edges[2])
	}
}
