package filter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/config"
	"github.com/summaryInfo/lxgraph/internal/filter"
	"github.com/summaryInfo/lxgraph/internal/literal"
)

func defineFn(g *callgraph.Graph, name, file string, line, col int, global, inlined bool) literal.Handle {
	h := g.EnterFunction(name, file, line, col, global, inlined)
	g.MarkDefinitionSite(line, col)
	g.ExitFunction()
	return h
}

func call(g *callgraph.Graph, caller literal.Handle, calleeName string, line, col int) {
	g.CurrentFn = caller
	g.AddCall(calleeName, line, col)
	g.CurrentFn = nil
}

// TestExcludeFiles covers spec.md §8 scenario 4: excluding std.h drops
// sys and the user→sys edge, but keeps user.
func TestExcludeFiles(t *testing.T) {
	g := callgraph.New()
	sys := defineFn(g, "sys", "std.h", 10, 1, true, false)
	user := defineFn(g, "user", "user.c", 5, 1, true, false)
	call(g, user, "sys", 6, 3)

	out := filter.Run(g, filter.Options{ExcludeFiles: []string{"std.h"}, KeepInline: true})

	names := defNames(out)
	require.NotContains(t, names, "sys")
	require.Contains(t, names, "user")
	require.Empty(t, out.Edges)
}

// TestCollapseDuplicates covers spec.md §8 scenario 5: three identical
// call sites collapse to weight 1; a second distinct call site bumps
// it to 2.
func TestCollapseDuplicates(t *testing.T) {
	g := callgraph.New()
	a := defineFn(g, "a", "a.c", 1, 1, true, false)
	defineFn(g, "b", "a.c", 2, 1, true, false)
	call(g, a, "b", 10, 4)
	call(g, a, "b", 10, 4)
	call(g, a, "b", 10, 4)
	call(g, a, "b", 20, 4)

	out := filter.Run(g, filter.Options{KeepInline: true})

	// spec.md §4.7 stage 2 retains exactly one record per (caller,
	// callee): three identical call sites at (10,4) collapse without
	// bumping weight, then the distinct (20,4) site bumps it once.
	require.Len(t, out.Edges, 1)
	require.Equal(t, float32(2), out.Edges[0].Weight)
}

// TestInlineContraction covers spec.md §8 scenario 2: a and b both
// call inline h, which calls g; after contraction h is gone and a→g,
// b→g survive at weight 1.
func TestInlineContraction(t *testing.T) {
	g := callgraph.New()
	a := defineFn(g, "a", "a.c", 1, 1, true, false)
	b := defineFn(g, "b", "b.c", 1, 1, true, false)
	h := defineFn(g, "h", "f.h", 3, 1, true, true)
	defineFn(g, "g", "a.c", 20, 1, true, false)
	call(g, a, "h", 5, 2)
	call(g, b, "h", 6, 2)
	call(g, h, "g", 4, 3)

	out := filter.Run(g, filter.Options{KeepInline: false})

	names := defNames(out)
	require.NotContains(t, names, "h")

	var sawAG, sawBG bool
	for _, e := range out.Edges {
		if e.Caller.Name() == "a" && e.Callee.Name() == "g" {
			sawAG = true
			require.Equal(t, float32(1), e.Weight)
		}
		if e.Caller.Name() == "b" && e.Callee.Name() == "g" {
			sawBG = true
			require.Equal(t, float32(1), e.Weight)
		}
	}
	require.True(t, sawAG)
	require.True(t, sawBG)
}

// TestReachabilityPrune covers spec.md §8 scenario 3: main→x→y kept,
// dead→z dropped.
func TestReachabilityPrune(t *testing.T) {
	g := callgraph.New()
	main := defineFn(g, "main", "m.c", 1, 1, true, false)
	x := defineFn(g, "x", "m.c", 5, 1, true, false)
	defineFn(g, "y", "m.c", 9, 1, true, false)
	dead := defineFn(g, "dead", "m.c", 15, 1, true, false)
	defineFn(g, "z", "m.c", 19, 1, true, false)
	call(g, main, "x", 2, 1)
	call(g, x, "y", 6, 1)
	call(g, dead, "z", 16, 1)

	out := filter.Run(g, filter.Options{RootFunctions: []string{"main"}, KeepInline: true})

	names := defNames(out)
	require.ElementsMatch(t, []string{"main", "x", "y"}, names)
}

// TestFileCondensation covers spec.md §8 scenario 6: a(fileA)→b(fileB)
// condenses to one fileA→fileB edge; the intra-file b→c edge is not
// lifted.
func TestFileCondensation(t *testing.T) {
	g := callgraph.New()
	a := defineFn(g, "a", "fileA", 1, 1, true, false)
	b := defineFn(g, "b", "fileB", 1, 1, true, false)
	defineFn(g, "c", "fileB", 2, 1, true, false)
	call(g, a, "b", 1, 1)
	call(g, b, "c", 2, 1)

	out := filter.Run(g, filter.Options{KeepInline: true, LOD: config.LODFile})

	require.Len(t, out.Edges, 1)
	require.Equal(t, "fileA", out.Edges[0].Caller.Name())
	require.Equal(t, "fileB", out.Edges[0].Callee.Name())
	require.Equal(t, float32(1), out.Edges[0].Weight)
}

func defNames(g *callgraph.Graph) []string {
	names := make([]string, len(g.Defs))
	for i, h := range g.Defs {
		names[i] = h.Name()
	}
	return names
}
