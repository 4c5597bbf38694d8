package dot_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/config"
	"github.com/summaryInfo/lxgraph/internal/dot"
)

func TestWriteClustersByFile(t *testing.T) {
	g := callgraph.New()
	a := g.EnterFunction("a", "a.c", 1, 1, true, false)
	g.MarkDefinitionSite(1, 1)
	g.ExitFunction()
	b := g.EnterFunction("b", "b.c", 1, 1, true, false)
	g.MarkDefinitionSite(1, 1)
	g.ExitFunction()

	g.CurrentFn = a
	g.AddCall("b", 2, 3)
	g.CurrentFn = nil

	var buf strings.Builder
	require.NoError(t, dot.Write(&buf, g, config.LODFunction))

	out := buf.String()
	require.Contains(t, out, "digraph callgraph {")
	require.Contains(t, out, "subgraph cluster_0")
	require.Contains(t, out, "subgraph cluster_1")
	require.Contains(t, out, a.ID()+" -> "+b.ID())
}

func TestWriteFlatAtFileLOD(t *testing.T) {
	g := callgraph.New()
	fa := g.InternFile("a.c")
	fb := g.InternFile("b.c")
	g.Defs = append(g.Defs, fa, fb)
	g.Edges = append(g.Edges, callgraph.Edge{Caller: fa, Callee: fb, Weight: 3})

	var buf strings.Builder
	require.NoError(t, dot.Write(&buf, g, config.LODFile))

	out := buf.String()
	require.NotContains(t, out, "subgraph")
	require.Contains(t, out, fa.ID()+" -> "+fb.ID())
}
