// Package dot implements spec.md §4.8's Graphviz DOT writer: function
// nodes clustered by owning file, intra-cluster edges inside the
// cluster, inter-cluster edges at top level. At file level-of-detail
// the file nodes and their edges are emitted flat, without clusters.
package dot

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/config"
	"github.com/summaryInfo/lxgraph/internal/literal"
)

// maxPenWidth caps the penwidth a heavily-called edge gets: the width
// is min(weight^0.6, 16), emitted as the penwidth attribute.
const maxPenWidth = 16.0

// penExponent is the weight exponent feeding into that same formula.
const penExponent = 0.6

// Write emits g in Graphviz DOT form to w. lod controls whether nodes
// are clustered by their own file (function-level graphs) or emitted
// unclustered (file-level graphs, where a node already is a file and
// has no further owning file to group by).
func Write(w io.Writer, g *callgraph.Graph, lod config.LOD) error {
	bw := &errWriter{w: w}

	fmt.Fprintln(bw, "digraph callgraph {")
	fmt.Fprintln(bw, "\trankdir=LR;")
	fmt.Fprintln(bw, "\tnode [shape=box, fontsize=10];")
	fmt.Fprintln(bw, "\tedge [fontsize=8];")

	sorted := append([]literal.Handle(nil), g.Defs...)
	sortByFileThenHandle(sorted)

	if lod == config.LODFile {
		writeFlat(bw, sorted, g.Edges)
	} else {
		writeClustered(bw, sorted, g.Edges)
	}

	fmt.Fprintln(bw, "}")
	return bw.err
}

// sortByFileThenHandle orders defs the way spec.md §4.8 step 1
// requires, in place. Write re-establishes this order defensively
// even though cmd/lxgraph also sorts before calling Write, so a
// caller that forgets still gets correctly clustered output.
func sortByFileThenHandle(defs []literal.Handle) {
	sort.Slice(defs, func(i, j int) bool {
		fi, fj := defs[i].FileHandle(), defs[j].FileHandle()
		if fi != fj {
			return literal.Less(fi, fj)
		}
		return literal.Less(defs[i], defs[j])
	})
}

func writeClustered(bw *errWriter, defs []literal.Handle, edges []callgraph.Edge) {
	clusterOf := make(map[literal.Handle]literal.Handle, len(defs))
	for _, h := range defs {
		clusterOf[h] = h.FileHandle()
	}

	intraByFile := make(map[literal.Handle][]callgraph.Edge)
	var inter []callgraph.Edge
	for _, e := range edges {
		cf := clusterOf[e.Caller]
		if cf != nil && cf == clusterOf[e.Callee] {
			intraByFile[cf] = append(intraByFile[cf], e)
		} else {
			inter = append(inter, e)
		}
	}

	i := 0
	clusterIdx := 0
	var unclustered []literal.Handle
	for i < len(defs) {
		file := defs[i].FileHandle()
		if file == nil {
			unclustered = append(unclustered, defs[i])
			i++
			continue
		}
		start := i
		for i < len(defs) && defs[i].FileHandle() == file {
			i++
		}
		writeCluster(bw, clusterIdx, file, defs[start:i], intraByFile[file])
		clusterIdx++
	}

	for _, h := range unclustered {
		writeNode(bw, h)
	}

	for _, e := range inter {
		writeEdge(bw, e)
	}
}

func writeCluster(bw *errWriter, idx int, file literal.Handle, members []literal.Handle, intra []callgraph.Edge) {
	fmt.Fprintf(bw, "\tsubgraph cluster_%d {\n", idx)
	fmt.Fprintf(bw, "\t\tlabel=%q;\n", file.Name())
	for _, h := range members {
		writeNode(bw, h)
	}
	for _, e := range intra {
		writeEdge(bw, e)
	}
	fmt.Fprintln(bw, "\t}")
}

func writeFlat(bw *errWriter, defs []literal.Handle, edges []callgraph.Edge) {
	for _, h := range defs {
		writeNode(bw, h)
	}
	for _, e := range edges {
		writeEdge(bw, e)
	}
}

func writeNode(bw *errWriter, h literal.Handle) {
	fmt.Fprintf(bw, "\t\t%s [label=%q];\n", h.ID(), h.Name())
}

func writeEdge(bw *errWriter, e callgraph.Edge) {
	pen := math.Pow(float64(e.Weight), penExponent)
	if pen > maxPenWidth {
		pen = maxPenWidth
	}
	fmt.Fprintf(bw, "\t%s -> %s [penwidth=%.2f, label=%q];\n",
		e.Caller.ID(), e.Callee.ID(), pen, weightLabel(e.Weight))
}

func weightLabel(w float32) string {
	return fmt.Sprintf("%.0f", w)
}

// errWriter lets every Fprint* call above ignore its individual error
// return; the first error encountered is latched and surfaced once
// Write returns.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
