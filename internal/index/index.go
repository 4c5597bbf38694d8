// Package index implements spec.md §4.6's graph index: a transient,
// per-caller offset-into-edges map embedded directly into each
// function handle's scratch word, so the filter pipeline and the DOT
// writer can look up a function's outgoing edges in O(1) plus the
// length of its own run, instead of scanning the whole edge slice.
package index

import (
	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/literal"
)

// offsetShift is where the start-of-run offset lives within the
// 64-bit scratch word; the low bit is reserved for the filter
// pipeline's DFS visited mark (spec.md §4.7/§9).
const offsetShift = 16

// visitedMask is the low bit of scratch, reserved for DFS.
const visitedMask = 1

// noRun is the sentinel offset recorded for a function that never
// appears as a caller — spec.md §4.6: "functions that never call
// anything get scratch=0."
const noRun = 0

// Build re-indexes g: it sorts Edges by (caller, callee, line, col)
// and Defs by handle address (the two canonical orders §4.6
// specifies), then walks both in parallel, encoding into each caller
// handle's scratch word the start offset of its contiguous edge run.
//
// Build clears every def's scratch word to 0 (noRun) first so a
// function that used to be a caller, but lost all its outgoing edges
// to a prior filter stage, doesn't keep a stale offset — §4.6 calls
// the index transient and requires re-indexing after any reorder.
func Build(g *callgraph.Graph) {
	g.SortEdgesCanonical()
	g.SortDefsByAddr()

	for _, h := range g.Defs {
		h.SetScratch(0)
	}

	i := 0
	for i < len(g.Edges) {
		caller := g.Edges[i].Caller
		start := i
		for i < len(g.Edges) && g.Edges[i].Caller == caller {
			i++
		}
		caller.SetScratch(uint64(start+1) << offsetShift)
	}
}

// Outgoing returns the slice of g.Edges whose Caller is h, using h's
// indexed scratch offset. Build must have been called since the last
// reorder of g.Edges for this to be valid; callers that mutate Edges
// (filter stages) must call Build again before calling Outgoing.
func Outgoing(g *callgraph.Graph, h literal.Handle) []callgraph.Edge {
	raw := h.Scratch() >> offsetShift
	if raw == noRun {
		return nil
	}
	start := int(raw - 1)
	end := start
	for end < len(g.Edges) && g.Edges[end].Caller == h {
		end++
	}
	return g.Edges[start:end]
}

// Visited reports the DFS visited mark on h's scratch word.
func Visited(h literal.Handle) bool {
	return h.Scratch()&visitedMask != 0
}

// MarkVisited sets the DFS visited mark on h's scratch word, leaving
// the offset bits (if any) untouched.
func MarkVisited(h literal.Handle) {
	h.SetScratch(h.Scratch() | visitedMask)
}

// ClearVisited clears the DFS visited mark on every def, leaving the
// offset bits in place, so a fresh DFS can run. Filter stages call
// this before each reachability pass: a forward pass leaves its marks
// set, and Build (which overwrites the whole word) is not re-run
// between the forward and the reverse pass. Handles that are not in
// Defs keep their visited bit.
func ClearVisited(g *callgraph.Graph) {
	for _, h := range g.Defs {
		h.SetScratch(h.Scratch() &^ uint64(visitedMask))
	}
}
