// Package filter implements spec.md §4.7's filter pipeline: exclusion,
// duplicate-edge collapse, inline contraction, reachability pruning,
// and optional file-level condensation, run in that order over the
// merged global graph.
package filter

import (
	"sort"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/config"
	"github.com/summaryInfo/lxgraph/internal/index"
	"github.com/summaryInfo/lxgraph/internal/literal"
)

// Options bundles the filter pipeline's configurable knobs, mirroring
// the subset of config.Config the stages below actually read.
type Options struct {
	ExcludeFiles     []string
	ExcludeFunctions []string

	RootFiles            []string
	RootFunctions        []string
	ReverseRootFiles     []string
	ReverseRootFunctions []string

	KeepInline bool
	LOD        config.LOD
}

// FromConfig builds Options from a loaded Config.
func FromConfig(c *config.Config) Options {
	return Options{
		ExcludeFiles:         c.ExcludeFiles,
		ExcludeFunctions:     c.ExcludeFunctions,
		RootFiles:            c.RootFiles,
		RootFunctions:        c.RootFunctions,
		ReverseRootFiles:     c.ReverseRootFiles,
		ReverseRootFunctions: c.ReverseRootFunctions,
		KeepInline:           c.KeepInline,
		LOD:                  c.LOD,
	}
}

// Run applies every stage in spec.md §4.7's order to g in place and
// returns the resulting graph (file-level condensation replaces g
// with a new, file-granularity Graph sharing g's table). Running Run
// twice on its own output is a no-op beyond the first invocation: each
// stage either operates on a fixed point (nothing left to exclude,
// already-collapsed edges, no inline functions remaining) or is
// explicitly gated (a graph whose defs are already file literals is
// returned as it is, re-indexed, without running any stage). One
// exception: when inline contraction splices u→f→v into a u→v pair
// that already had an edge, the first invocation leaves both edges,
// and a second invocation collapses them into one.
func Run(g *callgraph.Graph, opt Options) *callgraph.Graph {
	for _, h := range g.Defs {
		if h.HasFlag(literal.File) {
			// Defs are file literals: g is already the output of
			// condensation, so no stage has anything left to do.
			index.Build(g)
			return g
		}
	}
	exclude(g, opt.ExcludeFiles, opt.ExcludeFunctions)
	collapseDuplicates(g)
	if !opt.KeepInline {
		contractInline(g)
	}
	if len(opt.RootFiles) > 0 || len(opt.RootFunctions) > 0 ||
		len(opt.ReverseRootFiles) > 0 || len(opt.ReverseRootFunctions) > 0 {
		prune(g, opt)
	}
	if opt.LOD == config.LODFile {
		g = condense(g)
	}
	index.Build(g)
	return g
}

// exclude drops every def and incident edge for functions living in
// an excluded file, or bearing an excluded name — spec.md §4.7 stage 1.
func exclude(g *callgraph.Graph, excludeFiles, excludeFunctions []string) {
	if len(excludeFiles) == 0 && len(excludeFunctions) == 0 {
		return
	}
	dead := make(map[literal.Handle]bool)
	for _, h := range g.Defs {
		if excludedName(h, excludeFunctions) || excludedFile(h, excludeFiles) {
			dead[h] = true
		}
	}
	if len(dead) == 0 {
		return
	}
	dropDefs(g, dead)
	dropEdges(g, dead)
}

func excludedName(h literal.Handle, names []string) bool {
	return config.MatchAny(names, h.Name())
}

func excludedFile(h literal.Handle, files []string) bool {
	f := h.FileHandle()
	if f == nil {
		return false
	}
	return config.MatchAny(files, f.Name())
}

func dropDefs(g *callgraph.Graph, dead map[literal.Handle]bool) {
	out := g.Defs[:0]
	for _, h := range g.Defs {
		if !dead[h] {
			out = append(out, h)
		}
	}
	g.Defs = out
}

func dropEdges(g *callgraph.Graph, dead map[literal.Handle]bool) {
	out := g.Edges[:0]
	for _, e := range g.Edges {
		if dead[e.Caller] || dead[e.Callee] {
			continue
		}
		out = append(out, e)
	}
	g.Edges = out
}

// collapseDuplicates implements spec.md §4.7 stage 2: after sorting by
// (caller, callee, line, col), a run sharing (caller, callee)
// collapses to one edge; repeats at the same call site (the same macro
// expansion observed twice) are dropped rather than bumping weight,
// while each further distinct (line, col) call site bumps it by one.
func collapseDuplicates(g *callgraph.Graph) {
	g.SortEdgesCanonical()
	if len(g.Edges) == 0 {
		return
	}
	out := g.Edges[:0]
	var prevLine, prevCol int
	for _, e := range g.Edges {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Caller == e.Caller && last.Callee == e.Callee {
				if e.Line != prevLine || e.Col != prevCol {
					last.Weight++
				}
				prevLine, prevCol = e.Line, e.Col
				continue
			}
		}
		prevLine, prevCol = e.Line, e.Col
		out = append(out, e)
	}
	g.Edges = out
}

// contractInline implements spec.md §4.7 stage 3 and the §9 note that
// it is not transitive in one pass: it iterates to a fixed point,
// each round splicing every incoming edge u→f and outgoing edge f→v
// of one still-present inline function f into a synthetic u→v at
// u→f's call site, then dropping f and its incident edges, until no
// inline function with incident edges remains.
func contractInline(g *callgraph.Graph) {
	for {
		index.Build(g)
		target := nextInlineTarget(g)
		if target == nil {
			return
		}
		splice(g, target)
	}
}

func nextInlineTarget(g *callgraph.Graph) literal.Handle {
	for _, h := range g.Defs {
		if h.HasFlag(literal.Inline) {
			return h
		}
	}
	return nil
}

func splice(g *callgraph.Graph, f literal.Handle) {
	var incoming, outgoing []callgraph.Edge
	var rest []callgraph.Edge
	for _, e := range g.Edges {
		switch {
		case e.Callee == f && e.Caller != f:
			incoming = append(incoming, e)
		case e.Caller == f && e.Callee != f:
			outgoing = append(outgoing, e)
		case e.Caller == f || e.Callee == f:
			// self-call or an edge already excluded by both arms above
			continue
		default:
			rest = append(rest, e)
		}
	}

	for _, in := range incoming {
		for _, out := range outgoing {
			rest = append(rest, callgraph.Edge{
				Caller: in.Caller,
				Callee: out.Callee,
				Line:   in.Line,
				Col:    in.Col,
				Weight: in.Weight,
			})
		}
	}
	g.Edges = rest

	out := g.Defs[:0]
	for _, h := range g.Defs {
		if h != f {
			out = append(out, h)
		}
	}
	g.Defs = out
}

// prune implements spec.md §4.7 stage 4: the retained set is the
// union of forward reachability from the configured roots and reverse
// reachability from the configured reverse roots. Roots may name
// functions directly or name files (meaning every function defined in
// that file).
func prune(g *callgraph.Graph, opt Options) {
	index.Build(g)

	forwardRoots := rootHandles(g, opt.RootFiles, opt.RootFunctions)
	reverseRoots := rootHandles(g, opt.ReverseRootFiles, opt.ReverseRootFunctions)

	keep := make(map[literal.Handle]bool)

	if len(forwardRoots) > 0 {
		index.ClearVisited(g)
		for _, r := range forwardRoots {
			forwardDFS(g, r, keep)
		}
	}
	if len(reverseRoots) > 0 {
		reverse := reverseAdjacency(g)
		index.ClearVisited(g)
		for _, r := range reverseRoots {
			reverseDFS(reverse, r, keep)
		}
	}

	dead := invert(g.Defs, keep)
	dropDefs(g, dead)
	dropEdges(g, dead)
}

// invert returns the subset of candidates not marked keep, suitable
// for feeding back into dropDefs/dropEdges (which drop what's in the
// set they're given).
func invert(candidates []literal.Handle, keep map[literal.Handle]bool) map[literal.Handle]bool {
	drop := make(map[literal.Handle]bool, len(candidates))
	for _, h := range candidates {
		if !keep[h] {
			drop[h] = true
		}
	}
	return drop
}

func rootHandles(g *callgraph.Graph, files, functions []string) []literal.Handle {
	var roots []literal.Handle
	for _, h := range g.Defs {
		if config.MatchAny(functions, h.Name()) {
			roots = append(roots, h)
			continue
		}
		if f := h.FileHandle(); f != nil && config.MatchAny(files, f.Name()) {
			roots = append(roots, h)
		}
	}
	return roots
}

func forwardDFS(g *callgraph.Graph, h literal.Handle, keep map[literal.Handle]bool) {
	if index.Visited(h) {
		return
	}
	index.MarkVisited(h)
	keep[h] = true
	for _, e := range index.Outgoing(g, h) {
		forwardDFS(g, e.Callee, keep)
	}
}

func reverseAdjacency(g *callgraph.Graph) map[literal.Handle][]literal.Handle {
	adj := make(map[literal.Handle][]literal.Handle, len(g.Defs))
	for _, e := range g.Edges {
		adj[e.Callee] = append(adj[e.Callee], e.Caller)
	}
	return adj
}

func reverseDFS(adj map[literal.Handle][]literal.Handle, h literal.Handle, keep map[literal.Handle]bool) {
	if index.Visited(h) {
		return
	}
	index.MarkVisited(h)
	keep[h] = true
	for _, caller := range adj[h] {
		reverseDFS(adj, caller, keep)
	}
}

// condense implements spec.md §4.7 stage 5: replaces function-level
// edges with file-level ones. A new Graph is returned, sharing the
// source table (file literals are already interned there) so its Defs
// are exactly the distinct file handles that own at least one
// function, and its Edges are the deduplicated, weight-summed
// file→file relation.
func condense(g *callgraph.Graph) *callgraph.Graph {
	out := &callgraph.Graph{Table: g.Table}

	seenFile := make(map[literal.Handle]bool)
	for _, h := range g.Defs {
		if f := h.FileHandle(); f != nil && !seenFile[f] {
			seenFile[f] = true
			out.Defs = append(out.Defs, f)
		}
	}

	type key struct{ from, to literal.Handle }
	weights := make(map[key]float32)
	var order []key
	for _, e := range g.Edges {
		uf, vf := e.Caller.FileHandle(), e.Callee.FileHandle()
		if uf == nil || vf == nil || uf == vf {
			continue
		}
		k := key{uf, vf}
		if _, ok := weights[k]; !ok {
			order = append(order, k)
		}
		weights[k] += e.Weight
	}
	for _, k := range order {
		out.Edges = append(out.Edges, callgraph.Edge{Caller: k.from, Callee: k.to, Weight: weights[k]})
	}

	sort.Slice(out.Defs, func(i, j int) bool { return literal.Less(out.Defs[i], out.Defs[j]) })
	return out
}
