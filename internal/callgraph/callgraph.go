// Package callgraph defines the core data model shared by every stage
// of the pipeline: the per-translation-unit visitor, the merger, the
// filter pipeline, the graph index, and the DOT writer all operate on
// the same Graph type, the way struct callgraph in callgraph.h serves
// both as a parse shard (partial graph, cursor state included) and as
// the final merged result.
package callgraph

import (
	"sort"

	"github.com/summaryInfo/lxgraph/internal/literal"
)

// StaticExprCaller is the synthetic function name edges are attributed
// to when a call expression occurs outside any function body — see
// spec.md §9's "calls outside any function body" open question, left
// as the documented limitation the original also carries.
const StaticExprCaller = "<static expr>"

// Edge is one caller→callee invocation, matching struct invokation.
type Edge struct {
	Caller literal.Handle
	Callee literal.Handle
	Line   int
	Col    int
	Weight float32
}

// Graph is a partial graph while a translation unit is being visited
// (Current* fields are live) and the merged global graph once parsing
// and merging are done (Current* fields are left zeroed and ignored).
type Graph struct {
	Table *literal.Table
	Defs  []literal.Handle
	Edges []Edge

	CurrentFn   literal.Handle
	CurrentFile literal.Handle
	CurrentLine int
	CurrentCol  int
}

// New returns an empty graph with a fresh intern table, ready to be
// used as a parse shard.
func New() *Graph {
	return &Graph{Table: literal.NewTable()}
}

// InternFile interns a file path, normalizing a leading "./" the way
// spec.md §4.2 requires, and marks it FILE.
func (g *Graph) InternFile(path string) literal.Handle {
	path = normalizeFilePath(path)
	return g.Table.PutWithFlags(path, literal.File)
}

func normalizeFilePath(path string) string {
	if len(path) >= 2 && path[0] == '.' && path[1] == '/' {
		return path[2:]
	}
	return path
}

// EnterFunction records entry into a function body per spec.md §4.2's
// FunctionDecl/CXXMethod/FunctionTemplate row: it interns the function
// name and its file, appends a new def, and sets the cursor state a
// nested CompoundStmt/DeclRefExpr visit reads. The caller (the AST
// visitor) is responsible for the "already inside a function" check —
// EnterFunction itself does not check whether CurrentFn is already set.
func (g *Graph) EnterFunction(name, file string, line, col int, global, inlined bool) literal.Handle {
	flags := literal.Function
	if global {
		flags |= literal.Global
	}
	if inlined {
		flags |= literal.Inline
	}
	fn := g.Table.PutWithFlags(name, flags)
	fileHandle := g.InternFile(file)

	g.CurrentFn = fn
	g.CurrentFile = fileHandle
	g.CurrentLine = line
	g.CurrentCol = col
	g.Defs = append(g.Defs, fn)
	return fn
}

// ExitFunction clears the current-function cursor state on leaving a
// function body.
func (g *Graph) ExitFunction() {
	g.CurrentFn = nil
}

// MarkDefinitionSite handles the CompoundStmt row: if inside a
// function, flags it DEFINED and records (file, line, col) as its
// definition site.
func (g *Graph) MarkDefinitionSite(line, col int) {
	if g.CurrentFn == nil {
		return
	}
	fn := g.CurrentFn
	fn.SetFlags(literal.Defined)
	fn.SetFile(g.CurrentFile)
	fn.SetLocation(line, col)
}

// AddCall handles the DeclRefExpr/MemberRefExpr row: interns the
// callee name as a FUNCTION literal and appends an edge from the
// current function, or from the synthetic static-expression caller if
// none is active.
func (g *Graph) AddCall(calleeName string, line, col int) Edge {
	callee := g.Table.PutWithFlags(calleeName, literal.Function)
	caller := g.CurrentFn
	if caller == nil {
		caller = g.Table.PutWithFlags(StaticExprCaller, literal.Function)
	}
	e := Edge{Caller: caller, Callee: callee, Line: line, Col: col, Weight: 1}
	g.Edges = append(g.Edges, e)
	return e
}

// SortEdgesCanonical sorts edges by (caller, callee, line, col) using
// handle identity order for caller/callee. This single ordering serves
// both the graph index (§4.6, caller primary) and duplicate-edge
// collapse (§4.7, full tuple) since they specify the same key.
func (g *Graph) SortEdgesCanonical() {
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Caller != b.Caller {
			return literal.Less(a.Caller, b.Caller)
		}
		if a.Callee != b.Callee {
			return literal.Less(a.Callee, b.Callee)
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}

// SortDefsByAddr sorts defs by handle identity, the ordering §4.6's
// graph index walks defs in alongside edges sorted by caller.
func (g *Graph) SortDefsByAddr() {
	sort.Slice(g.Defs, func(i, j int) bool {
		return literal.Less(g.Defs[i], g.Defs[j])
	})
}

// SortDefsByFile sorts defs by (file, handle), the ordering the DOT
// writer (§4.8) and merge's def-dedup (§4.5) both need: defs sharing a
// file end up adjacent, with a stable per-file handle order.
func (g *Graph) SortDefsByFile() {
	sort.Slice(g.Defs, func(i, j int) bool {
		fi, fj := g.Defs[i].FileHandle(), g.Defs[j].FileHandle()
		if fi != fj {
			return literal.Less(fi, fj)
		}
		return literal.Less(g.Defs[i], g.Defs[j])
	})
}

// DedupDefs coalesces duplicate handles after SortDefsByFile has made
// them adjacent, matching §4.5's "deduplicate defs: sort by (file,
// handle), coalesce equal handles keeping any known file location."
// Since defs only ever holds distinct handles barring a merge having
// just appended two shards' worth, this is safe to call unconditionally
// after every merge.
func (g *Graph) DedupDefs() {
	if len(g.Defs) == 0 {
		return
	}
	out := g.Defs[:1]
	for _, h := range g.Defs[1:] {
		if h == out[len(out)-1] {
			continue
		}
		out = append(out, h)
	}
	g.Defs = out
}
