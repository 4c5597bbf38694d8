// Package clangvisit implements the stateful AST visitor described in
// spec.md §4.2: one visitor walks one translation unit's cursor tree,
// feeding declarations and calls into a callgraph.Graph shard.
package clangvisit

import (
	"github.com/go-clang/v3.9/clang"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/errorsx"
)

// functionKind reports whether a cursor kind denotes something the
// visitor treats as a callable function — used both for the decl rows
// (FunctionDecl/CXXMethod/FunctionTemplate) and for deciding whether a
// DeclRefExpr/MemberRefExpr's referenced declaration is a call.
func functionKind(k clang.CursorKind) bool {
	switch k {
	case clang.Cursor_FunctionDecl, clang.Cursor_CXXMethod, clang.Cursor_FunctionTemplate:
		return true
	}
	return false
}

// Visitor drives a single translation unit's cursor tree into a shard.
type Visitor struct {
	graph *callgraph.Graph
}

// New returns a visitor that appends defs and edges to graph.
func New(graph *callgraph.Graph) *Visitor {
	return &Visitor{graph: graph}
}

// Visit walks root's subtree. Call once per translation unit, with
// root set to the TU's root cursor.
func (v *Visitor) Visit(root clang.Cursor) {
	root.Visit(v.visit)
}

func (v *Visitor) visit(cursor, _ clang.Cursor) clang.ChildVisitResult {
	if cursor.IsNull() {
		return clang.ChildVisit_Continue
	}

	switch cursor.Kind() {
	case clang.Cursor_CompoundStmt:
		if v.graph.CurrentFn != nil {
			_, line, col := expansionLocation(cursor)
			v.graph.MarkDefinitionSite(line, col)
		}

	case clang.Cursor_FunctionDecl, clang.Cursor_CXXMethod, clang.Cursor_FunctionTemplate:
		// The languages this tool handles don't nest named function
		// declarations; encountering one here is a broken invariant,
		// not a case to silently paper over.
		errorsx.Assert(v.graph.CurrentFn == nil, "clangvisit.visit", "nested function encountered")

		name := cursor.DisplayName()
		file, line, col := expansionLocation(cursor)
		global := cursor.StorageClass() != clang.StorageClass_Extern
		inlined := cursor.IsFunctionInlined()

		v.graph.EnterFunction(name, file, line, col, global, inlined)
		// Recurse explicitly so current-function state is active for
		// this subtree only, then clear it on the way out. Returning
		// ChildVisit_Continue below means this cursor's children are
		// not also auto-recursed a second time with that state gone.
		cursor.Visit(v.visit)
		v.graph.ExitFunction()
		return clang.ChildVisit_Continue

	case clang.Cursor_DeclRefExpr, clang.Cursor_MemberRefExpr:
		ref := cursor.Referenced()
		if !ref.IsNull() && functionKind(ref.Kind()) {
			name := ref.DisplayName()
			_, line, col := expansionLocation(cursor)
			v.graph.AddCall(name, line, col)
		}
	}

	return clang.ChildVisit_Recurse
}

// expansionLocation returns the (file, line, column) a cursor expands
// to after macro expansion, with the "./" prefix callgraph.Graph
// normalizes away left for the caller to decide about — InternFile and
// EnterFunction do that normalization themselves.
func expansionLocation(cursor clang.Cursor) (file string, line, col int) {
	f, l, c, _ := cursor.Location().ExpansionLocation()
	return f.FileName(), int(l), int(c)
}
