// Package merge implements spec.md §4.5: reconciling a source partial
// graph into a destination so every handle in the result is owned by
// the destination's intern table.
package merge

import (
	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/errorsx"
	"github.com/summaryInfo/lxgraph/internal/literal"
)

// Merge moves src into dst in three phases — table rewrite, reference
// rewrite, and (implicitly, since Go is garbage collected) letting the
// now-unreferenced stale src literals become collectible — followed by
// appending src's edges and defs and deduplicating defs.
//
// After Merge returns, src must not be used again: its table has been
// drained into dst and its edges/defs slices have been reassigned into
// dst.
func Merge(dst, src *callgraph.Graph) {
	mapping := tableRewrite(dst, src)
	referenceRewrite(src, mapping)

	dst.Edges = append(dst.Edges, src.Edges...)
	dst.Defs = append(dst.Defs, src.Defs...)
	dst.SortDefsByFile()
	dst.DedupDefs()

	src.Edges = nil
	src.Defs = nil
}

// tableRewrite is phase 1: for each literal in src's table, either
// transfer it into dst (no name collision) or reconcile it against the
// existing dst literal of the same name, recording the old→new
// handle in a mapping for phase 2 to apply.
//
// spec.md §4.5 describes stashing this mapping in the reconciled
// literal's own file-back-reference slot — a C-specific trick to avoid
// a second allocation. Go's garbage collector makes an explicit map a
// clearer and equally correct stand-in; spec.md's own wording ("the
// implementation may either... the design requires only that the
// final vectors contain exclusively dst-owned handles") leaves the
// mechanism open.
func tableRewrite(dst, src *callgraph.Graph) map[literal.Handle]literal.Handle {
	mapping := make(map[literal.Handle]literal.Handle)
	for l := range src.Table.All() {
		if existing, ok := dst.Table.Get(l.Name()); ok {
			reconcile(existing, l)
			mapping[l] = existing
			continue
		}
		dst.Table.Adopt(l)
	}
	return mapping
}

// reconcile folds a src literal's metadata into the matching dst
// literal: missing file/location are copied over, flags are OR'd in,
// and a file mismatch between the two is flagged DUPLICATED rather
// than silently overwritten. Files are compared by name, since the two
// file literals belong to different tables.
func reconcile(dst, src literal.Handle) {
	srcFile := src.FileHandle()
	sameFile := dst.FileHandle() == nil || srcFile == nil || dst.FileHandle().Name() == srcFile.Name()
	if dst.FileHandle() == nil {
		dst.SetFile(srcFile)
	}
	if !sameFile {
		dst.SetFlags(literal.Duplicated)
	}

	srcLine, srcCol := src.Location()
	if dstLine, _ := dst.Location(); dstLine == 0 && srcLine != 0 {
		dst.SetLocation(srcLine, srcCol)
	}

	dst.SetFlags(src.Flags())

	errorsx.Assert(
		!dst.HasFlag(literal.Defined) || sameFile || dst.HasFlag(literal.Duplicated),
		"merge.reconcile",
		"DEFINED function %q reconciled across distinct files without DUPLICATED", dst.Name(),
	)
}

// referenceRewrite is phase 2: every handle in src's edges and defs
// that phase 1 mapped to a dst literal is replaced by its mapped
// counterpart, including each def's own file back-reference — a def's
// file may itself be a literal that got unified into dst under phase
// 1, and leaving it pointing at the stale src literal would split one
// file's functions across two distinct file identities downstream.
func referenceRewrite(src *callgraph.Graph, mapping map[literal.Handle]literal.Handle) {
	rewrite := func(h literal.Handle) literal.Handle {
		if m, ok := mapping[h]; ok {
			return m
		}
		return h
	}

	for i := range src.Edges {
		src.Edges[i].Caller = rewrite(src.Edges[i].Caller)
		src.Edges[i].Callee = rewrite(src.Edges[i].Callee)
	}
	for i := range src.Defs {
		src.Defs[i] = rewrite(src.Defs[i])
		if f := src.Defs[i].FileHandle(); f != nil {
			src.Defs[i].SetFile(rewrite(f))
		}
	}
}
