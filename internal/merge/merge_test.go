package merge

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/literal"
	"github.com/summaryInfo/lxgraph/internal/workerpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMergeAdoptsUnseenLiterals(t *testing.T) {
	dst := callgraph.New()
	src := callgraph.New()
	fn := src.EnterFunction("helper", "a.c", 10, 1, true, false)
	src.MarkDefinitionSite(10, 1)
	_ = fn
	src.ExitFunction()

	Merge(dst, src)

	got, ok := dst.Table.Get("helper")
	if !ok {
		t.Fatalf("expected helper to be adopted into dst's table")
	}
	if len(dst.Defs) != 1 || dst.Defs[0] != got {
		t.Fatalf("expected dst.Defs to contain the adopted handle")
	}
}

func TestMergeReconcilesSameNameAcrossShardsWithoutDuplicate(t *testing.T) {
	dst := callgraph.New()
	dst.EnterFunction("shared", "a.c", 5, 1, true, false)
	dst.MarkDefinitionSite(5, 1)
	dst.ExitFunction()

	src := callgraph.New()
	src.AddCall("shared", 20, 2) // only a declaration-site reference, no file

	Merge(dst, src)

	h, ok := dst.Table.Get("shared")
	if !ok {
		t.Fatalf("expected shared to exist in dst")
	}
	if h.HasFlag(literal.Duplicated) {
		t.Fatalf("did not expect Duplicated when src never claimed a file")
	}
	if f := h.FileHandle(); f == nil || f.Name() != "a.c" {
		t.Fatalf("expected dst's file to survive reconciliation, got %v", f)
	}
}

func TestMergeFlagsDuplicatedOnFileMismatch(t *testing.T) {
	dst := callgraph.New()
	dst.EnterFunction("shared", "a.c", 5, 1, true, false)
	dst.MarkDefinitionSite(5, 1)
	dst.ExitFunction()

	src := callgraph.New()
	src.EnterFunction("shared", "b.c", 9, 1, true, false)
	src.MarkDefinitionSite(9, 1)
	src.ExitFunction()

	Merge(dst, src)

	h, ok := dst.Table.Get("shared")
	if !ok {
		t.Fatalf("expected shared to exist in dst")
	}
	if !h.HasFlag(literal.Duplicated) {
		t.Fatalf("expected Duplicated flag when two shards claim different files for the same DEFINED function")
	}
}

func TestMergeRewritesDefFileBackReference(t *testing.T) {
	// Both shards independently intern the file "a.c". src's def for
	// "helper" holds a file handle that is a distinct object from
	// dst's "a.c" handle until merge unifies them; merge must rewrite
	// helper's file back-reference to point at dst's surviving handle,
	// or downstream file-clustering would split "a.c" into two groups.
	dst := callgraph.New()
	dst.InternFile("a.c")
	dstFile, _ := dst.Table.Get("a.c")

	src := callgraph.New()
	src.EnterFunction("helper", "a.c", 3, 1, true, false)
	src.MarkDefinitionSite(3, 1)
	src.ExitFunction()

	Merge(dst, src)

	h, ok := dst.Table.Get("helper")
	if !ok {
		t.Fatalf("expected helper in dst")
	}
	if h.FileHandle() != dstFile {
		t.Fatalf("expected helper's file handle to be rewritten to dst's unified \"a.c\" literal")
	}
}

func TestMergeRewritesEdgeEndpoints(t *testing.T) {
	dst := callgraph.New()
	dst.EnterFunction("caller", "a.c", 1, 1, true, false)
	dst.MarkDefinitionSite(1, 1)
	dstCallerBody := dst.AddCall("callee", 2, 1)
	dst.ExitFunction()
	dstCaller, _ := dst.Table.Get("caller")
	if dstCallerBody.Caller != dstCaller {
		t.Fatalf("sanity check failed")
	}

	src := callgraph.New()
	src.EnterFunction("caller", "a.c", 1, 1, true, false)
	src.AddCall("other", 4, 1)
	src.ExitFunction()

	Merge(dst, src)

	for _, e := range dst.Edges {
		if e.Callee.Name() == "other" && e.Caller != dstCaller {
			t.Fatalf("expected src's edge caller to be rewritten to dst's unified \"caller\" handle")
		}
	}
}

func TestMergeDedupsDefsAfterAppend(t *testing.T) {
	dst := callgraph.New()
	dst.EnterFunction("shared", "a.c", 5, 1, true, false)
	dst.MarkDefinitionSite(5, 1)
	dst.ExitFunction()

	src := callgraph.New()
	src.EnterFunction("shared", "a.c", 5, 1, true, false)
	src.MarkDefinitionSite(5, 1)
	src.ExitFunction()

	Merge(dst, src)

	count := 0
	for _, d := range dst.Defs {
		if d.Name() == "shared" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one \"shared\" def after dedup, got %d", count)
	}
}

func TestReducePairwiseMergesAllShards(t *testing.T) {
	pool := workerpool.New(context.Background(), 4)
	var shards []*callgraph.Graph
	for i := 0; i < 7; i++ {
		g := callgraph.New()
		g.EnterFunction("fn", "a.c", i+1, 1, true, false)
		g.MarkDefinitionSite(i+1, 1)
		g.ExitFunction()
		shards = append(shards, g)
	}

	result, err := Reduce(pool, shards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 0
	for _, d := range result.Defs {
		if d.Name() == "fn" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected all 7 shards' \"fn\" defs to merge into one, got %d", count)
	}
}

func TestReduceEmptyShardsReturnsFreshGraph(t *testing.T) {
	pool := workerpool.New(context.Background(), 2)
	result, err := Reduce(pool, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Table == nil {
		t.Fatalf("expected a usable empty graph")
	}
}
