// Package parse implements spec.md §4.4's parallel parse stage: it
// submits one worker-pool task per batch of compile commands, each of
// which opens its own Clang index, parses every command in its batch,
// and feeds the resulting AST into the shard assigned to its worker
// thread.
package parse

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-clang/v3.9/clang"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/clangvisit"
	"github.com/summaryInfo/lxgraph/internal/compiledb"
	"github.com/summaryInfo/lxgraph/internal/logx"
	"github.com/summaryInfo/lxgraph/internal/workerpool"
)

// chdirMu serializes the chdir-then-parse section across worker
// goroutines. spec.md §4.4 describes the working-directory switch as
// thread-local, which holds for the original's OS-thread-per-worker
// model; a Go process has one shared current directory across every
// goroutine regardless of which OS thread runs it, so this mutex
// trades the chdir step's concurrency for correctness instead of
// risking one task's Chdir leaking into another's parse.
var chdirMu sync.Mutex

// Shards runs every batch of commands through pool, visiting each
// translation unit into shards[threadIndex], and returns shards once
// every batch has been drained. shards must already hold nproc fresh
// callgraph.Graph values, one per worker slot — spec.md §4.4:
// "preallocate nproc empty partial graphs, one per worker."
//
// A translation unit that fails to parse is logged at warn level and
// skipped; per spec.md §4.4 and §7, a parse failure never aborts the
// run.
func Shards(pool *workerpool.Pool, batches [][]compiledb.Command, shards []*callgraph.Graph) error {
	for _, batch := range batches {
		batch := batch
		pool.Submit(func(threadIndex int) error {
			return parseBatch(batch, shards[threadIndex])
		})
	}
	return pool.Drain()
}

func parseBatch(batch []compiledb.Command, shard *callgraph.Graph) error {
	idx := clang.NewIndex(0, 0)
	defer idx.Dispose()

	for _, cmd := range batch {
		if err := parseOne(idx, cmd, shard); err != nil {
			logx.Warnf("parse: skipping %q: %v", cmd.Filename, err)
		}
	}
	return nil
}

func parseOne(idx clang.Index, cmd compiledb.Command, shard *callgraph.Graph) error {
	tu, err := parseTU(idx, cmd)
	if err != nil {
		return err
	}
	defer tu.Dispose()

	clangvisit.New(shard).Visit(tu.TranslationUnitCursor())
	return nil
}

func parseTU(idx clang.Index, cmd compiledb.Command) (clang.TranslationUnit, error) {
	chdirMu.Lock()
	defer chdirMu.Unlock()

	var tu clang.TranslationUnit
	if cmd.Directory != "" {
		prevWd, err := os.Getwd()
		if err != nil {
			return tu, err
		}
		if err := os.Chdir(cmd.Directory); err != nil {
			return tu, err
		}
		defer os.Chdir(prevWd)
	}

	opts := clang.DefaultEditingTranslationUnitOptions() | uint32(clang.TranslationUnit_KeepGoing)
	if errCode := idx.ParseTranslationUnit2(cmd.Filename, cmd.Argv, nil, opts, &tu); clang.ErrorCode(errCode) != clang.Error_Success {
		return tu, fmt.Errorf("clang parse error: %s", clang.ErrorCode(errCode).Spelling())
	}
	return tu, nil
}
