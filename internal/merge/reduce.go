package merge

import (
	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/workerpool"
)

// Reduce merges a set of parse shards into a single graph using the
// logarithmic pairwise schedule spec.md §4.5 calls out as the core
// concurrency-engineering task of the whole pipeline: each round
// submits ⌊n/2⌋ independent merge(shards[k], shards[k+⌈n/2⌉]) tasks to
// pool, drains them as a barrier, then halves n (rounding up) and
// repeats until one shard remains.
//
// The per-pair merge mechanics in Merge are grounded on
// merge_move_callgraph's single-pass rewrite; this pairwise-halving
// schedule is not what the original does (parse_directory instead
// folds every shard sequentially into shards[0]) but is what spec.md
// requires so that merge work, like parse work, scales across threads
// instead of serializing onto one.
//
// Reduce takes ownership of shards: every graph at index ⌈n/2⌉ or
// above in a round is merged away and must not be used afterwards. The
// surviving graph is shards[0] (or a fresh empty graph if shards is
// empty).
func Reduce(pool *workerpool.Pool, shards []*callgraph.Graph) (*callgraph.Graph, error) {
	if len(shards) == 0 {
		return callgraph.New(), nil
	}

	n := len(shards)
	for n > 1 {
		half := n / 2
		offset := (n + 1) / 2
		for k := 0; k < half; k++ {
			k := k
			pool.Submit(func(int) error {
				Merge(shards[k], shards[k+offset])
				return nil
			})
		}
		if err := pool.Drain(); err != nil {
			return nil, err
		}
		n = (n + 1) / 2
	}
	return shards[0], nil
}
