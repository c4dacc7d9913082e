package centrality

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/routing"
)

// Exact computes normalised edge betweenness with Brandes' algorithm, one
// single-source pass per node. Between a node pair the cheapest parallel
// edges share the pair's score equally; the others score zero. Every edge
// of the graph appears in the result.
type Exact struct {
	// Concurrency bounds the number of parallel single-source passes.
	// Zero means runtime.NumCPU().
	Concurrency int
}

// Method implements Strategy.
func (Exact) Method() string { return "networkx" }

type pair struct{ u, v int64 }

// Compute implements Strategy.
func (s Exact) Compute(ctx context.Context, g *roadnet.Graph, w roadnet.Weight) (*Table, error) {
	log := zap.L().With(zap.String("component", "centrality"), zap.String("method", s.Method()))

	sources := g.NodeIDs()
	workers := s.Concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(sources)))

	// Sources are split into contiguous chunks so partial sums merge in a
	// fixed order regardless of scheduling.
	partials := make([]map[pair]float64, workers)
	chunk := (len(sources) + workers - 1) / workers

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range workers {
		lo := min(i*chunk, len(sources))
		hi := min(lo+chunk, len(sources))
		eg.Go(func() error {
			local := make(map[pair]float64)
			for _, src := range sources[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				accumulate(local, routing.SingleSource(g, src, w))
			}
			partials[i] = local
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, eris.Wrap(err, "centrality: exact")
	}

	totals := make(map[pair]float64)
	for _, local := range partials {
		for p, v := range local {
			totals[p] += v
		}
	}

	if n := float64(g.NumNodes()); n > 1 {
		scale := 1 / (n * (n - 1))
		for p := range totals {
			totals[p] *= scale
		}
	}

	t := NewTable()
	seen := make(map[pair]bool)
	for _, e := range g.Edges() {
		if _, ok := t.Get(e.EdgeKey); !ok {
			t.Set(e.EdgeKey, 0)
		}
		p := pair{e.U, e.V}
		if seen[p] {
			continue
		}
		seen[p] = true

		best, _ := g.MinCost(p.u, p.v, w)
		var keys []roadnet.EdgeKey
		for _, par := range g.Parallel(p.u, p.v) {
			if par.Cost(w) == best {
				keys = append(keys, par.EdgeKey)
			}
		}
		for _, k := range keys {
			t.Set(k, totals[p]/float64(len(keys)))
		}
	}

	log.Info("exact centrality computed",
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", t.Len()),
		zap.Int("workers", workers),
	)
	return t, nil
}

// accumulate adds the dependency of tree.Source on every edge pair of its
// shortest-path DAG to bc, walking nodes farthest first.
func accumulate(bc map[pair]float64, tree *routing.Tree) {
	delta := make(map[int64]float64, len(tree.Order))
	for i := len(tree.Order) - 1; i >= 0; i-- {
		w := tree.Order[i]
		coeff := (1 + delta[w]) / tree.Sigma[w]
		for _, v := range tree.Pred[w] {
			c := tree.Sigma[v] * coeff
			bc[pair{v, w}] += c
			delta[v] += c
		}
	}
}
