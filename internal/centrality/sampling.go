package centrality

import (
	"context"
	"math/rand/v2"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/routing"
)

// DefaultMaxStallRounds is the number of consecutive empty rounds after
// which Sampling gives up.
const DefaultMaxStallRounds = 50

// Sampling estimates centrality from Routes random origin-destination
// routes. Origins and destinations are drawn uniformly with replacement;
// unreachable pairs and pairs whose route has fewer than two nodes are
// discarded and only the shortfall is redrawn, so exactly Routes routes are
// counted. An edge scores the number of routes that traverse it.
type Sampling struct {
	Routes int
	// Seed fixes the origin-destination sequence.
	Seed int64
	// Concurrency bounds parallel route searches. Zero means
	// runtime.NumCPU().
	Concurrency int
	// MaxStallRounds aborts with ErrSamplingStalled after that many
	// consecutive rounds without a valid route. Zero never gives up.
	MaxStallRounds int
}

// Method implements Strategy.
func (Sampling) Method() string { return "geographical" }

// Compute implements Strategy.
func (s Sampling) Compute(ctx context.Context, g *roadnet.Graph, w roadnet.Weight) (*Table, error) {
	routes, err := s.Sample(ctx, g, w)
	if err != nil {
		return nil, err
	}

	t := NewTable()
	for _, route := range routes {
		for i := 0; i+1 < len(route); i++ {
			e, ok := g.MinEdge(route[i], route[i+1], w)
			if !ok {
				return nil, eris.Errorf("centrality: route step %d -> %d has no edge", route[i], route[i+1])
			}
			t.Add(e.EdgeKey, 1)
		}
	}

	zap.L().With(zap.String("component", "centrality"), zap.String("method", s.Method())).Info("sampled centrality computed",
		zap.Int("routes", len(routes)),
		zap.Int("edges", t.Len()),
	)
	return t, nil
}

// Sample returns exactly s.Routes valid routes, each a node sequence of at
// least two nodes with distinct endpoints.
func (s Sampling) Sample(ctx context.Context, g *roadnet.Graph, w roadnet.Weight) ([][]int64, error) {
	if s.Routes <= 0 {
		return nil, eris.Errorf("centrality: number of routes must be positive, got %d", s.Routes)
	}
	nodes := g.NodeIDs()
	if len(nodes) == 0 {
		return nil, eris.New("centrality: sampling: graph has no nodes")
	}
	workers := s.Concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	log := zap.L().With(zap.String("component", "centrality"), zap.String("method", s.Method()))
	rng := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)^0x9e3779b97f4a7c15))

	routes := make([][]int64, 0, s.Routes)
	stalled := 0
	for round := 1; len(routes) < s.Routes; round++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "centrality: sampling")
		}

		shortfall := s.Routes - len(routes)
		origins := draw(rng, nodes, shortfall)
		destinations := draw(rng, nodes, shortfall)

		paths := make([][]int64, shortfall)
		eg, gctx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)
		for i := range shortfall {
			eg.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				paths[i] = routing.ShortestPath(g, origins[i], destinations[i], w)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, eris.Wrap(err, "centrality: sampling")
		}

		valid := 0
		for _, p := range paths {
			if len(p) < 2 {
				continue
			}
			routes = append(routes, p)
			valid++
		}
		log.Debug("sampling round",
			zap.Int("round", round),
			zap.Int("requested", shortfall),
			zap.Int("valid", valid),
			zap.Int("collected", len(routes)),
		)

		if valid > 0 {
			stalled = 0
			continue
		}
		stalled++
		if s.MaxStallRounds > 0 && stalled >= s.MaxStallRounds {
			return nil, eris.Wrapf(ErrSamplingStalled, "%d consecutive empty rounds", stalled)
		}
	}
	return routes, nil
}

func draw(rng *rand.Rand, nodes []int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = nodes[rng.IntN(len(nodes))]
	}
	return out
}
