package roadnet

import (
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// IsEndpoint reports whether node id must survive simplification: it has a
// self loop, it is a source or a sink, or it does not sit in the middle of a
// plain one-way or two-way chain.
func IsEndpoint(g *Graph, id int64) bool {
	succ := g.Successors(id)
	pred := g.Predecessors(id)
	if slices.Contains(succ, id) {
		return true
	}
	if len(succ) == 0 || len(pred) == 0 {
		return true
	}

	neighbors := make(map[int64]struct{}, len(succ)+len(pred))
	for _, n := range succ {
		neighbors[n] = struct{}{}
	}
	for _, n := range pred {
		neighbors[n] = struct{}{}
	}
	degree := g.OutDegree(id) + g.InDegree(id)
	return !(len(neighbors) == 2 && (degree == 2 || degree == 4))
}

// Simplify collapses every chain of interstitial nodes between two endpoints
// into a single edge. Lengths are summed, way ids are kept once each in
// traversal order and the geometry follows the removed nodes.
func Simplify(g *Graph) error {
	before := g.NumEdges()

	endpoints := make(map[int64]bool)
	for _, id := range g.NodeIDs() {
		if IsEndpoint(g, id) {
			endpoints[id] = true
		}
	}

	var paths [][]int64
	for _, id := range g.NodeIDs() {
		if !endpoints[id] {
			continue
		}
		for _, succ := range g.Successors(id) {
			if endpoints[succ] {
				continue
			}
			path, err := buildPath(g, id, succ, endpoints)
			if err != nil {
				return err
			}
			paths = append(paths, path)
		}
	}

	merged := make([]Edge, 0, len(paths))
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		merged = append(merged, mergePath(g, path))
	}

	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		for _, id := range path[1 : len(path)-1] {
			g.RemoveNode(id)
		}
	}
	for _, e := range merged {
		if _, err := g.AddEdge(e); err != nil {
			return eris.Wrap(err, "roadnet: simplify")
		}
	}

	zap.L().With(zap.String("component", "roadnet")).Debug("simplified graph",
		zap.Int("edges_before", before),
		zap.Int("edges_after", g.NumEdges()),
		zap.Int("paths", len(merged)),
	)
	return nil
}

// buildPath walks from endpoint through its non-endpoint successor until it
// reaches another endpoint, or loops back to where it started.
func buildPath(g *Graph, endpoint, next int64, endpoints map[int64]bool) ([]int64, error) {
	path := []int64{endpoint, next}
	for _, succ := range g.Successors(next) {
		if slices.Contains(path, succ) {
			continue
		}
		path = append(path, succ)
		for !endpoints[succ] {
			var candidates []int64
			for _, s := range g.Successors(succ) {
				if !slices.Contains(path, s) {
					candidates = append(candidates, s)
				}
			}
			switch len(candidates) {
			case 1:
				succ = candidates[0]
				path = append(path, succ)
			case 0:
				if slices.Contains(g.Successors(succ), endpoint) {
					return append(path, endpoint), nil
				}
				zap.L().With(zap.String("component", "roadnet")).Warn("simplify: path ends without reaching an endpoint",
					zap.Int64("start", endpoint),
					zap.Int64("last", succ),
				)
				return path, nil
			default:
				return nil, eris.Errorf("roadnet: simplify: node %d has %d unvisited successors inside a chain", succ, len(candidates))
			}
		}
		return path, nil
	}
	return path, nil
}

func mergePath(g *Graph, path []int64) Edge {
	merged := Edge{EdgeKey: EdgeKey{U: path[0], V: path[len(path)-1]}}
	var speeds []string
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		parallel := g.Parallel(u, v)
		if len(parallel) == 0 {
			continue
		}
		e := parallel[0]

		for _, id := range e.OSMIDs {
			if !slices.Contains(merged.OSMIDs, id) {
				merged.OSMIDs = append(merged.OSMIDs, id)
			}
		}
		merged.Length += e.Length
		if i == 0 {
			merged.Highway = e.Highway
			merged.Oneway = e.Oneway
			merged.Reversed = e.Reversed
		}
		if merged.Name == "" {
			merged.Name = e.Name
		}
		if e.MaxSpeed != "" && !slices.Contains(speeds, e.MaxSpeed) {
			speeds = append(speeds, e.MaxSpeed)
		}
	}
	merged.MaxSpeed = strings.Join(speeds, ";")

	merged.Geometry = make(orb.LineString, 0, len(path))
	for _, id := range path {
		n, _ := g.Node(id)
		merged.Geometry = append(merged.Geometry, n.Point())
	}
	return merged
}
