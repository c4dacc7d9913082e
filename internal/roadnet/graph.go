// Package roadnet models a drivable road network as a directed multigraph
// built from OpenStreetMap ways.
package roadnet

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// Weight names the edge attribute used as routing cost.
type Weight string

const (
	// WeightLength routes by segment length in metres.
	WeightLength Weight = "length"
	// WeightTravelTime routes by traversal time in seconds.
	WeightTravelTime Weight = "travel_time"
)

// EdgeKey identifies a road segment: origin node, destination node and the
// parallel-edge index.
type EdgeKey struct {
	U   int64 `json:"u"`
	V   int64 `json:"v"`
	Key int   `json:"key"`
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("(%d, %d, %d)", k.U, k.V, k.Key)
}

// Compare orders keys by U, V, then Key.
func (k EdgeKey) Compare(o EdgeKey) int {
	return cmp.Or(cmp.Compare(k.U, o.U), cmp.Compare(k.V, o.V), cmp.Compare(k.Key, o.Key))
}

// Node is an intersection or dead end.
type Node struct {
	ID  int64
	Lon float64
	Lat float64
}

// Point returns the node position as lon/lat.
func (n Node) Point() orb.Point {
	return orb.Point{n.Lon, n.Lat}
}

// Edge is a directed road segment between two nodes.
type Edge struct {
	EdgeKey

	// OSMIDs lists the way ids merged into this segment, in traversal order.
	OSMIDs   []int64
	Highway  string
	Name     string
	MaxSpeed string
	Oneway   bool
	Reversed bool

	// Length is in metres.
	Length float64
	// SpeedKPH and TravelTime are zero until AddEdgeSpeeds runs.
	SpeedKPH   float64
	TravelTime float64

	Geometry orb.LineString
}

// Cost returns the edge weight for w. Unknown weights cost 1, the convention
// for unweighted shortest paths.
func (e *Edge) Cost(w Weight) float64 {
	switch w {
	case WeightLength:
		return e.Length
	case WeightTravelTime:
		return e.TravelTime
	default:
		return 1
	}
}

// Graph is a directed multigraph keyed by OSM node id.
type Graph struct {
	nodes map[int64]*Node
	out   map[int64]map[int64][]*Edge
	in    map[int64]map[int64]struct{}
	edges int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int64]*Node),
		out:   make(map[int64]map[int64][]*Edge),
		in:    make(map[int64]map[int64]struct{}),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n Node) {
	if existing, ok := g.nodes[n.ID]; ok {
		*existing = n
		return
	}
	node := n
	g.nodes[n.ID] = &node
	g.out[n.ID] = make(map[int64][]*Edge)
	g.in[n.ID] = make(map[int64]struct{})
}

// AddEdge inserts e between e.U and e.V, assigning the lowest unused
// parallel-edge index. Both endpoints must already exist.
func (g *Graph) AddEdge(e Edge) (EdgeKey, error) {
	if _, ok := g.nodes[e.U]; !ok {
		return EdgeKey{}, eris.Errorf("roadnet: add edge: unknown node %d", e.U)
	}
	if _, ok := g.nodes[e.V]; !ok {
		return EdgeKey{}, eris.Errorf("roadnet: add edge: unknown node %d", e.V)
	}

	parallel := g.out[e.U][e.V]
	key := 0
	for slices.ContainsFunc(parallel, func(p *Edge) bool { return p.Key == key }) {
		key++
	}
	e.Key = key

	edge := e
	g.out[e.U][e.V] = append(parallel, &edge)
	g.in[e.V][e.U] = struct{}{}
	g.edges++
	return edge.EdgeKey, nil
}

// RemoveEdge deletes the edge with key k, if present.
func (g *Graph) RemoveEdge(k EdgeKey) {
	parallel := g.out[k.U][k.V]
	idx := slices.IndexFunc(parallel, func(e *Edge) bool { return e.Key == k.Key })
	if idx < 0 {
		return
	}
	parallel = slices.Delete(parallel, idx, idx+1)
	g.edges--
	if len(parallel) == 0 {
		delete(g.out[k.U], k.V)
		delete(g.in[k.V], k.U)
		return
	}
	g.out[k.U][k.V] = parallel
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id int64) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for v, parallel := range g.out[id] {
		g.edges -= len(parallel)
		delete(g.in[v], id)
	}
	for u := range g.in[id] {
		g.edges -= len(g.out[u][id])
		delete(g.out[u], id)
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.nodes, id)
}

// Node looks up a node by id.
func (g *Graph) Node(id int64) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// Edge looks up an edge by key.
func (g *Graph) Edge(k EdgeKey) (*Edge, bool) {
	for _, e := range g.out[k.U][k.V] {
		if e.Key == k.Key {
			return e, true
		}
	}
	return nil, false
}

// Parallel returns the edges from u to v ordered by key.
func (g *Graph) Parallel(u, v int64) []*Edge {
	parallel := slices.Clone(g.out[u][v])
	slices.SortFunc(parallel, func(a, b *Edge) int { return cmp.Compare(a.Key, b.Key) })
	return parallel
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the edge count, parallel edges included.
func (g *Graph) NumEdges() int { return g.edges }

// NodeIDs returns all node ids in ascending order.
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Successors returns the distinct targets of edges leaving u, ascending.
func (g *Graph) Successors(u int64) []int64 {
	ids := make([]int64, 0, len(g.out[u]))
	for v := range g.out[u] {
		ids = append(ids, v)
	}
	slices.Sort(ids)
	return ids
}

// Predecessors returns the distinct sources of edges entering v, ascending.
func (g *Graph) Predecessors(v int64) []int64 {
	ids := make([]int64, 0, len(g.in[v]))
	for u := range g.in[v] {
		ids = append(ids, u)
	}
	slices.Sort(ids)
	return ids
}

// OutDegree counts edges leaving u, parallel edges included.
func (g *Graph) OutDegree(u int64) int {
	n := 0
	for _, parallel := range g.out[u] {
		n += len(parallel)
	}
	return n
}

// InDegree counts edges entering v, parallel edges included.
func (g *Graph) InDegree(v int64) int {
	n := 0
	for u := range g.in[v] {
		n += len(g.out[u][v])
	}
	return n
}

// Edges returns every edge ordered by key.
func (g *Graph) Edges() []*Edge {
	all := make([]*Edge, 0, g.edges)
	for _, targets := range g.out {
		for _, parallel := range targets {
			all = append(all, parallel...)
		}
	}
	slices.SortFunc(all, func(a, b *Edge) int { return a.EdgeKey.Compare(b.EdgeKey) })
	return all
}

// OutEdges returns the edges leaving u ordered by key.
func (g *Graph) OutEdges(u int64) []*Edge {
	var all []*Edge
	for _, v := range g.Successors(u) {
		all = append(all, g.Parallel(u, v)...)
	}
	return all
}

// MinEdge returns the parallel edge from u to v with the lowest cost under w,
// preferring the lowest key on ties.
func (g *Graph) MinEdge(u, v int64, w Weight) (*Edge, bool) {
	var best *Edge
	for _, e := range g.Parallel(u, v) {
		if best == nil || e.Cost(w) < best.Cost(w) {
			best = e
		}
	}
	return best, best != nil
}

// MinCost returns the lowest cost under w among the parallel edges from u to
// v, the weight a simple-graph algorithm sees for the pair.
func (g *Graph) MinCost(u, v int64, w Weight) (float64, bool) {
	parallel := g.out[u][v]
	if len(parallel) == 0 {
		return 0, false
	}
	best := parallel[0].Cost(w)
	for _, e := range parallel[1:] {
		best = min(best, e.Cost(w))
	}
	return best, true
}

// Bound returns the lon/lat bounding box of all nodes.
func (g *Graph) Bound() orb.Bound {
	var mp orb.MultiPoint
	for _, n := range g.nodes {
		mp = append(mp, n.Point())
	}
	return mp.Bound()
}
