package roadnet

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BuildOptions controls the post-processing applied by Build, in the order
// simplify, truncate, largest component.
type BuildOptions struct {
	// Boundary truncates the network to nodes inside it. Polygon and
	// MultiPolygon are supported; nil keeps everything.
	Boundary orb.Geometry
	// Simplify merges interstitial nodes into their chains.
	Simplify bool
	// LargestComponent drops every node outside the largest weakly
	// connected component.
	LargestComponent bool
}

// DefaultBuildOptions truncates nothing, simplifies and keeps the largest
// component.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Simplify: true, LargestComponent: true}
}

// Build turns decoded OSM data into a drivable road network. Each drivable
// way contributes one edge per consecutive node pair, plus the reverse edge
// when the way is two-way.
func Build(data *osm.OSM, opts BuildOptions) (*Graph, error) {
	if data == nil {
		return nil, eris.New("roadnet: build: no osm data")
	}
	log := zap.L().With(zap.String("component", "roadnet"))

	coords := make(map[osm.NodeID]*osm.Node, len(data.Nodes))
	for _, n := range data.Nodes {
		coords[n.ID] = n
	}

	g := New()
	var ways int
	for _, w := range data.Ways {
		if !Drivable(w) {
			continue
		}
		if err := addWay(g, w, coords); err != nil {
			return nil, err
		}
		ways++
	}
	if g.NumEdges() == 0 {
		return nil, eris.New("roadnet: build: no drivable ways in data")
	}
	log.Debug("graph built from ways",
		zap.Int("ways", ways),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
	)

	// Simplify before truncating, while chains that leave the boundary are
	// still whole; a merged edge goes with its outside endpoint.
	if opts.Simplify {
		if err := Simplify(g); err != nil {
			return nil, err
		}
	}
	if opts.Boundary != nil {
		removed, err := Truncate(g, opts.Boundary)
		if err != nil {
			return nil, err
		}
		log.Debug("truncated to boundary", zap.Int("removed_nodes", removed))
	}
	if opts.LargestComponent {
		LargestComponent(g)
	}
	if g.NumEdges() == 0 {
		return nil, eris.New("roadnet: build: network is empty after processing")
	}

	log.Info("road network ready",
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
	)
	return g, nil
}

func addWay(g *Graph, w *osm.Way, coords map[osm.NodeID]*osm.Node) error {
	// Ways clipped by the download bbox reference nodes that were not
	// returned; a missing node breaks the way rather than bridging the gap.
	refs := make([]*osm.Node, len(w.Nodes))
	for i, wn := range w.Nodes {
		refs[i] = coords[wn.ID]
	}

	oneway := IsOneway(w)
	reversed := IsReversed(w)
	if reversed {
		slices.Reverse(refs)
	}

	base := Edge{
		OSMIDs:   []int64{int64(w.ID)},
		Highway:  w.Tags.Find("highway"),
		Name:     w.Tags.Find("name"),
		MaxSpeed: w.Tags.Find("maxspeed"),
		Oneway:   oneway,
		Reversed: reversed,
	}

	for i := 0; i+1 < len(refs); i++ {
		a, b := refs[i], refs[i+1]
		if a == nil || b == nil || a.ID == b.ID {
			continue
		}
		g.AddNode(Node{ID: int64(a.ID), Lon: a.Lon, Lat: a.Lat})
		g.AddNode(Node{ID: int64(b.ID), Lon: b.Lon, Lat: b.Lat})

		pa, pb := orb.Point{a.Lon, a.Lat}, orb.Point{b.Lon, b.Lat}
		length := geo.DistanceHaversine(pa, pb)

		fwd := base
		fwd.EdgeKey = EdgeKey{U: int64(a.ID), V: int64(b.ID)}
		fwd.Length = length
		fwd.Geometry = orb.LineString{pa, pb}
		if _, err := g.AddEdge(fwd); err != nil {
			return eris.Wrapf(err, "roadnet: way %d", w.ID)
		}
		if oneway {
			continue
		}

		back := base
		back.Reversed = !reversed
		back.EdgeKey = EdgeKey{U: int64(b.ID), V: int64(a.ID)}
		back.Length = length
		back.Geometry = orb.LineString{pb, pa}
		if _, err := g.AddEdge(back); err != nil {
			return eris.Wrapf(err, "roadnet: way %d", w.ID)
		}
	}
	return nil
}

// Truncate removes every node outside boundary, with its edges, and returns
// the number of nodes removed.
func Truncate(g *Graph, boundary orb.Geometry) (int, error) {
	var inside func(orb.Point) bool
	switch b := boundary.(type) {
	case orb.Polygon:
		inside = func(p orb.Point) bool { return planar.PolygonContains(b, p) }
	case orb.MultiPolygon:
		inside = func(p orb.Point) bool { return planar.MultiPolygonContains(b, p) }
	case nil:
		return 0, eris.New("roadnet: truncate: no boundary")
	default:
		return 0, eris.Errorf("roadnet: truncate: unsupported boundary type %s", boundary.GeoJSONType())
	}

	var removed int
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		if !inside(n.Point()) {
			g.RemoveNode(id)
			removed++
		}
	}
	return removed, nil
}

// LargestComponent keeps only the largest weakly connected component. Ties
// go to the component holding the smallest node id.
func LargestComponent(g *Graph) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return
	}

	parent := make(map[int64]int64, len(ids))
	for _, id := range ids {
		parent[id] = id
	}
	find := func(x int64) int64 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, u := range ids {
		for _, v := range g.Successors(u) {
			ru, rv := find(u), find(v)
			if ru == rv {
				continue
			}
			// Root at the smaller id so a component is named by its minimum.
			if ru < rv {
				parent[rv] = ru
			} else {
				parent[ru] = rv
			}
		}
	}

	size := make(map[int64]int)
	for _, id := range ids {
		size[find(id)]++
	}
	var best int64
	bestSize := -1
	for _, id := range ids {
		root := find(id)
		if root != id {
			continue
		}
		if size[root] > bestSize {
			best, bestSize = root, size[root]
		}
	}

	for _, id := range ids {
		if find(id) != best {
			g.RemoveNode(id)
		}
	}
}
