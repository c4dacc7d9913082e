package roadnet

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// link adds an edge u->v with the given length, creating missing nodes on a
// line along the equator.
func link(t *testing.T, g *Graph, u, v int64, length float64) EdgeKey {
	t.Helper()
	for _, id := range []int64{u, v} {
		if !g.HasNode(id) {
			g.AddNode(Node{ID: id, Lon: float64(id) * 0.001})
		}
	}
	k, err := g.AddEdge(Edge{
		EdgeKey:  EdgeKey{U: u, V: v},
		OSMIDs:   []int64{u*100 + v},
		Highway:  "residential",
		Length:   length,
		Geometry: orb.LineString{{float64(u) * 0.001, 0}, {float64(v) * 0.001, 0}},
	})
	require.NoError(t, err)
	return k
}

func TestAddEdge_AssignsLowestFreeKey(t *testing.T) {
	g := New()
	assert.Equal(t, 0, link(t, g, 1, 2, 10).Key)
	assert.Equal(t, 1, link(t, g, 1, 2, 20).Key)
	assert.Equal(t, 2, link(t, g, 1, 2, 30).Key)

	g.RemoveEdge(EdgeKey{U: 1, V: 2, Key: 1})
	assert.Equal(t, 1, link(t, g, 1, 2, 40).Key)
	assert.Equal(t, 3, g.NumEdges())
}

func TestAddEdge_UnknownNode(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1})
	_, err := g.AddEdge(Edge{EdgeKey: EdgeKey{U: 1, V: 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node 2")
}

func TestRemoveNode_DropsIncidentEdges(t *testing.T) {
	g := New()
	link(t, g, 1, 2, 1)
	link(t, g, 2, 1, 1)
	link(t, g, 2, 3, 1)
	link(t, g, 3, 2, 1)
	link(t, g, 1, 3, 1)

	g.RemoveNode(2)

	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 1, g.NumEdges())
	assert.Empty(t, g.Predecessors(1))
	assert.Equal(t, []int64{3}, g.Successors(1))
	assert.Equal(t, 0, g.InDegree(1))
	assert.Equal(t, 1, g.InDegree(3))
}

func TestEdges_SortedByKey(t *testing.T) {
	g := New()
	link(t, g, 3, 1, 1)
	link(t, g, 1, 2, 1)
	link(t, g, 1, 2, 1)
	link(t, g, 2, 3, 1)

	var keys []EdgeKey
	for _, e := range g.Edges() {
		keys = append(keys, e.EdgeKey)
	}
	assert.Equal(t, []EdgeKey{{1, 2, 0}, {1, 2, 1}, {2, 3, 0}, {3, 1, 0}}, keys)
}

func TestMinEdge(t *testing.T) {
	g := New()
	link(t, g, 1, 2, 30)
	link(t, g, 1, 2, 10)
	link(t, g, 1, 2, 10)

	e, ok := g.MinEdge(1, 2, WeightLength)
	require.True(t, ok)
	assert.Equal(t, 1, e.Key)

	_, ok = g.MinEdge(2, 1, WeightLength)
	assert.False(t, ok)
}

func TestEdgeCost(t *testing.T) {
	e := &Edge{Length: 120, TravelTime: 9}
	assert.Equal(t, 120.0, e.Cost(WeightLength))
	assert.Equal(t, 9.0, e.Cost(WeightTravelTime))
	assert.Equal(t, 1.0, e.Cost(Weight("hops")))
}

func TestEdgeKeyString(t *testing.T) {
	assert.Equal(t, "(1, 2, 0)", EdgeKey{U: 1, V: 2}.String())
}

func TestBound(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1, Lon: 13.3, Lat: 52.5})
	g.AddNode(Node{ID: 2, Lon: 13.4, Lat: 52.6})
	b := g.Bound()
	assert.Equal(t, orb.Point{13.3, 52.5}, b.Min)
	assert.Equal(t, orb.Point{13.4, 52.6}, b.Max)
}

func TestMinCost(t *testing.T) {
	g := New()
	link(t, g, 1, 2, 30)
	link(t, g, 1, 2, 12)

	c, ok := g.MinCost(1, 2, WeightLength)
	require.True(t, ok)
	assert.Equal(t, 12.0, c)

	_, ok = g.MinCost(2, 1, WeightLength)
	assert.False(t, ok)
}
