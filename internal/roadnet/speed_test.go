package roadnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaxSpeed(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"50", 50, true},
		{"50 km/h", 50, true},
		{"50kmh", 50, true},
		{"30 mph", 48.28032, true},
		{"20 knots", 37.04, true},
		{"50,5", 50.5, true},
		{"50;70", 60, true},
		{"30|50", 40, true},
		{"walk", 0, false},
		{"RO:urban", 0, false},
		{"50;none", 0, false},
		{"0", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseMaxSpeed(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func speedGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	edges := []struct {
		highway, maxspeed string
	}{
		{"residential", ""},
		{"primary", "70"},
		{"unclassified", "40"},
		{"unclassified", ""},
		{"weird", ""},
	}
	for i, e := range edges {
		u, v := int64(i*2+1), int64(i*2+2)
		g.AddNode(Node{ID: u})
		g.AddNode(Node{ID: v})
		_, err := g.AddEdge(Edge{EdgeKey: EdgeKey{U: u, V: v}, Highway: e.highway, MaxSpeed: e.maxspeed, Length: 1000})
		require.NoError(t, err)
	}
	return g
}

func TestAddEdgeSpeeds_Imputation(t *testing.T) {
	g := speedGraph(t)
	require.NoError(t, AddEdgeSpeeds(g, map[string]float64{"residential": 30, "primary": 60}))

	speed := func(u int64) float64 {
		e, ok := g.Edge(EdgeKey{U: u, V: u + 1})
		require.True(t, ok)
		return e.SpeedKPH
	}
	assert.Equal(t, 30.0, speed(1), "table speed")
	assert.Equal(t, 70.0, speed(3), "tag beats table")
	assert.Equal(t, 40.0, speed(5), "tagged")
	assert.Equal(t, 40.0, speed(7), "class mean of tagged edges")
	assert.InDelta(t, (30.0+60.0+40.0)/3, speed(9), 1e-9, "mean of class speeds")
}

func TestAddEdgeSpeeds_NothingKnown(t *testing.T) {
	g := New()
	link(t, g, 1, 2, 10)
	err := AddEdgeSpeeds(g, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "residential")
}

func TestAddEdgeTravelTimes(t *testing.T) {
	g := New()
	link(t, g, 1, 2, 1000)
	require.NoError(t, AddEdgeSpeeds(g, map[string]float64{"residential": 36}))
	require.NoError(t, AddEdgeTravelTimes(g))

	e, _ := g.Edge(EdgeKey{U: 1, V: 2})
	assert.InDelta(t, 100.0, e.TravelTime, 1e-9)
	assert.Equal(t, 100.0, e.Cost(WeightTravelTime))
}

func TestAddEdgeTravelTimes_RequiresSpeeds(t *testing.T) {
	g := New()
	link(t, g, 1, 2, 1000)
	require.Error(t, AddEdgeTravelTimes(g))
}
