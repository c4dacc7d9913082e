package centrality

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

type arc struct {
	u, v   int64
	length float64
}

func graphOf(t *testing.T, arcs ...arc) *roadnet.Graph {
	t.Helper()
	g := roadnet.New()
	for _, a := range arcs {
		for _, id := range []int64{a.u, a.v} {
			if !g.HasNode(id) {
				g.AddNode(roadnet.Node{ID: id})
			}
		}
		_, err := g.AddEdge(roadnet.Edge{EdgeKey: roadnet.EdgeKey{U: a.u, V: a.v}, Length: a.length, TravelTime: a.length})
		require.NoError(t, err)
	}
	return g
}

func key(u, v int64, k int) roadnet.EdgeKey {
	return roadnet.EdgeKey{U: u, V: v, Key: k}
}

func value(t *testing.T, tbl *Table, k roadnet.EdgeKey) float64 {
	t.Helper()
	v, ok := tbl.Get(k)
	require.True(t, ok, "missing %s", k)
	return v
}

func TestParseRouteType(t *testing.T) {
	rt, err := ParseRouteType("shortest")
	require.NoError(t, err)
	assert.Equal(t, roadnet.WeightLength, rt.Weight())

	rt, err = ParseRouteType("fastest")
	require.NoError(t, err)
	assert.Equal(t, roadnet.WeightTravelTime, rt.Weight())

	_, err = ParseRouteType("scenic")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidRouteType))
}

func TestTable(t *testing.T) {
	tbl := NewTable()
	tbl.Add(key(2, 1, 0), 1)
	tbl.Add(key(1, 2, 1), 2)
	tbl.Add(key(1, 2, 1), 3)
	tbl.Set(key(1, 2, 0), 0)

	rows := tbl.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, key(1, 2, 0), rows[0].Key)
	assert.Equal(t, Row{Key: key(1, 2, 1), Value: 5}, rows[1])
	assert.Equal(t, 6.0, tbl.Sum())
	assert.Equal(t, 3, tbl.Len())
}

func TestStrategyMethods(t *testing.T) {
	var s Strategy = Exact{}
	assert.Equal(t, "networkx", s.Method())
	s = Sampling{}
	assert.Equal(t, "geographical", s.Method())
}
