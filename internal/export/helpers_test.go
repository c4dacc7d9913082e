package export

import (
	"github.com/paulmach/orb"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

func testLayer() *layer.Layer {
	return &layer.Layer{
		Min: 0,
		Max: 8,
		Features: []layer.Feature{
			{
				EdgeKey: roadnet.EdgeKey{U: 101, V: 102}, OSMID: "44169102", Highway: "primary", Name: "Torstraße",
				Length: 680.5, Centrality: 8, Weight: 1,
				Geometry: orb.LineString{{13.40, 52.50}, {13.405, 52.503}, {13.41, 52.50}},
			},
			{
				EdgeKey: roadnet.EdgeKey{U: 102, V: 103}, OSMID: "[1, 2]", Highway: "residential",
				Length: 1110, Centrality: 2, Weight: 0.25,
				Geometry: orb.LineString{{13.41, 52.50}, {13.41, 52.51}},
			},
			{
				EdgeKey: roadnet.EdgeKey{U: 102, V: 103, Key: 1}, OSMID: "7", Highway: "residential",
				Length: 1200, Centrality: 0, Weight: 0,
				Geometry: orb.LineString{{13.41, 52.50}, {13.415, 52.505}, {13.41, 52.51}},
			},
		},
	}
}
