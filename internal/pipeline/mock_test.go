package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/mock"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/osmclient"
)

// --- OSM Client Mock ---

type mockOSMClient struct {
	mock.Mock
}

func (m *mockOSMClient) Geocode(ctx context.Context, place string) (*osmclient.Place, error) {
	args := m.Called(ctx, place)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*osmclient.Place), args.Error(1)
}

func (m *mockOSMClient) Network(ctx context.Context, bound orb.Bound) (*osm.OSM, error) {
	args := m.Called(ctx, bound)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*osm.OSM), args.Error(1)
}

// --- Fixtures ---

// gridWays is a 3x3 street grid. Node i sits at column (i-1)%3, row (i-1)/3
// with 0.001 degree spacing. After simplification the corners disappear,
// leaving 5 nodes and 16 directed edges.
var gridWays = map[osm.WayID][]osm.NodeID{
	100: {1, 2, 3},
	101: {4, 5, 6},
	102: {7, 8, 9},
	200: {1, 4, 7},
	201: {2, 5, 8},
	202: {3, 6, 9},
}

const gridEdges = 16

func gridPoint(id osm.NodeID) (lon, lat float64) {
	i := int(id) - 1
	return float64(i%3) * 0.001, float64(i/3) * 0.001
}

func gridOSM() *osm.OSM {
	data := &osm.OSM{}
	for id := osm.NodeID(1); id <= 9; id++ {
		lon, lat := gridPoint(id)
		data.Nodes = append(data.Nodes, &osm.Node{ID: id, Lon: lon, Lat: lat})
	}
	for _, wid := range []osm.WayID{100, 101, 102, 200, 201, 202} {
		w := &osm.Way{ID: wid, Tags: osm.Tags{{Key: "highway", Value: "residential"}}}
		for _, nid := range gridWays[wid] {
			w.Nodes = append(w.Nodes, osm.WayNode{ID: nid})
		}
		data.Ways = append(data.Ways, w)
	}
	return data
}

func gridXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<osm version=\"0.6\">\n")
	for id := osm.NodeID(1); id <= 9; id++ {
		lon, lat := gridPoint(id)
		fmt.Fprintf(&b, "  <node id=\"%d\" lat=\"%.3f\" lon=\"%.3f\"/>\n", id, lat, lon)
	}
	for _, wid := range []osm.WayID{100, 101, 102, 200, 201, 202} {
		fmt.Fprintf(&b, "  <way id=\"%d\">\n", wid)
		for _, nid := range gridWays[wid] {
			fmt.Fprintf(&b, "    <nd ref=\"%d\"/>\n", nid)
		}
		b.WriteString("    <tag k=\"highway\" v=\"residential\"/>\n  </way>\n")
	}
	b.WriteString("</osm>\n")
	return b.String()
}

func gridPlace() *osmclient.Place {
	boundary := orb.Polygon{{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}}
	return &osmclient.Place{
		Query:       "Grid",
		DisplayName: "Grid, Testland",
		Boundary:    boundary,
		Bound:       boundary.Bound(),
	}
}
