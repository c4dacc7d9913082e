// Package layer joins a centrality table with the road geometry it scores.
package layer

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/centrality"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

// SRID is the EPSG code of every layer geometry.
const SRID = 4326

// Feature is one scored road segment.
type Feature struct {
	roadnet.EdgeKey
	OSMID      string
	Highway    string
	Name       string
	Length     float64
	Centrality float64
	// Weight is Centrality rescaled to [0, 1] for drawing.
	Weight   float64
	Geometry orb.LineString
}

// Layer is the ordered set of scored segments.
type Layer struct {
	Features []Feature
	Min      float64
	Max      float64
}

// Join attaches geometry and way ids to every table row. Rows keep the
// table's key order. A key with no matching edge is an error.
func Join(t *centrality.Table, g *roadnet.Graph) (*Layer, error) {
	rows := t.Rows()
	l := &Layer{Features: make([]Feature, 0, len(rows))}
	for i, row := range rows {
		e, ok := g.Edge(row.Key)
		if !ok {
			return nil, eris.Errorf("layer: join: edge %s not in graph", row.Key)
		}
		if i == 0 || row.Value < l.Min {
			l.Min = row.Value
		}
		if i == 0 || row.Value > l.Max {
			l.Max = row.Value
		}
		l.Features = append(l.Features, Feature{
			EdgeKey:    row.Key,
			OSMID:      FormatOSMID(e.OSMIDs),
			Highway:    e.Highway,
			Name:       e.Name,
			Length:     e.Length,
			Centrality: row.Value,
			Geometry:   geometry(g, e),
		})
	}

	span := l.Max - l.Min
	for i := range l.Features {
		f := &l.Features[i]
		if span == 0 {
			f.Weight = 1
			continue
		}
		f.Weight = (f.Centrality - l.Min) / span
	}
	return l, nil
}

// FormatOSMID renders way ids as text: a bare id for one way, a bracketed
// list for segments merged from several.
func FormatOSMID(ids []int64) string {
	if len(ids) == 1 {
		return strconv.FormatInt(ids[0], 10)
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Bound returns the extent of all feature geometries.
func (l *Layer) Bound() orb.Bound {
	var c orb.Collection
	for _, f := range l.Features {
		c = append(c, f.Geometry)
	}
	return c.Bound()
}

func geometry(g *roadnet.Graph, e *roadnet.Edge) orb.LineString {
	if len(e.Geometry) >= 2 {
		return e.Geometry
	}
	u, _ := g.Node(e.U)
	v, _ := g.Node(e.V)
	return orb.LineString{u.Point(), v.Point()}
}
