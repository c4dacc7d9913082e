// Package centrality scores road segments by how many least-cost routes use
// them. Exact runs Brandes' algorithm over every node pair; Sampling counts
// traversals over a fixed number of random origin-destination routes.
package centrality

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

var (
	// ErrInvalidRouteType is returned for route types other than shortest
	// and fastest.
	ErrInvalidRouteType = eris.New("centrality: route type must be 'shortest' or 'fastest'")
	// ErrSamplingStalled is returned when consecutive sampling rounds
	// produce no usable route.
	ErrSamplingStalled = eris.New("centrality: sampling stalled, no valid routes found")
)

// RouteType selects the routing cost.
type RouteType string

const (
	RouteShortest RouteType = "shortest"
	RouteFastest  RouteType = "fastest"
)

// ParseRouteType validates s.
func ParseRouteType(s string) (RouteType, error) {
	switch rt := RouteType(s); rt {
	case RouteShortest, RouteFastest:
		return rt, nil
	default:
		return "", eris.Wrapf(ErrInvalidRouteType, "got %q", s)
	}
}

// Weight maps the route type to the edge attribute routes minimise.
func (r RouteType) Weight() roadnet.Weight {
	if r == RouteFastest {
		return roadnet.WeightTravelTime
	}
	return roadnet.WeightLength
}

// Strategy computes a centrality table for a graph.
type Strategy interface {
	// Method names the strategy in output paths and manifests.
	Method() string
	Compute(ctx context.Context, g *roadnet.Graph, w roadnet.Weight) (*Table, error)
}

// Row is one table entry.
type Row struct {
	Key   roadnet.EdgeKey
	Value float64
}

// Table maps edge keys to centrality scores.
type Table struct {
	values map[roadnet.EdgeKey]float64
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[roadnet.EdgeKey]float64)}
}

// Set stores v for k.
func (t *Table) Set(k roadnet.EdgeKey, v float64) { t.values[k] = v }

// Add increments the value for k by v.
func (t *Table) Add(k roadnet.EdgeKey, v float64) { t.values[k] += v }

// Get returns the value for k and whether k is present.
func (t *Table) Get(k roadnet.EdgeKey) (float64, bool) {
	v, ok := t.values[k]
	return v, ok
}

// Len returns the number of materialised rows.
func (t *Table) Len() int { return len(t.values) }

// Rows returns all entries ordered by edge key.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.values))
	for k, v := range t.values {
		rows = append(rows, Row{Key: k, Value: v})
	}
	slices.SortFunc(rows, func(a, b Row) int { return a.Key.Compare(b.Key) })
	return rows
}

// Sum adds every value in the table.
func (t *Table) Sum() float64 {
	var sum float64
	for _, r := range t.Rows() {
		sum += r.Value
	}
	return sum
}
