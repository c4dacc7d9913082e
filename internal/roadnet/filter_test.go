package roadnet

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
)

func way(tags ...string) *osm.Way {
	w := &osm.Way{ID: 1}
	for i := 0; i+1 < len(tags); i += 2 {
		w.Tags = append(w.Tags, osm.Tag{Key: tags[i], Value: tags[i+1]})
	}
	return w
}

func TestDrivable(t *testing.T) {
	tests := []struct {
		name string
		way  *osm.Way
		want bool
	}{
		{"residential", way("highway", "residential"), true},
		{"motorway link", way("highway", "motorway_link"), true},
		{"no highway", way("building", "yes"), false},
		{"footway", way("highway", "footway"), false},
		{"service road", way("highway", "service"), false},
		{"area", way("highway", "residential", "area", "yes"), false},
		{"private", way("highway", "tertiary", "access", "private"), false},
		{"no motor vehicles", way("highway", "tertiary", "motor_vehicle", "no"), false},
		{"no cars", way("highway", "tertiary", "motorcar", "no"), false},
		{"driveway", way("highway", "unclassified", "service", "driveway"), false},
		{"access destination", way("highway", "residential", "access", "destination"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Drivable(tt.way))
		})
	}
}

func TestOneway(t *testing.T) {
	tests := []struct {
		way      *osm.Way
		oneway   bool
		reversed bool
	}{
		{way("highway", "primary"), false, false},
		{way("highway", "primary", "oneway", "yes"), true, false},
		{way("highway", "primary", "oneway", "no"), false, false},
		{way("highway", "primary", "oneway", "-1"), true, true},
		{way("highway", "primary", "oneway", "reverse"), true, true},
		{way("highway", "primary", "junction", "roundabout"), true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.oneway, IsOneway(tt.way), tt.way.Tags)
		assert.Equal(t, tt.reversed, IsReversed(tt.way), tt.way.Tags)
	}
}

func TestOverpassFilter(t *testing.T) {
	f := OverpassFilter()
	assert.True(t, len(f) > 0)
	assert.Contains(t, f, `["highway"]`)
	assert.Contains(t, f, `["area"!~"yes"]`)
	assert.Contains(t, f, `["motorcar"!~"no"]`)
	assert.Contains(t, f, `["service"!~"alley|driveway|emergency_access|parking|parking_aisle|private"]`)
}
