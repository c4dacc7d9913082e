package roadnet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulmach/osm"
)

// tagRule excludes a way when the tag value matches pattern. Matching is
// unanchored, the same as Overpass `!~`.
type tagRule struct {
	key     string
	pattern *regexp.Regexp
}

// driveFilter selects ways a private car may use. The same rules are sent to
// Overpass (see OverpassFilter) and re-applied locally so OSM files get the
// same treatment.
var driveFilter = []tagRule{
	{"area", regexp.MustCompile("yes")},
	{"access", regexp.MustCompile("private")},
	{"highway", regexp.MustCompile("abandoned|bridleway|bus_guideway|construction|corridor|cycleway|elevator|escalator|footway|no|path|pedestrian|planned|platform|proposed|raceway|razed|service|steps|track")},
	{"motor_vehicle", regexp.MustCompile("no")},
	{"motorcar", regexp.MustCompile("no")},
	{"service", regexp.MustCompile("alley|driveway|emergency_access|parking|parking_aisle|private")},
}

// Drivable reports whether w passes driveFilter.
func Drivable(w *osm.Way) bool {
	if w.Tags.Find("highway") == "" {
		return false
	}
	for _, r := range driveFilter {
		v := w.Tags.Find(r.key)
		if v != "" && r.pattern.MatchString(v) {
			return false
		}
	}
	return true
}

// OverpassFilter renders driveFilter as Overpass QL tag filters.
func OverpassFilter() string {
	var b strings.Builder
	b.WriteString(`["highway"]`)
	for _, r := range driveFilter {
		fmt.Fprintf(&b, `[%q!~%q]`, r.key, r.pattern.String())
	}
	return b.String()
}

var (
	onewayValues   = map[string]bool{"yes": true, "true": true, "1": true, "-1": true, "reverse": true, "T": true, "F": true}
	reversedValues = map[string]bool{"-1": true, "reverse": true, "T": true}
)

// IsOneway reports whether traffic flows in one direction only.
func IsOneway(w *osm.Way) bool {
	if w.Tags.Find("junction") == "roundabout" {
		return true
	}
	return onewayValues[w.Tags.Find("oneway")]
}

// IsReversed reports whether a oneway way flows against its node order.
func IsReversed(w *osm.Way) bool {
	return reversedValues[w.Tags.Find("oneway")]
}
