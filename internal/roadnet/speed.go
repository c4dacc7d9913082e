package roadnet

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	mphToKPH   = 1.609344
	knotsToKPH = 1.852
)

var maxSpeedPattern = regexp.MustCompile(`^([0-9][.,0-9]*)\s?(km/h|kmh|kph|mph|knots)?$`)

// ParseMaxSpeed converts an OSM maxspeed value to km/h. Lists separated by
// ";" or "|" average their members. Symbolic values such as "walk" or
// "RO:urban" do not parse.
func ParseMaxSpeed(raw string) (float64, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' })
	if len(parts) == 0 {
		return 0, false
	}

	var sum float64
	for _, part := range parts {
		m := maxSpeedPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil || v <= 0 {
			return 0, false
		}
		switch m[2] {
		case "mph":
			v *= mphToKPH
		case "knots":
			v *= knotsToKPH
		}
		sum += v
	}
	return sum / float64(len(parts)), true
}

// AddEdgeSpeeds sets SpeedKPH on every edge. A parseable maxspeed tag wins.
// Otherwise the edge takes the speed table entry for its highway class,
// then the mean tagged speed of its class, then the mean over all known
// class speeds.
func AddEdgeSpeeds(g *Graph, table map[string]float64) error {
	edges := g.Edges()

	tagged := make(map[*Edge]float64, len(edges))
	observed := make(map[string][]float64)
	for _, e := range edges {
		kph, ok := ParseMaxSpeed(e.MaxSpeed)
		if !ok {
			continue
		}
		tagged[e] = kph
		observed[e.Highway] = append(observed[e.Highway], kph)
	}

	classSpeed := make(map[string]float64, len(table))
	for hwy, kph := range table {
		if kph > 0 {
			classSpeed[hwy] = kph
		}
	}
	for hwy, speeds := range observed {
		if _, ok := classSpeed[hwy]; !ok {
			classSpeed[hwy] = mean(speeds)
		}
	}

	var fallback float64
	if len(classSpeed) > 0 {
		all := make([]float64, 0, len(classSpeed))
		for _, kph := range classSpeed {
			all = append(all, kph)
		}
		slices.Sort(all)
		fallback = mean(all)
	}

	for _, e := range edges {
		if kph, ok := tagged[e]; ok {
			e.SpeedKPH = kph
			continue
		}
		if kph, ok := classSpeed[e.Highway]; ok {
			e.SpeedKPH = kph
			continue
		}
		if fallback <= 0 {
			return eris.Errorf("roadnet: add speeds: no speed known for highway %q", e.Highway)
		}
		e.SpeedKPH = fallback
	}
	return nil
}

// AddEdgeTravelTimes sets TravelTime in seconds from Length and SpeedKPH.
// AddEdgeSpeeds must run first.
func AddEdgeTravelTimes(g *Graph) error {
	for _, e := range g.Edges() {
		if e.SpeedKPH <= 0 {
			return eris.Errorf("roadnet: add travel times: edge %s has no speed", e.EdgeKey)
		}
		e.TravelTime = e.Length / (e.SpeedKPH / 3.6)
	}
	return nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
