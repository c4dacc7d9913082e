package osmclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// Geocode asks Nominatim for the first match of place with its polygon.
// Matches that only have a point or a line cannot bound a study area and
// are rejected.
func (c *client) Geocode(ctx context.Context, place string) (*Place, error) {
	params := url.Values{
		"q":               {place},
		"format":          {"geojson"},
		"polygon_geojson": {"1"},
		"limit":           {"1"},
	}
	body, err := c.fetch(ctx, "nominatim", http.MethodGet, c.nominatimURL+"?"+params.Encode(), nil, "")
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, eris.Wrap(err, "osmclient: nominatim parse response")
	}
	if len(fc.Features) == 0 {
		return nil, eris.Errorf("osmclient: nominatim found no match for %q", place)
	}

	f := fc.Features[0]
	switch f.Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, eris.Errorf("osmclient: nominatim result for %q is a %s, not a polygon", place, f.Geometry.GeoJSONType())
	}

	p := &Place{
		Query:    place,
		Boundary: f.Geometry,
		Bound:    f.Geometry.Bound(),
	}
	p.DisplayName, _ = f.Properties["display_name"].(string)
	return p, nil
}
