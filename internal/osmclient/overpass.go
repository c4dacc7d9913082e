package osmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/rotisserie/eris"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

// Network downloads drivable ways inside bound together with every node
// they reference.
func (c *client) Network(ctx context.Context, bound orb.Bound) (*osm.OSM, error) {
	query := NetworkQuery(bound, c.queryTimeout)
	form := url.Values{"data": {query}}
	body, err := c.fetch(ctx, "overpass", http.MethodPost, c.overpassURL, []byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	data := &osm.OSM{}
	if err := json.Unmarshal(body, data); err != nil {
		return nil, eris.Wrap(err, "osmclient: overpass parse response")
	}
	if len(data.Ways) == 0 {
		return nil, eris.New("osmclient: overpass returned no ways")
	}
	return data, nil
}

// NetworkQuery builds the Overpass QL request for drivable ways in bound.
// Overpass expects the box as south,west,north,east.
func NetworkQuery(bound orb.Bound, timeoutSecs int) string {
	box := fmt.Sprintf("%s,%s,%s,%s",
		coord(bound.Min.Lat()), coord(bound.Min.Lon()),
		coord(bound.Max.Lat()), coord(bound.Max.Lon()),
	)
	return fmt.Sprintf("[out:json][timeout:%d];(way%s(%s);>;);out;", timeoutSecs, roadnet.OverpassFilter(), box)
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 7, 64)
}
