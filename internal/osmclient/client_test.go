package osmclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nominatimPolygon = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"display_name": "Mitte, Berlin, Deutschland"},
		"bbox": [13.30, 52.49, 13.43, 52.55],
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[13.30, 52.49], [13.43, 52.49], [13.43, 52.55], [13.30, 52.55], [13.30, 52.49]]]
		}
	}]
}`

const overpassNetwork = `{
	"elements": [
		{"type": "node", "id": 1, "lat": 52.50, "lon": 13.40},
		{"type": "node", "id": 2, "lat": 52.50, "lon": 13.41},
		{"type": "node", "id": 3, "lat": 52.51, "lon": 13.41},
		{"type": "way", "id": 10, "nodes": [1, 2, 3], "tags": {"highway": "residential", "name": "Torstraße"}}
	]
}`

func testClient(t *testing.T, srv *httptest.Server, opts ...Option) *client {
	t.Helper()
	c := NewClient(opts...).(*client)
	c.limiter = newTestLimiter()
	c.retryBackoffMs = 1
	c.httpClient = &http.Client{Transport: &rewriteTransport{
		base:         newRewriteClient(srv.URL, defaultNominatimURL).Transport,
		testServer:   srv.URL,
		targetPrefix: defaultOverpassURL,
	}}
	return c
}

func TestGeocode_Polygon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mitte, Berlin", r.URL.Query().Get("q"))
		assert.Equal(t, "geojson", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("polygon_geojson"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, nominatimPolygon)
	}))
	defer srv.Close()

	c := testClient(t, srv, WithUserAgent("test-agent"))
	place, err := c.Geocode(context.Background(), "Mitte, Berlin")
	require.NoError(t, err)

	assert.Equal(t, "Mitte, Berlin, Deutschland", place.DisplayName)
	assert.IsType(t, orb.Polygon{}, place.Boundary)
	assert.Equal(t, orb.Point{13.30, 52.49}, place.Bound.Min)
	assert.Equal(t, orb.Point{13.43, 52.55}, place.Bound.Max)
}

func TestGeocode_PointRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[13.4,52.5]}}]}`)
	}))
	defer srv.Close()

	_, err := testClient(t, srv).Geocode(context.Background(), "Brandenburger Tor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a polygon")
}

func TestGeocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()

	_, err := testClient(t, srv).Geocode(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no match")
}

func TestNetwork_PostsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		q := r.PostForm.Get("data")
		assert.Contains(t, q, "[out:json][timeout:60]")
		assert.Contains(t, q, "(52.4900000,13.3000000,52.5500000,13.4300000)")
		_, _ = io.WriteString(w, overpassNetwork)
	}))
	defer srv.Close()

	c := testClient(t, srv, WithQueryTimeout(60))
	data, err := c.Network(context.Background(), orb.Bound{Min: orb.Point{13.30, 52.49}, Max: orb.Point{13.43, 52.55}})
	require.NoError(t, err)
	require.Len(t, data.Ways, 1)
	assert.Len(t, data.Nodes, 3)
	assert.Equal(t, "residential", data.Ways[0].Tags.Find("highway"))
	assert.Len(t, data.Ways[0].Nodes, 3)
}

func TestNetwork_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"elements":[]}`)
	}))
	defer srv.Close()

	_, err := testClient(t, srv).Network(context.Background(), orb.Bound{})
	require.Error(t, err)
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, overpassNetwork)
	}))
	defer srv.Close()

	c := testClient(t, srv, WithRetry(3, 1))
	_, err := c.Network(context.Background(), orb.Bound{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_PermanentStatusFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(t, srv, WithRetry(3, 1)).Network(context.Background(), orb.Bound{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overpass returned status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_UsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, nominatimPolygon)
	}))
	defer srv.Close()

	cache := newMemCache()
	c := testClient(t, srv, WithCache(cache, time.Hour))

	for range 3 {
		_, err := c.Geocode(context.Background(), "Mitte, Berlin")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, cache.sets)

	_, err := c.Geocode(context.Background(), "Pankow, Berlin")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNetworkQuery(t *testing.T) {
	q := NetworkQuery(orb.Bound{Min: orb.Point{13.3, 52.4}, Max: orb.Point{13.5, 52.6}}, 180)
	assert.Equal(t, "[out:json][timeout:180];(way", q[:len("[out:json][timeout:180];(way")])
	assert.Contains(t, q, `["highway"]`)
	assert.Contains(t, q, `["access"!~"private"]`)
	assert.Contains(t, q, "(52.4000000,13.3000000,52.6000000,13.5000000);>;);out;")

	form := url.Values{"data": {q}}
	decoded, err := url.ParseQuery(form.Encode())
	require.NoError(t, err)
	assert.Equal(t, q, decoded.Get("data"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "area.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(overpassNetwork), 0o644))
	data, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, data.Ways, 1)

	xmlPath := filepath.Join(dir, "area.osm")
	require.NoError(t, os.WriteFile(xmlPath, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="52.50" lon="13.40"/>
  <node id="2" lat="52.50" lon="13.41"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="highway" v="primary"/>
    <tag k="oneway" v="yes"/>
  </way>
</osm>`), 0o644))
	data, err = LoadFile(xmlPath)
	require.NoError(t, err)
	require.Len(t, data.Ways, 1)
	assert.Equal(t, "yes", data.Ways[0].Tags.Find("oneway"))
	assert.Len(t, data.Ways[0].Nodes, 2)
	assert.Len(t, data.Nodes, 2)

	_, err = LoadFile(filepath.Join(dir, "area.pbf"))
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
