package export

import (
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
)

// FeatureCollection converts l to GeoJSON. Each feature carries the edge
// key, way ids, centrality and drawing weight as properties.
func FeatureCollection(l *layer.Layer) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range l.Features {
		gf := geojson.NewFeature(f.Geometry)
		gf.Properties["u"] = f.U
		gf.Properties["v"] = f.V
		gf.Properties["key"] = f.Key
		gf.Properties["osmid"] = f.OSMID
		gf.Properties["highway"] = f.Highway
		gf.Properties["name"] = f.Name
		gf.Properties["length"] = f.Length
		gf.Properties["centrality"] = f.Centrality
		gf.Properties["weight"] = f.Weight
		fc.Append(gf)
	}
	return fc
}

// WriteGeoJSON writes l as a GeoJSON FeatureCollection.
func WriteGeoJSON(path string, l *layer.Layer) error {
	data, err := FeatureCollection(l).MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}
