package osmclient

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/osm"
	"github.com/rotisserie/eris"
)

// LoadFile reads OSM data from disk. Files ending in .json are parsed as
// Overpass JSON; .osm and .xml files as OSM XML.
func LoadFile(path string) (*osm.OSM, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "osmclient: read %s", path)
	}

	data := &osm.OSM{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(raw, data)
	case ".osm", ".xml":
		err = xml.Unmarshal(raw, data)
	default:
		return nil, eris.Errorf("osmclient: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "osmclient: parse %s", path)
	}
	return data, nil
}
