package export

import (
	"bytes"
	"encoding/binary"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkb"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
)

// lineString converts an orb polyline to a go-geom LineString with the
// layer SRID.
func lineString(ls orb.LineString) (*geom.LineString, error) {
	if len(ls) < 2 {
		return nil, eris.Errorf("export: linestring needs 2 points, got %d", len(ls))
	}
	flat := make([]float64, 0, len(ls)*2)
	for _, p := range ls {
		flat = append(flat, p.Lon(), p.Lat())
	}
	return geom.NewLineStringFlat(geom.XY, flat).SetSRID(layer.SRID), nil
}

// EncodeEWKB returns the PostGIS extended WKB of ls.
func EncodeEWKB(ls orb.LineString) ([]byte, error) {
	g, err := lineString(ls)
	if err != nil {
		return nil, err
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "export: encode EWKB")
	}
	return data, nil
}

const (
	gpkgMagic0 = 'G'
	gpkgMagic1 = 'P'
	// Little-endian header with an xy envelope.
	gpkgFlags = 0x01 | 0x01<<1
)

// EncodeGeoPackage returns the GeoPackage binary blob for ls: the "GP"
// header with SRID and xy envelope, followed by standard WKB.
func EncodeGeoPackage(ls orb.LineString) ([]byte, error) {
	g, err := lineString(ls)
	if err != nil {
		return nil, err
	}
	body, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "export: encode WKB")
	}

	b := g.Bounds()
	var buf bytes.Buffer
	buf.Grow(8 + 32 + len(body))
	buf.Write([]byte{gpkgMagic0, gpkgMagic1, 0, gpkgFlags})
	header := []any{
		int32(layer.SRID),
		b.Min(0), b.Max(0), b.Min(1), b.Max(1),
	}
	for _, v := range header {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, eris.Wrap(err, "export: encode geopackage header")
		}
	}
	buf.Write(body)
	return buf.Bytes(), nil
}
