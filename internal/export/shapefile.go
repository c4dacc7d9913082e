package export

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
)

// shapeFields are the dBASE columns; names are capped at 10 characters.
var shapeFields = []shp.Field{
	shp.NumberField("u", 20),
	shp.NumberField("v", 20),
	shp.NumberField("key", 6),
	shp.StringField("osmid", 254),
	shp.FloatField("centrality", 24, 12),
	shp.StringField("highway", 32),
	shp.StringField("name", 128),
}

// WriteShapefile writes l as a POLYLINE shapefile plus a WGS 84 .prj. The
// .shx and .dbf siblings share the base name of path.
func WriteShapefile(path string, l *layer.Layer) error {
	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	if err := w.SetFields(shapeFields); err != nil {
		w.Close()
		return eris.Wrap(err, "export: set shapefile fields")
	}

	var skipped int
	for _, f := range l.Features {
		if len(f.Geometry) < 2 {
			skipped++
			continue
		}
		points := make([]shp.Point, len(f.Geometry))
		for i, p := range f.Geometry {
			points[i] = shp.Point{X: p.Lon(), Y: p.Lat()}
		}
		row := int(w.Write(shp.NewPolyLine([][]shp.Point{points})))

		values := []any{int(f.U), int(f.V), f.Key, truncate(f.OSMID, 254), f.Centrality, truncate(f.Highway, 32), truncate(f.Name, 128)}
		for field, v := range values {
			if err := w.WriteAttribute(row, field, v); err != nil {
				w.Close()
				return eris.Wrapf(err, "export: write shapefile attribute %d of %s", field, f.EdgeKey)
			}
		}
	}
	w.Close()
	if err := fixDBFName(path); err != nil {
		return err
	}

	if skipped > 0 {
		zap.L().Debug("export: skipped features without geometry", zap.Int("skipped", skipped))
	}

	prj := strings.TrimSuffix(path, ".shp") + ".prj"
	if err := os.WriteFile(prj, []byte(wgs84WKT), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", prj)
	}
	return nil
}

// fixDBFName moves the attribute table to base.dbf. go-shp v0.1.1 names it
// base+"dbf" without the dot, which readers never find.
func fixDBFName(path string) error {
	base := strings.TrimSuffix(path, ".shp")
	want := base + ".dbf"
	if _, err := os.Stat(want); err == nil {
		return nil
	}
	got := base + "dbf"
	if _, err := os.Stat(got); err != nil {
		return eris.Wrapf(err, "export: locate attribute table for %s", path)
	}
	return eris.Wrapf(os.Rename(got, want), "export: rename %s", got)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
