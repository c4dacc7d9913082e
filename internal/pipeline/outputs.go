package pipeline

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/export"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/render"
)

// writeOutputs writes the GeoPackage and PNG map, any extra configured
// formats and, when a pool is set, the PostGIS rows. Written file names are
// recorded in the manifest.
func (p *Pipeline) writeOutputs(ctx context.Context, dir string, res *Result) error {
	m, l := res.Manifest, res.Layer
	written := func(name string) { m.Files = append(m.Files, name) }

	if err := export.WriteGeoPackage(ctx, filepath.Join(dir, export.GeoPackageFile), l); err != nil {
		return err
	}
	written(export.GeoPackageFile)

	opts := render.DefaultOptions()
	if p.cfg.Render.Width > 0 {
		opts.Width = p.cfg.Render.Width
	}
	if p.cfg.Render.Height > 0 {
		opts.Height = p.cfg.Render.Height
	}
	opts.Title = render.Title(m.StudyArea, m.N, m.RouteType)
	if err := render.WritePNG(filepath.Join(dir, export.PNGFile), l, opts); err != nil {
		return err
	}
	written(export.PNGFile)

	for _, format := range p.cfg.Export.Formats {
		var (
			name string
			err  error
		)
		switch format {
		case "geojson":
			name = export.GeoJSONFile
			err = export.WriteGeoJSON(filepath.Join(dir, name), l)
		case "shp":
			name = export.ShapefileFile
			err = export.WriteShapefile(filepath.Join(dir, name), l)
		case "xlsx":
			name = export.XLSXFile
			err = export.WriteXLSX(filepath.Join(dir, name), l)
		default:
			return eris.Errorf("pipeline: unknown export format %q", format)
		}
		if err != nil {
			return err
		}
		written(name)
	}

	if p.postgis == nil {
		return nil
	}
	table, err := export.ParseTable(p.cfg.Export.PostGISTable)
	if err != nil {
		return err
	}
	sig := export.RunSignature{
		RunID:     m.RunID,
		StudyArea: m.StudyArea,
		RouteType: m.RouteType,
		Method:    m.Method,
		N:         m.N,
	}
	n, err := export.WritePostGIS(ctx, p.postgis, table, sig, l, 0)
	if err != nil {
		return err
	}
	zap.L().With(zap.String("component", "pipeline")).Info("pipeline: rows copied to postgis",
		zap.String("table", table.Sanitize()),
		zap.Int64("rows", n),
	)
	return nil
}
