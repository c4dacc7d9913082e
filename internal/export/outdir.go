// Package export writes a centrality layer to disk and databases.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Output file names inside a run directory.
const (
	GeoPackageFile = "centrality.gpkg"
	PNGFile        = "centrality.png"
	GeoJSONFile    = "centrality.geojson"
	ShapefileFile  = "centrality.shp"
	XLSXFile       = "centrality.xlsx"
	ManifestFile   = "run.yaml"
)

// areaEscaper percent-encodes path separators, and "%" itself so distinct
// areas never share a name.
var areaEscaper = strings.NewReplacer("%", "%25", "/", "%2F", `\`, "%5C")

// RunName is the directory name for one run:
// {area}_{route type}_{method}_{n}, with "%", "/" and "\" in area escaped
// as %25, %2F and %5C.
func RunName(area, routeType, method string, n int) string {
	return fmt.Sprintf("%s_%s_%s_%d", areaEscaper.Replace(area), routeType, method, n)
}

// OutputDir creates and returns the run directory under root.
func OutputDir(root, area, routeType, method string, n int) (string, error) {
	dir := filepath.Join(root, RunName(area, routeType, method, n))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create output dir %s", dir)
	}
	return dir, nil
}
