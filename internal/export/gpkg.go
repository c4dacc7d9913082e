package export

import (
	"context"
	"database/sql"
	"os"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
)

// LayerName is the feature table written to every GeoPackage.
const LayerName = "centrality"

const wgs84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`

const gpkgSchema = `
PRAGMA application_id = 1196444487;
PRAGMA user_version = 10300;

CREATE TABLE gpkg_spatial_ref_sys (
	srs_name                 TEXT NOT NULL,
	srs_id                   INTEGER NOT NULL PRIMARY KEY,
	organization             TEXT NOT NULL,
	organization_coordsys_id INTEGER NOT NULL,
	definition               TEXT NOT NULL,
	description              TEXT
);

CREATE TABLE gpkg_contents (
	table_name  TEXT NOT NULL PRIMARY KEY,
	data_type   TEXT NOT NULL,
	identifier  TEXT UNIQUE,
	description TEXT DEFAULT '',
	last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	min_x       DOUBLE,
	min_y       DOUBLE,
	max_x       DOUBLE,
	max_y       DOUBLE,
	srs_id      INTEGER,
	CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
);

CREATE TABLE gpkg_geometry_columns (
	table_name         TEXT NOT NULL,
	column_name        TEXT NOT NULL,
	geometry_type_name TEXT NOT NULL,
	srs_id             INTEGER NOT NULL,
	z                  TINYINT NOT NULL,
	m                  TINYINT NOT NULL,
	CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name),
	CONSTRAINT fk_gc_tn FOREIGN KEY (table_name) REFERENCES gpkg_contents(table_name),
	CONSTRAINT fk_gc_srs FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
);

INSERT INTO gpkg_spatial_ref_sys VALUES
	('Undefined cartesian SRS', -1, 'NONE', -1, 'undefined', 'undefined cartesian coordinate reference system'),
	('Undefined geographic SRS', 0, 'NONE', 0, 'undefined', 'undefined geographic coordinate reference system');

CREATE TABLE centrality (
	fid        INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
	geom       LINESTRING,
	u          INTEGER,
	v          INTEGER,
	"key"      INTEGER,
	osmid      TEXT,
	centrality REAL
);
`

// WriteGeoPackage writes l as the "centrality" LINESTRING layer in EPSG:4326.
// An existing file at path is replaced.
func WriteGeoPackage(ctx context.Context, path string, l *layer.Layer) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "export: remove %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return eris.Wrap(err, "export: open geopackage")
	}
	defer db.Close() //nolint:errcheck
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, gpkgSchema); err != nil {
		return eris.Wrap(err, "export: create geopackage schema")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "export: begin geopackage tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO gpkg_spatial_ref_sys VALUES ('WGS 84 geodetic', ?, 'EPSG', ?, ?, 'longitude/latitude coordinates in decimal degrees on the WGS 84 spheroid')`,
		layer.SRID, layer.SRID, wgs84WKT,
	); err != nil {
		return eris.Wrap(err, "export: insert srs")
	}

	b := l.Bound()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, min_x, min_y, max_x, max_y, srs_id) VALUES (?, 'features', ?, ?, ?, ?, ?, ?)`,
		LayerName, LayerName, b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat(), layer.SRID,
	); err != nil {
		return eris.Wrap(err, "export: insert contents")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO gpkg_geometry_columns VALUES (?, 'geom', 'LINESTRING', ?, 0, 0)`,
		LayerName, layer.SRID,
	); err != nil {
		return eris.Wrap(err, "export: insert geometry column")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO centrality (geom, u, v, "key", osmid, centrality) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "export: prepare feature insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, f := range l.Features {
		blob, err := EncodeGeoPackage(f.Geometry)
		if err != nil {
			return eris.Wrapf(err, "export: feature %s", f.EdgeKey)
		}
		if _, err := stmt.ExecContext(ctx, blob, f.U, f.V, f.Key, f.OSMID, f.Centrality); err != nil {
			return eris.Wrapf(err, "export: insert feature %s", f.EdgeKey)
		}
	}

	return eris.Wrap(tx.Commit(), "export: commit geopackage")
}
