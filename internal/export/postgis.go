package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
)

const defaultBatchSize = 50000

// Pool is the subset of pgxpool.Pool the PostGIS sink needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// RunSignature identifies the rows one run owns in the PostGIS table.
// Rerunning with the same signature replaces them.
type RunSignature struct {
	RunID     string
	StudyArea string
	RouteType string
	Method    string
	N         int
}

var postgisColumns = []string{
	"run_id", "study_area", "route_type", "method", "n",
	"u", "v", "key", "osmid", "centrality", "geom",
}

// ParseTable splits "schema.table" into an identifier, defaulting to the
// public schema.
func ParseTable(name string) (pgx.Identifier, error) {
	parts := strings.Split(name, ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return pgx.Identifier{"public", parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return pgx.Identifier{parts[0], parts[1]}, nil
	default:
		return nil, eris.Errorf("export: invalid table name %q", name)
	}
}

// WritePostGIS creates table if needed, deletes rows with the same run
// signature and COPYs the layer in batches. It returns the rows written.
func WritePostGIS(ctx context.Context, pool Pool, table pgx.Identifier, sig RunSignature, l *layer.Layer, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	name := table.Sanitize()
	log := zap.L().With(
		zap.String("component", "export.postgis"),
		zap.String("table", name),
		zap.Int("total_rows", len(l.Features)),
	)

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id          BIGSERIAL PRIMARY KEY,
	run_id      UUID NOT NULL,
	study_area  TEXT NOT NULL,
	route_type  TEXT NOT NULL,
	method      TEXT NOT NULL,
	n           INTEGER NOT NULL,
	u           BIGINT NOT NULL,
	v           BIGINT NOT NULL,
	key         INTEGER NOT NULL,
	osmid       TEXT,
	centrality  DOUBLE PRECISION NOT NULL,
	geom        geometry(LineString, 4326),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`, name)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return 0, eris.Wrapf(err, "export: create %s", name)
	}

	tag, err := pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE study_area = $1 AND route_type = $2 AND method = $3 AND n = $4`, name),
		sig.StudyArea, sig.RouteType, sig.Method, sig.N,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "export: clear previous rows in %s", name)
	}
	if tag.RowsAffected() > 0 {
		log.Info("replaced rows from earlier run", zap.Int64("deleted", tag.RowsAffected()))
	}

	rows := make([][]any, 0, len(l.Features))
	for _, f := range l.Features {
		geom, err := EncodeEWKB(f.Geometry)
		if err != nil {
			return 0, eris.Wrapf(err, "export: feature %s", f.EdgeKey)
		}
		rows = append(rows, []any{
			sig.RunID, sig.StudyArea, sig.RouteType, sig.Method, sig.N,
			f.U, f.V, f.Key, f.OSMID, f.Centrality, geom,
		})
	}

	var total int64
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		n, err := pool.CopyFrom(ctx, table, postgisColumns, pgx.CopyFromRows(rows[i:end]))
		if err != nil {
			return total, eris.Wrapf(err, "export: COPY into %s (batch %d-%d)", name, i, end)
		}
		total += n
		log.Debug("batch loaded", zap.Int("batch_start", i), zap.Int("batch_end", end), zap.Int64("batch_rows", n))
	}
	return total, nil
}
