package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/export"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/osmclient"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/pipeline"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/store"
)

// pipelineEnv holds the cache, PostGIS pool and pipeline used by the
// networkx, geographical and graph commands.
type pipelineEnv struct {
	Cache    *store.SQLiteStore // may be nil
	PostGIS  *pgxpool.Pool      // may be nil
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.PostGIS != nil {
		pe.PostGIS.Close()
	}
	if pe.Cache != nil {
		_ = pe.Cache.Close()
	}
}

// initPipeline opens the response cache and PostGIS pool when configured
// and builds the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	env := &pipelineEnv{}

	opts := []osmclient.Option{
		osmclient.WithEndpoints(cfg.OSM.NominatimURL, cfg.OSM.OverpassURL),
		osmclient.WithUserAgent(cfg.OSM.UserAgent),
		osmclient.WithQueryTimeout(cfg.OSM.TimeoutSecs),
		osmclient.WithRetry(cfg.OSM.RetryAttempts, cfg.OSM.RetryBackoffMs),
	}
	if cfg.OSM.RateLimit > 0 {
		opts = append(opts, osmclient.WithRateLimit(cfg.OSM.RateLimit))
	}

	if cfg.Cache.Enabled && osmFile == "" {
		cache, err := initCache(ctx)
		if err != nil {
			return nil, err
		}
		env.Cache = cache
		opts = append(opts, osmclient.WithCache(cache, time.Duration(cfg.Cache.TTLHours)*time.Hour))
	} else {
		zap.L().Debug("osm response cache disabled")
	}

	var sink export.Pool
	if cfg.Export.PostGISURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Export.PostGISURL)
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "connect postgis")
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			env.Close()
			return nil, eris.Wrap(err, "ping postgis")
		}
		env.PostGIS = pool
		sink = pool
		zap.L().Info("postgis sink enabled", zap.String("table", cfg.Export.PostGISTable))
	}

	env.Pipeline = pipeline.New(cfg, osmclient.NewClient(opts...), sink)
	return env, nil
}

// initCache opens and migrates the SQLite response cache.
func initCache(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate cache")
	}
	return st, nil
}
