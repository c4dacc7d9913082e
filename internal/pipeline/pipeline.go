// Package pipeline runs one centrality computation end to end: acquire the
// road network, score it, then write the layer, map and manifest.
package pipeline

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/centrality"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/config"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/export"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/osmclient"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

// Pipeline holds the collaborators shared by every run.
type Pipeline struct {
	cfg     *config.Config
	osm     osmclient.Client
	postgis export.Pool
}

// New creates a Pipeline. postgis may be nil, which disables the PostGIS
// sink.
func New(cfg *config.Config, client osmclient.Client, postgis export.Pool) *Pipeline {
	return &Pipeline{cfg: cfg, osm: client, postgis: postgis}
}

// Request describes one run.
type Request struct {
	StudyArea string
	// OutRoot is the directory the run directory is created in.
	OutRoot   string
	RouteType centrality.RouteType
	Strategy  centrality.Strategy
	// OSMFile, when set, is read instead of querying Overpass.
	OSMFile string
	// OnNetwork, when set, sees the built network before centrality is
	// computed.
	OnNetwork func(g *roadnet.Graph)
}

// Result is what a finished run produced.
type Result struct {
	Dir      string
	Graph    *roadnet.Graph
	Layer    *layer.Layer
	Manifest *export.Manifest
}

// Run executes the full pipeline for req.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Strategy == nil {
		return nil, eris.New("pipeline: no strategy")
	}
	if _, err := centrality.ParseRouteType(string(req.RouteType)); err != nil {
		return nil, err
	}

	strategy, seed := resolveSeed(req.Strategy)
	log := zap.L().With(
		zap.String("component", "pipeline"),
		zap.String("study_area", req.StudyArea),
		zap.String("route_type", string(req.RouteType)),
		zap.String("method", strategy.Method()),
	)
	log.Info("pipeline: starting run")

	m := &export.Manifest{
		RunID:     export.NewRunID(),
		StudyArea: req.StudyArea,
		RouteType: string(req.RouteType),
		Method:    strategy.Method(),
		Seed:      seed,
		StartedAt: time.Now().UTC(),
	}
	result := &Result{Manifest: m}

	track := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		secs := time.Since(start).Seconds()
		if err != nil {
			log.Error("pipeline: step failed", zap.String("step", name), zap.Float64("seconds", secs), zap.Error(err))
			return err
		}
		m.Steps = append(m.Steps, export.Step{Name: name, Seconds: secs})
		log.Info("pipeline: step complete", zap.String("step", name), zap.Float64("seconds", secs))
		return nil
	}

	// Acquire
	if err := track("network", func() error {
		net, err := p.Network(ctx, req.StudyArea, req.OSMFile)
		if err != nil {
			return err
		}
		result.Graph = net.Graph
		m.Source = net.Source
		return nil
	}); err != nil {
		return nil, err
	}
	g := result.Graph
	m.Nodes, m.Edges = g.NumNodes(), g.NumEdges()
	if req.OnNetwork != nil {
		req.OnNetwork(g)
	}

	// Annotate
	if req.RouteType == centrality.RouteFastest {
		if err := track("speeds", func() error {
			if err := roadnet.AddEdgeSpeeds(g, p.cfg.Speeds); err != nil {
				return err
			}
			return roadnet.AddEdgeTravelTimes(g)
		}); err != nil {
			return nil, err
		}
	}

	// Compute
	var table *centrality.Table
	if err := track("centrality", func() error {
		t, err := strategy.Compute(ctx, g, req.RouteType.Weight())
		table = t
		return err
	}); err != nil {
		return nil, err
	}

	// Join
	if err := track("join", func() error {
		l, err := layer.Join(table, g)
		result.Layer = l
		return err
	}); err != nil {
		return nil, err
	}
	m.Rows = len(result.Layer.Features)
	m.N = runSize(strategy, g)

	// Persist
	dir, err := export.OutputDir(req.OutRoot, req.StudyArea, string(req.RouteType), strategy.Method(), m.N)
	if err != nil {
		return nil, err
	}
	result.Dir = dir
	if err := track("export", func() error {
		return p.writeOutputs(ctx, dir, result)
	}); err != nil {
		return nil, err
	}

	m.FinishedAt = time.Now().UTC()
	m.Files = append(m.Files, export.ManifestFile)
	if err := export.WriteManifest(filepath.Join(dir, export.ManifestFile), m); err != nil {
		return nil, err
	}

	log.Info("pipeline: run complete",
		zap.String("dir", dir),
		zap.Int("rows", m.Rows),
		zap.Duration("elapsed", m.FinishedAt.Sub(m.StartedAt)),
	)
	return result, nil
}

// runSize is the n of the run name: sampled routes for the sampling
// strategy, scored edges for the exact one.
func runSize(s centrality.Strategy, g *roadnet.Graph) int {
	if sampling, ok := s.(centrality.Sampling); ok {
		return sampling.Routes
	}
	return g.NumEdges()
}

// resolveSeed replaces a zero sampling seed with a random one so the run can
// be reproduced from its manifest.
func resolveSeed(s centrality.Strategy) (centrality.Strategy, int64) {
	sampling, ok := s.(centrality.Sampling)
	if !ok {
		return s, 0
	}
	for sampling.Seed == 0 {
		sampling.Seed = rand.Int64()
	}
	return sampling, sampling.Seed
}
