package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/osmclient"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

// Network is an acquired road network and where it came from.
type Network struct {
	Graph *roadnet.Graph
	// Place is nil when the network was read from a file.
	Place  *osmclient.Place
	Source string
}

// Network builds the simplified drivable network for studyArea. With
// osmFile set the file is read as is and no boundary truncation happens;
// otherwise the area is geocoded and its bounding box downloaded from
// Overpass.
func (p *Pipeline) Network(ctx context.Context, studyArea, osmFile string) (*Network, error) {
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("study_area", studyArea))
	opts := roadnet.DefaultBuildOptions()

	if osmFile != "" {
		data, err := osmclient.LoadFile(osmFile)
		if err != nil {
			return nil, err
		}
		g, err := roadnet.Build(data, opts)
		if err != nil {
			return nil, err
		}
		log.Info("pipeline: network loaded from file", zap.String("path", osmFile))
		return &Network{Graph: g, Source: osmFile}, nil
	}

	place, err := p.osm.Geocode(ctx, studyArea)
	if err != nil {
		return nil, err
	}
	log.Info("pipeline: study area geocoded", zap.String("display_name", place.DisplayName))

	data, err := p.osm.Network(ctx, place.Bound)
	if err != nil {
		return nil, err
	}
	opts.Boundary = place.Boundary
	g, err := roadnet.Build(data, opts)
	if err != nil {
		return nil, err
	}
	return &Network{Graph: g, Place: place, Source: "overpass"}, nil
}
