package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFile)
	started := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)
	m := &Manifest{
		RunID:      NewRunID(),
		StudyArea:  "Mitte, Berlin",
		RouteType:  "fastest",
		Method:     "geographical",
		N:          500,
		Seed:       42,
		Source:     "overpass",
		Nodes:      1200,
		Edges:      2900,
		Rows:       870,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Steps:      []Step{{Name: "compute", Seconds: 61.5}},
		Files:      []string{GeoPackageFile, PNGFile},
	}
	require.NoError(t, WriteManifest(path, m))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, m.Seed, got.Seed)
	assert.Equal(t, m.Files, got.Files)
	assert.True(t, m.FinishedAt.Equal(got.FinishedAt))
	assert.Equal(t, m.Steps, got.Steps)

	_, err = uuid.Parse(got.RunID)
	assert.NoError(t, err)
}
