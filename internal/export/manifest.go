package export

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest records what a run computed and wrote.
type Manifest struct {
	RunID      string    `yaml:"run_id"`
	StudyArea  string    `yaml:"study_area"`
	RouteType  string    `yaml:"route_type"`
	Method     string    `yaml:"method"`
	N          int       `yaml:"n"`
	Seed       int64     `yaml:"seed,omitempty"`
	Source     string    `yaml:"source"`
	Nodes      int       `yaml:"nodes"`
	Edges      int       `yaml:"edges"`
	Rows       int       `yaml:"rows"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Steps      []Step    `yaml:"steps"`
	Files      []string  `yaml:"files"`
}

// Step is the wall time of one pipeline stage.
type Step struct {
	Name    string  `yaml:"name"`
	Seconds float64 `yaml:"seconds"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// WriteManifest writes m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "export: marshal manifest")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "export: parse %s", path)
	}
	return &m, nil
}
