// config/sources.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"govsignal-engine/internal/domain"
)

// SourcesFile is the on-disk seed of feed source descriptors. The
// registry imports it on startup; after that the database copy is
// authoritative.
type SourcesFile struct {
	Sources []domain.FeedSource `yaml:"sources"`
}

func LoadSources(path string) ([]domain.FeedSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, err
	}
	return sf.Sources, nil
}
