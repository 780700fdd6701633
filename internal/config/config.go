// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Polling struct {
		Enabled         bool `yaml:"enabled"`
		IntervalMinutes int  `yaml:"interval_minutes"`
	} `yaml:"polling"`

	Fetch struct {
		FeedTimeoutSeconds int     `yaml:"feed_timeout_seconds"`
		BulkTimeoutSeconds int     `yaml:"bulk_timeout_seconds"`
		PerHostRPS         float64 `yaml:"per_host_rps"`
		PerHostBurst       int     `yaml:"per_host_burst"`
		UserAgent          string  `yaml:"user_agent"`
	} `yaml:"fetch"`

	Pipeline struct {
		AnchorLanguage string   `yaml:"anchor_language"`
		FeedGroups     []string `yaml:"feed_groups"`
	} `yaml:"pipeline"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
