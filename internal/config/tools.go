// Package config loads the settings the commands run with: tool locations
// and logging from the environment, and pipeline projects from JSON files.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Tools holds the locations of the external programs and logging settings.
type Tools struct {
	FFmpeg   string `env:"FFMPEG_PATH,   default=ffmpeg"`
	FFprobe  string `env:"FFPROBE_PATH,  default=ffprobe"`
	Exiftool string `env:"EXIFTOOL_PATH, default=exiftool"`

	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=true"`
}

// LoadTools reads Tools from environment variables.
func LoadTools(ctx context.Context) (*Tools, error) {
	return loadTools(ctx, envconfig.OsLookuper())
}

func loadTools(ctx context.Context, lookuper envconfig.Lookuper) (*Tools, error) {
	var cfg Tools
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}
