// Package reshape turns a recorded track into one that can be paired with
// video frames: cropping to a time window, resampling to a constant spacing
// and re-timing onto a fixed cadence.
package reshape

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planbiir/gframe/internal/track"
)

var (
	ErrNoOverlap      = errors.New("no overlap between track and time window")
	ErrInvalidWindow  = errors.New("invalid time window")
	ErrInvalidSpacing = errors.New("spacing must be positive")
)

// Config holds resampling parameters
type Config struct {
	Spacing decimal.Decimal // meters between consecutive output points
}

// DefaultConfig returns the spacing used for street level imagery
func DefaultConfig() Config {
	return Config{
		Spacing: decimal.NewFromInt(5), // one frame every 5m
	}
}

// Stats describes a resampling run
type Stats struct {
	// Input
	OriginalPoints int     `json:"original_points"`
	OriginalLength float64 `json:"original_length_m"`

	// Output
	FinalPoints   int     `json:"final_points"`
	FinalLength   float64 `json:"final_length_m"`
	TargetSpacing float64 `json:"target_spacing_m"`

	// Spacing between consecutive output points
	SpacingMean   float64 `json:"spacing_mean_m"`
	SpacingStdDev float64 `json:"spacing_stddev_m"`
	SpacingMin    float64 `json:"spacing_min_m"`
	SpacingMax    float64 `json:"spacing_max_m"`

	// Performance
	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// Result contains the resampled track and statistics
type Result struct {
	Track track.Track
	Stats Stats
}
