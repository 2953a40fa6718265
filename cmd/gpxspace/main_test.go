package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/planbiir/gframe/internal/reshape"
	"github.com/planbiir/gframe/internal/track"
)

func TestCropWindow(t *testing.T) {
	end := time.Date(2023, 8, 17, 15, 7, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from     time.Time
		duration time.Duration
		want     time.Duration
	}{
		{"explicit duration", end.Add(-time.Minute), 12 * time.Second, 12 * time.Second},
		{"to the end of the track", end.Add(-time.Minute), 0, time.Minute},
		{"start after the track", end.Add(time.Minute), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cropWindow(end, tt.from, tt.duration))
		})
	}
}

func TestCropAfterTrackReportsNoOverlap(t *testing.T) {
	start := time.Date(2023, 8, 17, 15, 6, 0, 0, time.UTC)
	tr := track.New("ring", []track.Point{
		{Lat: decimal.RequireFromString("59.9"), Lon: decimal.RequireFromString("10.7"), Time: start},
		{Lat: decimal.RequireFromString("59.9001"), Lon: decimal.RequireFromString("10.7"), Time: start.Add(time.Second)},
	})
	from := start.Add(time.Hour)

	_, err := reshape.Crop(tr, from, cropWindow(tr.End(), from, 0))
	assert.ErrorIs(t, err, reshape.ErrNoOverlap)
}
