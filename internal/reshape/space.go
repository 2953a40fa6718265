package reshape

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planbiir/gframe/internal/geo"
	"github.com/planbiir/gframe/internal/track"
)

// Resample returns a track whose consecutive points are spacing meters apart
// (planar distance), walking the original path in a single forward pass.
//
// Each new point lies on the original path, at the place where the path first
// leaves a circle of radius spacing around the previous output point. Its time
// is interpolated from the two samples it falls between, and its bearing is the
// direction of that original segment rather than of the line between output
// points, so headings stay accurate when output points are far apart.
func Resample(t track.Track, spacing decimal.Decimal) (track.Track, error) {
	if err := t.Validate(); err != nil {
		return track.Track{}, err
	}
	if len(t.Points) < 2 {
		return track.Track{}, fmt.Errorf("%w: resampling needs at least 2 points, got %d",
			track.ErrMalformed, len(t.Points))
	}
	if !spacing.IsPositive() {
		return track.Track{}, fmt.Errorf("%w: got %s", ErrInvalidSpacing, spacing)
	}

	points := t.Points

	// Nothing precedes the first point, so its bearing points at the next sample.
	anchor := points[0]
	first := geo.Offset(anchor, points[1])
	out := []track.Point{anchor.WithBearing(geo.Bearing(first.X, first.Y))}

	// prev is the last sample seen that is still inside the circle around anchor
	prev := anchor

	for i := 1; i < len(points); {
		p := points[i]
		pos := geo.Offset(anchor, p)

		if pos.Len().LessThan(spacing) {
			prev = p
			i++
			continue
		}

		// The path crosses the circle somewhere between prev and p.
		prevPos := geo.Offset(anchor, prev)
		t1, _, err := geo.IntersectLineWithCircle(prevPos, pos, spacing)
		if err != nil {
			return track.Track{}, fmt.Errorf("failed to place point after %s: %w", anchor.Time.Format(time.RFC3339Nano), err)
		}

		heading := pos.Sub(prevPos)
		next := geo.InterpolatePoint(prev, p, t1).WithBearing(geo.Bearing(heading.X, heading.Y))
		out = append(out, next)

		anchor = next
		prev = next
		// i is not advanced: p may be far enough from the new anchor to
		// produce another point on the same segment.
	}

	return track.New(t.Name, out), nil
}

// Space resamples the track and reports statistics about the result.
func Space(t track.Track, config Config) (Result, error) {
	startTime := time.Now()

	spaced, err := Resample(t, config.Spacing)
	if err != nil {
		return Result{}, err
	}

	stats := Summarize(t, spaced, config.Spacing)
	stats.ProcessingTime = time.Since(startTime)

	return Result{Track: spaced, Stats: stats}, nil
}
