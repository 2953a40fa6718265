package reshape

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planbiir/gframe/internal/geo"
	"github.com/planbiir/gframe/internal/track"
)

// Crop clips the track to [start, start+duration]. When a window edge falls
// strictly between two samples a new point is interpolated there; when it
// falls outside the track the first or last real point is kept instead.
func Crop(t track.Track, start time.Time, duration time.Duration) (track.Track, error) {
	if err := t.Validate(); err != nil {
		return track.Track{}, err
	}

	if duration < 0 {
		return track.Track{}, fmt.Errorf("%w: negative duration %s", ErrInvalidWindow, duration)
	}

	end := start.Add(duration)
	points := t.Points

	if t.End().Before(start) || t.Start().After(end) {
		return track.Track{}, fmt.Errorf("%w: track %s - %s, window %s - %s", ErrNoOverlap,
			t.Start().Format(time.RFC3339Nano), t.End().Format(time.RFC3339Nano),
			start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))
	}

	// First point at or after the window start. The overlap check above
	// guarantees there is one.
	first := firstAtOrAfter(points, start)

	var startPoint track.Point
	var bodyStart int
	if first == 0 || points[first].Time.Equal(start) {
		startPoint = points[first]
		bodyStart = first + 1
	} else {
		startPoint = interpolateAt(points[first-1], points[first], start)
		// the found point itself belongs to the body
		bodyStart = first
	}

	var endPoint track.Point
	var bodyEnd int
	last := firstAtOrAfter(points, end)
	switch {
	case last == len(points):
		// track stops before the window does
		endPoint = points[len(points)-1]
		bodyEnd = len(points) - 1
	case points[last].Time.Equal(end):
		endPoint = points[last]
		bodyEnd = last
	default:
		endPoint = interpolateAt(points[last-1], points[last], end)
		bodyEnd = last
	}

	out := make([]track.Point, 0, max(bodyEnd-bodyStart, 0)+2)
	out = append(out, startPoint)
	if bodyStart < bodyEnd {
		out = append(out, points[bodyStart:bodyEnd]...)
	}
	out = append(out, endPoint)

	return track.New(t.Name, out), nil
}

// firstAtOrAfter returns the index of the first point not before at, or
// len(points) when every point is earlier.
func firstAtOrAfter(points []track.Point, at time.Time) int {
	return sort.Search(len(points), func(i int) bool {
		return !points[i].Time.Before(at)
	})
}

// interpolateAt places a point at instant at on the segment prev -> next.
func interpolateAt(prev, next track.Point, at time.Time) track.Point {
	elapsed := decimal.NewFromInt(int64(at.Sub(prev.Time)))
	gap := decimal.NewFromInt(int64(next.Time.Sub(prev.Time)))
	return geo.InterpolatePoint(prev, next, elapsed.Div(gap))
}
