package reshape

import (
	"time"

	"github.com/planbiir/gframe/internal/track"
)

// Retime replaces the timestamps of every point so that point i is at
// start + i*delta. Positions, elevations and bearings are kept. The input
// track is not modified.
func Retime(t track.Track, start time.Time, delta time.Duration) track.Track {
	out := t.Clone()
	for i := range out.Points {
		out.Points[i].Time = start.Add(time.Duration(i) * delta).UTC()
	}
	out.Time = start.UTC()
	return out
}
