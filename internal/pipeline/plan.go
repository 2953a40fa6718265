package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmptyWindow is returned when the cuts remove the whole video.
var ErrEmptyWindow = errors.New("nothing left of the video after cutting")

// Plan holds the instants that line a video up with the track. VideoStart is
// already shifted onto the track's clock.
type Plan struct {
	VideoStart time.Time
	VideoEnd   time.Time
	FirstFrame time.Time // first instant kept after cutting the beginning
	LastFrame  time.Time // last instant kept after cutting the end
	FrameRate  decimal.Decimal
}

// NewPlan works out the video window from the recorded start, the video
// duration and the project's shift and cuts.
func NewPlan(recordedStart time.Time, duration, shift, cutBeginning, cutEnd time.Duration, fps decimal.Decimal) (Plan, error) {
	start := recordedStart.Add(shift).UTC()
	end := start.Add(duration)

	p := Plan{
		VideoStart: start,
		VideoEnd:   end,
		FirstFrame: start.Add(cutBeginning),
		LastFrame:  end.Add(-cutEnd),
		FrameRate:  fps,
	}
	if p.LastFrame.Before(p.FirstFrame) {
		return Plan{}, fmt.Errorf("%w: duration %s, cut %s at the beginning and %s at the end",
			ErrEmptyWindow, duration, cutBeginning, cutEnd)
	}
	return p, nil
}

// Duration is the length of the kept part of the video.
func (p Plan) Duration() time.Duration { return p.LastFrame.Sub(p.FirstFrame) }
