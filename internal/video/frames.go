// Package video pairs a track with a recording: mapping track points to frame
// numbers, reading metadata with ffprobe and exiftool, and cutting frames out
// of (and back into) video files with ffmpeg.
package video

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planbiir/gframe/internal/track"
)

var (
	ErrOutOfRange       = errors.New("point outside video time range")
	ErrInvalidFrameRate = errors.New("invalid frame rate")
)

var nanosPerSecond = decimal.NewFromInt(int64(time.Second))

// FrameIndices returns, for every point, the number of the first frame shown
// at or after the point's time: ceil(seconds since videoStart * fps).
// Every point must lie within [videoStart, videoEnd]; crop the track first.
func FrameIndices(t track.Track, videoStart, videoEnd time.Time, fps decimal.Decimal) ([]int, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !fps.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFrameRate, fps)
	}

	frames := make([]int, 0, len(t.Points))
	for i, p := range t.Points {
		if p.Time.Before(videoStart) || p.Time.After(videoEnd) {
			return nil, fmt.Errorf("%w: point %d at %s, video %s - %s", ErrOutOfRange, i,
				p.Time.Format(time.RFC3339Nano), videoStart.Format(time.RFC3339Nano), videoEnd.Format(time.RFC3339Nano))
		}

		seconds := decimal.NewFromInt(int64(p.Time.Sub(videoStart))).Div(nanosPerSecond)
		frames = append(frames, int(seconds.Mul(fps).Ceil().IntPart()))
	}
	return frames, nil
}

// ParseFrameRate reads a frame rate the way ffprobe reports it, either as a
// rational ("30000/1001") or a plain number ("29.97").
func ParseFrameRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)

	var rate decimal.Decimal
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := decimal.NewFromString(num)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
		}
		d, err := decimal.NewFromString(den)
		if err != nil || d.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
		}
		rate = n.Div(d)
	} else {
		r, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
		}
		rate = r
	}

	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
	}
	return rate, nil
}
