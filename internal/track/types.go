package track

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMalformed is returned when a track breaks the basic invariants every
// transformation relies on: at least one point, timestamps never going backwards.
var ErrMalformed = errors.New("malformed track")

// Point is a single GPS fix. Coordinates are kept as exact decimals so that
// repeated interpolation does not accumulate binary floating point drift.
type Point struct {
	Lat       decimal.Decimal // degrees
	Lon       decimal.Decimal // degrees
	Elevation decimal.Decimal // meters
	Time      time.Time       // UTC

	// Bearing is the direction of travel in degrees, 0 = north, clockwise.
	// Only set on points produced by resampling or read from a file carrying it.
	Bearing decimal.NullDecimal
}

// WithBearing returns a copy of p with the bearing set
func (p Point) WithBearing(b decimal.Decimal) Point {
	p.Bearing = decimal.NewNullDecimal(b)
	return p
}

// WithTime returns a copy of p at another instant
func (p Point) WithTime(t time.Time) Point {
	p.Time = t
	return p
}

func (p Point) String() string {
	s := fmt.Sprintf("[%s] %s,%s %sm", p.Time.UTC().Format(time.RFC3339Nano),
		p.Lat.StringFixed(7), p.Lon.StringFixed(7), p.Elevation.StringFixed(1))
	if p.Bearing.Valid {
		s += fmt.Sprintf(" %sdeg", p.Bearing.Decimal.StringFixed(1))
	}
	return s
}

// Track is a named, time ordered sequence of points.
type Track struct {
	Name   string
	Time   time.Time // reference timestamp, normally the first point's
	Points []Point
}

// New builds a track whose reference time is its first point's time.
func New(name string, points []Point) Track {
	t := Track{Name: name, Points: points}
	if len(points) > 0 {
		t.Time = points[0].Time
	}
	return t
}

func (t Track) Len() int { return len(t.Points) }

func (t Track) Start() time.Time { return t.Points[0].Time }

func (t Track) End() time.Time { return t.Points[len(t.Points)-1].Time }

func (t Track) Duration() time.Duration { return t.End().Sub(t.Start()) }

func (t Track) String() string {
	if len(t.Points) == 0 {
		return fmt.Sprintf("Track %q: no points", t.Name)
	}
	return fmt.Sprintf("Track %q: %d points, %s -> %s (%s)", t.Name, len(t.Points),
		t.Start().UTC().Format(time.RFC3339), t.End().UTC().Format(time.RFC3339), t.Duration())
}

// Validate checks that the track is non-empty and its timestamps never decrease.
func (t Track) Validate() error {
	if len(t.Points) == 0 {
		return fmt.Errorf("%w: no points", ErrMalformed)
	}
	for i := 1; i < len(t.Points); i++ {
		if t.Points[i].Time.Before(t.Points[i-1].Time) {
			return fmt.Errorf("%w: point %d at %s precedes point %d at %s", ErrMalformed,
				i, t.Points[i].Time.Format(time.RFC3339Nano),
				i-1, t.Points[i-1].Time.Format(time.RFC3339Nano))
		}
	}
	return nil
}

// Clone returns a copy with its own point slice, so callers can build on it
// without touching the original.
func (t Track) Clone() Track {
	points := make([]Point, len(t.Points))
	copy(points, t.Points)
	t.Points = points
	return t
}
