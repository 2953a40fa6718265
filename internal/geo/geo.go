// Package geo holds the numeric primitives the track transformations are built
// on: a local flat-earth projection, distances, line/circle intersection,
// interpolation and bearings. All arithmetic on coordinates is decimal.
package geo

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planbiir/gframe/internal/track"
)

const (
	// metersPerDegree is the length of one degree of latitude. Longitude
	// degrees are this scaled by cos(latitude).
	metersPerDegree = 111300

	// precision is the number of decimal places kept by divisions and roots.
	precision = 20

	sqrtIterations = 20
)

var (
	ErrNegativeSqrt      = errors.New("square root of negative number")
	ErrDegenerateSegment = errors.New("segment has zero length")
	ErrNoIntersection    = errors.New("line does not intersect circle")
)

var (
	degreeLength = decimal.NewFromInt(metersPerDegree)
	two          = decimal.NewFromInt(2)
	four         = decimal.NewFromInt(4)
	fullCircle   = decimal.NewFromInt(360)
)

// Vec is a planar offset in meters, x pointing east and y pointing north.
type Vec struct {
	X, Y decimal.Decimal
}

func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X.Sub(o.X), Y: v.Y.Sub(o.Y)} }

// Len is the euclidean length of v
func (v Vec) Len() decimal.Decimal { return Euclidean(v.X, v.Y) }

// RelativeDistance projects p onto a plane centred on origin and returns the
// east/north offset in meters. Only valid for short distances: the earth's
// curvature is ignored apart from scaling longitude by cos(origin latitude).
func RelativeDistance(origin, p track.Point) (x, y decimal.Decimal) {
	latRad := origin.Lat.InexactFloat64() * math.Pi / 180
	lonLength := decimal.NewFromFloat(math.Cos(latRad)).Mul(degreeLength)

	x = p.Lon.Sub(origin.Lon).Mul(lonLength)
	y = p.Lat.Sub(origin.Lat).Mul(degreeLength)
	return x, y
}

// Offset is RelativeDistance as a Vec.
func Offset(origin, p track.Point) Vec {
	x, y := RelativeDistance(origin, p)
	return Vec{X: x, Y: y}
}

// Euclidean returns sqrt(x² + y²).
func Euclidean(x, y decimal.Decimal) decimal.Decimal {
	// a sum of squares is never negative, so Sqrt cannot fail here
	d, _ := Sqrt(x.Mul(x).Add(y.Mul(y)))
	return d
}

// Sqrt computes a decimal square root by Newton iteration, seeded from the
// float64 root and rounded to a fixed number of decimal places.
func Sqrt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeSqrt
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	x := decimal.NewFromFloat(math.Sqrt(d.InexactFloat64()))
	if x.IsZero() {
		// float64 underflow; start from the value itself
		x = d
	}
	for i := 0; i < sqrtIterations; i++ {
		next := x.Add(d.DivRound(x, precision)).DivRound(two, precision)
		if next.Equal(x) {
			break
		}
		x = next
	}
	return x, nil
}

// IntersectLineWithCircle finds where the line p1 + t*(p2-p1) crosses a circle
// of the given radius centred on the origin of the plane (not on p1). It
// returns both roots of the quadratic as fractions along the segment; they are
// not clamped to [0,1].
//
// t1 is the (-b + sqrt(disc)) / 2a root. When p1 lies inside the circle and
// p2 outside, t1 is the forward crossing.
func IntersectLineWithCircle(p1, p2 Vec, radius decimal.Decimal) (t1, t2 decimal.Decimal, err error) {
	d := p2.Sub(p1)

	a := d.X.Mul(d.X).Add(d.Y.Mul(d.Y))
	b := two.Mul(d.X).Mul(p1.X).Add(two.Mul(d.Y).Mul(p1.Y))
	c := p1.X.Mul(p1.X).Add(p1.Y.Mul(p1.Y)).Sub(radius.Mul(radius))

	if a.IsZero() {
		return decimal.Zero, decimal.Zero, ErrDegenerateSegment
	}

	disc := b.Mul(b).Sub(four.Mul(a).Mul(c))
	if disc.IsNegative() {
		return decimal.Zero, decimal.Zero, ErrNoIntersection
	}
	root, err := Sqrt(disc)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	twoA := two.Mul(a)
	t1 = b.Neg().Add(root).DivRound(twoA, precision)
	t2 = b.Neg().Sub(root).DivRound(twoA, precision)
	return t1, t2, nil
}

// InterpolateValue returns start + (end-start)*fraction, rounded to the
// package precision. Fractions outside [0,1] extrapolate.
//
// Mul adds the exponents of its operands, so without the rounding a point
// interpolated from an interpolated point carries twice the digits.
func InterpolateValue(start, end, fraction decimal.Decimal) decimal.Decimal {
	return start.Add(end.Sub(start).Mul(fraction)).Round(precision)
}

// InterpolateTime moves from start towards end by fraction of the gap between
// them, rounded to the nearest nanosecond.
func InterpolateTime(start, end time.Time, fraction decimal.Decimal) time.Time {
	gap := decimal.NewFromInt(int64(end.Sub(start)))
	offset := gap.Mul(fraction).Round(0).IntPart()
	return start.Add(time.Duration(offset)).UTC()
}

// InterpolatePoint builds a new point a fraction of the way from start to end.
// The bearing is left unset; callers that need one compute it separately.
func InterpolatePoint(start, end track.Point, fraction decimal.Decimal) track.Point {
	return track.Point{
		Lat:       InterpolateValue(start.Lat, end.Lat, fraction),
		Lon:       InterpolateValue(start.Lon, end.Lon, fraction),
		Elevation: InterpolateValue(start.Elevation, end.Elevation, fraction),
		Time:      InterpolateTime(start.Time, end.Time, fraction),
	}
}

// Bearing converts a planar offset to a compass bearing in [0,360), where
// (0,1) is north and angles grow clockwise.
func Bearing(dx, dy decimal.Decimal) decimal.Decimal {
	deg := math.Atan2(dx.InexactFloat64(), dy.InexactFloat64()) * 180 / math.Pi
	return decimal.NewFromFloat(deg).Add(fullCircle).Mod(fullCircle)
}
