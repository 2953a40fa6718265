package reshape

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gframe/internal/geo"
	"github.com/planbiir/gframe/internal/track"
)

var degreeLength = decimal.NewFromInt(111300)

// meters converts a planar position near (0,0) into a point. At the equator a
// degree of longitude and of latitude are both 111300m in the local projection.
func meters(x, y float64, at time.Time) track.Point {
	return track.Point{
		Lat:  decimal.NewFromFloat(y).DivRound(degreeLength, 20),
		Lon:  decimal.NewFromFloat(x).DivRound(degreeLength, 20),
		Time: at,
	}
}

// straightTrack is n points 2m apart heading north, one second apart.
func straightTrack(n int) track.Track {
	points := make([]track.Point, n)
	for i := range points {
		points[i] = meters(0, float64(2*i), base.Add(time.Duration(i)*time.Second))
	}
	return track.New("straight", points)
}

func TestResampleStraightLine(t *testing.T) {
	got, err := Resample(straightTrack(10), d("5"))
	require.NoError(t, err)

	// 18m of track gives points at 0, 5, 10 and 15m
	require.Equal(t, 4, got.Len())

	// 5m lies halfway between the samples at 4m and 6m
	assert.Equal(t, base.Add(2500*time.Millisecond), got.Points[1].Time)
	assert.Equal(t, base.Add(5*time.Second), got.Points[2].Time)

	for i, p := range got.Points {
		require.True(t, p.Bearing.Valid, "point %d has no bearing", i)
		assert.InDelta(t, 0, p.Bearing.Decimal.InexactFloat64(), 1e-6, "point %d", i)
	}
}

func TestResampleKeepsSpacing(t *testing.T) {
	// a wiggly path with samples both shorter and longer than the spacing
	var points []track.Point
	for i := 0; i < 50; i++ {
		x := float64(i) * 3.7
		y := float64(i%4) * 2.5
		points = append(points, meters(x, y, base.Add(time.Duration(i)*time.Second)))
	}
	input := track.New("wiggly", points)

	spacing := d("5")
	got, err := Resample(input, spacing)
	require.NoError(t, err)
	require.Greater(t, got.Len(), 10)

	assert.Equal(t, input.Points[0].Lat, got.Points[0].Lat)
	assert.Equal(t, input.Points[0].Lon, got.Points[0].Lon)

	for i := 1; i < got.Len(); i++ {
		gap := geo.Offset(got.Points[i-1], got.Points[i]).Len()
		assert.InDelta(t, 5, gap.InexactFloat64(), 1e-6, "gap before point %d", i)
		assert.False(t, got.Points[i].Time.Before(got.Points[i-1].Time), "time went backwards at %d", i)
	}

	// the last output point is less than one spacing from the end of the track
	tail := geo.Offset(got.Points[got.Len()-1], input.Points[input.Len()-1]).Len()
	assert.True(t, tail.LessThan(spacing), "tail = %s", tail)
}

func TestResampleBearingFollowsSegment(t *testing.T) {
	input := track.New("corner", []track.Point{
		meters(0, 0, base),
		meters(3, 0, base.Add(time.Second)),
		meters(5, 6, base.Add(2*time.Second)),
		meters(10, 6, base.Add(3*time.Second)),
	})

	got, err := Resample(input, d("5"))
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())

	// first point faces the next raw sample
	assert.InDelta(t, 90, got.Points[0].Bearing.Decimal.InexactFloat64(), 1e-6)

	// second point lies at (4,3) on the (3,0) -> (5,6) segment
	x, y := geo.RelativeDistance(input.Points[0], got.Points[1])
	assert.InDelta(t, 4, x.InexactFloat64(), 1e-6)
	assert.InDelta(t, 3, y.InexactFloat64(), 1e-6)
	assert.InDelta(t, 18.4349488, got.Points[1].Bearing.Decimal.InexactFloat64(), 1e-4)

	// third point at (8,6) on the final eastbound segment
	x, y = geo.RelativeDistance(input.Points[0], got.Points[2])
	assert.InDelta(t, 8, x.InexactFloat64(), 1e-6)
	assert.InDelta(t, 6, y.InexactFloat64(), 1e-6)
	bearing := got.Points[2].Bearing.Decimal.InexactFloat64()
	assert.InDelta(t, 90, bearing, 1e-4)

	// the chord from the start would have pointed elsewhere
	chord := geo.Offset(got.Points[0], got.Points[2])
	assert.Greater(t, bearing-geo.Bearing(chord.X, chord.Y).InexactFloat64(), 30.0)
}

func TestResampleLongSegmentYieldsSeveralPoints(t *testing.T) {
	input := track.New("long", []track.Point{
		meters(0, 0, base),
		meters(0, 23, base.Add(23*time.Second)),
	})

	got, err := Resample(input, d("5"))
	require.NoError(t, err)
	require.Equal(t, 5, got.Len())

	for i, p := range got.Points {
		assert.Equal(t, base.Add(time.Duration(i)*5*time.Second), p.Time, "point %d", i)
	}
}

func TestResampleLongSegmentKeepsPrecisionBounded(t *testing.T) {
	start, end := meters(0, 0, base), meters(0, 200, base.Add(200*time.Second))
	start.Elevation, end.Elevation = d("100"), d("120")

	got, err := Resample(track.New("tunnel", []track.Point{start, end}), d("1"))
	require.NoError(t, err)
	assert.InDelta(t, 200, got.Len(), 1)

	// every point is interpolated from the one before it
	for i, p := range got.Points {
		for _, v := range []decimal.Decimal{p.Lat, p.Lon, p.Elevation} {
			require.GreaterOrEqual(t, v.Exponent(), int32(-20), "point %d: %s", i, v)
		}
	}

	last := got.Points[got.Len()-1]
	assert.InDelta(t, 199, geo.Offset(start, last).Len().InexactFloat64(), 1.0001)
}

func TestResampleDoesNotModifyInput(t *testing.T) {
	input := straightTrack(10)

	_, err := Resample(input, d("5"))
	require.NoError(t, err)

	for i, p := range input.Points {
		assert.False(t, p.Bearing.Valid, "input point %d got a bearing", i)
	}
}

func TestResampleFailures(t *testing.T) {
	t.Run("single point", func(t *testing.T) {
		_, err := Resample(straightTrack(1), d("5"))
		assert.ErrorIs(t, err, track.ErrMalformed)
	})

	t.Run("zero spacing", func(t *testing.T) {
		_, err := Resample(straightTrack(3), decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidSpacing)
	})

	t.Run("negative spacing", func(t *testing.T) {
		_, err := Resample(straightTrack(3), d("-1"))
		assert.ErrorIs(t, err, ErrInvalidSpacing)
	})

	t.Run("time going backwards", func(t *testing.T) {
		input := straightTrack(3)
		input.Points[2].Time = base.Add(-time.Second)
		_, err := Resample(input, d("5"))
		assert.ErrorIs(t, err, track.ErrMalformed)
	})
}

func TestSpaceStats(t *testing.T) {
	result, err := Space(straightTrack(10), DefaultConfig())
	require.NoError(t, err)

	stats := result.Stats
	assert.Equal(t, 10, stats.OriginalPoints)
	assert.Equal(t, 4, stats.FinalPoints)
	assert.Equal(t, result.Track.Len(), stats.FinalPoints)
	assert.InDelta(t, 18, stats.OriginalLength, 1e-6)
	assert.InDelta(t, 15, stats.FinalLength, 1e-6)
	assert.InDelta(t, 5, stats.TargetSpacing, 1e-12)
	assert.InDelta(t, 5, stats.SpacingMean, 1e-6)
	assert.InDelta(t, 0, stats.SpacingStdDev, 1e-6)
	assert.InDelta(t, 5, stats.SpacingMin, 1e-6)
	assert.InDelta(t, 5, stats.SpacingMax, 1e-6)
}

func TestSummarizeSingleGap(t *testing.T) {
	input := straightTrack(2)
	stats := Summarize(input, input, d("2"))

	assert.Equal(t, 0.0, stats.SpacingStdDev)
	assert.InDelta(t, 2, stats.SpacingMean, 1e-6)
}

func BenchmarkResampleSizes(b *testing.B) {
	sizes := []int{1000, 5000, 20000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Resample-%d-points", size), func(b *testing.B) {
			input := straightTrack(size)
			spacing := d("5")

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Resample(input, spacing); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
