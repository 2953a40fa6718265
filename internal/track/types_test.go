package track

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(lat string, at time.Time) Point {
	return Point{
		Lat:       decimal.RequireFromString(lat),
		Lon:       decimal.RequireFromString("10.79187"),
		Elevation: decimal.NewFromInt(100),
		Time:      at,
	}
}

func TestValidate(t *testing.T) {
	base := time.Date(2023, 9, 27, 15, 19, 0, 0, time.UTC)

	t.Run("empty track is malformed", func(t *testing.T) {
		err := Track{Name: "empty"}.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformed))
	})

	t.Run("equal timestamps are allowed", func(t *testing.T) {
		tr := New("dup", []Point{point("59.1", base), point("59.2", base)})
		assert.NoError(t, tr.Validate())
	})

	t.Run("time going backwards is malformed", func(t *testing.T) {
		tr := New("back", []Point{
			point("59.1", base),
			point("59.2", base.Add(time.Second)),
			point("59.3", base),
		})
		err := tr.Validate()
		require.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), "point 2")
	})
}

func TestNewUsesFirstPointTime(t *testing.T) {
	base := time.Date(2023, 9, 27, 15, 19, 0, 0, time.UTC)
	tr := New("t", []Point{point("1", base), point("2", base.Add(5*time.Second))})

	assert.True(t, tr.Time.Equal(base))
	assert.Equal(t, 5*time.Second, tr.Duration())
	assert.Equal(t, 2, tr.Len())
}

func TestWithBearingDoesNotTouchOriginal(t *testing.T) {
	p := point("59.1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	q := p.WithBearing(decimal.NewFromInt(90))

	assert.False(t, p.Bearing.Valid)
	require.True(t, q.Bearing.Valid)
	assert.True(t, q.Bearing.Decimal.Equal(decimal.NewFromInt(90)))
	assert.Contains(t, q.String(), "90.0deg")
}

func TestCloneCopiesPoints(t *testing.T) {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := New("t", []Point{point("1", base)})
	c := tr.Clone()
	c.Points[0] = point("2", base)

	assert.True(t, tr.Points[0].Lat.Equal(decimal.NewFromInt(1)))
}
