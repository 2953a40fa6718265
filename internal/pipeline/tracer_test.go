package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer(t *testing.T) {
	tracer := NewTracer()
	tracer.Add("ffprobe", 200*time.Millisecond)
	tracer.Add("extract frames", 3*time.Second)
	tracer.Add("ffprobe", 400*time.Millisecond)

	assert.Equal(t, 2, tracer.Invocations("ffprobe"))
	assert.Equal(t, 0, tracer.Invocations("missing"))

	lines := strings.Split(tracer.Summary(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Traces:", lines[0])
	assert.Equal(t, "ffprobe              invocations:    2,    total_time:      0.60s (0.30s avg)", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "extract frames "), lines[2])
}

func TestTracerStart(t *testing.T) {
	tracer := NewTracer()
	now := time.Date(2023, 8, 17, 15, 0, 0, 0, time.UTC)
	tracer.now = func() time.Time { return now }

	stop := tracer.Start("exiftoolmeta")
	now = now.Add(1500 * time.Millisecond)
	stop()

	assert.Equal(t, 1, tracer.Invocations("exiftoolmeta"))
	assert.Contains(t, tracer.Summary(), "1.50s")
}

func TestNewPlan(t *testing.T) {
	recorded := time.Date(2023, 8, 17, 15, 6, 25, 299000000, time.UTC)
	fps := decimal.RequireFromString("29.97")

	plan, err := NewPlan(recorded, 12712679*time.Microsecond, -time.Second, 2*time.Second, 500*time.Millisecond, fps)
	require.NoError(t, err)

	assert.Equal(t, recorded.Add(-time.Second), plan.VideoStart)
	assert.Equal(t, plan.VideoStart.Add(12712679*time.Microsecond), plan.VideoEnd)
	assert.Equal(t, plan.VideoStart.Add(2*time.Second), plan.FirstFrame)
	assert.Equal(t, plan.VideoEnd.Add(-500*time.Millisecond), plan.LastFrame)
	assert.Equal(t, 12712679*time.Microsecond-2500*time.Millisecond, plan.Duration())
	assert.True(t, plan.FrameRate.Equal(fps))
}

func TestNewPlanCutsTooLong(t *testing.T) {
	_, err := NewPlan(time.Now(), 10*time.Second, 0, 6*time.Second, 5*time.Second, decimal.NewFromInt(30))
	assert.ErrorIs(t, err, ErrEmptyWindow)
}
