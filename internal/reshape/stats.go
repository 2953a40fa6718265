package reshape

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/planbiir/gframe/internal/geo"
	"github.com/planbiir/gframe/internal/track"
)

// Summarize compares an input track with its resampled version.
func Summarize(original, spaced track.Track, spacing decimal.Decimal) Stats {
	gaps := Gaps(spaced)

	stats := Stats{
		OriginalPoints: original.Len(),
		OriginalLength: floats.Sum(Gaps(original)),
		FinalPoints:    spaced.Len(),
		FinalLength:    floats.Sum(gaps),
		TargetSpacing:  spacing.InexactFloat64(),
	}

	if len(gaps) > 0 {
		stats.SpacingMean, stats.SpacingStdDev = stat.MeanStdDev(gaps, nil)
		stats.SpacingMin = floats.Min(gaps)
		stats.SpacingMax = floats.Max(gaps)
	}
	if len(gaps) == 1 {
		// MeanStdDev is NaN for a single sample
		stats.SpacingStdDev = 0
	}

	return stats
}

// Gaps returns the planar distance in meters between each pair of
// consecutive points.
func Gaps(t track.Track) []float64 {
	if len(t.Points) < 2 {
		return nil
	}
	gaps := make([]float64, 0, len(t.Points)-1)
	for i := 1; i < len(t.Points); i++ {
		gaps = append(gaps, geo.Offset(t.Points[i-1], t.Points[i]).Len().InexactFloat64())
	}
	return gaps
}
