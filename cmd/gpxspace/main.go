package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planbiir/gframe/internal/gpx"
	"github.com/planbiir/gframe/internal/reshape"
)

func main() {
	var (
		inputFile   = flag.String("i", "", "Input GPX file")
		outputFile  = flag.String("o", "", "Output GPX file (default: <input>_spaced.gpx)")
		spacing     = flag.String("spacing", "5", "Distance between output points in meters")
		start       = flag.String("start", "", "Crop: keep the track from this time on (RFC3339)")
		duration    = flag.Duration("duration", 0, "Crop: length of the kept part (default: to the end of the track)")
		retimeStart = flag.String("retime-start", "", "Give the output points new times from this time on (RFC3339)")
		retimeDelta = flag.Duration("retime-delta", time.Second, "Time between re-timed points")
		dryRun      = flag.Bool("dry-run", false, "Show statistics without writing output file")
		showStats   = flag.Bool("stats", false, "Show detailed statistics")
		statsJSON   = flag.Bool("stats-json", false, "Output statistics as JSON")
		version     = flag.Bool("version", false, "Show version information")
	)

	flag.Usage = func() {
		fmt.Printf("gpxspace - Resample GPX tracks to a constant point spacing\n\n")
		fmt.Printf("usage: gpxspace -i /path/to/file.gpx -spacing 5\n\n")
		fmt.Printf("examples:\n")
		fmt.Printf("  gpxspace -i track.gpx\n")
		fmt.Printf("  gpxspace -i track.gpx -spacing 2.5 -o spaced.gpx\n")
		fmt.Printf("  gpxspace -i track.gpx -start 2023-08-17T15:06:25Z -duration 12s\n")
		fmt.Printf("  gpxspace -i track.gpx -retime-start 2023-08-17T15:06:25Z -retime-delta 1s\n\n")
		fmt.Printf("options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("gpxspace v1.0.0 - GPX track spacer")
		fmt.Println("https://github.com/planbiir/gframe")
		os.Exit(0)
	}

	if *inputFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	spacingMeters, err := decimal.NewFromString(*spacing)
	if err != nil || !spacingMeters.IsPositive() {
		fmt.Fprintf(os.Stderr, "Invalid spacing %q: must be a positive number of meters\n", *spacing)
		os.Exit(2)
	}

	// Generate output filename if not provided
	if *outputFile == "" {
		ext := filepath.Ext(*inputFile)
		base := strings.TrimSuffix(*inputFile, ext)
		*outputFile = base + "_spaced" + ext
	}

	// Parse GPX file
	fmt.Printf("📖 Reading GPX file: %s\n", *inputFile)
	gpxData, err := gpx.Parse(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading GPX file: %v\n", err)
		os.Exit(1)
	}

	pointCount, trackCount, segmentCount, trackDuration, distance := gpxData.Stats()
	if pointCount == 0 {
		fmt.Printf("❌ No GPS points found in file\n")
		os.Exit(1)
	}
	fmt.Printf("📊 Original track: %d points across %d tracks, %d segments (%.2f km, %v)\n",
		pointCount, trackCount, segmentCount, distance, trackDuration)

	track, err := gpxData.Track()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading track: %v\n", err)
		os.Exit(1)
	}

	// Crop to the requested window
	if *start != "" {
		from, err := time.Parse(time.RFC3339Nano, *start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -start: %v\n", err)
			os.Exit(2)
		}
		track, err = reshape.Crop(track, from, cropWindow(track.End(), from, *duration))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error cropping track: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✂️  Cropped to %d points (%s → %s)\n", track.Len(),
			track.Start().Format(time.RFC3339), track.End().Format(time.RFC3339))
	}

	// Space the track
	result, err := reshape.Space(track, reshape.Config{Spacing: spacingMeters})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error spacing track: %v\n", err)
		os.Exit(1)
	}

	// Show statistics
	if *showStats || *statsJSON || *dryRun {
		if *statsJSON {
			jsonData, err := json.MarshalIndent(result.Stats, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling stats: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(jsonData))
		} else {
			printStats(result.Stats)
		}
	}

	// Exit if dry run
	if *dryRun {
		fmt.Printf("🔍 Dry run completed - no files written\n")
		os.Exit(0)
	}

	spaced := result.Track
	if *retimeStart != "" {
		from, err := time.Parse(time.RFC3339Nano, *retimeStart)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -retime-start: %v\n", err)
			os.Exit(2)
		}
		spaced = reshape.Retime(spaced, from, *retimeDelta)
	}

	// Write spaced GPX
	fmt.Printf("💾 Writing spaced track: %s\n", *outputFile)
	if err := gpx.WriteTrack(*outputFile, spaced); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing GPX file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Track spaced successfully!\n")
	fmt.Printf("   %d → %d points\n", result.Stats.OriginalPoints, result.Stats.FinalPoints)
	fmt.Printf("   %.1f → %.1f m\n", result.Stats.OriginalLength, result.Stats.FinalLength)
}

// cropWindow is the length of the crop, running to the end of the track when
// no -duration was given. A start after the end gives an empty window, which
// Crop reports as not overlapping the track.
func cropWindow(trackEnd, from time.Time, duration time.Duration) time.Duration {
	if duration != 0 {
		return duration
	}
	return max(trackEnd.Sub(from), 0)
}

func printStats(stats reshape.Stats) {
	fmt.Printf("\n📊 Spacing Statistics:\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("📍 Points: %d → %d\n", stats.OriginalPoints, stats.FinalPoints)
	fmt.Printf("📏 Length: %.2f → %.2f m\n", stats.OriginalLength, stats.FinalLength)
	fmt.Printf("🎯 Target spacing: %.2f m\n", stats.TargetSpacing)
	fmt.Printf("📐 Actual spacing: mean %.4f m, stddev %.4f m, min %.4f m, max %.4f m\n",
		stats.SpacingMean, stats.SpacingStdDev, stats.SpacingMin, stats.SpacingMax)
	fmt.Printf("⏱️  Processing Time: %v\n", stats.ProcessingTime)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}
