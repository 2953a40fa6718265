package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/planbiir/gframe/internal/config"
	"github.com/planbiir/gframe/internal/logger"
	"github.com/planbiir/gframe/internal/pipeline"
	"github.com/planbiir/gframe/internal/video"
)

func main() {
	var (
		projectFile = flag.String("config", "", "Project JSON file")
		dryRun      = flag.Bool("dry-run", false, "Write GPX files and log the frame plan without running ffmpeg")
		noProgress  = flag.Bool("no-progress", false, "Hide ffmpeg progress bars")
		version     = flag.Bool("version", false, "Show version information")
	)

	flag.Usage = func() {
		fmt.Printf("gframe - Cut evenly spaced frames out of videos along a GPX track\n\n")
		fmt.Printf("usage: gframe -config project.json\n\n")
		fmt.Printf("environment:\n")
		fmt.Printf("  FFMPEG_PATH, FFPROBE_PATH, EXIFTOOL_PATH  tool locations\n")
		fmt.Printf("  LOG_LEVEL (info), LOG_PRETTY (true)       logging\n\n")
		fmt.Printf("options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("gframe v1.0.0 - GPS track to video frame pairing")
		fmt.Println("https://github.com/planbiir/gframe")
		os.Exit(0)
	}

	if *projectFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, *projectFile, *dryRun, !*noProgress))
}

func run(ctx context.Context, projectFile string, dryRun, progress bool) int {
	tools, err := config.LoadTools(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	project, err := config.LoadProject(projectFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := os.MkdirAll(project.OutputFolder, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output folder: %v\n", err)
		return 1
	}
	logFile, err := os.OpenFile(filepath.Join(project.OutputFolder, "log.txt"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return 1
	}
	defer logFile.Close()

	log := logger.New(logger.Options{
		Level:  tools.LogLevel,
		Pretty: tools.LogPretty,
		File:   logFile,
	})
	log.Info().Str("project", projectFile).Interface("config", project).Msg("loaded project")

	videoTools := video.NewTools(tools.FFmpeg, tools.FFprobe, tools.Exiftool, log)
	videoTools.Progress = progress

	runner := pipeline.NewRunner(project, videoTools, log)
	runner.DryRun = dryRun

	summary, err := runner.Run(ctx)

	fmt.Printf("\n🎬 %d videos processed, %d failed (%v)\n", len(summary.Results), len(summary.Failures), summary.Duration)
	for _, r := range summary.Results {
		fmt.Printf("   ✅ %s: %d frames → %s\n", filepath.Base(r.Video), r.Frames, r.GPXFile)
	}
	for _, f := range summary.Failures {
		fmt.Printf("   ❌ %s: %v\n", filepath.Base(f.Video), f.Err)
	}

	if err != nil {
		if !errors.Is(err, pipeline.ErrVideosFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
