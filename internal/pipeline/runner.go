// Package pipeline runs a project end to end: for every video it lines the
// GPX track up with the recording, resamples it to the frame spacing, cuts
// the matching frames out and joins them into a one frame per second video
// with a GPX file to go with it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/planbiir/gframe/internal/config"
	"github.com/planbiir/gframe/internal/gpx"
	"github.com/planbiir/gframe/internal/reshape"
	"github.com/planbiir/gframe/internal/track"
	"github.com/planbiir/gframe/internal/video"
)

var (
	ErrNoStartTime  = errors.New("video has no usable start time")
	ErrVideosFailed = errors.New("some videos failed")
	ErrNoVideos     = errors.New("no video files found")
)

// Runner processes the videos of one project.
type Runner struct {
	Project *config.Project
	Tools   *video.Tools
	Log     zerolog.Logger
	Tracer  *Tracer

	// DryRun writes the GPX files and logs the frame plan without running ffmpeg.
	DryRun bool
}

func NewRunner(project *config.Project, tools *video.Tools, log zerolog.Logger) *Runner {
	return &Runner{
		Project: project,
		Tools:   tools,
		Log:     log,
		Tracer:  NewTracer(),
	}
}

// FileResult describes the output for one video.
type FileResult struct {
	Video     string
	GPXFile   string
	VideoFile string // empty on dry runs
	Frames    int
	Plan      Plan
	Stats     reshape.Stats
}

// Failure is a video that could not be processed.
type Failure struct {
	Video string
	Err   error
}

// Summary is the outcome of a batch run.
type Summary struct {
	RunID    string
	Results  []FileResult
	Failures []Failure
	Duration time.Duration
}

// Run processes every video of the project. A failing video is logged and
// skipped; the returned error wraps ErrVideosFailed when any did.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	startTime := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	log := r.Log.With().Str("run_id", summary.RunID).Logger()

	tr, err := gpx.ReadTrack(r.Project.GPXFile)
	if err != nil {
		return summary, fmt.Errorf("failed to read track: %w", err)
	}
	log.Info().Stringer("track", tr).Msg("loaded track")

	if err := os.MkdirAll(r.Project.OutputFolder, 0755); err != nil {
		return summary, fmt.Errorf("failed to create output folder: %w", err)
	}

	videos, err := r.Project.Videos()
	if err != nil {
		return summary, err
	}
	if len(videos) == 0 {
		return summary, fmt.Errorf("%w: %v", ErrNoVideos, r.Project.VideoFiles)
	}
	SortVideos(videos)

	log.Info().
		Int("videos", len(videos)).
		Strs("files", videos).
		Str("output", r.Project.OutputFolder).
		Msg("starting pipeline")

	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			summary.Failures = append(summary.Failures, Failure{Video: v, Err: err})
			continue
		}

		fileLog := log.With().Str("video", filepath.Base(v)).Logger()
		result, err := r.runFile(ctx, v, tr, fileLog)
		if err != nil {
			fileLog.Error().Err(err).Msg("video failed")
			summary.Failures = append(summary.Failures, Failure{Video: v, Err: err})
			continue
		}
		summary.Results = append(summary.Results, result)
	}

	summary.Duration = time.Since(startTime)
	log.Info().Msg(r.Tracer.Summary())
	log.Info().
		Int("succeeded", len(summary.Results)).
		Int("failed", len(summary.Failures)).
		Dur("took", summary.Duration).
		Msg("all done")

	if len(summary.Failures) > 0 {
		return summary, fmt.Errorf("%w: %d of %d", ErrVideosFailed, len(summary.Failures), len(videos))
	}
	return summary, nil
}

// RunFile processes a single video against an already loaded track.
func (r *Runner) RunFile(ctx context.Context, videoFile string, tr track.Track) (FileResult, error) {
	return r.runFile(ctx, videoFile, tr, r.Log.With().Str("video", filepath.Base(videoFile)).Logger())
}

func (r *Runner) runFile(ctx context.Context, videoFile string, tr track.Track, log zerolog.Logger) (FileResult, error) {
	result := FileResult{Video: videoFile}
	keep := r.Project.KeepDebugFiles
	log.Info().Msg("working on file")

	plan, err := r.plan(ctx, videoFile, log)
	if err != nil {
		return result, err
	}
	result.Plan = plan

	log.Info().
		Time("video_start", plan.VideoStart).
		Time("video_end", plan.VideoEnd).
		Time("first_frame", plan.FirstFrame).
		Time("last_frame", plan.LastFrame).
		Dur("duration", plan.Duration()).
		Msg("calculated video times")

	cropped, err := reshape.Crop(tr, plan.FirstFrame, plan.Duration())
	if err != nil {
		return result, fmt.Errorf("failed to crop track: %w", err)
	}

	spaced, err := reshape.Space(cropped, reshape.Config{Spacing: r.Project.Spacing()})
	if err != nil {
		return result, fmt.Errorf("failed to space track: %w", err)
	}
	result.Stats = spaced.Stats

	log.Info().
		Int("cropped_points", cropped.Len()).
		Int("spaced_points", spaced.Track.Len()).
		Float64("spacing_m", spaced.Stats.TargetSpacing).
		Msg("created tracks")

	// one point per second, matching the joined video
	name := r.Project.OutputName(videoFile)
	result.GPXFile = filepath.Join(r.Project.OutputFolder, name+".gpx")
	if err := gpx.WriteTrack(result.GPXFile, reshape.Retime(spaced.Track, plan.FirstFrame, time.Second)); err != nil {
		return result, fmt.Errorf("failed to write gpx: %w", err)
	}
	log.Info().Str("file", result.GPXFile).Msg("wrote gpx")

	frames, err := video.FrameIndices(spaced.Track, plan.VideoStart, plan.VideoEnd, plan.FrameRate)
	if err != nil {
		return result, fmt.Errorf("failed to map frames: %w", err)
	}
	result.Frames = len(frames)

	if r.DryRun {
		log.Info().Ints("frames", frames).Msg("dry run, not extracting")
		return result, nil
	}

	extractDir := filepath.Join(r.Project.OutputFolder, video.Stem(videoFile)+"_extracted")
	log.Info().Int("frames", len(frames)).Str("folder", extractDir).Msg("extracting frames")

	stop := r.Tracer.Start("extract frames")
	images, err := r.Tools.ExtractFrames(ctx, videoFile, extractDir, frames, video.ExtractOptions{
		Quality:    video.DefaultExtractOptions().Quality,
		KeepScript: keep,
	})
	stop()
	if err != nil {
		return result, err
	}

	result.VideoFile = filepath.Join(r.Project.OutputFolder, name+".mp4")
	log.Info().Str("file", result.VideoFile).Msg("joining images")

	joinOpts := video.DefaultJoinOptions()
	joinOpts.KeepList = keep
	stop = r.Tracer.Start("joining images")
	err = r.Tools.JoinImages(ctx, images, result.VideoFile, plan.FirstFrame, joinOpts)
	stop()
	if err != nil {
		return result, err
	}

	if !keep {
		log.Debug().Str("folder", extractDir).Msg("cleaning up")
		if err := os.RemoveAll(extractDir); err != nil {
			log.Warn().Err(err).Msg("failed to remove extracted frames")
		}
	}

	log.Info().Str("video", result.VideoFile).Str("gpx", result.GPXFile).Msg("done")
	return result, nil
}

// plan probes the video and works out where it sits on the track's clock.
func (r *Runner) plan(ctx context.Context, videoFile string, log zerolog.Logger) (Plan, error) {
	var embeddedStart time.Time
	if original := r.Project.OriginalFile(videoFile); original != "" {
		log.Debug().Str("original", original).Msg("reading embedded gps start")
		stop := r.Tracer.Start("exiftoolmeta")
		start, err := r.Tools.ProbeEmbeddedStart(ctx, original)
		stop()
		if err != nil {
			return Plan{}, err
		}
		embeddedStart = start
	}

	stop := r.Tracer.Start("ffprobe")
	meta, err := r.Tools.Probe(ctx, videoFile)
	stop()
	if err != nil {
		return Plan{}, err
	}

	recordedStart := embeddedStart
	if recordedStart.IsZero() {
		recordedStart = meta.CreationTime
	}
	if recordedStart.IsZero() {
		return Plan{}, fmt.Errorf("%w: %s", ErrNoStartTime, videoFile)
	}

	return NewPlan(recordedStart, meta.Duration, r.Project.TimeShift(),
		r.Project.CutBeginning(), r.Project.CutEnd(), meta.FrameRate)
}

// SortVideos orders GoPro style names (GS012187) by recording number and then
// chapter, which is the order they were filmed in.
func SortVideos(videos []string) {
	key := func(path string) string {
		stem := video.Stem(path)
		if len(stem) <= 4 {
			return ""
		}
		return stem[4:]
	}
	sort.SliceStable(videos, func(i, j int) bool {
		ki, kj := key(videos[i]), key(videos[j])
		if ki != kj {
			return ki < kj
		}
		return video.Stem(videos[i]) < video.Stem(videos[j])
	})
}
