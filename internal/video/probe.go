package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrNoVideoStream is returned by ParseFFprobe for files without a video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// ErrNoEmbeddedStart is returned when exiftool finds no GPSDateTime in a file.
var ErrNoEmbeddedStart = errors.New("no embedded GPS start time")

// exifDateLayout is exiftool's date format, e.g. "2023:08:17 15:06:25.299"
const exifDateLayout = "2006:01:02 15:04:05"

// Tools runs the external programs the pipeline depends on.
type Tools struct {
	FFmpeg   string
	FFprobe  string
	Exiftool string

	Runner Runner
	Log    zerolog.Logger

	// Progress shows a progress bar on stderr while ffmpeg works.
	Progress bool
}

// NewTools returns Tools running the given binaries on the local machine.
func NewTools(ffmpeg, ffprobe, exiftool string, log zerolog.Logger) *Tools {
	return &Tools{
		FFmpeg:   ffmpeg,
		FFprobe:  ffprobe,
		Exiftool: exiftool,
		Runner:   ExecRunner{},
		Log:      log,
	}
}

// Metadata is what the pipeline needs to know about a video file.
type Metadata struct {
	Duration     time.Duration
	CreationTime time.Time // zero when the container has no creation_time tag
	FrameRate    decimal.Decimal
	Width        int
	Height       int
}

type ffprobeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
	} `json:"streams"`
}

// ParseFFprobe reads the JSON printed by
// ffprobe -print_format json -show_format -show_streams.
func ParseFFprobe(data []byte) (Metadata, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var meta Metadata

	seconds, err := decimal.NewFromString(out.Format.Duration)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse duration %q: %w", out.Format.Duration, err)
	}
	meta.Duration = time.Duration(seconds.Mul(nanosPerSecond).Round(0).IntPart())

	if created := out.Format.Tags["creation_time"]; created != "" {
		meta.CreationTime, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return Metadata{}, fmt.Errorf("failed to parse creation_time %q: %w", created, err)
		}
		meta.CreationTime = meta.CreationTime.UTC()
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		meta.FrameRate, err = ParseFrameRate(s.AvgFrameRate)
		if err != nil {
			return Metadata{}, err
		}
		meta.Width, meta.Height = s.Width, s.Height
		return meta, nil
	}

	return Metadata{}, ErrNoVideoStream
}

// ParseExifDate parses exiftool's "2023:08:17 15:06:25.299" format. The
// value carries no zone and is taken as UTC.
func ParseExifDate(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	t, err := time.Parse(exifDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exif date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseExiftool extracts the GPSDateTime of the first file in exiftool -j output.
func ParseExiftool(data []byte) (time.Time, error) {
	var files []map[string]any
	if err := json.Unmarshal(data, &files); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse exiftool output: %w", err)
	}
	if len(files) == 0 {
		return time.Time{}, fmt.Errorf("exiftool returned no files")
	}

	value, ok := files[0]["GPSDateTime"].(string)
	if !ok || value == "" {
		return time.Time{}, ErrNoEmbeddedStart
	}
	return ParseExifDate(value)
}

// Probe reads duration, creation time and frame rate of a video file.
func (t *Tools) Probe(ctx context.Context, path string) (Metadata, error) {
	args := []string{"-print_format", "json", "-show_format", "-show_streams", path}
	t.Log.Debug().Str("cmd", t.FFprobe).Strs("args", args).Msg("running ffprobe")

	out, err := t.Runner.Output(ctx, t.FFprobe, args...)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to probe %s: %w", path, err)
	}

	meta, err := ParseFFprobe(out)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to probe %s: %w", path, err)
	}
	return meta, nil
}

// ProbeEmbeddedStart returns the GPS start time a camera embedded in its
// original recording, which is more accurate than the container creation time.
func (t *Tools) ProbeEmbeddedStart(ctx context.Context, path string) (time.Time, error) {
	args := []string{"-api", "largefilesupport=1", "-ee", "-j", path}
	t.Log.Debug().Str("cmd", t.Exiftool).Strs("args", args).Msg("running exiftool")

	out, err := t.Runner.Output(ctx, t.Exiftool, args...)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read metadata of %s: %w", path, err)
	}

	start, err := ParseExiftool(out)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", path, err)
	}
	return start, nil
}
