package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ExtractOptions controls ExtractFrames
type ExtractOptions struct {
	Quality    int  // jpeg quality, 2 = best, 4 = good
	KeepScript bool // leave the filter script next to the frames
}

// DefaultExtractOptions returns best quality settings
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Quality: 2}
}

// JoinOptions controls JoinImages
type JoinOptions struct {
	FrameRate int
	CRF       int
	Preset    string
	KeepList  bool // leave the concat list next to the output
}

// DefaultJoinOptions returns one image per second with x264 defaults
func DefaultJoinOptions() JoinOptions {
	return JoinOptions{FrameRate: 1, CRF: 23, Preset: "medium"}
}

// FrameSelectScript builds an ffmpeg filter script keeping only the given
// frame numbers, one select term per line.
func FrameSelectScript(frames []int) string {
	terms := make([]string, len(frames))
	for i, f := range frames {
		terms[i] = fmt.Sprintf("+eq(n,%d)", f)
	}
	return "select='" + strings.Join(terms, "\n") + "'"
}

// ConcatList builds an input list for ffmpeg's concat demuxer.
func ConcatList(paths []string) string {
	lines := make([]string, len(paths))
	for i, p := range paths {
		// concat lists quote with ' and escape embedded quotes as '\''
		lines[i] = "file '" + strings.ReplaceAll(p, "'", `'\''`) + "'"
	}
	return strings.Join(lines, "\n")
}

// FramePaths lists the files ExtractFrames writes for n frames of video.
func FramePaths(video, outDir string, n int) []string {
	stem := Stem(video)
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(outDir, fmt.Sprintf("%s-%06d.jpg", stem, i+1))
	}
	return paths
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExtractFrames saves the given frames of video as numbered jpegs in outDir
// and returns their paths in frame order.
func (t *Tools) ExtractFrames(ctx context.Context, video, outDir string, frames []int, opts ExtractOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	stem := Stem(video)
	script := filepath.Join(outDir, stem+"_frames.txt")
	if err := os.WriteFile(script, []byte(FrameSelectScript(frames)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write frame script: %w", err)
	}
	if !opts.KeepScript {
		defer os.Remove(script)
	}

	args := []string{
		"-i", video,
		"-q:v", strconv.Itoa(opts.Quality),
		"-filter_script:v", script,
		"-vsync", "0",
		"-progress", "-",
		"-nostats",
		filepath.Join(outDir, stem+"-%06d.jpg"),
	}

	if err := t.runFFmpeg(ctx, "Extract frames", len(frames), args); err != nil {
		return nil, fmt.Errorf("failed to extract frames from %s: %w", video, err)
	}
	return FramePaths(video, outDir, len(frames)), nil
}

// JoinImages encodes images into a video at a fixed frame rate, stamping it
// with created as its creation time.
func (t *Tools) JoinImages(ctx context.Context, images []string, output string, created time.Time, opts JoinOptions) error {
	outDir := filepath.Dir(output)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	// the concat demuxer reads relative entries against the list's directory
	entries := make([]string, len(images))
	for i, img := range images {
		abs, err := filepath.Abs(img)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", img, err)
		}
		entries[i] = abs
	}

	list := filepath.Join(outDir, Stem(output)+"_images.txt")
	if err := os.WriteFile(list, []byte(ConcatList(entries)), 0644); err != nil {
		return fmt.Errorf("failed to write image list: %w", err)
	}
	if !opts.KeepList {
		defer os.Remove(list)
	}

	args := []string{
		"-y",
		"-r", strconv.Itoa(opts.FrameRate),
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-crf", strconv.Itoa(opts.CRF),
		"-preset", opts.Preset,
		"-metadata", "creation_time=" + created.UTC().Format(time.RFC3339Nano),
		"-progress", "-",
		"-nostats",
		output,
	}

	if err := t.runFFmpeg(ctx, "Join images", len(images), args); err != nil {
		return fmt.Errorf("failed to join images into %s: %w", output, err)
	}
	return nil
}

// runFFmpeg runs ffmpeg with -progress output on stdout, following the
// reported frame number.
func (t *Tools) runFFmpeg(ctx context.Context, desc string, total int, args []string) error {
	t.Log.Debug().Str("cmd", t.FFmpeg).Strs("args", args).Msg("running ffmpeg")

	var bar *progressbar.ProgressBar
	if t.Progress {
		bar = progressbar.Default(int64(total), desc)
	}

	last := 0
	err := t.Runner.Stream(ctx, func(line string) {
		frame, ok := ParseProgressFrame(line)
		if !ok {
			return
		}
		last = frame
		if bar != nil {
			_ = bar.Set(frame)
		}
	}, t.FFmpeg, args...)

	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	t.Log.Debug().Int("frames", last).Int("expected", total).Msg("ffmpeg finished")
	return nil
}

// ParseProgressFrame reads the frame counter from a line of ffmpeg -progress output.
func ParseProgressFrame(line string) (int, bool) {
	value, ok := strings.CutPrefix(strings.TrimSpace(line), "frame=")
	if !ok {
		return 0, false
	}
	frame, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return frame, true
}
