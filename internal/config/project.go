package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidProject is returned when a project file fails validation.
var ErrInvalidProject = errors.New("invalid project")

// Project describes one batch run: which videos to cut, which GPX track
// they were recorded along and how to line the two up.
type Project struct {
	ProjectName string `json:"project_name"`

	// VideoFiles are file names or glob patterns.
	VideoFiles []string `json:"video_files" validate:"min=1,dive,required"`

	// OriginalFilesFolder holds the camera's original recordings, named
	// <video stem>.360, whose embedded GPS time marks when each video starts.
	// When empty the container creation time is used instead.
	OriginalFilesFolder string `json:"original_files_folder"`

	GPXFile      string `json:"gpx_file" validate:"required"`
	OutputFolder string `json:"output_folder" validate:"required"`

	FrameDistanceMeters float64 `json:"frame_distance_meters" validate:"gt=0"`
	KeepDebugFiles      bool    `json:"keep_debug_files"`

	VideoTimeShiftSeconds    float64 `json:"video_time_shift_seconds"`
	VideoCutBeginningSeconds float64 `json:"video_cut_beginning_seconds" validate:"min=0"`
	VideoCutEndSeconds       float64 `json:"video_cut_end_seconds" validate:"min=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by the names used in the file
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadProject reads a project file. Relative paths inside it are resolved
// against the directory containing the file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p.resolve(filepath.Dir(path))
	return &p, nil
}

// Validate checks the project against its field rules.
func (p *Project) Validate() error {
	if err := validate.Struct(p); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidProject, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func (p *Project) resolve(dir string) {
	// ffmpeg resolves paths in its list files against the list's own
	// directory, so everything handed on must be absolute.
	abs := func(path string) string {
		if path == "" {
			return path
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if a, err := filepath.Abs(path); err == nil {
			return a
		}
		return path
	}

	p.GPXFile = abs(p.GPXFile)
	p.OutputFolder = abs(p.OutputFolder)
	p.OriginalFilesFolder = abs(p.OriginalFilesFolder)
	for i, pattern := range p.VideoFiles {
		p.VideoFiles[i] = abs(pattern)
	}
}

// Videos expands VideoFiles into the list of existing files, without
// duplicates, sorted by path.
func (p *Project) Videos() ([]string, error) {
	seen := make(map[string]bool)
	var videos []string
	for _, pattern := range p.VideoFiles {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad video pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				videos = append(videos, m)
			}
		}
	}
	sort.Strings(videos)
	return videos, nil
}

// OriginalFile returns the camera original for video, or "" when the project
// has no originals folder.
func (p *Project) OriginalFile(video string) string {
	if p.OriginalFilesFolder == "" {
		return ""
	}
	base := filepath.Base(video)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.OriginalFilesFolder, stem+".360")
}

// OutputName is the base name shared by the GPX and video written for video.
func (p *Project) OutputName(video string) string {
	base := filepath.Base(video)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if p.ProjectName == "" {
		return stem
	}
	return stem + "_" + p.ProjectName
}

// Spacing is the distance between extracted frames.
func (p *Project) Spacing() decimal.Decimal {
	return decimal.NewFromFloat(p.FrameDistanceMeters)
}

// TimeShift is added to a video's start time to line it up with the track.
func (p *Project) TimeShift() time.Duration { return seconds(p.VideoTimeShiftSeconds) }

func (p *Project) CutBeginning() time.Duration { return seconds(p.VideoCutBeginningSeconds) }

func (p *Project) CutEnd() time.Duration { return seconds(p.VideoCutEndSeconds) }

func seconds(s float64) time.Duration {
	return time.Duration(decimal.NewFromFloat(s).Shift(9).Round(0).IntPart())
}
