package video

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultTrimSuffix is inserted before the extension of a trimmed file
const DefaultTrimSuffix = "_trimmed"

// TrimRequest represents a request to keep only the last Duration seconds of a video
type TrimRequest struct {
	SourcePath string
	Duration   int // seconds
}

// NewTrimRequest creates a new TrimRequest and validates it
func NewTrimRequest(sourcePath string, seconds int) (*TrimRequest, error) {
	req := &TrimRequest{
		SourcePath: sourcePath,
		Duration:   seconds,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks that the trim request is valid
func (r *TrimRequest) Validate() error {
	if r.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}

	if r.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %d seconds", r.Duration)
	}

	return nil
}

// OutputPath returns the path of the trimmed file next to the source.
// An empty suffix falls back to DefaultTrimSuffix.
func (r *TrimRequest) OutputPath(suffix string) string {
	return TrimmedPath(r.SourcePath, suffix)
}

// TrimmedPath inserts suffix immediately before the final extension of path,
// or appends it when path has no extension: clip.mp4 -> clip_trimmed.mp4
func TrimmedPath(path, suffix string) string {
	if suffix == "" {
		suffix = DefaultTrimSuffix
	}

	ext := filepath.Ext(path)
	if ext == "" || ext == filepath.Base(path) {
		return path + suffix
	}

	return strings.TrimSuffix(path, ext) + suffix + ext
}
