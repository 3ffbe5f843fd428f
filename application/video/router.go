package video

import (
	"context"
	"path/filepath"
	"strings"

	"replaycut/domain/video"
)

// NativeExtensions are the containers trimmed in-process
var NativeExtensions = []string{".mp4", ".m4v", ".mov"}

// FormatRouter picks a trimmer by source extension: the native engine for
// ISO-BMFF files, an external fallback for everything else OBS can record
// (mkv, flv, ts, ...).
//
// Only the native engine rebases each stream on its own first retained
// packet. The ffmpeg fallback shifts all streams by one global offset, so a
// stream that starts late in the source keeps its gap in the output.
type FormatRouter struct {
	native     video.Trimmer
	fallback   video.Trimmer
	nativeExts map[string]bool
}

// NewFormatRouter creates a router. A nil fallback makes the native trimmer
// handle every format.
func NewFormatRouter(native, fallback video.Trimmer) *FormatRouter {
	exts := make(map[string]bool, len(NativeExtensions))
	for _, ext := range NativeExtensions {
		exts[ext] = true
	}
	return &FormatRouter{native: native, fallback: fallback, nativeExts: exts}
}

// Trim implements video.Trimmer
func (r *FormatRouter) Trim(ctx context.Context, req *video.TrimRequest, outputPath string) error {
	return r.For(req.SourcePath).Trim(ctx, req, outputPath)
}

// For returns the trimmer that handles path
func (r *FormatRouter) For(path string) video.Trimmer {
	if r.fallback == nil || r.nativeExts[strings.ToLower(filepath.Ext(path))] {
		return r.native
	}
	return r.fallback
}

// Ensure FormatRouter implements video.Trimmer
var _ video.Trimmer = (*FormatRouter)(nil)
