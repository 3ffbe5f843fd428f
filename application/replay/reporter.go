package replay

import (
	"errors"
	"log/slog"

	"replaycut/domain/video"
)

// JobReporter receives the outcome of every trim job. Jobs run concurrently,
// so implementations must be safe for concurrent use.
type JobReporter interface {
	Succeeded(result JobResult)
	Failed(path string, seconds int, err error)
}

// LogReporter reports job outcomes through slog
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a new LogReporter
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Succeeded implements JobReporter
func (r *LogReporter) Succeeded(result JobResult) {
	attrs := []any{
		"source", result.SourcePath,
		"output", result.OutputPath,
		"seconds", result.Duration,
		"original_kept", result.OriginalKept,
		"elapsed", result.Elapsed,
	}
	if result.ShareURL != "" {
		attrs = append(attrs, "url", result.ShareURL)
	}
	r.logger.Info("segment saved", attrs...)
}

// Failed implements JobReporter
func (r *LogReporter) Failed(path string, seconds int, err error) {
	attrs := []any{"source", path, "seconds", seconds, "error", err}

	var trimErr *video.TrimError
	if errors.As(err, &trimErr) {
		attrs = append(attrs, "stage", string(trimErr.Stage))
	}
	r.logger.Error("segment trim failed, original kept", attrs...)
}

// MultiReporter fans job outcomes out to several reporters
type MultiReporter []JobReporter

// Succeeded implements JobReporter
func (m MultiReporter) Succeeded(result JobResult) {
	for _, r := range m {
		r.Succeeded(result)
	}
}

// Failed implements JobReporter
func (m MultiReporter) Failed(path string, seconds int, err error) {
	for _, r := range m {
		r.Failed(path, seconds, err)
	}
}

// Ensure reporters implement JobReporter
var (
	_ JobReporter = (*LogReporter)(nil)
	_ JobReporter = MultiReporter(nil)
)
