package replay

import (
	"context"
	"log/slog"
	"time"

	appvideo "replaycut/application/video"
	"replaycut/domain/distribution"
)

// Trimmer is the part of the trim use case a job needs
type Trimmer interface {
	Trim(ctx context.Context, input appvideo.TrimInput) (*appvideo.TrimResult, error)
}

// ClipPublisher uploads a finished clip
type ClipPublisher interface {
	Publish(ctx context.Context, path string) (*distribution.UploadResult, error)
}

// JobResult describes a finished trim job
type JobResult struct {
	SourcePath   string
	OutputPath   string
	Duration     int
	OriginalKept bool
	ShareURL     string
	Elapsed      time.Duration
}

// TrimJob trims one saved replay, removes the original on success and
// optionally publishes the result
type TrimJob struct {
	trimmer      Trimmer
	publisher    ClipPublisher
	reporter     JobReporter
	keepOriginal bool
	logger       *slog.Logger
	now          func() time.Time
}

// JobOption is a functional option for configuring TrimJob
type JobOption func(*TrimJob)

// WithPublisher publishes every trimmed clip through p
func WithPublisher(p ClipPublisher) JobOption {
	return func(j *TrimJob) {
		j.publisher = p
	}
}

// WithKeepOriginal leaves the untrimmed replay in place
func WithKeepOriginal(keep bool) JobOption {
	return func(j *TrimJob) {
		j.keepOriginal = keep
	}
}

// WithJobLogger sets the logger for publish warnings
func WithJobLogger(logger *slog.Logger) JobOption {
	return func(j *TrimJob) {
		j.logger = logger
	}
}

// NewTrimJob creates a TrimJob reporting to reporter
func NewTrimJob(trimmer Trimmer, reporter JobReporter, opts ...JobOption) *TrimJob {
	j := &TrimJob{
		trimmer:  trimmer,
		reporter: reporter,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Run implements Runner
func (j *TrimJob) Run(ctx context.Context, path string, seconds int) {
	start := j.now()

	result, err := j.trimmer.Trim(ctx, appvideo.TrimInput{
		SourcePath:   path,
		Duration:     seconds,
		KeepOriginal: j.keepOriginal,
	})
	if err != nil {
		j.reporter.Failed(path, seconds, err)
		return
	}

	jr := JobResult{
		SourcePath:   result.SourcePath,
		OutputPath:   result.OutputPath,
		Duration:     result.Duration,
		OriginalKept: result.OriginalKept,
	}

	if j.publisher != nil {
		up, err := j.publisher.Publish(ctx, result.OutputPath)
		if err != nil {
			j.logger.Warn("clip kept locally, publish failed", "path", result.OutputPath, "error", err)
		} else {
			jr.ShareURL = up.ShareableURL
		}
	}

	jr.Elapsed = j.now().Sub(start)
	j.reporter.Succeeded(jr)
}

// Ensure TrimJob implements Runner
var _ Runner = (*TrimJob)(nil)
