package video

import (
	"context"
	"fmt"
	"log/slog"

	"replaycut/domain/video"
)

// TrimResult contains the result of a trim operation
type TrimResult struct {
	OutputPath   string
	SourcePath   string
	Duration     int
	OriginalKept bool
	RemoveFailed error // set when the trim succeeded but the original could not be deleted
}

// TrimService coordinates trimming a saved recording down to its tail and
// replacing the original with the trimmed file
type TrimService struct {
	trimmer     video.Trimmer
	fileChecker video.FileChecker
	remover     video.FileRemover
	suffix      string
	logger      *slog.Logger
}

// NewTrimService creates a new TrimService. An empty suffix uses video.DefaultTrimSuffix.
func NewTrimService(trimmer video.Trimmer, fileChecker video.FileChecker, remover video.FileRemover, suffix string, logger *slog.Logger) *TrimService {
	if suffix == "" {
		suffix = video.DefaultTrimSuffix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TrimService{
		trimmer:     trimmer,
		fileChecker: fileChecker,
		remover:     remover,
		suffix:      suffix,
		logger:      logger,
	}
}

// TrimInput represents the input for a trim operation
type TrimInput struct {
	SourcePath   string
	Duration     int  // seconds to keep
	KeepOriginal bool // leave the untrimmed source in place
}

// Trim keeps the last input.Duration seconds of the source. The source is
// removed only after the trimmed file was completely written.
func (s *TrimService) Trim(ctx context.Context, input TrimInput) (*TrimResult, error) {
	req, err := video.NewTrimRequest(input.SourcePath, input.Duration)
	if err != nil {
		return nil, err
	}

	// Verify source file exists
	if !s.fileChecker.Exists(req.SourcePath) {
		return nil, fmt.Errorf("source file does not exist: %s", req.SourcePath)
	}

	outputPath := req.OutputPath(s.suffix)
	if err := s.trimmer.Trim(ctx, req, outputPath); err != nil {
		return nil, err
	}

	result := &TrimResult{
		OutputPath:   outputPath,
		SourcePath:   req.SourcePath,
		Duration:     req.Duration,
		OriginalKept: true,
	}

	if input.KeepOriginal {
		return result, nil
	}

	if err := s.remover.Remove(req.SourcePath); err != nil {
		s.logger.Warn("trimmed file written but original could not be removed",
			"source", req.SourcePath, "output", outputPath, "error", err)
		result.RemoveFailed = err
		return result, nil
	}

	result.OriginalKept = false
	return result, nil
}

// TrimFromString parses a user supplied duration ("30", "5m", "00:01:30") and trims
func (s *TrimService) TrimFromString(ctx context.Context, sourcePath, duration string, keepOriginal bool) (*TrimResult, error) {
	seconds, err := video.ParseDuration(duration)
	if err != nil {
		return nil, err
	}
	return s.Trim(ctx, TrimInput{
		SourcePath:   sourcePath,
		Duration:     seconds,
		KeepOriginal: keepOriginal,
	})
}
