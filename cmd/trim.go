package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	appvideo "replaycut/application/video"
	"replaycut/domain/video"
	"replaycut/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	trimSourcePath   string
	trimLast         string
	trimKeepOriginal bool
)

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Keep the last part of an existing recording",
	Long: `Trim an existing recording to its last part without re-encoding.

MP4 and MOV files are cut natively at the keyframe at or before the cut point.
Other containers are remuxed with ffmpeg. The output is written next to the
source with the configured suffix before the extension, and the source is
removed unless --keep-original is given.

Example:
  replaycut trim --source "/videos/Replay 2025-12-28 10-06-16.mp4" --last 30s
  replaycut trim --source clip.mkv --last 00:05:00 --keep-original`,
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)
	trimCmd.Flags().StringVar(&trimSourcePath, "source", "", "Path to source video file (required)")
	trimCmd.Flags().StringVar(&trimLast, "last", "", "Length to keep from the end: seconds, HH:MM:SS or e.g. 5m (required)")
	trimCmd.Flags().BoolVar(&trimKeepOriginal, "keep-original", false, "Do not remove the source after trimming")
	trimCmd.MarkFlagRequired("source")
	trimCmd.MarkFlagRequired("last")
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	return RunTrimWithDependencies(
		cmd.Context(),
		newTrimmer(cfg, logger),
		filesystem.NewChecker(),
		filesystem.NewRemover(),
		cfg.Trim.Suffix,
		trimSourcePath,
		trimLast,
		trimKeepOriginal || cfg.Trim.KeepOriginal,
		logger,
		os.Stdout,
	)
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// RunTrimWithDependencies runs the trim command with injected dependencies (for testing)
func RunTrimWithDependencies(
	ctx context.Context,
	trimmer video.Trimmer,
	fileChecker video.FileChecker,
	remover video.FileRemover,
	suffix string,
	sourcePath string,
	last string,
	keepOriginal bool,
	logger *slog.Logger,
	output OutputWriter,
) error {
	// Only the trimmer that will handle this source needs its tools installed
	selected := trimmer
	if router, ok := trimmer.(interface{ For(string) video.Trimmer }); ok {
		selected = router.For(sourcePath)
	}
	if verifiable, ok := selected.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	service := appvideo.NewTrimService(trimmer, fileChecker, remover, suffix, logger)

	seconds, err := video.ParseDuration(last)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Keeping the last %s of %s...\n", video.FormatDuration(seconds), sourcePath)

	result, err := service.Trim(ctx, appvideo.TrimInput{
		SourcePath:   sourcePath,
		Duration:     seconds,
		KeepOriginal: keepOriginal,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Successfully created: %s\n", result.OutputPath)
	switch {
	case result.RemoveFailed != nil:
		fmt.Fprintf(output, "Warning: could not remove %s: %v\n", result.SourcePath, result.RemoveFailed)
	case !result.OriginalKept:
		fmt.Fprintf(output, "Removed original: %s\n", result.SourcePath)
	}
	return nil
}
