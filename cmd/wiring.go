package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	appdistribution "replaycut/application/distribution"
	appreplay "replaycut/application/replay"
	appvideo "replaycut/application/video"
	"replaycut/domain/video"
	"replaycut/infrastructure/config"
	"replaycut/infrastructure/drive"
	"replaycut/infrastructure/ffmpeg"
	"replaycut/infrastructure/filesystem"
	"replaycut/infrastructure/logging"
	"replaycut/infrastructure/mp4"
	"replaycut/infrastructure/obs"
)

// newLogger builds the process logger from the logging section
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	return logging.New(cfg.Logging.Level, cfg.Logging.File, os.Stderr)
}

// newTrimmer returns the native MP4 engine with ffmpeg for every other container
func newTrimmer(cfg *config.Config, logger *slog.Logger) video.Trimmer {
	native := appvideo.NewEngine(mp4.NewContainer(), appvideo.WithLogger(logger))
	fallback := ffmpeg.NewTrimmer(ffmpeg.WithFFmpegPath(cfg.Trim.FFmpegPath))
	return appvideo.NewFormatRouter(native, fallback)
}

func newTrimService(cfg *config.Config, logger *slog.Logger) *appvideo.TrimService {
	return appvideo.NewTrimService(
		newTrimmer(cfg, logger),
		filesystem.NewChecker(),
		filesystem.NewRemover(),
		cfg.Trim.Suffix,
		logger,
	)
}

// newPublisher returns nil when Drive publishing is disabled
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger, prompt io.Writer) (appreplay.ClipPublisher, error) {
	if !cfg.Drive.Enabled {
		return nil, nil
	}

	var (
		client *drive.Client
		err    error
	)
	if cfg.Drive.TokenFile != "" {
		client, err = drive.NewClientWithOAuth(ctx, drive.OAuthConfig{
			CredentialsFile: cfg.Drive.CredentialsFile,
			TokenFile:       cfg.Drive.TokenFile,
			Prompt:          prompt,
		})
	} else {
		client, err = drive.NewClient(ctx, cfg.Drive.CredentialsFile)
	}
	if err != nil {
		return nil, err
	}

	return appdistribution.NewPublishService(client, cfg.Drive.FolderID, cfg.Drive.SharePublicly, logger), nil
}

// connectSession wires production dependencies for save and watch.
// The returned host must be closed by the caller.
func connectSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (SessionDeps, *obs.Host, error) {
	presets, err := cfg.BuildPresets()
	if err != nil {
		return SessionDeps{}, nil, err
	}

	publisher, err := newPublisher(ctx, cfg, logger, out)
	if err != nil {
		return SessionDeps{}, nil, err
	}

	host, err := obs.Connect(cfg.OBS.Address, cfg.OBS.Password, logger)
	if err != nil {
		return SessionDeps{}, nil, err
	}

	return SessionDeps{
		Host:         host,
		Trimmer:      newTrimService(cfg, logger),
		Publisher:    publisher,
		Presets:      presets,
		KeepOriginal: cfg.Trim.KeepOriginal,
		Logger:       logger,
	}, host, nil
}
