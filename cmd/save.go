package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	savePreset  int
	saveFull    bool
	saveTimeout time.Duration
	saveGrace   time.Duration
)

var saveCmd = &cobra.Command{
	Use:   "save [duration]",
	Short: "Save the last part of the replay buffer",
	Long: `Ask OBS to save its replay buffer and keep only the last part of it.

The duration may be plain seconds, HH:MM:SS, or a value like 5m. It must not
exceed the replay buffer length configured in OBS. Use --preset to pick one of
the configured lengths (1 is the shortest) or --full to keep the whole buffer.

Example:
  replaycut save 30
  replaycut save 5m
  replaycut save --preset 2
  replaycut save --full`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().IntVar(&savePreset, "preset", 0, "Save the length at this 1-based preset position")
	saveCmd.Flags().BoolVar(&saveFull, "full", false, "Save the whole replay buffer without trimming")
	saveCmd.Flags().DurationVar(&saveTimeout, "timeout", 30*time.Second, "How long to wait for OBS to write the replay")
	saveCmd.Flags().DurationVar(&saveGrace, "grace", 2*time.Minute, "How long to wait for the trim after an interrupt")
}

func runSave(cmd *cobra.Command, args []string) error {
	req, err := saveRequestFromFlags(args, savePreset, saveFull)
	if err != nil {
		return err
	}

	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	deps, host, err := connectSession(cmd.Context(), cfg, logger, os.Stdout)
	if err != nil {
		return err
	}
	defer host.Close()

	return RunSaveWithDependencies(cmd.Context(), deps, req, saveTimeout, saveGrace, os.Stdout)
}

// saveRequestFromFlags accepts exactly one of a duration argument, --preset or --full
func saveRequestFromFlags(args []string, preset int, full bool) (SaveRequest, error) {
	given := 0
	if len(args) == 1 {
		given++
	}
	if preset != 0 {
		given++
	}
	if full {
		given++
	}
	if given != 1 {
		return SaveRequest{}, fmt.Errorf("specify exactly one of a duration, --preset or --full")
	}

	switch {
	case full:
		return SaveRequest{Full: true}, nil
	case preset != 0:
		if preset < 0 {
			return SaveRequest{}, fmt.Errorf("--preset must be 1 or greater")
		}
		return SaveRequest{Preset: preset}, nil
	default:
		req, err := ParseSaveRequest(args[0])
		if err != nil {
			return SaveRequest{}, err
		}
		return req, nil
	}
}

// RunSaveWithDependencies issues one request, waits for OBS to write the
// replay and then for the trim it triggers (for testing)
func RunSaveWithDependencies(
	ctx context.Context,
	deps SessionDeps,
	req SaveRequest,
	timeout time.Duration,
	grace time.Duration,
	output OutputWriter,
) error {
	s, err := startSession(ctx, deps, output)
	if err != nil {
		return err
	}

	if err := s.request(req); err != nil {
		s.close(ctx)
		return errors.New(userError(err))
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event := <-s.saved:
		if req.Full {
			fmt.Fprintf(output, "Saved full replay: %s\n", event.Path)
		}
	case <-timer.C:
		s.close(ctx)
		return fmt.Errorf("timed out after %s waiting for OBS to save the replay buffer", timeout)
	case <-ctx.Done():
		s.close(ctx)
		return ctx.Err()
	}

	closeCtx, cancel := graceContext(ctx, grace)
	defer cancel()
	if err := s.close(closeCtx); err != nil {
		return fmt.Errorf("trim did not finish: %w", err)
	}

	if s.reporter.failures() > 0 {
		return fmt.Errorf("trim failed, the full replay was kept")
	}
	return nil
}

// graceContext bounds the wait for running trims. While ctx is live the wait
// is unbounded; once ctx is cancelled the jobs get grace to finish.
func graceContext(ctx context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	waitCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, func() {
		t := time.AfterFunc(grace, cancel)
		context.AfterFunc(waitCtx, func() { t.Stop() })
	})
	return waitCtx, func() {
		stop()
		cancel()
	}
}
