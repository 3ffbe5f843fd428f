package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"replaycut/domain/video"

	"github.com/spf13/cobra"
)

var watchGrace time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay connected to OBS and save segments on request",
	Long: `Stay connected to OBS and read save requests from standard input, one per line:

  30, 5m, 00:01:30   save the last part of the replay buffer
  p2                 save the length at preset position 2
  full               save the whole replay buffer
  presets            list the presets
  quit               stop

Saves triggered from OBS itself (hotkey or button) are kept untrimmed.
Ctrl+C stops watching and waits for running trims.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchGrace, "grace", 2*time.Minute, "How long to wait for running trims after an interrupt")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	return RunWatchWithDependencies(cmd.Context(), deps, os.Stdin, watchGrace, os.Stdout)
}

// RunWatchWithDependencies reads requests from input until it ends, "quit"
// is entered or ctx is cancelled, then waits for running trims (for testing)
func RunWatchWithDependencies(
	ctx context.Context,
	deps SessionDeps,
	input io.Reader,
	grace time.Duration,
	output OutputWriter,
) error {
	s, err := startSession(ctx, deps, output)
	if err != nil {
		return err
	}

	lines := make(chan string)
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stopped:
				return
			}
		}
	}()

	fmt.Fprintln(output, "Watching the replay buffer. Enter a duration, p<N>, full, presets or quit.")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if !handleWatchLine(s, deps, strings.TrimSpace(line), output) {
				break loop
			}
		}
	}

	if n := s.executor.Running(); n > 0 {
		fmt.Fprintf(output, "Waiting for %d running trim(s)...\n", n)
	}
	closeCtx, cancel := graceContext(ctx, grace)
	defer cancel()
	if err := s.close(closeCtx); err != nil {
		return fmt.Errorf("trims did not finish: %w", err)
	}
	return nil
}

// handleWatchLine returns false when the user asked to stop
func handleWatchLine(s *session, deps SessionDeps, line string, output OutputWriter) bool {
	switch strings.ToLower(line) {
	case "":
		return true
	case "quit", "exit", "q":
		return false
	case "presets":
		for i, v := range deps.Presets.Values() {
			fmt.Fprintf(output, "  p%d  %s\n", i+1, video.FormatDuration(v))
		}
		return true
	}

	req, err := ParseSaveRequest(line)
	if err != nil {
		fmt.Fprintf(output, "Error: %v\n", err)
		return true
	}
	if err := s.request(req); err != nil {
		fmt.Fprintf(output, "Error: %s\n", userError(err))
	}
	return true
}
