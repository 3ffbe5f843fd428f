package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	appreplay "replaycut/application/replay"
	"replaycut/domain/replay"
	"replaycut/domain/video"
)

// ReplayHost is a replay.Host that delivers save events
type ReplayHost interface {
	replay.Host
	Subscribe(observer replay.SaveObserver) error
}

// SessionDeps holds what a save or watch session runs on
type SessionDeps struct {
	Host         ReplayHost
	Trimmer      appreplay.Trimmer
	Publisher    appreplay.ClipPublisher
	Presets      replay.Presets
	KeepOriginal bool
	Logger       *slog.Logger
}

// SaveRequest is one user request: a duration, a 1-based preset or a full save
type SaveRequest struct {
	Seconds int
	Preset  int
	Full    bool
}

var presetRegex = regexp.MustCompile(`^[pP](\d+)$`)

// ParseSaveRequest parses "full", "p2" or a duration such as "30", "5m" or "00:01:30"
func ParseSaveRequest(s string) (SaveRequest, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "full") {
		return SaveRequest{Full: true}, nil
	}
	if m := presetRegex.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return SaveRequest{}, fmt.Errorf("invalid preset %q", s)
		}
		return SaveRequest{Preset: n}, nil
	}

	seconds, err := video.ParseDuration(s)
	if err != nil {
		return SaveRequest{}, err
	}
	return SaveRequest{Seconds: seconds}, nil
}

// session connects a coordinator to the host and runs trims on an executor
type session struct {
	coordinator *appreplay.Coordinator
	executor    *appreplay.Executor
	reporter    *cliReporter
	saved       chan replay.SaveCompleted
	out         OutputWriter
}

// startSession subscribes to the host. Jobs run under a context that is not
// cancelled with ctx so that an interrupt still lets them finish during close.
func startSession(ctx context.Context, deps SessionDeps, out OutputWriter) (*session, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reporter := &cliReporter{out: out}
	opts := []appreplay.JobOption{
		appreplay.WithKeepOriginal(deps.KeepOriginal),
		appreplay.WithJobLogger(logger),
	}
	if deps.Publisher != nil {
		opts = append(opts, appreplay.WithPublisher(deps.Publisher))
	}
	job := appreplay.NewTrimJob(deps.Trimmer, appreplay.MultiReporter{appreplay.NewLogReporter(logger), reporter}, opts...)

	s := &session{
		executor: appreplay.NewExecutor(context.WithoutCancel(ctx), job, logger),
		reporter: reporter,
		saved:    make(chan replay.SaveCompleted, 1),
		out:      out,
	}
	s.coordinator = appreplay.NewCoordinator(deps.Host, deps.Presets, s.executor, logger)

	if err := deps.Host.Subscribe(s); err != nil {
		return nil, fmt.Errorf("failed to subscribe to replay events: %w", err)
	}
	return s, nil
}

// OnSaveCompleted implements replay.SaveObserver. The coordinator dispatches
// the trim before waiters are signalled.
func (s *session) OnSaveCompleted(event replay.SaveCompleted) {
	s.coordinator.OnSaveCompleted(event)
	select {
	case s.saved <- event:
	default:
	}
}

// request issues req and tells the user what was asked for
func (s *session) request(req SaveRequest) error {
	switch {
	case req.Full:
		if err := s.coordinator.RequestFullSave(); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Saving the full replay buffer...")
	case req.Preset > 0:
		seconds, err := s.coordinator.Presets().At(req.Preset)
		if err != nil {
			return err
		}
		if err := s.coordinator.RequestPresetSave(req.Preset); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Saving last %s (preset %d)...\n", video.FormatDuration(seconds), req.Preset)
	default:
		if err := s.coordinator.RequestSegmentSave(req.Seconds); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Saving last %s...\n", video.FormatDuration(req.Seconds))
	}
	return nil
}

// close waits for running trims until ctx expires
func (s *session) close(ctx context.Context) error {
	return s.executor.Shutdown(ctx)
}

// cliReporter prints job outcomes for the user
type cliReporter struct {
	mu     sync.Mutex
	out    OutputWriter
	failed int
}

// Succeeded implements appreplay.JobReporter
func (r *cliReporter) Succeeded(result appreplay.JobResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "Saved last %s: %s\n", video.FormatDuration(result.Duration), result.OutputPath)
	if result.ShareURL != "" {
		fmt.Fprintf(r.out, "  Shared at: %s\n", result.ShareURL)
	}
}

// Failed implements appreplay.JobReporter
func (r *cliReporter) Failed(path string, seconds int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failed++
	fmt.Fprintf(r.out, "Could not trim %s to the last %s, full replay kept: %v\n", path, video.FormatDuration(seconds), err)
}

func (r *cliReporter) failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// userError turns expected request errors into short messages
func userError(err error) string {
	var exceeds *replay.ExceedsBufferError
	switch {
	case errors.As(err, &exceeds):
		return fmt.Sprintf("Cannot save %s: the replay buffer only holds %s. Increase it in OBS (Settings > Output > Replay Buffer).",
			video.FormatDuration(exceeds.Requested), video.FormatDuration(exceeds.BufferLength))
	case errors.Is(err, replay.ErrNotActive):
		return "The replay buffer is not running. Start it in OBS first."
	default:
		return err.Error()
	}
}

// Ensure session types implement their interfaces
var (
	_ replay.SaveObserver   = (*session)(nil)
	_ appreplay.JobReporter = (*cliReporter)(nil)
)
