//go:build integration

package steps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	appvideo "replaycut/application/video"
	"replaycut/cmd"
	"replaycut/domain/replay"
	"replaycut/domain/video"

	"github.com/cucumber/godog"
)

// saveMockHost plays OBS: a save request completes by emitting the event
// from another goroutine, as obs-websocket does
type saveMockHost struct {
	mu        sync.Mutex
	active    bool
	length    int
	savePath  string
	triggered int
	observer  replay.SaveObserver
}

func (h *saveMockHost) IsCaptureActive() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active, nil
}

func (h *saveMockHost) CurrentBufferLengthSeconds() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.length, nil
}

func (h *saveMockHost) LastSavedPath() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.savePath, nil
}

func (h *saveMockHost) TriggerSaveNow() error {
	h.mu.Lock()
	h.triggered++
	observer, path := h.observer, h.savePath
	h.mu.Unlock()

	go observer.OnSaveCompleted(replay.SaveCompleted{Path: path, At: time.Now()})
	return nil
}

func (h *saveMockHost) Subscribe(observer replay.SaveObserver) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observer = observer
	return nil
}

// saveMockTrimService records trims run by save jobs
type saveMockTrimService struct {
	mu     sync.Mutex
	inputs []appvideo.TrimInput
	err    error
}

func (s *saveMockTrimService) Trim(ctx context.Context, input appvideo.TrimInput) (*appvideo.TrimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return &appvideo.TrimResult{
		SourcePath: input.SourcePath,
		OutputPath: video.TrimmedPath(input.SourcePath, video.DefaultTrimSuffix),
		Duration:   input.Duration,
	}, nil
}

// lockedBuffer collects output written by concurrent jobs
type lockedBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

type saveContext struct {
	host    *saveMockHost
	trimmer *saveMockTrimService
	output  *lockedBuffer
	err     error
}

func InitializeSaveScenario(ctx *godog.ScenarioContext) {
	s := &saveContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		*s = saveContext{
			host:    &saveMockHost{},
			trimmer: &saveMockTrimService{},
			output:  &lockedBuffer{},
		}
		return c, nil
	})

	ctx.Step(`^the replay buffer is active with a length of (\d+) seconds$`, s.theReplayBufferIsActive)
	ctx.Step(`^the replay buffer is stopped$`, s.theReplayBufferIsStopped)
	ctx.Step(`^OBS saves replays to "([^"]*)"$`, s.obsSavesReplaysTo)
	ctx.Step(`^the clip trim fails with "([^"]*)"$`, s.theClipTrimFailsWith)
	ctx.Step(`^I save the last "([^"]*)"$`, s.iSaveTheLast)
	ctx.Step(`^I save preset (\d+)$`, s.iSavePreset)
	ctx.Step(`^I save the full replay buffer$`, s.iSaveTheFullReplayBuffer)
	ctx.Step(`^I attempt to save the last "([^"]*)"$`, s.iAttemptToSaveTheLast)
	ctx.Step(`^the saved replay should be trimmed to (\d+) seconds$`, s.theSavedReplayShouldBeTrimmedTo)
	ctx.Step(`^no trim should have run$`, s.noTrimShouldHaveRun)
	ctx.Step(`^OBS should not have been asked to save$`, s.obsShouldNotHaveBeenAskedToSave)
	ctx.Step(`^the save output should contain "([^"]*)"$`, s.theSaveOutputShouldContain)
	ctx.Step(`^the save should fail with "([^"]*)"$`, s.theSaveShouldFailWith)
}

func (s *saveContext) theReplayBufferIsActive(seconds int) error {
	s.host.active = true
	s.host.length = seconds
	return nil
}

func (s *saveContext) theReplayBufferIsStopped() error {
	s.host.active = false
	return nil
}

func (s *saveContext) obsSavesReplaysTo(path string) error {
	s.host.savePath = path
	return nil
}

func (s *saveContext) theClipTrimFailsWith(msg string) error {
	s.trimmer.err = fmt.Errorf("%s", msg)
	return nil
}

func (s *saveContext) run(req cmd.SaveRequest) error {
	deps := cmd.SessionDeps{
		Host:    s.host,
		Trimmer: s.trimmer,
		Presets: replay.DefaultPresets(),
		Logger:  slog.New(slog.DiscardHandler),
	}
	return cmd.RunSaveWithDependencies(context.Background(), deps, req, 2*time.Second, 2*time.Second, s.output)
}

func (s *saveContext) iSaveTheLast(value string) error {
	req, err := cmd.ParseSaveRequest(value)
	if err != nil {
		return err
	}
	if err := s.run(req); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func (s *saveContext) iSavePreset(n int) error {
	if err := s.run(cmd.SaveRequest{Preset: n}); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func (s *saveContext) iSaveTheFullReplayBuffer() error {
	if err := s.run(cmd.SaveRequest{Full: true}); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func (s *saveContext) iAttemptToSaveTheLast(value string) error {
	req, err := cmd.ParseSaveRequest(value)
	if err != nil {
		s.err = err
		return nil
	}
	s.err = s.run(req)
	return nil
}

func (s *saveContext) theSavedReplayShouldBeTrimmedTo(seconds int) error {
	s.trimmer.mu.Lock()
	defer s.trimmer.mu.Unlock()

	if len(s.trimmer.inputs) != 1 {
		return fmt.Errorf("expected 1 trim, got %d", len(s.trimmer.inputs))
	}
	in := s.trimmer.inputs[0]
	if in.SourcePath != s.host.savePath {
		return fmt.Errorf("trimmed %q, want %q", in.SourcePath, s.host.savePath)
	}
	if in.Duration != seconds {
		return fmt.Errorf("trimmed to %d seconds, want %d", in.Duration, seconds)
	}
	return nil
}

func (s *saveContext) noTrimShouldHaveRun() error {
	s.trimmer.mu.Lock()
	defer s.trimmer.mu.Unlock()
	if len(s.trimmer.inputs) != 0 {
		return fmt.Errorf("expected no trim, got %d", len(s.trimmer.inputs))
	}
	return nil
}

func (s *saveContext) obsShouldNotHaveBeenAskedToSave() error {
	if s.host.triggered != 0 {
		return fmt.Errorf("OBS was asked to save %d times", s.host.triggered)
	}
	return nil
}

func (s *saveContext) theSaveOutputShouldContain(text string) error {
	if !strings.Contains(s.output.String(), text) {
		return fmt.Errorf("output %q does not contain %q", s.output.String(), text)
	}
	return nil
}

func (s *saveContext) theSaveShouldFailWith(text string) error {
	if s.err == nil {
		return fmt.Errorf("expected an error containing %q, got nil", text)
	}
	if !strings.Contains(s.err.Error(), text) {
		return fmt.Errorf("error = %q, want it to contain %q", s.err.Error(), text)
	}
	return nil
}
