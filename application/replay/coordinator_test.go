package replay

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"replaycut/domain/replay"
)

// mockHost is a mock implementation of replay.Host
type mockHost struct {
	active     bool
	activeErr  error
	length     int
	lengthErr  error
	triggerErr error
	lastPath   string
	lastErr    error

	triggers int
}

func (m *mockHost) IsCaptureActive() (bool, error) {
	return m.active, m.activeErr
}

func (m *mockHost) CurrentBufferLengthSeconds() (int, error) {
	return m.length, m.lengthErr
}

func (m *mockHost) TriggerSaveNow() error {
	m.triggers++
	return m.triggerErr
}

func (m *mockHost) LastSavedPath() (string, error) {
	return m.lastPath, m.lastErr
}

type dispatchCall struct {
	path    string
	seconds int
}

// recordingDispatcher records dispatched jobs
type recordingDispatcher struct {
	mu        sync.Mutex
	calls     []dispatchCall
	returnErr error
}

func (d *recordingDispatcher) Dispatch(path string, seconds int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{path, seconds})
	return d.returnErr
}

func (d *recordingDispatcher) Calls() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatchCall(nil), d.calls...)
}

func newTestCoordinator(host *mockHost, d *recordingDispatcher) *Coordinator {
	return NewCoordinator(host, replay.DefaultPresets(), d, slog.New(slog.DiscardHandler))
}

func activeHost() *mockHost {
	return &mockHost{active: true, length: 300}
}

func TestCoordinator_RequestSegmentSave(t *testing.T) {
	tests := []struct {
		name        string
		host        *mockHost
		seconds     int
		wantErr     error
		wantTrigger bool
		wantPending int
	}{
		{
			name:        "arms and triggers",
			host:        activeHost(),
			seconds:     30,
			wantTrigger: true,
			wantPending: 30,
		},
		{
			name:        "whole buffer length",
			host:        activeHost(),
			seconds:     300,
			wantTrigger: true,
			wantPending: 300,
		},
		{
			name:    "not active",
			host:    &mockHost{active: false, length: 300},
			seconds: 30,
			wantErr: replay.ErrNotActive,
		},
		{
			name:    "zero duration",
			host:    activeHost(),
			seconds: 0,
			wantErr: replay.ErrInvalidDuration,
		},
		{
			name:    "status query fails",
			host:    &mockHost{activeErr: errors.New("socket closed")},
			seconds: 30,
		},
		{
			name:    "buffer length query fails",
			host:    &mockHost{active: true, lengthErr: errors.New("no profile")},
			seconds: 30,
		},
		{
			name:        "trigger fails disarms",
			host:        &mockHost{active: true, length: 300, triggerErr: errors.New("busy")},
			seconds:     30,
			wantTrigger: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCoordinator(tt.host, &recordingDispatcher{})

			err := c.RequestSegmentSave(tt.seconds)

			failing := tt.wantErr != nil || tt.host.activeErr != nil || tt.host.lengthErr != nil || tt.host.triggerErr != nil
			if failing && err == nil {
				t.Fatal("RequestSegmentSave() expected error, got nil")
			}
			if !failing && err != nil {
				t.Fatalf("RequestSegmentSave() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("RequestSegmentSave() error = %v, want %v", err, tt.wantErr)
			}
			if got := tt.host.triggers > 0; got != tt.wantTrigger {
				t.Errorf("save triggered = %v, want %v", got, tt.wantTrigger)
			}
			if got := c.Pending(); got != tt.wantPending {
				t.Errorf("Pending() = %d, want %d", got, tt.wantPending)
			}
		})
	}
}

func TestCoordinator_RequestSegmentSave_ExceedsBuffer(t *testing.T) {
	host := activeHost()
	c := newTestCoordinator(host, &recordingDispatcher{})

	err := c.RequestSegmentSave(900)

	var exceeds *replay.ExceedsBufferError
	if !errors.As(err, &exceeds) {
		t.Fatalf("RequestSegmentSave() error = %v, want *ExceedsBufferError", err)
	}
	if exceeds.Requested != 900 || exceeds.BufferLength != 300 {
		t.Errorf("ExceedsBufferError = %+v, want 900/300", exceeds)
	}
	if host.triggers != 0 {
		t.Error("save triggered for a segment longer than the buffer")
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestCoordinator_NotActiveLeavesLaterCompletionUntrimmed(t *testing.T) {
	host := &mockHost{active: false, length: 300}
	d := &recordingDispatcher{}
	c := newTestCoordinator(host, d)

	if err := c.RequestSegmentSave(30); !errors.Is(err, replay.ErrNotActive) {
		t.Fatalf("RequestSegmentSave() error = %v, want ErrNotActive", err)
	}

	c.OnSaveCompleted(replay.SaveCompleted{Path: "/videos/earlier.mp4"})

	if host.triggers != 0 {
		t.Errorf("triggers = %d, want 0", host.triggers)
	}
	if calls := d.Calls(); len(calls) != 0 {
		t.Errorf("dispatched %v, want nothing", calls)
	}
}

func TestCoordinator_LastRequestWins(t *testing.T) {
	host := activeHost()
	d := &recordingDispatcher{}
	c := newTestCoordinator(host, d)

	if err := c.RequestSegmentSave(30); err != nil {
		t.Fatalf("RequestSegmentSave(30) unexpected error: %v", err)
	}
	if err := c.RequestSegmentSave(60); err != nil {
		t.Fatalf("RequestSegmentSave(60) unexpected error: %v", err)
	}

	c.OnSaveCompleted(replay.SaveCompleted{Path: "/videos/Replay.mp4"})

	calls := d.Calls()
	if len(calls) != 1 || calls[0] != (dispatchCall{"/videos/Replay.mp4", 60}) {
		t.Errorf("dispatched %v, want one job for 60 seconds", calls)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d after completion, want 0", c.Pending())
	}
}

func TestCoordinator_RequestFullSave(t *testing.T) {
	t.Run("does not arm", func(t *testing.T) {
		host := activeHost()
		d := &recordingDispatcher{}
		c := newTestCoordinator(host, d)

		if err := c.RequestFullSave(); err != nil {
			t.Fatalf("RequestFullSave() unexpected error: %v", err)
		}
		c.OnSaveCompleted(replay.SaveCompleted{Path: "/videos/Replay.mp4"})

		if host.triggers != 1 {
			t.Errorf("triggers = %d, want 1", host.triggers)
		}
		if calls := d.Calls(); len(calls) != 0 {
			t.Errorf("dispatched %v for a full save", calls)
		}
	})

	t.Run("replaces a pending segment", func(t *testing.T) {
		host := activeHost()
		d := &recordingDispatcher{}
		c := newTestCoordinator(host, d)

		_ = c.RequestSegmentSave(30)
		if err := c.RequestFullSave(); err != nil {
			t.Fatalf("RequestFullSave() unexpected error: %v", err)
		}
		c.OnSaveCompleted(replay.SaveCompleted{Path: "/videos/Replay.mp4"})

		if calls := d.Calls(); len(calls) != 0 {
			t.Errorf("dispatched %v, full save must not be trimmed", calls)
		}
	})

	t.Run("not active", func(t *testing.T) {
		host := &mockHost{}
		c := newTestCoordinator(host, &recordingDispatcher{})

		if err := c.RequestFullSave(); !errors.Is(err, replay.ErrNotActive) {
			t.Errorf("RequestFullSave() error = %v, want ErrNotActive", err)
		}
		if host.triggers != 0 {
			t.Error("save triggered while inactive")
		}
	})
}

func TestCoordinator_RequestPresetSave(t *testing.T) {
	host := activeHost()
	d := &recordingDispatcher{}
	c := newTestCoordinator(host, d)

	if err := c.RequestPresetSave(2); err != nil {
		t.Fatalf("RequestPresetSave(2) unexpected error: %v", err)
	}
	if c.Pending() != 30 {
		t.Errorf("Pending() = %d, want 30", c.Pending())
	}

	if err := c.RequestPresetSave(7); !errors.Is(err, replay.ErrPresetNotFound) {
		t.Errorf("RequestPresetSave(7) error = %v, want ErrPresetNotFound", err)
	}

	var exceeds *replay.ExceedsBufferError
	if err := c.RequestPresetSave(5); !errors.As(err, &exceeds) {
		t.Errorf("RequestPresetSave(5) error = %v, want *ExceedsBufferError for 900s", err)
	}
}

func TestCoordinator_OnSaveCompleted_EmptyPathAsksHost(t *testing.T) {
	host := activeHost()
	host.lastPath = "/videos/Replay 2025-12-28.mp4"
	d := &recordingDispatcher{}
	c := newTestCoordinator(host, d)

	_ = c.RequestSegmentSave(15)
	c.OnSaveCompleted(replay.SaveCompleted{})

	calls := d.Calls()
	if len(calls) != 1 || calls[0].path != host.lastPath {
		t.Errorf("dispatched %v, want job for %s", calls, host.lastPath)
	}
}

func TestCoordinator_OnSaveCompleted_NoPathAvailable(t *testing.T) {
	host := activeHost()
	host.lastErr = errors.New("no replay saved")
	d := &recordingDispatcher{}
	c := newTestCoordinator(host, d)

	_ = c.RequestSegmentSave(15)
	c.OnSaveCompleted(replay.SaveCompleted{})

	if calls := d.Calls(); len(calls) != 0 {
		t.Errorf("dispatched %v without a path", calls)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want consumed", c.Pending())
	}
}

func TestCoordinator_OnSaveCompleted_DispatchErrorIsLogged(t *testing.T) {
	d := &recordingDispatcher{returnErr: ErrExecutorClosed}
	c := newTestCoordinator(activeHost(), d)

	_ = c.RequestSegmentSave(15)
	c.OnSaveCompleted(replay.SaveCompleted{Path: "/videos/Replay.mp4"})

	if len(d.Calls()) != 1 {
		t.Errorf("Dispatch called %d times, want 1", len(d.Calls()))
	}
}

func TestCoordinator_ConcurrentCompletionsDispatchOnce(t *testing.T) {
	for round := 0; round < 50; round++ {
		d := &recordingDispatcher{}
		c := newTestCoordinator(activeHost(), d)

		if err := c.RequestSegmentSave(30); err != nil {
			t.Fatalf("RequestSegmentSave() unexpected error: %v", err)
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for _, p := range []string{"/videos/a.mp4", "/videos/b.mp4"} {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				<-start
				c.OnSaveCompleted(replay.SaveCompleted{Path: path})
			}(p)
		}
		close(start)
		wg.Wait()

		if calls := d.Calls(); len(calls) != 1 {
			t.Fatalf("round %d: dispatched %d jobs, want exactly 1", round, len(calls))
		}
	}
}
