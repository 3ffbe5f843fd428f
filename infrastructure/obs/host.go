package obs

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andreykaipov/goobs/api/events"

	"replaycut/domain/replay"
)

// ErrClosed is returned by Subscribe after Close
var ErrClosed = errors.New("obs connection closed")

// Host implements replay.Host against a running OBS instance
type Host struct {
	api    API
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	listening bool
	closed    bool
	done      chan struct{}
}

// Connect dials obs-websocket and returns a Host using the connection
func Connect(address, password string, logger *slog.Logger) (*Host, error) {
	api, err := Dial(address, password)
	if err != nil {
		return nil, err
	}
	return NewHost(api, logger), nil
}

// NewHost creates a Host over an existing connection
func NewHost(api API, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		api:    api,
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// IsCaptureActive implements replay.Host
func (h *Host) IsCaptureActive() (bool, error) {
	return h.api.ReplayBufferActive()
}

// CurrentBufferLengthSeconds implements replay.Host. The length lives in a
// different profile section depending on the output mode.
func (h *Host) CurrentBufferLengthSeconds() (int, error) {
	mode, err := h.api.ProfileParameter("Output", "Mode")
	if err != nil {
		return 0, fmt.Errorf("failed to read output mode: %w", err)
	}

	section := bufferSection(mode)
	value, err := h.api.ProfileParameter(section, "RecRBTime")
	if err != nil {
		return 0, fmt.Errorf("failed to read %s/RecRBTime: %w", section, err)
	}

	return parseBufferLength(value)
}

// TriggerSaveNow implements replay.Host
func (h *Host) TriggerSaveNow() error {
	return h.api.SaveReplayBuffer()
}

// LastSavedPath implements replay.Host
func (h *Host) LastSavedPath() (string, error) {
	return h.api.LastReplayPath()
}

// Subscribe starts forwarding replay-saved events to observer from a
// listener goroutine. It may be called once.
func (h *Host) Subscribe(observer replay.SaveObserver) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if h.listening {
		return errors.New("already subscribed")
	}
	h.listening = true

	go func() {
		defer close(h.done)
		h.api.Listen(func(event any) {
			h.handle(event, observer)
		})
	}()
	return nil
}

// Done is closed once the listener goroutine has stopped
func (h *Host) Done() <-chan struct{} {
	return h.done
}

func (h *Host) handle(event any, observer replay.SaveObserver) {
	switch e := event.(type) {
	case *events.ReplayBufferSaved:
		h.logger.Debug("replay buffer saved", "path", e.SavedReplayPath)
		observer.OnSaveCompleted(replay.SaveCompleted{
			Path: e.SavedReplayPath,
			At:   h.now(),
		})
	case *events.ReplayBufferStateChanged:
		h.logger.Info("replay buffer state changed", "active", e.OutputActive, "state", e.OutputState)
	case *events.ExitStarted:
		h.logger.Warn("OBS is shutting down")
	}
}

// Close disconnects and waits for the listener to stop
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	listening := h.listening
	h.mu.Unlock()

	err := h.api.Disconnect()
	if listening {
		<-h.done
	}
	return err
}

// bufferSection returns the profile section holding replay buffer settings
func bufferSection(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), "Advanced") {
		return "AdvOut"
	}
	return "SimpleOutput"
}

func parseBufferLength(value string) (int, error) {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid replay buffer length %q: %w", value, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid replay buffer length %d", seconds)
	}
	return seconds, nil
}

// Ensure Host implements replay.Host
var _ replay.Host = (*Host)(nil)
