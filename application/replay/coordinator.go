package replay

import (
	"fmt"
	"log/slog"

	"replaycut/domain/replay"
)

// Dispatcher hands a saved replay off for trimming without blocking
type Dispatcher interface {
	Dispatch(path string, seconds int) error
}

// Coordinator drives the two step save protocol: ask the host to flush its
// replay buffer, then trim the saved file once the host reports completion.
// Requests are expected from one goroutine; OnSaveCompleted may be called
// from any goroutine.
type Coordinator struct {
	host     replay.Host
	presets  replay.Presets
	dispatch Dispatcher
	logger   *slog.Logger
	pending  replay.PendingTrim
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(host replay.Host, presets replay.Presets, dispatch Dispatcher, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		host:     host,
		presets:  presets,
		dispatch: dispatch,
		logger:   logger,
	}
}

// RequestSegmentSave saves the replay buffer and arranges for the saved file
// to be trimmed to its last seconds. A later request made before the save
// completes replaces this one.
func (c *Coordinator) RequestSegmentSave(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: got %d", replay.ErrInvalidDuration, seconds)
	}

	if err := c.requireActive(); err != nil {
		return err
	}

	length, err := c.host.CurrentBufferLengthSeconds()
	if err != nil {
		return fmt.Errorf("failed to read replay buffer length: %w", err)
	}
	if seconds > length {
		return &replay.ExceedsBufferError{Requested: seconds, BufferLength: length}
	}

	c.pending.Arm(seconds)
	if err := c.host.TriggerSaveNow(); err != nil {
		c.pending.Disarm(seconds)
		return fmt.Errorf("failed to save replay buffer: %w", err)
	}

	c.logger.Info("segment save requested", "seconds", seconds, "buffer_seconds", length)
	return nil
}

// RequestPresetSave saves the segment length at 1-based preset position n
func (c *Coordinator) RequestPresetSave(n int) error {
	seconds, err := c.presets.At(n)
	if err != nil {
		return err
	}
	return c.RequestSegmentSave(seconds)
}

// RequestFullSave saves the whole replay buffer without trimming it.
// A segment request still waiting for its save is dropped.
func (c *Coordinator) RequestFullSave() error {
	if err := c.requireActive(); err != nil {
		return err
	}

	if dropped := c.pending.Consume(); dropped > 0 {
		c.logger.Info("pending segment replaced by full save", "seconds", dropped)
	}

	if err := c.host.TriggerSaveNow(); err != nil {
		return fmt.Errorf("failed to save replay buffer: %w", err)
	}

	c.logger.Info("full save requested")
	return nil
}

// OnSaveCompleted implements replay.SaveObserver
func (c *Coordinator) OnSaveCompleted(event replay.SaveCompleted) {
	seconds := c.pending.Consume()
	if seconds <= 0 {
		c.logger.Info("replay saved", "path", event.Path)
		return
	}

	path := event.Path
	if path == "" {
		last, err := c.host.LastSavedPath()
		if err != nil || last == "" {
			c.logger.Error("saved replay not found, segment not trimmed", "seconds", seconds, "error", err)
			return
		}
		path = last
	}

	if err := c.dispatch.Dispatch(path, seconds); err != nil {
		c.logger.Error("failed to start trim", "path", path, "seconds", seconds, "error", err)
	}
}

// Pending returns the armed segment length, 0 when none
func (c *Coordinator) Pending() int {
	return c.pending.Peek()
}

// Presets returns the configured segment lengths
func (c *Coordinator) Presets() replay.Presets {
	return c.presets
}

func (c *Coordinator) requireActive() error {
	active, err := c.host.IsCaptureActive()
	if err != nil {
		return fmt.Errorf("failed to query replay buffer status: %w", err)
	}
	if !active {
		return replay.ErrNotActive
	}
	return nil
}

// Ensure Coordinator implements replay.SaveObserver
var _ replay.SaveObserver = (*Coordinator)(nil)
