package replay

import (
	"errors"
	"fmt"
)

var (
	// ErrNotActive is returned when a save is requested while the replay buffer is stopped
	ErrNotActive = errors.New("replay buffer is not active")

	// ErrInvalidDuration is returned for non-positive segment lengths
	ErrInvalidDuration = errors.New("segment duration must be positive")

	// ErrPresetNotFound is returned for a preset position outside the configured list
	ErrPresetNotFound = errors.New("preset not found")
)

// ExceedsBufferError is returned when a segment is longer than the replay buffer
type ExceedsBufferError struct {
	Requested    int
	BufferLength int
}

func (e *ExceedsBufferError) Error() string {
	return fmt.Sprintf("cannot save %d seconds: replay buffer holds only %d seconds", e.Requested, e.BufferLength)
}
