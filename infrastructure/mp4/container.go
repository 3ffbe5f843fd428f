package mp4

import (
	"fmt"

	"replaycut/domain/media"
)

// Container implements media.Container for progressive MP4, M4V and MOV files
type Container struct{}

// NewContainer creates a new MP4 container
func NewContainer() *Container {
	return &Container{}
}

// Open implements media.Container
func (c *Container) Open(path string) (media.Demuxer, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create implements media.Container. source must have been opened by this container.
func (c *Container) Create(path string, source media.Demuxer) (media.Muxer, error) {
	d, ok := source.(*Demuxer)
	if !ok {
		return nil, fmt.Errorf("mp4 sink needs an mp4 source, got %T: %w", source, media.ErrUnsupported)
	}
	m, err := Create(path, d)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Ensure Container implements media.Container
var _ media.Container = (*Container)(nil)
