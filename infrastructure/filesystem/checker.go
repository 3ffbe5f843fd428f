package filesystem

import (
	"os"

	"replaycut/domain/video"
)

// Checker implements video.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if path exists and is a regular file
func (c *Checker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remover implements video.FileRemover using the os package
type Remover struct{}

// NewRemover creates a new filesystem remover
func NewRemover() *Remover {
	return &Remover{}
}

// Remove deletes the file at path
func (r *Remover) Remove(path string) error {
	return os.Remove(path)
}

// Ensure Checker implements video.FileChecker
var _ video.FileChecker = (*Checker)(nil)

// Ensure Remover implements video.FileRemover
var _ video.FileRemover = (*Remover)(nil)
