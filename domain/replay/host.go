package replay

import "time"

// Host is the capture-control interface of the application running the
// replay buffer. This is a port implemented by infrastructure adapters.
type Host interface {
	// IsCaptureActive returns true while the replay buffer is running
	IsCaptureActive() (bool, error)

	// CurrentBufferLengthSeconds returns the configured replay buffer length
	CurrentBufferLengthSeconds() (int, error)

	// TriggerSaveNow asks the host to flush its buffer to a file asynchronously
	TriggerSaveNow() error

	// LastSavedPath returns the path of the most recently saved replay
	LastSavedPath() (string, error)
}

// SaveCompleted is delivered by the host once a replay buffer save finished
type SaveCompleted struct {
	Path string
	At   time.Time
}

// SaveObserver receives save completion notifications. Hosts may call it
// from any goroutine.
type SaveObserver interface {
	OnSaveCompleted(event SaveCompleted)
}

// SaveObserverFunc adapts a function to SaveObserver
type SaveObserverFunc func(event SaveCompleted)

// OnSaveCompleted calls f(event)
func (f SaveObserverFunc) OnSaveCompleted(event SaveCompleted) {
	f(event)
}
