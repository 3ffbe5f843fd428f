package media

import "errors"

var (
	// ErrUnsupported is returned when a container or operation is not handled
	ErrUnsupported = errors.New("unsupported")

	// ErrNoStreams is returned when a source holds no usable stream
	ErrNoStreams = errors.New("no streams")
)

// SeekMode selects how a demuxer positions itself relative to a target time
type SeekMode int

const (
	// SeekBackward lands on the keyframe at or before the target
	SeekBackward SeekMode = iota
	// SeekExact lands on the packet at the target regardless of keyframes
	SeekExact
)

// Demuxer reads packets from a source container. It never modifies its file.
type Demuxer interface {
	// Streams returns the probed stream descriptors
	Streams() []StreamDescriptor

	// Duration returns the container level duration in seconds, if recorded
	Duration() (float64, bool)

	// Seek positions the demuxer; ErrUnsupported when the mode is not available
	Seek(seconds float64, mode SeekMode) error

	// ReadPacket returns the next packet in file order, io.EOF at the end
	ReadPacket() (Packet, error)

	Close() error
}

// Muxer writes packets to a sink container. The header must be written
// before any packet and the trailer after the last one; a sink is only
// valid once its trailer was written.
type Muxer interface {
	// AddStream registers a stream mirroring desc and returns its sink index
	AddStream(desc StreamDescriptor) (int, error)

	// Streams returns the sink streams; time bases are final after WriteHeader
	Streams() []StreamDescriptor

	WriteHeader() error

	// WritePacket writes a packet in the container's interleaving order
	WritePacket(pkt Packet) error

	WriteTrailer() error

	Close() error
}

// Container opens sources and creates sinks of one container family
type Container interface {
	Open(path string) (Demuxer, error)

	// Create makes a sink at path modelled on the container of source
	Create(path string, source Demuxer) (Muxer, error)
}
