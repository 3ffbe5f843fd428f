package media

import "math"

// NoTimestamp marks an unknown presentation or decode timestamp
const NoTimestamp int64 = math.MinInt64

// Kind identifies the media type carried by a stream
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindAudio
	KindData
)

// String returns a lowercase name for the kind
func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// Disposition holds stream flags that survive a remux
type Disposition uint32

const (
	DispositionDefault Disposition = 1 << iota
	DispositionForced
)

// CodecParameters describes the encoded payload of a stream
type CodecParameters struct {
	Kind       Kind
	Codec      string // codec identity, e.g. "avc1", "hvc1", "mp4a"
	Tag        string // container specific codec tag; cleared when remuxing
	Width      int
	Height     int
	SampleRate int
	Channels   int

	// Private is opaque, container specific codec configuration. It is copied
	// verbatim from a source to a sink of the same container family.
	Private any
}

// StreamDescriptor describes one stream of a container
type StreamDescriptor struct {
	Index       int
	Codec       CodecParameters
	TimeBase    Rational
	Metadata    map[string]string
	Disposition Disposition

	// Duration is expressed in TimeBase units, 0 when unknown
	Duration    int64
	SampleCount int64
}

// DurationSeconds returns the stream's own duration in seconds, 0 when unknown
func (s StreamDescriptor) DurationSeconds() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.TimeBase.Seconds(s.Duration)
}

// IsVideo returns true for video streams
func (s StreamDescriptor) IsVideo() bool {
	return s.Codec.Kind == KindVideo
}

// Packet is one encoded access unit
type Packet struct {
	StreamIndex int
	PTS         int64
	DTS         int64
	Duration    int64
	Keyframe    bool
	Data        []byte
}

// Timestamp returns the presentation timestamp, falling back to the decode
// timestamp when no presentation timestamp is known
func (p Packet) Timestamp() int64 {
	if p.PTS != NoTimestamp {
		return p.PTS
	}
	return p.DTS
}
