package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"

	"replaycut/domain/media"
	"replaycut/domain/video"
)

// Engine keeps the trailing part of a recording by copying packets into a new
// container, starting at the keyframe at or before the cut point. Nothing is
// re-encoded. An Engine holds no state between calls and may be used from
// several goroutines at once.
type Engine struct {
	container media.Container
	logger    *slog.Logger
	observe   func(video.TrimPlan)
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithLogger sets the logger used for warnings about imprecise cuts
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPlanObserver registers fn to receive the cut plan of every trim once
// the anchor keyframe is known
func WithPlanObserver(fn func(video.TrimPlan)) EngineOption {
	return func(e *Engine) {
		e.observe = fn
	}
}

// NewEngine creates an Engine reading and writing through container
func NewEngine(container media.Container, opts ...EngineOption) *Engine {
	e := &Engine{
		container: container,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Trim implements video.Trimmer
func (e *Engine) Trim(ctx context.Context, req *video.TrimRequest, outputPath string) (err error) {
	if err := req.Validate(); err != nil {
		return err
	}
	if outputPath == "" || outputPath == req.SourcePath {
		return fmt.Errorf("invalid output path %q for source %s", outputPath, req.SourcePath)
	}

	fail := func(stage video.TrimStage, cause error) error {
		return video.NewTrimError(stage, req, cause)
	}

	src, err := e.container.Open(req.SourcePath)
	if err != nil {
		return fail(video.StageOpen, err)
	}
	defer src.Close()

	streams := src.Streams()
	if len(streams) == 0 {
		return fail(video.StageProbe, media.ErrNoStreams)
	}

	total, err := totalDuration(src, streams)
	if err != nil {
		return fail(video.StageDuration, err)
	}

	cut := total - float64(req.Duration)
	if cut < 0 {
		cut = 0
	}

	sink, err := e.container.Create(outputPath, src)
	if err != nil {
		return fail(video.StageCreate, err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fail(video.StageTrailer, cerr)
		}
		if err != nil {
			e.discard(outputPath)
		}
	}()

	// source stream index -> sink stream index
	mapping := make(map[int]int, len(streams))
	for _, s := range streams {
		out := s
		out.Codec.Tag = ""
		out.Metadata = maps.Clone(s.Metadata)
		idx, err := sink.AddStream(out)
		if err != nil {
			return fail(video.StageHeader, fmt.Errorf("stream %d: %w", s.Index, err))
		}
		mapping[s.Index] = idx
	}

	if err := sink.WriteHeader(); err != nil {
		return fail(video.StageHeader, err)
	}

	sinkBase := make(map[int]media.Rational, len(streams))
	for _, s := range sink.Streams() {
		sinkBase[s.Index] = s.TimeBase
	}

	srcBase := make(map[int]media.Rational, len(streams))
	for _, s := range streams {
		srcBase[s.Index] = s.TimeBase
	}

	plan := video.TrimPlan{Total: total, CutTime: cut, Anchor: cut}
	if primary, ok := primaryStream(streams); ok {
		if err := src.Seek(cut, media.SeekBackward); err != nil {
			e.logger.Warn("backward seek failed, scanning from current position",
				"source", req.SourcePath, "cut", cut, "error", err)
		}

		anchor, found, err := findAnchor(src, primary, cut)
		if err != nil {
			return fail(video.StageRead, err)
		}
		if found {
			plan.Anchor = anchor
			plan.Aligned = true
		} else {
			e.logger.Warn("no keyframe at or before cut point, cutting unaligned",
				"source", req.SourcePath, "cut", cut)
		}
	}

	if e.observe != nil {
		e.observe(plan)
	}

	if err := src.Seek(plan.Anchor, media.SeekExact); err != nil {
		if !errors.Is(err, media.ErrUnsupported) {
			return fail(video.StageSeek, err)
		}
		if err := src.Seek(plan.Anchor, media.SeekBackward); err != nil {
			return fail(video.StageSeek, err)
		}
	}

	offsets := make(map[int]int64, len(streams))
	for {
		if err := ctx.Err(); err != nil {
			return fail(video.StageRead, err)
		}

		pkt, err := src.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(video.StageRead, err)
		}

		out, ok := mapping[pkt.StreamIndex]
		if !ok {
			continue
		}

		from := srcBase[pkt.StreamIndex]
		if packetSeconds(pkt, from) < plan.Anchor {
			continue
		}

		to := sinkBase[out]
		pkt.PTS = media.Rescale(pkt.PTS, from, to)
		pkt.DTS = media.Rescale(pkt.DTS, from, to)
		pkt.Duration = media.Rescale(pkt.Duration, from, to)

		offset, seen := offsets[out]
		if !seen {
			offset = pkt.Timestamp()
			if offset == media.NoTimestamp {
				offset = 0
			}
			offsets[out] = offset
		}
		if pkt.PTS != media.NoTimestamp {
			pkt.PTS -= offset
		}
		if pkt.DTS != media.NoTimestamp {
			pkt.DTS -= offset
		}

		pkt.StreamIndex = out
		if err := sink.WritePacket(pkt); err != nil {
			return fail(video.StageWrite, err)
		}
	}

	if err := sink.WriteTrailer(); err != nil {
		return fail(video.StageTrailer, err)
	}

	e.logger.Debug("trim complete", "source", req.SourcePath, "output", outputPath,
		"cut", plan.CutTime, "anchor", plan.Anchor, "retained", plan.Retained())
	return nil
}

func (e *Engine) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("failed to remove partial output", "path", path, "error", err)
	}
}

// totalDuration prefers the container duration and falls back to the longest stream
func totalDuration(src media.Demuxer, streams []media.StreamDescriptor) (float64, error) {
	if d, ok := src.Duration(); ok && d > 0 {
		return d, nil
	}

	var longest float64
	for _, s := range streams {
		if d := s.DurationSeconds(); d > longest {
			longest = d
		}
	}
	if longest <= 0 {
		return 0, video.ErrUnknownDuration
	}
	return longest, nil
}

func primaryStream(streams []media.StreamDescriptor) (media.StreamDescriptor, bool) {
	for _, s := range streams {
		if s.IsVideo() {
			return s, true
		}
	}
	return media.StreamDescriptor{}, false
}

// findAnchor reads forward on the primary stream and returns the time of the
// last keyframe not after cut. Scanning stops at the first packet past cut.
// With cut at 0 a first keyframe presented after 0 still anchors at 0.
func findAnchor(src media.Demuxer, primary media.StreamDescriptor, cut float64) (float64, bool, error) {
	var (
		anchor float64
		found  bool
	)

	for {
		pkt, err := src.ReadPacket()
		if errors.Is(err, io.EOF) {
			return anchor, found, nil
		}
		if err != nil {
			return 0, false, err
		}
		if pkt.StreamIndex != primary.Index {
			continue
		}

		t := packetSeconds(pkt, primary.TimeBase)
		if t > cut {
			// a cut at the very start keeps everything from the first keyframe
			if !found && cut == 0 && pkt.Keyframe {
				return 0, true, nil
			}
			return anchor, found, nil
		}
		if pkt.Keyframe {
			anchor, found = t, true
		}
	}
}

// packetSeconds returns the packet time in seconds; unknown timestamps count as 0
func packetSeconds(pkt media.Packet, tb media.Rational) float64 {
	ts := pkt.Timestamp()
	if ts == media.NoTimestamp {
		return 0
	}
	return tb.Seconds(ts)
}

// Ensure Engine implements video.Trimmer
var _ video.Trimmer = (*Engine)(nil)
