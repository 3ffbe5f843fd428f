package mp4

import (
	"errors"
	"fmt"
	"io"
	"os"

	mp4ff "github.com/Eyevinn/mp4ff/mp4"

	"replaycut/domain/media"
)

// track is a source track with its expanded sample table and read position
type track struct {
	desc    media.StreamDescriptor
	trak    *mp4ff.TrakBox
	samples []sample
	next    int
}

func (t *track) seconds(ts int64) float64 {
	return t.desc.TimeBase.Seconds(ts)
}

// Demuxer reads samples of a progressive (non-fragmented) MP4 or MOV file
type Demuxer struct {
	f      *os.File
	parsed *mp4ff.File
	tracks []*track
}

// Open parses the moov box of path. Sample payloads stay on disk and are read
// one packet at a time.
func Open(path string) (*Demuxer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	parsed, err := mp4ff.DecodeFile(f, mp4ff.WithDecodeMode(mp4ff.DecModeLazyMdat))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if parsed.Moov == nil {
		f.Close()
		return nil, fmt.Errorf("%s has no moov box: %w", path, media.ErrUnsupported)
	}
	if parsed.Moov.Mvex != nil {
		f.Close()
		return nil, fmt.Errorf("%s is fragmented: %w", path, media.ErrUnsupported)
	}

	var movieScale uint32
	if parsed.Moov.Mvhd != nil {
		movieScale = parsed.Moov.Mvhd.Timescale
	}

	d := &Demuxer{f: f, parsed: parsed}
	for _, trak := range parsed.Moov.Traks {
		tr, err := newTrack(len(d.tracks), trak, movieScale)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("track %d of %s: %w", len(d.tracks), path, err)
		}
		d.tracks = append(d.tracks, tr)
	}
	if len(d.tracks) == 0 {
		f.Close()
		return nil, media.ErrNoStreams
	}

	return d, nil
}

// newTrack expands the sample table of trak. Timestamps are moved onto the
// presentation timeline of the track's edit list.
func newTrack(index int, trak *mp4ff.TrakBox, movieScale uint32) (*track, error) {
	if trak.Mdia == nil || trak.Mdia.Mdhd == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return nil, errors.New("incomplete trak box")
	}
	mdhd := trak.Mdia.Mdhd
	stbl := trak.Mdia.Minf.Stbl
	if mdhd.Timescale == 0 {
		return nil, errors.New("zero timescale")
	}
	if stbl.Stts == nil || stbl.Stsz == nil || stbl.Stsc == nil || (stbl.Stco == nil && stbl.Co64 == nil) {
		return nil, errors.New("incomplete sample table")
	}

	tables := sampleTables{
		sttsCounts:  stbl.Stts.SampleCount,
		sttsDeltas:  stbl.Stts.SampleTimeDelta,
		uniformSize: stbl.Stsz.SampleUniformSize,
		sampleCount: stbl.Stsz.SampleNumber,
		sizes:       stbl.Stsz.SampleSize,
	}
	for _, e := range stbl.Stsc.Entries {
		tables.chunks = append(tables.chunks, chunkRun{firstChunk: e.FirstChunk, samplesPerChunk: e.SamplesPerChunk})
	}
	if stbl.Co64 != nil {
		tables.chunkOffsets = stbl.Co64.ChunkOffset
	} else {
		for _, o := range stbl.Stco.ChunkOffset {
			tables.chunkOffsets = append(tables.chunkOffsets, uint64(o))
		}
	}
	if stbl.Stss != nil {
		tables.syncSamples = append([]uint32{}, stbl.Stss.SampleNumber...)
	}
	if stbl.Ctts != nil {
		n := len(stbl.Stsz.SampleSize)
		if stbl.Stsz.SampleUniformSize != 0 {
			n = int(stbl.Stsz.SampleNumber)
		}
		tables.ctos = make([]int32, n)
		for i := range tables.ctos {
			tables.ctos[i] = stbl.Ctts.GetCompositionTimeOffset(uint32(i + 1))
		}
	}

	samples, err := tables.samples()
	if err != nil {
		return nil, err
	}
	if shift := editShift(trak, mdhd.Timescale, movieScale); shift != 0 {
		for i := range samples {
			samples[i].dts -= shift
		}
	}

	desc := media.StreamDescriptor{
		Index:       index,
		Codec:       codecParameters(trak),
		TimeBase:    media.Rational{Num: 1, Den: int64(mdhd.Timescale)},
		Metadata:    map[string]string{},
		Duration:    int64(mdhd.Duration),
		SampleCount: int64(len(samples)),
	}
	if desc.Duration == 0 && len(samples) > 0 {
		last := samples[len(samples)-1]
		desc.Duration = last.dts + int64(last.dur)
	}
	if lang := mdhd.GetLanguage(); lang != "" && lang != "und" {
		desc.Metadata["language"] = lang
	}
	if hdlr := trak.Mdia.Hdlr; hdlr != nil && hdlr.Name != "" {
		desc.Metadata["handler_name"] = hdlr.Name
	}
	if trak.Tkhd != nil && trak.Tkhd.Flags&0x1 != 0 {
		desc.Disposition |= media.DispositionDefault
	}

	return &track{desc: desc, trak: trak, samples: samples}, nil
}

// editShift returns the media time presented first by the edit list, less
// any leading empty edits, in track timescale units. Only the first edit with
// media is honoured.
func editShift(trak *mp4ff.TrakBox, trackScale, movieScale uint32) int64 {
	if trak.Edts == nil || len(trak.Edts.Elst) == 0 {
		return 0
	}

	var delay uint64
	for _, e := range trak.Edts.Elst[0].Entries {
		if e.MediaTime < 0 {
			delay += e.SegmentDuration
			continue
		}
		shift := e.MediaTime
		if delay > 0 && movieScale > 0 {
			shift -= media.Rescale(int64(delay),
				media.Rational{Num: 1, Den: int64(movieScale)},
				media.Rational{Num: 1, Den: int64(trackScale)})
		}
		return shift
	}
	return 0
}

func codecParameters(trak *mp4ff.TrakBox) media.CodecParameters {
	p := media.CodecParameters{Kind: media.KindData, Private: trak}

	if hdlr := trak.Mdia.Hdlr; hdlr != nil {
		switch hdlr.HandlerType {
		case "vide":
			p.Kind = media.KindVideo
		case "soun":
			p.Kind = media.KindAudio
		}
	}

	stsd := trak.Mdia.Minf.Stbl.Stsd
	if stsd == nil || len(stsd.Children) == 0 {
		return p
	}

	entry := stsd.Children[0]
	p.Codec = entry.Type()
	p.Tag = entry.Type()
	switch e := entry.(type) {
	case *mp4ff.VisualSampleEntryBox:
		p.Width = int(e.Width)
		p.Height = int(e.Height)
	case *mp4ff.AudioSampleEntryBox:
		p.Channels = int(e.ChannelCount)
		p.SampleRate = int(e.SampleRate)
	}
	return p
}

// Streams implements media.Demuxer
func (d *Demuxer) Streams() []media.StreamDescriptor {
	out := make([]media.StreamDescriptor, len(d.tracks))
	for i, t := range d.tracks {
		out[i] = t.desc
	}
	return out
}

// Duration implements media.Demuxer
func (d *Demuxer) Duration() (float64, bool) {
	mvhd := d.parsed.Moov.Mvhd
	if mvhd == nil || mvhd.Timescale == 0 || mvhd.Duration == 0 {
		return 0, false
	}
	return float64(mvhd.Duration) / float64(mvhd.Timescale), true
}

// Seek implements media.Demuxer. The reference track (the first video track,
// else the first track) is positioned by mode; every other track is
// positioned on its last sample presented at or before the reference.
func (d *Demuxer) Seek(seconds float64, mode media.SeekMode) error {
	ref := d.reference()
	if len(ref.samples) == 0 {
		return fmt.Errorf("track %d has no samples", ref.desc.Index)
	}

	target := ref.desc.TimeBase.FromSeconds(seconds)
	switch mode {
	case media.SeekBackward:
		ref.next = syncAtOrBefore(ref.samples, target)
	case media.SeekExact:
		ref.next = exactly(ref.samples, target)
	default:
		return media.ErrUnsupported
	}

	landed := ref.seconds(ref.samples[ref.next].pts())
	for _, t := range d.tracks {
		if t == ref {
			continue
		}
		t.next = atOrBefore(t.samples, t.desc.TimeBase.FromSeconds(landed))
	}
	return nil
}

func (d *Demuxer) reference() *track {
	for _, t := range d.tracks {
		if t.desc.IsVideo() {
			return t
		}
	}
	return d.tracks[0]
}

// ReadPacket implements media.Demuxer. Packets come out in decode time order
// across tracks.
func (d *Demuxer) ReadPacket() (media.Packet, error) {
	i := nextByTime(d.tracks)
	if i < 0 {
		return media.Packet{}, io.EOF
	}

	t := d.tracks[i]
	s := t.samples[t.next]
	t.next++

	data := make([]byte, s.size)
	if _, err := d.f.ReadAt(data, s.offset); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return media.Packet{}, fmt.Errorf("sample %d of track %d: %w", t.next, i, err)
	}

	return media.Packet{
		StreamIndex: i,
		PTS:         s.pts(),
		DTS:         s.dts,
		Duration:    int64(s.dur),
		Keyframe:    s.sync,
		Data:        data,
	}, nil
}

// Close implements media.Demuxer
func (d *Demuxer) Close() error {
	return d.f.Close()
}

// Ensure Demuxer implements media.Demuxer
var _ media.Demuxer = (*Demuxer)(nil)
