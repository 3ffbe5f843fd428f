package mp4

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	mp4ff "github.com/Eyevinn/mp4ff/mp4"

	"replaycut/domain/media"
)

// mdatHeaderSize is a 64-bit mdat header so the payload may exceed 4 GiB
const mdatHeaderSize = 16

type muxTrack struct {
	desc    media.StreamDescriptor
	trak    *mp4ff.TrakBox
	samples []sample
}

// Muxer writes a progressive MP4 whose moov is modelled on a source file:
// ftyp, one mdat holding every sample, then moov. Each sample is its own chunk.
type Muxer struct {
	f      *os.File
	w      *bufio.Writer
	ftyp   *mp4ff.FtypBox
	moov   *mp4ff.MoovBox
	tracks []*muxTrack

	mdatStart int64
	pos       int64
	header    bool
}

// Create opens path for writing. The moov of source is reused for codec
// configuration; its sample tables are rebuilt by WriteTrailer.
func Create(path string, source *Demuxer) (*Muxer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Muxer{
		f:    f,
		w:    bufio.NewWriterSize(f, 1<<20),
		ftyp: source.parsed.Ftyp,
		moov: source.parsed.Moov,
	}, nil
}

// AddStream implements media.Muxer. desc must come from a Demuxer of this package.
func (m *Muxer) AddStream(desc media.StreamDescriptor) (int, error) {
	if m.header {
		return 0, errors.New("stream added after header")
	}
	trak, ok := desc.Codec.Private.(*mp4ff.TrakBox)
	if !ok || trak == nil {
		return 0, fmt.Errorf("stream %d has no mp4 track configuration: %w", desc.Index, media.ErrUnsupported)
	}

	desc.Index = len(m.tracks)
	m.tracks = append(m.tracks, &muxTrack{desc: desc, trak: trak})
	return desc.Index, nil
}

// Streams implements media.Muxer. Time bases equal the source track timescales.
func (m *Muxer) Streams() []media.StreamDescriptor {
	out := make([]media.StreamDescriptor, len(m.tracks))
	for i, t := range m.tracks {
		out[i] = t.desc
	}
	return out
}

// WriteHeader implements media.Muxer
func (m *Muxer) WriteHeader() error {
	if len(m.tracks) == 0 {
		return media.ErrNoStreams
	}

	ftyp := m.ftyp
	if ftyp == nil {
		ftyp = mp4ff.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	}
	if err := ftyp.Encode(m.w); err != nil {
		return fmt.Errorf("failed to write ftyp: %w", err)
	}

	m.mdatStart = int64(ftyp.Size())
	var hdr [mdatHeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], 1) // size lives in the largesize field
	copy(hdr[4:8], "mdat")
	if _, err := m.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("failed to write mdat header: %w", err)
	}

	m.pos = m.mdatStart + mdatHeaderSize
	m.header = true
	return nil
}

// WritePacket implements media.Muxer. Packets of one stream must arrive in
// decode order.
func (m *Muxer) WritePacket(pkt media.Packet) error {
	if !m.header {
		return errors.New("packet written before header")
	}
	if pkt.StreamIndex < 0 || pkt.StreamIndex >= len(m.tracks) {
		return fmt.Errorf("unknown stream %d", pkt.StreamIndex)
	}
	if pkt.DTS == media.NoTimestamp {
		return fmt.Errorf("stream %d: packet without decode timestamp", pkt.StreamIndex)
	}

	pts := pkt.PTS
	if pts == media.NoTimestamp {
		pts = pkt.DTS
	}

	t := m.tracks[pkt.StreamIndex]
	if n := len(t.samples); n > 0 && pkt.DTS < t.samples[n-1].dts {
		return fmt.Errorf("stream %d: decode time %d before %d", pkt.StreamIndex, pkt.DTS, t.samples[n-1].dts)
	}

	if _, err := m.w.Write(pkt.Data); err != nil {
		return err
	}

	t.samples = append(t.samples, sample{
		offset: m.pos,
		size:   uint32(len(pkt.Data)),
		dts:    pkt.DTS,
		cto:    int32(pts - pkt.DTS),
		dur:    uint32(max(pkt.Duration, 0)),
		sync:   pkt.Keyframe,
	})
	m.pos += int64(len(pkt.Data))
	return nil
}

// WriteTrailer implements media.Muxer
func (m *Muxer) WriteTrailer() error {
	if !m.header {
		return errors.New("trailer written before header")
	}
	if err := m.w.Flush(); err != nil {
		return err
	}

	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(m.pos-m.mdatStart))
	if _, err := m.f.WriteAt(size[:], m.mdatStart+8); err != nil {
		return fmt.Errorf("failed to patch mdat size: %w", err)
	}

	if err := m.finalizeMoov(); err != nil {
		return err
	}

	// the file offset is at the end of mdat after the flush
	if err := m.moov.Encode(m.w); err != nil {
		return fmt.Errorf("failed to write moov: %w", err)
	}
	return m.w.Flush()
}

// finalizeMoov replaces the sample tables of every written track and drops
// tracks that were not added
func (m *Muxer) finalizeMoov() error {
	mvhd := m.moov.Mvhd
	if mvhd == nil || mvhd.Timescale == 0 {
		return errors.New("source moov has no usable mvhd")
	}

	kept := make(map[*mp4ff.TrakBox]bool, len(m.tracks))
	var movieDuration uint64

	for _, t := range m.tracks {
		kept[t.trak] = true
		tables := compact(t.samples)

		stbl, err := buildStbl(t.trak.Mdia.Minf.Stbl, tables)
		if err != nil {
			return fmt.Errorf("stream %d: %w", t.desc.Index, err)
		}
		replaceChild(t.trak.Mdia.Minf.Children, t.trak.Mdia.Minf.Stbl, stbl)
		t.trak.Mdia.Minf.Stbl = stbl

		t.trak.Mdia.Mdhd.Duration = tables.duration
		trackDuration := uint64(media.Rescale(int64(tables.presented),
			media.Rational{Num: 1, Den: int64(t.trak.Mdia.Mdhd.Timescale)},
			media.Rational{Num: 1, Den: int64(mvhd.Timescale)}))
		if t.trak.Tkhd != nil {
			t.trak.Tkhd.Duration = trackDuration
		}
		setEditList(t.trak, trackDuration, tables.mediaTime)

		movieDuration = max(movieDuration, trackDuration)
	}

	var traks []*mp4ff.TrakBox
	var children []mp4ff.Box
	for _, c := range m.moov.Children {
		if trak, ok := c.(*mp4ff.TrakBox); ok && !kept[trak] {
			continue
		}
		children = append(children, c)
	}
	for _, trak := range m.moov.Traks {
		if kept[trak] {
			traks = append(traks, trak)
		}
	}
	m.moov.Children = children
	m.moov.Traks = traks
	if len(traks) > 0 {
		m.moov.Trak = traks[0]
	}

	mvhd.Duration = movieDuration
	return nil
}

// buildStbl keeps the sample descriptions of old and replaces every table
func buildStbl(old *mp4ff.StblBox, t trackTables) (*mp4ff.StblBox, error) {
	if old.Stsd == nil {
		return nil, errors.New("no sample description")
	}

	stbl := &mp4ff.StblBox{}
	stbl.AddChild(old.Stsd)
	stbl.AddChild(&mp4ff.SttsBox{SampleCount: t.sttsCounts, SampleTimeDelta: t.sttsDeltas})

	if len(t.cttsOffsets) > 0 {
		ctts := &mp4ff.CttsBox{}
		for _, o := range t.cttsOffsets {
			if o < 0 {
				ctts.Version = 1
				break
			}
		}
		if err := ctts.AddSampleCountsAndOffset(t.cttsCounts, t.cttsOffsets); err != nil {
			return nil, fmt.Errorf("ctts: %w", err)
		}
		stbl.AddChild(ctts)
	}

	if len(t.syncSamples) > 0 {
		stbl.AddChild(&mp4ff.StssBox{SampleNumber: t.syncSamples})
	}

	stsc := &mp4ff.StscBox{}
	if len(t.sizes) > 0 {
		if err := stsc.AddEntry(1, 1, 1); err != nil {
			return nil, fmt.Errorf("stsc: %w", err)
		}
	}
	stbl.AddChild(stsc)
	stbl.AddChild(&mp4ff.StszBox{SampleNumber: uint32(len(t.sizes)), SampleSize: t.sizes})
	stbl.AddChild(&mp4ff.Co64Box{ChunkOffset: t.offsets})

	return stbl, nil
}

// setEditList drops the source edit list; a new one skips leading
// composition delay so presentation starts at zero
func setEditList(trak *mp4ff.TrakBox, duration uint64, mediaTime int64) {
	var children []mp4ff.Box
	for _, c := range trak.Children {
		if c.Type() == "edts" {
			continue
		}
		children = append(children, c)
		if c.Type() == "tkhd" && mediaTime > 0 {
			edts := &mp4ff.EdtsBox{}
			edts.AddChild(&mp4ff.ElstBox{
				Version: 1,
				Entries: []mp4ff.ElstEntry{{
					SegmentDuration:   duration,
					MediaTime:         mediaTime,
					MediaRateInteger:  1,
					MediaRateFraction: 0,
				}},
			})
			children = append(children, edts)
			trak.Edts = edts
		}
	}
	if mediaTime <= 0 {
		trak.Edts = nil
	}
	trak.Children = children
}

func replaceChild(children []mp4ff.Box, old, repl mp4ff.Box) {
	for i, c := range children {
		if c == old {
			children[i] = repl
			return
		}
	}
}

// Close implements media.Muxer
func (m *Muxer) Close() error {
	return m.f.Close()
}

// Ensure Muxer implements media.Muxer
var _ media.Muxer = (*Muxer)(nil)
