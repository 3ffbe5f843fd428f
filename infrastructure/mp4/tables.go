package mp4

import "fmt"

// sample is one entry of a track's sample table, in track timescale units
type sample struct {
	offset int64 // absolute file offset of the payload
	size   uint32
	dts    int64
	cto    int32 // composition offset, pts = dts + cto
	dur    uint32
	sync   bool
}

func (s sample) pts() int64 {
	return s.dts + int64(s.cto)
}

type chunkRun struct {
	firstChunk      uint32 // 1-based
	samplesPerChunk uint32
}

// sampleTables holds the raw stbl contents of one track
type sampleTables struct {
	sttsCounts   []uint32
	sttsDeltas   []uint32
	uniformSize  uint32
	sampleCount  uint32
	sizes        []uint32
	chunkOffsets []uint64
	chunks       []chunkRun
	syncSamples  []uint32 // 1-based; nil means every sample is a sync sample
	ctos         []int32  // per sample; nil means no composition offsets
}

// samples expands the tables into one entry per sample
func (t sampleTables) samples() ([]sample, error) {
	n := int(t.sampleCount)
	if t.uniformSize == 0 {
		n = len(t.sizes)
	}
	if n == 0 {
		return nil, nil
	}
	if t.ctos != nil && len(t.ctos) < n {
		return nil, fmt.Errorf("ctts covers %d of %d samples", len(t.ctos), n)
	}

	out := make([]sample, n)

	var sync map[uint32]bool
	if t.syncSamples != nil {
		sync = make(map[uint32]bool, len(t.syncSamples))
		for _, nr := range t.syncSamples {
			sync[nr] = true
		}
	}

	for i := range out {
		out[i].size = t.uniformSize
		if t.uniformSize == 0 {
			out[i].size = t.sizes[i]
		}
		out[i].sync = sync == nil || sync[uint32(i+1)]
		if t.ctos != nil {
			out[i].cto = t.ctos[i]
		}
	}

	// decode times
	i := 0
	var dts int64
	for run, count := range t.sttsCounts {
		for c := uint32(0); c < count && i < n; c++ {
			out[i].dts = dts
			out[i].dur = t.sttsDeltas[run]
			dts += int64(t.sttsDeltas[run])
			i++
		}
	}
	if i < n {
		return nil, fmt.Errorf("stts covers %d of %d samples", i, n)
	}

	// file offsets
	i = 0
	for run, entry := range t.chunks {
		last := uint32(len(t.chunkOffsets))
		if run+1 < len(t.chunks) {
			last = t.chunks[run+1].firstChunk - 1
		}
		for chunk := entry.firstChunk; chunk <= last && i < n; chunk++ {
			if chunk == 0 || int(chunk) > len(t.chunkOffsets) {
				return nil, fmt.Errorf("stsc references chunk %d of %d", chunk, len(t.chunkOffsets))
			}
			offset := int64(t.chunkOffsets[chunk-1])
			for s := uint32(0); s < entry.samplesPerChunk && i < n; s++ {
				out[i].offset = offset
				offset += int64(out[i].size)
				i++
			}
		}
	}
	if i < n {
		return nil, fmt.Errorf("stsc covers %d of %d samples", i, n)
	}

	return out, nil
}

// syncAtOrBefore returns the index of the last sync sample presented at or
// before target, 0 when there is none
func syncAtOrBefore(samples []sample, target int64) int {
	best, bestPTS := 0, int64(-1<<63)
	for i, s := range samples {
		if s.sync && s.pts() <= target && s.pts() >= bestPTS {
			best, bestPTS = i, s.pts()
		}
	}
	return best
}

// atOrBefore returns the index of the last sample presented at or before
// target, 0 when there is none
func atOrBefore(samples []sample, target int64) int {
	best, bestPTS := 0, int64(-1<<63)
	for i, s := range samples {
		if s.pts() <= target && s.pts() >= bestPTS {
			best, bestPTS = i, s.pts()
		}
	}
	return best
}

// exactly returns the index of the sample presented at target, falling back
// to atOrBefore
func exactly(samples []sample, target int64) int {
	for i, s := range samples {
		if s.pts() == target {
			return i
		}
	}
	return atOrBefore(samples, target)
}

// trackTables is the compacted sample table of a written track
type trackTables struct {
	sttsCounts  []uint32
	sttsDeltas  []uint32
	cttsCounts  []uint32
	cttsOffsets []int32  // empty when every offset is zero
	syncSamples []uint32 // empty when every sample is a sync sample
	sizes       []uint32
	offsets     []uint64
	duration    uint64 // sum of decode deltas
	presented   uint64 // from the earliest presentation time to the latest presentation end
	mediaTime   int64  // decode time of the earliest presented sample relative to the first
}

// compact builds run length encoded tables for samples written in decode
// order. The last sample keeps its own duration.
func compact(samples []sample) trackTables {
	var t trackTables
	if len(samples) == 0 {
		return t
	}

	allSync := true
	anyCTO := false
	minPTS := samples[0].pts()
	var maxEnd int64

	for i, s := range samples {
		delta := s.dur
		if i+1 < len(samples) {
			if d := samples[i+1].dts - s.dts; d > 0 {
				delta = uint32(d)
			} else {
				delta = 0
			}
		}
		t.sttsCounts, t.sttsDeltas = appendRun(t.sttsCounts, t.sttsDeltas, delta)
		t.duration += uint64(delta)
		if end := s.pts() + int64(delta); i == 0 || end > maxEnd {
			maxEnd = end
		}

		t.sizes = append(t.sizes, s.size)
		t.offsets = append(t.offsets, uint64(s.offset))

		if s.sync {
			t.syncSamples = append(t.syncSamples, uint32(i+1))
		} else {
			allSync = false
		}
		if s.cto != 0 {
			anyCTO = true
		}
		if s.pts() < minPTS {
			minPTS = s.pts()
		}
	}

	if allSync {
		t.syncSamples = nil
	}
	if anyCTO {
		for _, s := range samples {
			if n := len(t.cttsOffsets); n > 0 && t.cttsOffsets[n-1] == s.cto {
				t.cttsCounts[n-1]++
				continue
			}
			t.cttsCounts = append(t.cttsCounts, 1)
			t.cttsOffsets = append(t.cttsOffsets, s.cto)
		}
	}
	if m := minPTS - samples[0].dts; m > 0 {
		t.mediaTime = m
	}
	if maxEnd > minPTS {
		t.presented = uint64(maxEnd - minPTS)
	}

	return t
}

func appendRun(counts, values []uint32, v uint32) ([]uint32, []uint32) {
	if n := len(values); n > 0 && values[n-1] == v {
		counts[n-1]++
		return counts, values
	}
	return append(counts, 1), append(values, v)
}

// nextByTime returns the track whose next sample decodes first, -1 when all
// tracks are exhausted. Ties go to the lower track index.
func nextByTime(tracks []*track) int {
	best := -1
	var bestTime float64
	for i, tr := range tracks {
		if tr.next >= len(tr.samples) {
			continue
		}
		if t := tr.seconds(tr.samples[tr.next].dts); best < 0 || t < bestTime {
			best, bestTime = i, t
		}
	}
	return best
}
