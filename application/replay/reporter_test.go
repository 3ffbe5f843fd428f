package replay

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"replaycut/domain/video"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(slog.New(slog.NewTextHandler(&buf, nil)))

	r.Succeeded(JobResult{SourcePath: "/v/a.mp4", OutputPath: "/v/a_trimmed.mp4", Duration: 30, ShareURL: "https://x"})
	r.Failed("/v/b.mp4", 60, video.NewTrimError(video.StageSeek, &video.TrimRequest{SourcePath: "/v/b.mp4", Duration: 60}, errors.New("bad index")))

	out := buf.String()
	for _, want := range []string{"segment saved", "output=/v/a_trimmed.mp4", "url=https://x", "segment trim failed", "stage=seek", "seconds=60"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiReporter(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	m := MultiReporter{a, b}

	m.Succeeded(JobResult{Duration: 30})
	m.Failed("/v/a.mp4", 30, errors.New("x"))

	for i, r := range []*recordingReporter{a, b} {
		if len(r.succeeded) != 1 || len(r.failed) != 1 {
			t.Errorf("reporter %d got succeeded=%d failed=%d, want 1 and 1", i, len(r.succeeded), len(r.failed))
		}
	}
}
