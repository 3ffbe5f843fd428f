package video

import (
	"errors"
	"fmt"
)

// ErrUnknownDuration is returned when neither the container nor any stream records a duration
var ErrUnknownDuration = errors.New("could not determine source duration")

// TrimStage names the step of a trim that failed
type TrimStage string

const (
	StageOpen     TrimStage = "open"
	StageProbe    TrimStage = "probe"
	StageDuration TrimStage = "duration"
	StageCreate   TrimStage = "create"
	StageHeader   TrimStage = "header"
	StageSeek     TrimStage = "seek"
	StageRead     TrimStage = "read"
	StageWrite    TrimStage = "write"
	StageTrailer  TrimStage = "trailer"
	StageRemux    TrimStage = "remux"
)

// TrimError reports a failed trim with enough context to diagnose it
type TrimError struct {
	Stage      TrimStage
	SourcePath string
	Duration   int
	Err        error
}

// NewTrimError wraps err for the given stage of req
func NewTrimError(stage TrimStage, req *TrimRequest, err error) *TrimError {
	return &TrimError{
		Stage:      stage,
		SourcePath: req.SourcePath,
		Duration:   req.Duration,
		Err:        err,
	}
}

func (e *TrimError) Error() string {
	return fmt.Sprintf("trim %s (last %ds) failed at %s: %v", e.SourcePath, e.Duration, e.Stage, e.Err)
}

func (e *TrimError) Unwrap() error {
	return e.Err
}
