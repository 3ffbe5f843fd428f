package video

import "context"

// Trimmer defines the interface for video trimming operations
// This is a port that can be implemented by different infrastructure adapters
type Trimmer interface {
	// Trim keeps the last req.Duration seconds of req.SourcePath and writes them
	// to outputPath. The source is never modified; on failure no file is left
	// at outputPath.
	Trim(ctx context.Context, req *TrimRequest, outputPath string) error
}

// FileChecker defines the interface for checking file existence
// This is used to validate that source files exist before trimming
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// FileRemover deletes files, e.g. the untrimmed original after a successful trim
type FileRemover interface {
	Remove(path string) error
}

// TrimPlan records where a trim cuts a source
type TrimPlan struct {
	Total   float64 // total source duration in seconds
	CutTime float64 // requested retain-from point in seconds
	Anchor  float64 // keyframe actually cut at, at or before CutTime
	Aligned bool    // false when no keyframe was found and CutTime was used as is
}

// Retained returns the number of seconds kept by the plan
func (p TrimPlan) Retained() float64 {
	return p.Total - p.Anchor
}
