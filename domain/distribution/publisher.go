package distribution

import "context"

// Publisher uploads finished clips somewhere they can be shared from.
// This is a port that can be implemented by different infrastructure adapters
type Publisher interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}
