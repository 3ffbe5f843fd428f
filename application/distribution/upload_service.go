package distribution

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"replaycut/domain/distribution"
)

// PublishService uploads trimmed clips through a distribution.Publisher
type PublishService struct {
	publisher distribution.Publisher
	folderID  string
	share     bool
	logger    *slog.Logger
}

// NewPublishService creates a new publish service
func NewPublishService(publisher distribution.Publisher, folderID string, share bool, logger *slog.Logger) *PublishService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishService{
		publisher: publisher,
		folderID:  folderID,
		share:     share,
		logger:    logger,
	}
}

// Publish uploads the clip at filePath and, when configured, shares it publicly
func (s *PublishService) Publish(ctx context.Context, filePath string) (*distribution.UploadResult, error) {
	// Verify file exists
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	fileName := filepath.Base(filePath)
	req := distribution.UploadRequest{
		LocalPath: filePath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  distribution.MimeTypeFor(filePath),
		Share:     s.share,
	}

	result, err := s.publisher.Upload(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	s.logger.Info("clip published", "file", fileName, "id", result.FileID,
		"size_mb", float64(info.Size())/1024/1024, "url", result.ShareableURL)
	return result, nil
}
