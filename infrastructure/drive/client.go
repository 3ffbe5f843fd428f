package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"replaycut/domain/distribution"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	UploadFile(ctx context.Context, fileName, mimeType, folderID, localPath string) (*drive.File, error)
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// UploadFile streams a local file into folderID
func (s *GoogleDriveService) UploadFile(ctx context.Context, fileName, mimeType, folderID, localPath string) (*drive.File, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta := &drive.File{
		Name:     fileName,
		MimeType: mimeType,
	}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	return s.service.Files.Create(meta).
		Media(f, googleapi.ContentType(mimeType)).
		Fields("id, name, mimeType, size, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// CreatePermission grants a permission on a file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, permission).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return err
}

// Client implements distribution.Publisher using Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client authenticated as a service account.
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, credentialsPath string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// Upload implements distribution.Publisher
func (c *Client) Upload(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if req.LocalPath == "" {
		return nil, fmt.Errorf("local path is required")
	}

	name := req.FileName
	if name == "" {
		name = filepath.Base(req.LocalPath)
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = distribution.MimeTypeFor(req.LocalPath)
	}

	file, err := c.driveService.UploadFile(ctx, name, mimeType, req.FolderID, req.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	if req.Share {
		perm := &drive.Permission{
			Type: "anyone",
			Role: "reader",
		}
		if err := c.driveService.CreatePermission(ctx, file.Id, perm); err != nil {
			return nil, fmt.Errorf("failed to share file %s: %w", file.Id, err)
		}
	}

	return &distribution.UploadResult{
		FileID:       file.Id,
		FileName:     file.Name,
		ShareableURL: shareableURL(file),
		Size:         file.Size,
	}, nil
}

// shareableURL prefers the link Drive returns over a constructed one
func shareableURL(f *drive.File) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", f.Id)
}

// Ensure Client implements distribution.Publisher
var _ distribution.Publisher = (*Client)(nil)
