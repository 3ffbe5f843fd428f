package drive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"replaycut/domain/distribution"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
)

// mockDriveService is a mock implementation for testing
type mockDriveService struct {
	uploadErr     error
	permissionErr error
	webViewLink   string

	uploadName   string
	uploadMime   string
	uploadFolder string
	uploadPath   string
	permissions  []*drive.Permission
}

func (m *mockDriveService) UploadFile(ctx context.Context, fileName, mimeType, folderID, localPath string) (*drive.File, error) {
	m.uploadName = fileName
	m.uploadMime = mimeType
	m.uploadFolder = folderID
	m.uploadPath = localPath
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &drive.File{
		Id:          "uploaded-file-id",
		Name:        fileName,
		MimeType:    mimeType,
		Size:        1024,
		WebViewLink: m.webViewLink,
	}, nil
}

func (m *mockDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	if m.permissionErr != nil {
		return m.permissionErr
	}
	m.permissions = append(m.permissions, permission)
	return nil
}

func newTestClient(t *testing.T, svc DriveService) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), "", WithDriveService(svc))
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	return client
}

func TestClient_Upload(t *testing.T) {
	tests := []struct {
		name      string
		req       distribution.UploadRequest
		link      string
		wantName  string
		wantMime  string
		wantURL   string
		wantShare bool
	}{
		{
			name: "explicit name and type",
			req: distribution.UploadRequest{
				LocalPath: "/videos/Replay_trimmed.mp4",
				FileName:  "clip.mp4",
				FolderID:  "folder-123",
				MimeType:  distribution.MimeTypeMP4,
			},
			link:     "https://drive.google.com/file/d/uploaded-file-id/view?usp=drivesdk",
			wantName: "clip.mp4",
			wantMime: distribution.MimeTypeMP4,
			wantURL:  "https://drive.google.com/file/d/uploaded-file-id/view?usp=drivesdk",
		},
		{
			name:     "name and type derived from path",
			req:      distribution.UploadRequest{LocalPath: "/videos/Replay 2025-12-28_trimmed.mkv"},
			wantName: "Replay 2025-12-28_trimmed.mkv",
			wantMime: distribution.MimeTypeMatroska,
			wantURL:  "https://drive.google.com/file/d/uploaded-file-id/view",
		},
		{
			name:      "shared",
			req:       distribution.UploadRequest{LocalPath: "/videos/clip.mov", Share: true},
			wantName:  "clip.mov",
			wantMime:  distribution.MimeTypeQuickTime,
			wantURL:   "https://drive.google.com/file/d/uploaded-file-id/view",
			wantShare: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockDriveService{webViewLink: tt.link}
			client := newTestClient(t, svc)

			got, err := client.Upload(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Upload() unexpected error: %v", err)
			}

			if svc.uploadName != tt.wantName {
				t.Errorf("uploaded name = %q, want %q", svc.uploadName, tt.wantName)
			}
			if svc.uploadMime != tt.wantMime {
				t.Errorf("uploaded mime type = %q, want %q", svc.uploadMime, tt.wantMime)
			}
			if svc.uploadFolder != tt.req.FolderID {
				t.Errorf("uploaded folder = %q, want %q", svc.uploadFolder, tt.req.FolderID)
			}
			if got.ShareableURL != tt.wantURL {
				t.Errorf("Upload() ShareableURL = %q, want %q", got.ShareableURL, tt.wantURL)
			}
			if got.FileID != "uploaded-file-id" || got.Size != 1024 {
				t.Errorf("Upload() = %+v", got)
			}

			if tt.wantShare {
				if len(svc.permissions) != 1 {
					t.Fatalf("permissions created = %d, want 1", len(svc.permissions))
				}
				if p := svc.permissions[0]; p.Type != "anyone" || p.Role != "reader" {
					t.Errorf("permission = %s/%s, want anyone/reader", p.Type, p.Role)
				}
			} else if len(svc.permissions) != 0 {
				t.Errorf("permissions created = %d, want 0", len(svc.permissions))
			}
		})
	}
}

func TestClient_Upload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		svc         *mockDriveService
		req         distribution.UploadRequest
		errContains string
	}{
		{
			name:        "missing path",
			svc:         &mockDriveService{},
			req:         distribution.UploadRequest{},
			errContains: "local path is required",
		},
		{
			name:        "upload fails",
			svc:         &mockDriveService{uploadErr: errors.New("quota exceeded")},
			req:         distribution.UploadRequest{LocalPath: "/videos/clip.mp4"},
			errContains: "failed to upload file: quota exceeded",
		},
		{
			name:        "share fails",
			svc:         &mockDriveService{permissionErr: errors.New("forbidden")},
			req:         distribution.UploadRequest{LocalPath: "/videos/clip.mp4", Share: true},
			errContains: "failed to share file uploaded-file-id: forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.svc)

			_, err := client.Upload(context.Background(), tt.req)
			if err == nil {
				t.Fatal("Upload() expected error, got nil")
			}
			if err.Error() != tt.errContains {
				t.Errorf("Upload() error = %q, want %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("NewClient() expected error for missing credentials, got nil")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "drive.json")
	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := saveToken(path, want); err != nil {
		t.Fatalf("saveToken() unexpected error: %v", err)
	}
	got, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken() unexpected error: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("loadToken() = %+v, want %+v", got, want)
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
	}{
		{"code", "?code=abc", http.StatusOK, "abc"},
		{"missing code", "", http.StatusBadRequest, ""},
		{"denied", "?error=access_denied", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make(chan string, 1)
			errs := make(chan error, 1)

			rec := httptest.NewRecorder()
			callbackHandler(codes, errs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if got := <-codes; got != tt.wantCode {
					t.Errorf("code = %q, want %q", got, tt.wantCode)
				}
			} else if len(errs) != 1 {
				t.Errorf("expected an error to be reported")
			}
		})
	}
}
