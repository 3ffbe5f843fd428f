package distribution

import (
	"path/filepath"
	"strings"
)

// UploadRequest contains the parameters needed to publish a clip to Google Drive
type UploadRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target filename in Google Drive
	FolderID  string // Target folder ID in Google Drive, empty for the drive root
	MimeType  string // MIME type of the file
	Share     bool   // Grant anyone-with-the-link read access after upload
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	FileID       string // Google Drive file ID
	FileName     string // Name of the uploaded file
	ShareableURL string // URL for sharing the file
	Size         int64  // Size of the uploaded file in bytes
}

// MIME type constants for the containers OBS records to
const (
	MimeTypeMP4       = "video/mp4"
	MimeTypeQuickTime = "video/quicktime"
	MimeTypeMatroska  = "video/x-matroska"
	MimeTypeFLV       = "video/x-flv"
	MimeTypeMPEGTS    = "video/mp2t"
	MimeTypeDefault   = "application/octet-stream"
)

var mimeTypes = map[string]string{
	".mp4": MimeTypeMP4,
	".m4v": MimeTypeMP4,
	".mov": MimeTypeQuickTime,
	".mkv": MimeTypeMatroska,
	".flv": MimeTypeFLV,
	".ts":  MimeTypeMPEGTS,
}

// MimeTypeFor guesses a MIME type from the file extension
func MimeTypeFor(path string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return MimeTypeDefault
}
