package socialtypes

import (
	"context"
	"io"
)

// StorageService is the object-storage collaborator used for profile
// pictures. It lives here so storage and services do not import each other.
type StorageService interface {
	// UploadFile stores reader's content and returns where it can be reached.
	UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*FileInfo, error)
	// DeleteFile removes the object identified by key. Missing objects are not an error.
	DeleteFile(ctx context.Context, key string) error
}
