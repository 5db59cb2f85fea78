package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore relays files into Google Drive, optionally under a folder.
type DriveStore struct {
	svc      *drive.Service
	folderID string
	logger   *zap.Logger
}

// NewDriveStore creates a Drive-backed ObjectStore using the given client
// options (service-account credentials).
func NewDriveStore(ctx context.Context, folderID string, logger *zap.Logger, opts ...option.ClientOption) (*DriveStore, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveStore{
		svc:      svc,
		folderID: folderID,
		logger:   logger,
	}, nil
}

// Upload creates a new Drive file and returns its file ID. Drive allows
// duplicate names, so the disambiguated name never replaces prior content.
func (s *DriveStore) Upload(ctx context.Context, name, contentType string, content []byte) (string, error) {
	meta := &drive.File{Name: name}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	created, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload file to drive: %w", err)
	}

	s.logger.Debug("Uploaded file to Drive",
		zap.String("name", name),
		zap.String("file_id", created.Id),
		zap.String("content_type", contentType))

	return created.Id, nil
}

// PublicLink grants anyone-with-link read access and returns the file's
// webViewLink. An already-granted permission is reused rather than treated
// as an error.
func (s *DriveStore) PublicLink(ctx context.Context, fileID string) (string, error) {
	_, err := s.svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil && !permissionExists(err) {
		return "", fmt.Errorf("failed to share drive file: %w", err)
	}

	f, err := s.svc.Files.Get(fileID).Fields("webViewLink").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read drive file link: %w", err)
	}
	return f.WebViewLink, nil
}

// permissionExists reports whether the error means the anyone-reader
// permission is already in place.
func permissionExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}
