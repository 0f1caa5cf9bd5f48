package services

import (
	"context"
	"io"
	"path"
	"strings"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	"skywatch/crewdeck/internal/storage"
)

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ext returns the filename extension without the dot, "bin" when absent
func (u Upload) ext() string {
	e := strings.TrimPrefix(strings.ToLower(path.Ext(u.Filename)), ".")
	if e == "" {
		return "bin"
	}
	return e
}

func putDocument(ctx context.Context, objects storage.ObjectStore, key string, u Upload) (dtos.UploadResult, error) {
	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := objects.Put(ctx, constants.BucketDocuments, key, u.Body, u.Size, contentType); err != nil {
		return dtos.UploadResult{}, apperrors.New(constants.ErrCodeStorageFailed, err)
	}
	return dtos.UploadResult{Path: key, PublicURL: objects.PublicURL(constants.BucketDocuments, key)}, nil
}
