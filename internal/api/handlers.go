package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/services"
)

// maxUploadBytes caps multipart uploads
const maxUploadBytes = 10 << 20

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// decodeBody reads a JSON request body into v, rejecting unknown fields
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("request body is required")
		}
		return apperrors.Validation("invalid request body: %v", err)
	}
	return nil
}

func callerID(r *http.Request) (string, error) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		return "", apperrors.New(constants.ErrCodeUnauthenticated, nil)
	}
	return claims.UserID(), nil
}

// readUpload pulls the "file" part of a multipart form
func readUpload(w http.ResponseWriter, r *http.Request) (services.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return services.Upload{}, nil, apperrors.Validation("invalid multipart form: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return services.Upload{}, nil, apperrors.Validation("file is required")
	}
	u := services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return u, func() { _ = file.Close() }, nil
}
