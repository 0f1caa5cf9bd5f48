package api

import (
	"net/http"
	"time"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
)

// GetMe handles GET /api/v1/me
func (h *Handlers) GetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		profile, err := h.deps.Services.Profiles.Get(r.Context(), uid)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Profile fetched", profile)
	}
}

// UpdateMe handles PATCH /api/v1/me
func (h *Handlers) UpdateMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		var patch dtos.ProfilePatch
		if err := decodeBody(r, &patch); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		profile, err := h.deps.Services.Profiles.Update(r.Context(), uid, patch)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Profile updated", profile)
	}
}

// UploadAvatar handles POST /api/v1/me/avatar (multipart, field "file")
func (h *Handlers) UploadAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		upload, closeFile, err := readUpload(w, r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		defer closeFile()

		res, err := h.deps.Services.Profiles.UploadAvatar(r.Context(), uid, upload.Body, upload.Size)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Avatar uploaded", res, http.StatusCreated)
	}
}

// GetCapabilities handles GET /api/v1/me/capabilities. Clients hide actions
// the role cannot perform.
func (h *Handlers) GetCapabilities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, apperrors.New(constants.ErrCodeUnauthenticated, nil), "")
			return
		}

		common.RespondSuccess(w, initTime, "Capabilities fetched", map[string]any{
			"role":         claims.Role(),
			"capabilities": auth.Capabilities(claims.Role()),
		})
	}
}

// ListProfiles handles GET /api/v1/profiles
func (h *Handlers) ListProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		profiles, err := h.deps.Services.Profiles.Team(r.Context())
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Profiles fetched", profiles)
	}
}
