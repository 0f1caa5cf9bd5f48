package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/models/dtos"
)

// ListTrainings handles GET /api/v1/trainings
func (h *Handlers) ListTrainings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		trainings, err := h.deps.Services.Trainings.List(r.Context())
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Trainings fetched", trainings)
	}
}

// CreateTraining handles POST /api/v1/trainings
func (h *Handlers) CreateTraining() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var in dtos.TrainingInput
		if err := decodeBody(r, &in); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		training, err := h.deps.Services.Trainings.Create(r.Context(), in)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Training created", training, http.StatusCreated)
	}
}

// UpdateTraining handles PATCH /api/v1/trainings/{id}
func (h *Handlers) UpdateTraining() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var patch dtos.TrainingPatch
		if err := decodeBody(r, &patch); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		training, err := h.deps.Services.Trainings.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Training updated", training)
	}
}

// DeleteTraining handles DELETE /api/v1/trainings/{id}
func (h *Handlers) DeleteTraining() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := h.deps.Services.Trainings.Remove(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Training deleted", map[string]string{"id": id})
	}
}

// MyCertifications handles GET /api/v1/me/certifications
func (h *Handlers) MyCertifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		certs, err := h.deps.Services.Trainings.Certifications(r.Context(), uid)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Certifications fetched", certs)
	}
}

// MyTrainings handles GET /api/v1/me/trainings: the catalogue joined with
// the caller's certifications
func (h *Handlers) MyTrainings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		rows, err := h.deps.Services.Trainings.WithStatus(r.Context(), uid)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Trainings fetched", rows)
	}
}

// UserCertifications handles GET /api/v1/users/{id}/certifications. Other
// members' records need the roster capability.
func (h *Handlers) UserCertifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		target := chi.URLParam(r, "id")
		if target != uid && !auth.GetUserClaims(r.Context()).HasPermission(auth.ActionViewTeamRoster) {
			common.RespondError(w, initTime, apperrors.PermissionDenied("only a chief can view another member's certifications"), "")
			return
		}

		certs, err := h.deps.Services.Trainings.Certifications(r.Context(), target)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Certifications fetched", certs)
	}
}

// AddCertification handles POST /api/v1/certifications
func (h *Handlers) AddCertification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var in dtos.CertificationInput
		if err := decodeBody(r, &in); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		cert, err := h.deps.Services.Trainings.AddCertification(r.Context(), in)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Certification added", cert, http.StatusCreated)
	}
}

// RemoveCertification handles DELETE /api/v1/certifications/{id}
func (h *Handlers) RemoveCertification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := h.deps.Services.Trainings.RemoveCertification(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Certification removed", map[string]string{"id": id})
	}
}

// UploadCertificate handles POST /api/v1/certifications/document
// (multipart: user_id, training_id, file)
func (h *Handlers) UploadCertificate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		upload, closeFile, err := readUpload(w, r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		defer closeFile()

		userID, trainingID := r.FormValue("user_id"), r.FormValue("training_id")
		if userID == "" || trainingID == "" {
			common.RespondError(w, initTime, apperrors.Validation("user_id and training_id are required"), "")
			return
		}

		res, err := h.deps.Services.Trainings.UploadCertificate(r.Context(), userID, trainingID, upload)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Certificate uploaded", res, http.StatusCreated)
	}
}
