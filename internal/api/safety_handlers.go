package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
)

func guidelineFilters(r *http.Request) dtos.GuidelineFilters {
	q := r.URL.Query()
	return dtos.GuidelineFilters{
		Category: constants.GuidelineCategory(q.Get("category")),
		Priority: constants.GuidelinePriority(q.Get("priority")),
		Search:   q.Get("search"),
	}
}

// ListGuidelines handles GET /api/v1/safety?category=&priority=&search=
func (h *Handlers) ListGuidelines() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := h.deps.Services.Safety.List(r.Context(), guidelineFilters(r))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Safety guidelines fetched", rows)
	}
}

// GroupedGuidelines handles GET /api/v1/safety/grouped
func (h *Handlers) GroupedGuidelines() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		groups, err := h.deps.Services.Safety.Grouped(r.Context(), guidelineFilters(r))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Safety guidelines fetched", groups)
	}
}

// CreateGuideline handles POST /api/v1/safety
func (h *Handlers) CreateGuideline() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var in dtos.GuidelineInput
		if err := decodeBody(r, &in); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		row, err := h.deps.Services.Safety.Create(r.Context(), in)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Safety guideline created", row, http.StatusCreated)
	}
}

// UpdateGuideline handles PATCH /api/v1/safety/{id}
func (h *Handlers) UpdateGuideline() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var patch dtos.GuidelinePatch
		if err := decodeBody(r, &patch); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		row, err := h.deps.Services.Safety.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Safety guideline updated", row)
	}
}

// DeleteGuideline handles DELETE /api/v1/safety/{id}
func (h *Handlers) DeleteGuideline() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := h.deps.Services.Safety.Remove(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Safety guideline deleted", map[string]string{"id": id})
	}
}

// UploadGuidelineDocument handles POST /api/v1/safety/{id}/document
func (h *Handlers) UploadGuidelineDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		upload, closeFile, err := readUpload(w, r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		defer closeFile()

		res, err := h.deps.Services.Safety.UploadDocument(r.Context(), chi.URLParam(r, "id"), upload)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Document uploaded", res, http.StatusCreated)
	}
}
