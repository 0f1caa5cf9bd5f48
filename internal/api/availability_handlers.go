package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/models/dtos"
)

// ListMyAvailabilities handles GET /api/v1/me/availabilities
func (h *Handlers) ListMyAvailabilities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		rows, err := h.deps.Services.Availability.List(r.Context(), uid)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Availabilities fetched", rows)
	}
}

// CreateAvailability handles POST /api/v1/me/availabilities
func (h *Handlers) CreateAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		var in dtos.AvailabilityInput
		if err := decodeBody(r, &in); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		row, err := h.deps.Services.Availability.Create(r.Context(), uid, in)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Availability created", row, http.StatusCreated)
	}
}

// UpdateAvailability handles PATCH /api/v1/availabilities/{id}
func (h *Handlers) UpdateAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var patch dtos.AvailabilityPatch
		if err := decodeBody(r, &patch); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		row, err := h.deps.Services.Availability.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Availability updated", row)
	}
}

// DeleteAvailability handles DELETE /api/v1/availabilities/{id}
func (h *Handlers) DeleteAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := h.deps.Services.Availability.Remove(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Availability deleted", map[string]string{"id": id})
	}
}

// TeamAvailability handles GET /api/v1/team/availability?month=YYYY-MM
func (h *Handlers) TeamAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		res, err := h.deps.Services.Team.Availability(r.Context(), r.URL.Query().Get("month"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Team availability fetched", res)
	}
}

// TeamStats handles GET /api/v1/team/stats
func (h *Handlers) TeamStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		stats, err := h.deps.Services.Team.Stats(r.Context())
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Team stats fetched", stats)
	}
}
