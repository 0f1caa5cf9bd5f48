package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
)

// ListMissions handles GET /api/v1/missions?status=&from=&to=
func (h *Handlers) ListMissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()

		filters := dtos.MissionFilters{
			Status: constants.MissionStatus(q.Get("status")),
			From:   q.Get("from"),
			To:     q.Get("to"),
		}

		missions, err := h.deps.Services.Missions.List(r.Context(), filters)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Missions fetched", missions)
	}
}

// UpcomingMissions handles GET /api/v1/missions/upcoming?limit=
func (h *Handlers) UpcomingMissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		limit, err := common.ParsePositiveInt(r.URL.Query().Get("limit"), 0)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		missions, err := h.deps.Services.Missions.Upcoming(r.Context(), limit)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Upcoming missions fetched", missions)
	}
}

// GetMission handles GET /api/v1/missions/{id}
func (h *Handlers) GetMission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		mission, err := h.deps.Services.Missions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Mission fetched", mission)
	}
}

// CreateMission handles POST /api/v1/missions
func (h *Handlers) CreateMission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var in dtos.MissionInput
		if err := decodeBody(r, &in); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		mission, err := h.deps.Services.Missions.Create(r.Context(), in)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Mission created", mission, http.StatusCreated)
	}
}

// UpdateMission handles PATCH /api/v1/missions/{id}
func (h *Handlers) UpdateMission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var patch dtos.MissionPatch
		if err := decodeBody(r, &patch); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		mission, err := h.deps.Services.Missions.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Mission updated", mission)
	}
}

// DeleteMission handles DELETE /api/v1/missions/{id}
func (h *Handlers) DeleteMission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := h.deps.Services.Missions.Remove(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Mission deleted", map[string]string{"id": id})
	}
}

// ListMissionFlights handles GET /api/v1/missions/{id}/flights
func (h *Handlers) ListMissionFlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flights, err := h.deps.Services.Flights.List(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Flights fetched", flights)
	}
}

// CreateFlight handles POST /api/v1/missions/{id}/flights
func (h *Handlers) CreateFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var in dtos.FlightInput
		if err := decodeBody(r, &in); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		in.MissionID = chi.URLParam(r, "id")

		flight, err := h.deps.Services.Flights.Create(r.Context(), in)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Flight logged", flight, http.StatusCreated)
	}
}

// UpdateFlight handles PATCH /api/v1/flights/{id}
func (h *Handlers) UpdateFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var patch dtos.FlightPatch
		if err := decodeBody(r, &patch); err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		flight, err := h.deps.Services.Flights.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Flight updated", flight)
	}
}

// DeleteFlight handles DELETE /api/v1/flights/{id}
func (h *Handlers) DeleteFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := h.deps.Services.Flights.Remove(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}
		common.RespondSuccess(w, initTime, "Flight deleted", map[string]string{"id": id})
	}
}
