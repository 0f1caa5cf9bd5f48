package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/middleware"
	"skywatch/crewdeck/internal/realtime"
)

const (
	eventBuffer       = 64
	heartbeatInterval = 25 * time.Second
)

type invalidationMessage struct {
	Key  string          `json:"key"`
	Kind cache.EventKind `json:"kind"`
}

// streamScope lists the key prefixes one caller may see: its own scoped
// queries, the team-wide ones, and the flights of the followed mission.
func streamScope(uid, mission string) []cache.Key {
	scope := []cache.Key{
		cache.NewKey(constants.KeyProfile, uid),
		cache.NewKey(constants.KeyAvailabilities, uid),
		cache.NewKey(constants.KeyUserTrainings, uid),
		cache.NewKey(constants.KeyTrainingsWithStatus, uid),
		cache.NewKey(constants.KeyProfiles),
		cache.NewKey(constants.KeyTeamAvailability),
		cache.NewKey(constants.KeyTeamStats),
		cache.NewKey(constants.KeyMissions),
		cache.NewKey(constants.KeyMission),
		cache.NewKey(constants.KeyUpcomingMissions),
		cache.NewKey(constants.KeyTrainings),
		cache.NewKey(constants.KeySafetyGuidelines),
	}
	if mission != "" {
		scope = append(scope, cache.NewKey(constants.KeyFlights, mission))
	}
	return scope
}

func inScope(scope []cache.Key, k cache.Key) bool {
	for _, prefix := range scope {
		if k.HasPrefix(prefix) {
			return true
		}
	}
	return false
}

// Events handles GET /api/v1/events. It mounts the caller's scoped
// subscriptions for the lifetime of the connection and streams the cache
// key changes the caller may see as server-sent events. ?mission= adds that
// mission's flights.
func (h *Handlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		uid, err := callerID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		log := logging.WithRequest(middleware.RequestID(ctx), uid, r.URL.Path)
		mission := r.URL.Query().Get("mission")
		svcs := h.deps.Services
		subs := []*realtime.Subscription{
			svcs.Profiles.Watch(ctx, uid),
			svcs.Availability.Watch(ctx, uid),
			svcs.Trainings.Watch(ctx, uid),
		}
		flights := svcs.Flights.Watch(ctx, mission)
		defer func() {
			for _, s := range subs {
				s.Close()
			}
			flights.Close()
		}()

		scope := streamScope(uid, mission)
		events := make(chan cache.Event, eventBuffer)
		stop := h.deps.Cache.Observe(cache.Key{}, func(ev cache.Event) {
			if !inScope(scope, ev.Key) {
				return
			}
			select {
			case events <- ev:
			default:
				log.Warnw("Dropping event for slow stream", "key", ev.Key.String())
			}
		})
		defer stop()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "retry: 5000\nevent: ready\ndata: {}\n\n")
		flusher.Flush()

		log.Debugw("Event stream opened", "mission", mission)

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Debugw("Event stream closed")
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case ev := <-events:
				payload, err := json.Marshal(invalidationMessage{Key: ev.Key.String(), Kind: ev.Kind})
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload)
				flusher.Flush()
			}
		}
	}
}
