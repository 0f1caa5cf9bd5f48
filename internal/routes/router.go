package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skywatch/crewdeck/internal/api"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
	"skywatch/crewdeck/internal/middleware"
)

type Options struct {
	Deps           *api.Dependencies
	Metrics        *metrics.MetricsRegistry
	Gatherer       prometheus.Gatherer
	Issuer         *auth.TokenIssuer
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Health         map[string]api.Pinger
	UpSince        time.Time
}

func RegisterRoutes(opts Options) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(opts.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(opts.Health, opts.UpSince))

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	handlers := api.NewHandlers(opts.Deps)
	limiter := middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)
		v1.Use(middleware.AuthMiddleware(opts.Issuer, opts.Deps.Repo.Profiles)) // global: all routes must be authenticated

		// Profile
		v1.Get("/me", handlers.GetMe())
		v1.Patch("/me", handlers.UpdateMe())
		v1.Post("/me/avatar", handlers.UploadAvatar())
		v1.Get("/me/capabilities", handlers.GetCapabilities())

		// Availability
		v1.Get("/me/availabilities", handlers.ListMyAvailabilities())
		v1.Post("/me/availabilities", handlers.CreateAvailability())
		v1.Patch("/availabilities/{id}", handlers.UpdateAvailability())
		v1.Delete("/availabilities/{id}", handlers.DeleteAvailability())

		// Team dashboard
		v1.Get("/team/availability", handlers.TeamAvailability())
		v1.Get("/team/stats", handlers.TeamStats())

		// Missions and flights
		v1.Get("/missions", handlers.ListMissions())
		v1.Get("/missions/upcoming", handlers.UpcomingMissions())
		v1.Get("/missions/{id}", handlers.GetMission())
		v1.Get("/missions/{id}/flights", handlers.ListMissionFlights())
		v1.Post("/missions/{id}/flights", handlers.CreateFlight())
		v1.Patch("/flights/{id}", handlers.UpdateFlight())
		v1.Delete("/flights/{id}", handlers.DeleteFlight())

		// Trainings and certifications
		v1.Get("/trainings", handlers.ListTrainings())
		v1.Get("/me/certifications", handlers.MyCertifications())
		v1.Get("/me/trainings", handlers.MyTrainings())
		v1.Get("/users/{id}/certifications", handlers.UserCertifications())

		// Safety
		v1.Get("/safety", handlers.ListGuidelines())
		v1.Get("/safety/grouped", handlers.GroupedGuidelines())

		// Change stream
		v1.Get("/events", handlers.Events())

		// Chief-only groups
		v1.Group(func(roster chi.Router) {
			roster.Use(middleware.RequireCapability(auth.ActionViewTeamRoster))
			roster.Get("/profiles", handlers.ListProfiles())
		})

		v1.Group(func(missions chi.Router) {
			missions.With(middleware.RequireCapability(auth.ActionCreateMission)).Post("/missions", handlers.CreateMission())
			missions.With(middleware.RequireCapability(auth.ActionUpdateMission)).Patch("/missions/{id}", handlers.UpdateMission())
			missions.With(middleware.RequireCapability(auth.ActionDeleteMission)).Delete("/missions/{id}", handlers.DeleteMission())
		})

		v1.Group(func(trainings chi.Router) {
			trainings.Use(middleware.RequireCapability(auth.ActionManageTrainings))
			trainings.Post("/trainings", handlers.CreateTraining())
			trainings.Patch("/trainings/{id}", handlers.UpdateTraining())
			trainings.Delete("/trainings/{id}", handlers.DeleteTraining())
		})

		v1.Group(func(certs chi.Router) {
			certs.Use(middleware.RequireCapability(auth.ActionManageCertifications))
			certs.Post("/certifications", handlers.AddCertification())
			certs.Delete("/certifications/{id}", handlers.RemoveCertification())
			certs.Post("/certifications/document", handlers.UploadCertificate())
		})

		v1.Group(func(safety chi.Router) {
			safety.Use(middleware.RequireCapability(auth.ActionManageSafetyGuidelines))
			safety.Post("/safety", handlers.CreateGuideline())
			safety.Patch("/safety/{id}", handlers.UpdateGuideline())
			safety.Delete("/safety/{id}", handlers.DeleteGuideline())
			safety.Post("/safety/{id}/document", handlers.UploadGuidelineDocument())
		})
	})

	return r
}
