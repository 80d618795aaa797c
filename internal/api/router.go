package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medcal/scheduling/internal/appointment"
)

type RouterConfig struct {
	Service *appointment.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Log     zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Log))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	svc, log := cfg.Service, cfg.Log

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(svc, log, false))
		r.Post("/self", createAppointmentHandler(svc, log, true))
		r.Get("/", listByStatusHandler(svc, log))
		r.Get("/{id}", getAppointmentHandler(svc, log))
		r.Put("/{id}", updateAppointmentHandler(svc, log))
		r.Patch("/{id}/status", setStatusHandler(svc, log, false))
		r.Post("/{id}/transition", setStatusHandler(svc, log, true))
		r.Post("/{id}/cancel", cancelAppointmentHandler(svc, log))
		r.Delete("/{id}", deleteAppointmentHandler(svc, log))
	})

	r.Route("/doctors/{id}", func(r chi.Router) {
		r.Get("/availability", checkAvailabilityHandler(svc, log))
		r.Get("/slots", slotsHandler(svc, log))
		r.Get("/conflicts", conflictsHandler(svc, log))
		r.Get("/appointments", listByDoctorHandler(svc, log))
	})

	r.Get("/patients/{id}/appointments", listByPatientHandler(svc, log))

	return r
}
