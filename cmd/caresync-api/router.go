package main

import (
	"context"
	"net/http"
	"time"

	"caresync-api/internal/auth"
	"caresync-api/internal/config"
	"caresync-api/internal/http/docs"
	"caresync-api/internal/http/handler"
	"caresync-api/internal/http/middleware"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/ratelimit"
	"caresync-api/internal/repo"
	"caresync-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RouterDeps carries everything buildRouter needs to assemble the HTTP surface.
type RouterDeps struct {
	Cfg             *config.Config
	Log             *logger.Logger
	Validator       *auth.HS256Validator
	IdempotencyRepo *repo.IdempotencyRepo
	RateLimiter     *ratelimit.RedisRateLimiter
	Metrics         *telemetry.Metrics
	Pool            *pgxpool.Pool // readiness check and debug handler

	// Handlers
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	ClientHandler   *handler.ClientHandler
	CareTeamHandler *handler.CareTeamHandler
	ShiftHandler    *handler.ShiftHandler
	DocumentHandler *handler.DocumentHandler
	DebugHandler    *handler.DebugHandler
}

// buildRouter assembles the chi.Router with all middlewares and routes.
func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Pool == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ready","note":"pool is nil"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Pool.Ping(ctx); err != nil {
			deps.Log.Error(ctx, "readiness check failed: database unavailable", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	// Account creation and login stay public
	if deps.AuthHandler != nil {
		r.Route("/v1/auth", func(r chi.Router) {
			r.Post("/register", deps.AuthHandler.Register)
			r.Post("/confirm", deps.AuthHandler.Confirm)
			r.Post("/login", deps.AuthHandler.Login)
		})
	}

	// Debug routes (dev-only)
	if deps.Cfg.IsDev() {
		r.Route("/debug", func(r chi.Router) {
			if deps.DebugHandler != nil {
				r.With(auth.JWTAuthMiddleware(deps.Validator, deps.Log)).Get("/auth", deps.DebugHandler.GetAuthDebug)
				r.Get("/db/ping", deps.DebugHandler.PingDB)
			}
		})
	}

	// Everything below requires a session token
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTAuthMiddleware(deps.Validator, deps.Log))
		r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerUserPerMin))

		idempotent := middleware.IdempotencyMiddleware(deps.IdempotencyRepo)

		if deps.UserHandler != nil {
			r.Route("/v1/users/me", func(r chi.Router) {
				r.Get("/", deps.UserHandler.GetMe)
				r.With(idempotent).Patch("/", deps.UserHandler.UpdateMe)
				r.Delete("/", deps.UserHandler.DeleteMe)
			})
		}

		if deps.CareTeamHandler != nil {
			r.With(idempotent).Post("/v1/invitations/redeem", deps.CareTeamHandler.RedeemInvitation)
		}

		if deps.ClientHandler != nil {
			r.Route("/v1/clients", func(r chi.Router) {
				r.Get("/", deps.ClientHandler.ListClients)
				r.With(idempotent).Post("/", deps.ClientHandler.CreateClient)

				r.Route("/{clientId}", func(r chi.Router) {
					r.Get("/", deps.ClientHandler.GetClient)
					r.Delete("/", deps.ClientHandler.DeleteClient)

					if deps.CareTeamHandler != nil {
						r.Route("/carers", func(r chi.Router) {
							r.With(idempotent).Post("/invitations", deps.CareTeamHandler.InviteCarer)
							r.With(idempotent).Post("/self", deps.CareTeamHandler.SelfAssign)
							r.Delete("/{carerId}", deps.CareTeamHandler.RemoveCarer)
						})
					}

					if deps.ShiftHandler != nil {
						r.Route("/shifts", func(r chi.Router) {
							r.Get("/", deps.ShiftHandler.ListShifts)
							r.With(idempotent).Post("/", deps.ShiftHandler.CreateShift)
							r.Route("/{shiftId}", func(r chi.Router) {
								r.Get("/", deps.ShiftHandler.GetShift)
								r.With(idempotent).Patch("/", deps.ShiftHandler.UpdateShift)
								r.Delete("/", deps.ShiftHandler.CancelShift)
							})
						})
					}
				})
			})
		}

		if deps.DocumentHandler != nil {
			r.Route("/v1/shifts/{shiftId}", func(r chi.Router) {
				r.Route("/notes", func(r chi.Router) {
					r.With(idempotent).Put("/", deps.DocumentHandler.WriteShiftNotes)
					r.Delete("/", deps.DocumentHandler.ClearShiftNotes)
					r.With(idempotent).Post("/export", deps.DocumentHandler.ExportShiftNotes)
				})
				r.Route("/handover", func(r chi.Router) {
					r.With(idempotent).Put("/", deps.DocumentHandler.WriteHandover)
					r.Delete("/", deps.DocumentHandler.ClearHandover)
				})
				r.Route("/incidents", func(r chi.Router) {
					r.With(idempotent).Post("/", deps.DocumentHandler.AddIncident)
					r.Route("/{incidentId}", func(r chi.Router) {
						r.With(idempotent).Patch("/", deps.DocumentHandler.UpdateIncident)
						r.Delete("/", deps.DocumentHandler.DeleteIncident)
						r.With(idempotent).Post("/export", deps.DocumentHandler.ExportIncident)
					})
				})
			})
		}
	})

	return r
}
