// Package handler serves the scheduler's REST API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/httputil"
	"meeting-scheduler-api/internal/metrics"
	"meeting-scheduler-api/internal/middleware"
	"meeting-scheduler-api/internal/service"
	"meeting-scheduler-api/internal/timerange"
)

type Handler struct {
	svc *service.MeetingService
}

func New(svc *service.MeetingService) *Handler {
	return &Handler{svc: svc}
}

type Deps struct {
	Service        *service.MeetingService
	Log            *slog.Logger
	Metrics        *metrics.Metrics
	Limiter        *middleware.RateLimiter
	Secret         string
	AllowedOrigins []string
	// Ping backs /health. Nil reports healthy.
	Ping func(context.Context) error
	// GRPCWeb, when set, serves gRPC-Web calls to MeetingService.
	GRPCWeb http.Handler
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	h := New(d.Service)
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logging(d.Log, d.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(r.Context()); err != nil {
				d.Log.ErrorContext(r.Context(), "health check failed", "err", err)
				httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	if d.GRPCWeb != nil {
		r.Handle("/scheduler.v1.MeetingService/*", d.GRPCWeb)
	}

	r.Route("/api", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(middleware.RateLimitHTTP(d.Limiter))
		}
		r.Use(middleware.RequireToken(d.Secret))

		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", h.ListMeetings)
			r.Post("/", h.CreateMeeting)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetMeeting)
				r.Put("/", h.UpdateMeeting)
				r.Patch("/", h.PatchMeeting)
				r.Delete("/", h.DeleteMeeting)
				r.Post("/participants", h.AddParticipant)
				r.Delete("/participants/{email}", h.RemoveParticipant)
				r.Get("/conflicts", h.CheckConflicts)
				r.Get("/check-conflicts", h.CheckConflicts)
				r.Get("/export", h.Export)
			})
		})
		r.Route("/participants/{email}", func(r chi.Router) {
			r.Get("/meetings", h.ParticipantMeetings)
			r.Get("/conflicts", h.ParticipantConflicts)
		})
	})
	return r
}

// rangeFromQuery reads the optional start_date and end_date parameters.
func rangeFromQuery(r *http.Request) (timerange.Range, error) {
	q := r.URL.Query()
	return timerange.ParseBounds(q.Get("start_date"), q.Get("end_date"))
}

// pathParam returns the URL parameter with percent-escapes removed, so
// "alice%40example.com" and "alice@example.com" are the same address.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Invalid("body", "Request body is empty")
		}
		return errs.Invalid("body", "Malformed JSON: "+err.Error())
	}
	return nil
}
