// Package httpapi exposes the lifecycle manager over HTTP: catalog and
// status queries, lifecycle commands, preference edits, and a server-sent
// event stream of state and resource transitions.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelmgr/internal/manager"
	"modelmgr/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Models(ctx context.Context) []types.ModelStatus
	Status() types.StatusResponse
	CurrentState() manager.State
	Ready() bool

	Initialize(ctx context.Context, autoLoad bool) error
	Acquire(ctx context.Context, key string) error

	Preferences() types.Preferences
	SetPreferredModel(key string) error
	SetAutoLoad(enabled bool) error

	CanUpgradeModel() (bool, string)
	GetModelRecommendation() string
	Resample() types.ResourceSnapshot

	SubscribeStates() (<-chan manager.State, func())
	SubscribeSnapshots() (<-chan types.ResourceSnapshot, func())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// decodeJSON enforces content type and body size for JSON endpoints.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// NewMux builds the HTTP handler for the daemon.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.Models(r.Context())})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.CurrentState().View())
	})

	r.Get("/resources", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Resample())
	})

	r.Post("/initialize", func(w http.ResponseWriter, r *http.Request) {
		var req types.InitializeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.Initialize(ctx, req.AutoLoad); err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeManagerError(w, err)
			return
		}
		writeJSON(w, svc.CurrentState().View())
	})

	r.Post("/models/{key}/load", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.Acquire(ctx, key); err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeManagerError(w, err)
			return
		}
		writeJSON(w, svc.CurrentState().View())
	})

	r.Get("/preferences", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Preferences())
	})

	r.Put("/preferences", func(w http.ResponseWriter, r *http.Request) {
		var req types.PreferencesRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.PreferredModelKey != nil {
			if err := svc.SetPreferredModel(*req.PreferredModelKey); err != nil {
				writeManagerError(w, err)
				return
			}
		}
		if req.AutoLoadEnabled != nil {
			if err := svc.SetAutoLoad(*req.AutoLoadEnabled); err != nil {
				writeManagerError(w, err)
				return
			}
		}
		writeJSON(w, svc.Preferences())
	})

	r.Get("/recommendation", func(w http.ResponseWriter, r *http.Request) {
		snap := svc.Resample()
		writeJSON(w, types.RecommendationResponse{
			Recommendation: svc.GetModelRecommendation(),
			DeviceTier:     snap.DeviceTier,
		})
	})

	r.Get("/upgrade", func(w http.ResponseWriter, r *http.Request) {
		available, betterKey := svc.CanUpgradeModel()
		writeJSON(w, types.UpgradeResponse{Available: available, BetterKey: betterKey})
	})

	r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		serveEvents(w, r, svc)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
