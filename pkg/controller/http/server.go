// Package http exposes the REST API for message processing and
// investigation management.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/payops-lab/mtnavigator/pkg/service/llm"
	"github.com/payops-lab/mtnavigator/pkg/service/tabular"
	"github.com/payops-lab/mtnavigator/pkg/usecase"
	"github.com/payops-lab/mtnavigator/pkg/utils/errutil"
	"github.com/payops-lab/mtnavigator/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/messages", func(r chi.Router) {
			r.Post("/process", s.handleProcessMessage)
			r.Post("/analyze", s.handleAnalyzeMessage)
			r.Post("/bulk", s.handleProcessBulk)
			r.Get("/{id}", s.handleGetMessage)
		})

		r.Route("/investigations", func(r chi.Router) {
			r.Post("/", s.handleCreateInvestigation)
			r.Get("/", s.handleListInvestigations)
			r.Get("/analytics/summary", s.handleAnalytics)
			r.Get("/reference/{reference}", s.handleGetInvestigationByReference)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetInvestigation)
				r.Delete("/", s.handleDeleteInvestigation)
				r.Post("/actions", s.handleAddAction)
				r.Post("/resolve", s.handleResolveInvestigation)
				r.Post("/close", s.handleCloseInvestigation)
				r.Post("/notification", s.handleGenerateNotification)
			})
		})

		r.Put("/actions/{id}/status", s.handleUpdateActionStatus)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Error("failed to encode response", "error", err)
	}
}

// handleError maps domain errors to HTTP status codes and writes the response
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidInput), errors.Is(err, tabular.ErrInvalidFormat):
		status = http.StatusBadRequest
	case errors.Is(err, llm.ErrGeneration):
		status = http.StatusBadGateway
	}
	errutil.HandleHTTP(ctx, w, err, status)
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
