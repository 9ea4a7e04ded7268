package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"cloudlead/internal/airtable"
	"cloudlead/internal/config"
	"cloudlead/internal/models"
	"cloudlead/internal/telemetry"
)

const (
	homeMessage    = "CloudLead Automation is Running! 🚀"
	createdMessage = "Project created successfully"
	maxBodyBytes   = 1 << 20
)

// ProjectCreator inserts New projects into the record store.
type ProjectCreator interface {
	CreateProject(ctx context.Context, in models.ProjectInput) error
}

// Limiter decides whether a client may create another project.
type Limiter interface {
	Allow(ctx context.Context, client string) (bool, float64, error)
}

// Server wires HTTP handlers for the webhook API.
type Server struct {
	cfg      config.Config
	projects ProjectCreator
	limiter  Limiter
	logger   *zap.Logger
}

// New constructs the API server. limiter may be nil.
func New(cfg config.Config, projects ProjectCreator, limiter Limiter, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		projects: projects,
		limiter:  limiter,
		logger:   logger.With(zap.String("component", "api")),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(homeMessage))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Mount("/metrics", telemetry.Handler())

	r.Post("/webhook/project", s.handleCreateProject)
	return r
}

type projectRequest struct {
	ProjectName *string `json:"project_name"`
	Industry    *string `json:"industry"`
	Region      *string `json:"region"`
	LeadCount   *int    `json:"lead_count"`
}

// input fills every missing field with its default.
func (p projectRequest) input() models.ProjectInput {
	in := models.ProjectInput{
		Name:      models.DefaultProjectName,
		Industry:  models.DefaultIndustry,
		Region:    models.DefaultRegion,
		LeadCount: models.DefaultLeadCount,
	}
	if p.ProjectName != nil {
		in.Name = *p.ProjectName
	}
	if p.Industry != nil {
		in.Industry = *p.Industry
	}
	if p.Region != nil {
		in.Region = *p.Region
	}
	if p.LeadCount != nil {
		in.LeadCount = *p.LeadCount
	}
	return in
}

type webhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))

	if s.limiter != nil {
		allowed, _, err := s.limiter.Allow(r.Context(), clientKey(r))
		if err != nil {
			log.Error("rate limit error", zap.Error(err))
			writeWebhookError(w, http.StatusInternalServerError, "rate limit error")
			return
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			writeWebhookError(w, http.StatusTooManyRequests, "rate limited")
			return
		}
	}

	req, err := decodeProjectRequest(r.Body)
	if err != nil {
		log.Warn("invalid webhook payload", zap.Error(err))
		writeWebhookError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.projects.CreateProject(r.Context(), req.input()); err != nil {
		var apiErr *airtable.APIError
		if errors.As(err, &apiErr) {
			log.Error("webhook error", zap.Int("store_status", apiErr.StatusCode), zap.String("body", apiErr.Body))
			writeWebhookError(w, http.StatusBadRequest, apiErr.Body)
			return
		}
		log.Error("webhook exception", zap.Error(err))
		writeWebhookError(w, http.StatusInternalServerError, err.Error())
		return
	}

	telemetry.WebhookCreated.Inc()
	log.Info("project created via webhook")
	writeJSON(w, http.StatusOK, webhookResponse{Status: "success", Message: createdMessage})
}

// decodeProjectRequest treats an empty body as an empty object.
func decodeProjectRequest(body io.Reader) (projectRequest, error) {
	var req projectRequest
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid json: %w", err)
	}
	return req, nil
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic in handler", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				writeWebhookError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeWebhookError(w http.ResponseWriter, code int, msg string) {
	telemetry.WebhookErrors.Inc()
	writeJSON(w, code, webhookResponse{Status: "error", Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
