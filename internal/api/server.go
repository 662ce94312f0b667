package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/provisioning/internal/api/handler"
	mw "github.com/edvin/provisioning/internal/api/middleware"
	"github.com/edvin/provisioning/internal/api/response"
	"github.com/edvin/provisioning/internal/centralserver"
	"github.com/edvin/provisioning/internal/config"
	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

// Pinger is a central server database that can be health checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the long-lived components the server routes requests to.
type Deps struct {
	Auth   *core.AuthService
	Shards *core.ShardSet
	Alerts *core.AlertService
	Client *centralserver.Client
	// Pingers are checked by /readyz, keyed by central server id.
	Pingers map[int]Pinger
}

type Server struct {
	router chi.Router
	logger zerolog.Logger
	cfg    *config.Config
	deps   Deps
}

func NewServer(logger zerolog.Logger, cfg *config.Config, deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		cfg:    cfg,
		deps:   deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// No RealIP: X-Forwarded-For sent to central servers must be the socket peer.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(mw.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	if s.cfg.MetricsListenAddr == "" {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteEnvelope(w, model.NewEnvelope(model.ResultNotFound, "Unknown endpoint"))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteEnvelope(w, model.NewEnvelope(model.ResultMethodNotAllowed, ""))
	})

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	provisioning := handler.NewProvisioning(
		s.cfg.EndpointBase,
		s.deps.Auth,
		s.deps.Shards,
		core.NewLocatorService(s.deps.Shards),
		core.NewPlacementService(s.deps.Shards),
		s.deps.Client,
		handler.NewAlert(s.deps.Alerts),
	)

	s.router.Group(func(r chi.Router) {
		r.Use(mw.BasicAuth(s.deps.Auth))
		r.Handle(s.cfg.EndpointBase, provisioning)
		r.Handle(s.cfg.EndpointBase+"/*", provisioning)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleReadyz pings every central server database in parallel.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ids := s.deps.Shards.IDs()
	results := make([]string, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			p, ok := s.deps.Pingers[id]
			if !ok {
				results[i] = "no database pool"
				return nil
			}
			if err := p.Ping(ctx); err != nil {
				results[i] = err.Error()
				return nil
			}
			results[i] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	checks := make(map[string]string, len(ids))
	healthy := true
	for i, id := range ids {
		checks["central_server_"+strconv.Itoa(id)] = results[i]
		if results[i] != "ok" {
			healthy = false
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Readiness returns the /readyz handler for mounting on another listener.
func (s *Server) Readiness() http.Handler {
	return http.HandlerFunc(s.handleReadyz)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
