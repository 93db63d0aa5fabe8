package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/chat"
	"github.com/lightspeedtech/lightspeed/internal/config"
	"github.com/lightspeedtech/lightspeed/internal/contact"
	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/observability"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
	"github.com/lightspeedtech/lightspeed/internal/server/handlers"
	servermw "github.com/lightspeedtech/lightspeed/internal/server/middleware"
	"github.com/lightspeedtech/lightspeed/internal/whatsapp"
)

// Deps are the services behind the public endpoints. Nil limiters disable
// rate limiting for that endpoint.
type Deps struct {
	Chat           *chat.Service
	ChatLimiter    ratelimit.Limiter
	CredentialEnv  string
	Contact        *contact.Service
	ContactLimiter ratelimit.Limiter
	WhatsApp       whatsapp.Resolver
	Health         *handlers.HealthManager
}

// Server is the HTTP front of the site backend.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	deps   Deps
}

// New builds the router and registers every route.
func New(cfg config.ServerConfig, deps Deps) *Server {
	r := chi.NewRouter()

	// Order: client address, request ID, metrics, then panic recovery closest
	// to the handlers so metrics see the 500.
	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	if deps.Health == nil {
		deps.Health = handlers.NewHealthManager(handlers.AppVersion)
	}

	s := &Server{
		router: r,
		cfg:    cfg,
		deps:   deps,
	}
	// Chat replies are bounded below WriteTimeout, so a 504 still reaches
	// the visitor.
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           r,
		ReadTimeout:       orDefault(cfg.ReadTimeout, 30*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      orDefault(cfg.WriteTimeout, 45*time.Second),
		IdleTimeout:       orDefault(cfg.IdleTimeout, 120*time.Second),
	}

	s.registerRoutes()

	return s
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("addr", ln.Addr().String()))
	}
	s.deps.Health.MarkStarted()

	return s.server.Serve(ln)
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
