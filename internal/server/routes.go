package server

import (
	"net/http"
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/appid"
	"github.com/lightspeedtech/lightspeed/internal/chat"
	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/observability"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
	"github.com/lightspeedtech/lightspeed/internal/server/handlers"
	servermw "github.com/lightspeedtech/lightspeed/internal/server/middleware"
)

// ContactRateLimitedMessage is returned when a client exceeds the contact form limit.
const ContactRateLimitedMessage = "Too many requests. Please try again in an hour."

func (s *Server) registerRoutes() {
	health := s.deps.Health
	s.router.Get("/health", health.HealthHandler)
	s.router.Get("/health/live", health.LivenessHandler)
	s.router.Get("/health/ready", health.ReadinessHandler)
	s.router.Get("/health/startup", health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Method(http.MethodGet, "/metrics", newMetricsProxy())

	s.router.With(servermw.RateLimit("chat", s.deps.ChatLimiter, rejectChat)).
		Post("/api/chat", (&handlers.ChatHandler{
			Service:       s.deps.Chat,
			CredentialEnv: s.deps.CredentialEnv,
		}).ServeHTTP)

	s.router.With(servermw.RateLimit("contact", s.deps.ContactLimiter, rejectContact)).
		Post("/api/contact", (&handlers.ContactHandler{Service: s.deps.Contact}).ServeHTTP)

	s.router.Get("/api/whatsapp", (&handlers.WhatsAppHandler{Resolver: s.deps.WhatsApp}).ServeHTTP)

	s.registerAdminEndpoint()
}

func rejectChat(w http.ResponseWriter, r *http.Request, _ ratelimit.Decision) {
	metrics.RecordChatReply("rate_limited")
	apperrors.RespondWithError(w, r, apperrors.NewRateLimitedError(chat.MessageRateLimited))
}

func rejectContact(w http.ResponseWriter, r *http.Request, _ ratelimit.Decision) {
	metrics.RecordContactSubmission("rate_limited")
	apperrors.RespondWithError(w, r, apperrors.NewRateLimitedError(ContactRateLimitedMessage))
}

// registerAdminEndpoint exposes POST /admin/signal when an admin token is set.
func (s *Server) registerAdminEndpoint() {
	envKey := appid.Get().EnvKey("ADMIN_TOKEN")
	adminToken := os.Getenv(envKey)
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + envKey + " set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
