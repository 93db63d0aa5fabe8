package metrics

import (
	"time"

	"github.com/lightspeedtech/lightspeed/internal/observability"
)

// Metric names. The exporter prefixes them with the telemetry namespace.
const (
	ChatRepliesTotal        = "chat_completions_total"
	ChatUpstreamAttempts    = "chat_upstream_attempts_total"
	ChatUpstreamDuration    = "chat_upstream_duration_ms"
	ContactSubmissionsTotal = "contact_submissions_total"
	MailSendDuration        = "mail_send_duration_ms"
	RateLimitDecisions      = "ratelimit_decisions_total"

	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"
)

// RecordChatReply counts a finished chat request by outcome
// ("ok", "rate_limited", "upstream_error", "not_configured", ...).
func RecordChatReply(outcome string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ChatRepliesTotal, 1, map[string]string{
		"outcome": outcome,
	})
}

// RecordUpstreamAttempt records one model call made while serving a chat request.
func RecordUpstreamAttempt(provider, model, kind string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	labels := map[string]string{
		"provider": provider,
		"model":    model,
		"result":   kind,
	}
	_ = observability.TelemetrySystem.Counter(ChatUpstreamAttempts, 1, labels)
	_ = observability.TelemetrySystem.Histogram(ChatUpstreamDuration, duration, map[string]string{
		"provider": provider,
	})
}

// RecordContactSubmission counts contact form outcomes
// ("sent", "spam", "invalid", "rate_limited", "send_failed", "not_configured").
func RecordContactSubmission(outcome string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ContactSubmissionsTotal, 1, map[string]string{
		"outcome": outcome,
	})
}

func RecordMailSend(provider string, success bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	_ = observability.TelemetrySystem.Histogram(MailSendDuration, duration, map[string]string{
		"provider": provider,
		"status":   status,
	})
}

// RecordRateLimit counts limiter decisions per limiter name.
func RecordRateLimit(limiter string, allowed bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "rejected"
	}
	_ = observability.TelemetrySystem.Counter(RateLimitDecisions, 1, map[string]string{
		"limiter":  limiter,
		"decision": decision,
	})
}

// RecordHealthCheck records a health check execution.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	_ = observability.TelemetrySystem.Counter(HealthCheckTotal, 1, map[string]string{
		"check":  checkName,
		"status": status,
	})
	_ = observability.TelemetrySystem.Histogram(HealthCheckDuration, duration, map[string]string{
		"check": checkName,
	})
}

// SetServerStartTime records the server start time as a Unix timestamp.
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
}
