package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubChecker struct {
	err error
}

func (s stubChecker) CheckHealth(ctx context.Context) error {
	return s.err
}

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("ok", stubChecker{err: nil})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Fatalf("expected healthy status, got %s", resp.Status)
	}

	if resp.Version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %s", resp.Version)
	}

	if resp.Checks["ok"] != "healthy" {
		t.Fatalf("expected ok check to be healthy, got %s", resp.Checks["ok"])
	}
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("db", stubChecker{err: errors.New("down")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Message string                 `json:"message"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("expected SERVICE_UNAVAILABLE error code, got %s", resp.Error.Code)
	}

	details := resp.Error.Details
	if details == nil {
		t.Fatalf("expected error details to include probe context")
	}

	tests, ok := details["checks"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected checks in error details")
	}

	if status, ok := tests["db"].(string); !ok || status != "unhealthy" {
		t.Fatalf("expected db check to be unhealthy, got %v", tests["db"])
	}
}

func TestDetermineOverallStatusTreatsTimeoutAsDegraded(t *testing.T) {
	manager := NewHealthManager("dev")

	status := manager.determineOverallStatus(map[string]string{
		"db": "timeout",
	})

	if status != "degraded" {
		t.Fatalf("expected degraded status, got %s", status)
	}
}

func TestDegradedChecksKeepReadinessUp(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("chat_credential", CredentialCheck("ANTHROPIC_API_KEY", func() bool { return false }))
	manager.RegisterChecker("mail_credential", CredentialCheck("RESEND_API_KEY", func() bool { return true }))

	rec := httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Fatalf("expected degraded status, got %s", resp.Status)
	}
	if resp.Checks["chat_credential"] != StatusDegraded || resp.Checks["mail_credential"] != StatusHealthy {
		t.Fatalf("unexpected checks: %v", resp.Checks)
	}
}

func TestStartupProbeWaitsForMarkStarted(t *testing.T) {
	manager := NewHealthManager("dev")

	rec := httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 before start, got %d", rec.Code)
	}

	manager.MarkStarted()
	rec = httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 after start, got %d", rec.Code)
	}
}

func TestLivenessIgnoresChecks(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("db", stubChecker{err: errors.New("down")})

	rec := httptest.NewRecorder()
	manager.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRedisCheck(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close() // nolint:errcheck

	if err := RedisCheck(client).CheckHealth(context.Background()); err != nil {
		t.Fatalf("expected healthy redis, got %v", err)
	}

	mr.Close()
	err := RedisCheck(client).CheckHealth(context.Background())
	if !errors.Is(err, ErrDegraded) {
		t.Fatalf("expected degraded after redis stops, got %v", err)
	}
}

func TestSettingCheckNamesMissingSetting(t *testing.T) {
	missing := "CONTACT_EMAIL"
	check := SettingCheck(func() string { return missing })

	err := check.CheckHealth(context.Background())
	if !errors.Is(err, ErrDegraded) {
		t.Fatalf("expected ErrDegraded, got %v", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("expected error to name %s, got %v", missing, err)
	}

	missing = ""
	if err := check.CheckHealth(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
}
