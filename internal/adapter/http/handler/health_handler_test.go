package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	redisCheck := HealthCheck{Name: "redis", Pinger: PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})}
	storeCheck := HealthCheck{Name: "store", Pinger: PingFunc(func(ctx context.Context) error { return nil })}

	rec := httptest.NewRecorder()
	NewHealthHandler(storeCheck, redisCheck).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["redis"] != "ok" || body["store"] != "ok" {
		t.Fatalf("unexpected body %+v", body)
	}

	mr.Close()

	rec = httptest.NewRecorder()
	NewHealthHandler(storeCheck, redisCheck).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", rec.Code)
	}
}

func TestHealthHandler_ReadinessFailure(t *testing.T) {
	failing := HealthCheck{Name: "postgres", Pinger: PingFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	})}

	rec := httptest.NewRecorder()
	NewHealthHandler(failing).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
