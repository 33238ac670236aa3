package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Liveness(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()

	if err := NewHealthHandler(nil).Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	e := newTestEcho()

	rec := httptest.NewRecorder()
	h := NewHealthHandler(map[string]Pinger{"store": stubPinger{}, "redis": nil})
	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	deps := resp["dependencies"].(map[string]any)
	if rec.Code != http.StatusOK || resp["status"] != "ok" || len(deps) != 1 {
		t.Fatalf("unexpected response %d %v", rec.Code, resp)
	}

	rec = httptest.NewRecorder()
	h = NewHealthHandler(map[string]Pinger{"store": stubPinger{}, "redis": stubPinger{err: errors.New("down")}})
	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp = decode(t, rec)
	if rec.Code != http.StatusServiceUnavailable || resp["status"] != "degraded" {
		t.Fatalf("unexpected response %d %v", rec.Code, resp)
	}
	redis := resp["dependencies"].(map[string]any)["redis"].(map[string]any)
	if redis["status"] != "unhealthy" || redis["error"] != "down" {
		t.Fatalf("unexpected redis status: %v", redis)
	}
}
