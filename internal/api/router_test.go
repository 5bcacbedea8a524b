package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/shaun/pagesmith/internal/deploy"
)

func TestRouter_healthAndIndex(t *testing.T) {
	router := NewRouter(NewHandler(&fakeDispatcher{}, "u", zap.NewNop()), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /health: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /: %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestRouter_options(t *testing.T) {
	router := NewRouter(NewHandler(&fakeDispatcher{}, "", zap.NewNop()), zap.NewNop())
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS: %d", rec.Code)
	}
}

func TestRouter_unknownMethod(t *testing.T) {
	router := NewRouter(NewHandler(&fakeDispatcher{}, "", zap.NewNop()), zap.NewNop())
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /: %d", rec.Code)
	}
}

type panicDispatcher struct{}

func (panicDispatcher) Handle(context.Context, deploy.Request) (*deploy.Payload, error) {
	panic("boom")
}

func TestRouter_recoversPanics(t *testing.T) {
	router := NewRouter(NewHandler(panicDispatcher{}, "", zap.NewNop()), zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"secret":"s1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("panic: %d", rec.Code)
	}
}
