package main

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/handler"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		AuthSecret:        "router-test-secret",
		SessionCookieName: "todo_session",
	}

	healthHandler := handler.NewHealthHandler(nil, nil, "test")
	taskHandler := handler.NewTaskHandler(nil, logger)
	authHandler := handler.NewAuthHandler(nil, logger, cfg.SessionCookieName, false)

	return setupRouter(healthHandler, taskHandler, authHandler, nil, cfg, logger)
}

func routeTable(t *testing.T, router *chi.Mux) map[string]bool {
	t.Helper()

	routes := make(map[string]bool)
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		routes[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walk router: %v", err)
	}
	return routes
}

func TestRouterRegistersTaskRoutes(t *testing.T) {
	routes := routeTable(t, newTestRouter(t))

	want := []string{
		"GET /api/v1/tasks",
		"POST /api/v1/tasks",
		"GET /api/v1/tasks/{id}",
		"PUT /api/v1/tasks/{id}",
		"PATCH /api/v1/tasks/{id}",
		"DELETE /api/v1/tasks/{id}",
		"PATCH /api/v1/tasks/{id}/complete",
		"PATCH /api/v1/tasks/{id}/incomplete",
	}
	for _, route := range want {
		if !routes[route] {
			t.Errorf("route %s not registered", route)
		}
	}
}

func TestRouterRegistersAuthAndHealthRoutes(t *testing.T) {
	routes := routeTable(t, newTestRouter(t))

	want := []string{
		"POST /api/v1/auth/signup",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"GET /api/v1/health",
		"GET /healthz",
		"GET /readyz",
	}
	for _, route := range want {
		if !routes[route] {
			t.Errorf("route %s not registered", route)
		}
	}
}
