package handlers

import (
	"context"
	"net/http"
)

// Pinger checks one dependency's reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to the Pinger interface.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	dependencies map[string]Pinger
}

// NewHealthHandler returns a HealthHandler checking the named dependencies
// on readiness probes.
func NewHealthHandler(dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{dependencies: dependencies}
}

// Live handles GET /healthz.  It only confirms the process is serving.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz.  Every dependency must answer for the service
// to report ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.dependencies))
	healthy := true
	for name, dep := range h.dependencies {
		if err := dep.Ping(r.Context()); err != nil {
			checks[name] = "unreachable"
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}
	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}
