package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status values.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusDegraded     = "degraded"
)

// apiProbeTimeout bounds the Todoist call made by the detailed endpoint.
const apiProbeTimeout = 5 * time.Second

// HealthInfo is static process information reported by /healthz/detailed.
type HealthInfo struct {
	Version  string `json:"version,omitempty"`
	ReadOnly bool   `json:"readOnly"`
	Timezone string `json:"timezone,omitempty"`
	Tools    int    `json:"tools,omitempty"`
}

// APIProbe checks that the Todoist API accepts the configured token.
type APIProbe func(ctx context.Context) error

// HealthChecker serves the liveness, readiness and detailed health
// endpoints.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
	info          HealthInfo
	probe         APIProbe
}

// NewHealthChecker creates a HealthChecker that starts out ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// SetInfo sets the process information shown by the detailed endpoint.
func (h *HealthChecker) SetInfo(info HealthInfo) {
	h.info = info
}

// SetAPIProbe sets the Todoist check run by the detailed endpoint. Readiness
// never calls it, so probes from an orchestrator do not spend API quota.
func (h *HealthChecker) SetAPIProbe(probe APIProbe) {
	h.probe = probe
}

// isServerShuttingDown is false for a nil server context.
func (h *HealthChecker) isServerShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Info   HealthInfo        `json:"info"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// LivenessHandler returns the /healthz handler. It only reports that the
// process is serving requests.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler returns the /readyz handler.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, ok := h.localChecks()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusNotReady, Checks: checks})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK, Checks: checks})
	})
}

// localChecks evaluates everything that needs no remote call.
func (h *HealthChecker) localChecks() (map[string]string, bool) {
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	ok := true
	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		ok = false
	}
	if h.isServerShuttingDown() {
		checks["shutdown"] = healthStatusShuttingDown
		ok = false
	}
	return checks, ok
}

// RegisterHealthEndpoints registers the health endpoints on mux. protect,
// when non-nil, wraps /healthz/detailed, which reveals configuration and
// spends a Todoist API call.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())

	detailed := h.DetailedHealthHandler()
	if protect != nil {
		detailed = protect(detailed)
	}
	mux.Handle("/healthz/detailed", detailed)
}

// DetailedHealthHandler returns the /healthz/detailed handler. A failing
// API probe reports "degraded" with status 200, since the process itself
// can still answer.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := DetailedHealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Info:   h.info,
		}

		switch {
		case !h.ready.Load():
			response.Status = healthStatusNotReady
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		case h.isServerShuttingDown():
			response.Status = healthStatusShuttingDown
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}

		if h.probe != nil {
			ctx, cancel := context.WithTimeout(r.Context(), apiProbeTimeout)
			defer cancel()
			response.Checks = map[string]string{"todoist_api": healthStatusOK}
			if err := h.probe(ctx); err != nil {
				response.Status = healthStatusDegraded
				response.Checks["todoist_api"] = err.Error()
			}
		}

		writeJSON(w, http.StatusOK, response)
	})
}
