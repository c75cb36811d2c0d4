package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// probeTimeout bounds a whole readiness check.
const probeTimeout = 2 * time.Second

// HealthResponse is the body of /livez and /readyz on every service.
type HealthResponse struct {
	// Status is "ok", or "degraded" when a readiness check failed
	Status string `json:"status"`

	// Uptime is the process uptime (e.g. "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	Version string `json:"version,omitempty"`

	// Checks maps each dependency to "ok" or an error string. Only set by
	// /readyz.
	Checks map[string]string `json:"checks,omitempty"`
}

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe. Pings every dependency concurrently and reports 503 when any fails.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := Probe(r.Context(), deps)

		status, code := "ok", http.StatusOK
		for _, result := range checks {
			if result != "ok" {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// Probe pings deps concurrently under probeTimeout and reports "ok" or
// "error: ..." per name.
func Probe(ctx context.Context, deps map[string]Pinger) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]string, len(deps))
	)
	for name, dep := range deps {
		wg.Go(func() {
			result := "ok"
			if err := dep.Ping(ctx); err != nil {
				result = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = result
			mu.Unlock()
		})
	}
	wg.Wait()

	return checks
}
