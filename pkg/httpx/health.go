package httpx

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthChecker is satisfied by any dependency exposing Ping: the database
// pool, RedisClient, EventBus, the Firestore client and the Temporal client.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// Ping calls f.
func (f HealthCheckFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthChecks maps a dependency name (reported in the response) to its probe.
// Nil checkers are skipped.
type HealthChecks map[string]HealthChecker

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

const healthTimeout = 2 * time.Second

// HealthHandler probes every dependency concurrently and answers 503 with
// status "degraded" if any probe fails.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name, c := range checks {
		if c != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		results := make([]string, len(names))
		var wg sync.WaitGroup
		for i, name := range names {
			wg.Add(1)
			go func(i int, c HealthChecker) {
				defer wg.Done()
				results[i] = "ok"
				if err := c.Ping(ctx); err != nil {
					results[i] = "unreachable"
				}
			}(i, checks[name])
		}
		wg.Wait()

		resp := healthResponse{Status: "ok", Dependencies: make(map[string]string, len(names))}
		for i, name := range names {
			resp.Dependencies[name] = results[i]
			if results[i] != "ok" {
				resp.Status = "degraded"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
