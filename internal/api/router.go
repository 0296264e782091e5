package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jayakeshav/vizlab/internal/obs"
	"github.com/jayakeshav/vizlab/internal/ratio"
	"github.com/jayakeshav/vizlab/internal/registry"
	"github.com/jayakeshav/vizlab/internal/signal"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(catalog *registry.Catalog, resolver *signal.Resolver, cache *ratio.Cache, metrics *obs.Metrics, basePath string) http.Handler {
	mux := http.NewServeMux()

	ca := &catalogAPI{catalog: catalog, metrics: metrics}
	sa := &signalsAPI{resolver: resolver, metrics: metrics}
	ra := &ratioAPI{resolver: resolver, cache: cache, metrics: metrics}

	// Catalog
	mux.HandleFunc("GET /api/v1/devices", ca.devices)
	mux.HandleFunc("GET /api/v1/metrics", ca.deviceMetrics)
	mux.HandleFunc("GET /api/v1/workloads", ca.workloads)
	mux.HandleFunc("GET /api/v1/runs", ca.runs)
	mux.HandleFunc("POST /api/v1/reload", ca.reload)
	mux.HandleFunc("GET /api/v1/health", ca.health)
	mux.HandleFunc("GET /{$}", ca.health)

	// Signals
	mux.HandleFunc("GET /api/v1/signal", sa.signal)
	mux.HandleFunc("POST /api/v1/signals", sa.signals)

	// Ratios
	mux.HandleFunc("POST /api/v1/ratio", ra.derive)
	mux.HandleFunc("DELETE /api/v1/ratio/cache", ra.resetCache)

	// Prometheus scrape
	mux.Handle("GET /metrics", metrics.Handler())

	var handler http.Handler = mux

	// If base_path is set, strip the prefix so internal routing works unchanged
	if basePath != "/" && basePath != "" {
		inner := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Strip base path prefix from the URL
			if strings.HasPrefix(r.URL.Path, basePath) {
				r.URL.Path = strings.TrimPrefix(r.URL.Path, basePath)
				if r.URL.Path == "" {
					r.URL.Path = "/"
				}
				r.URL.RawPath = strings.TrimPrefix(r.URL.RawPath, basePath)
			}
			inner.ServeHTTP(w, r)
		})
	}

	return withMiddleware(handler)
}

func withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Recovery
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[http] panic: %v", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		// CORS for local development
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)

		log.Printf("[http] %s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
