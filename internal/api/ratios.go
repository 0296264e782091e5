package api

import (
	"encoding/json"
	"net/http"

	"github.com/jayakeshav/vizlab/internal/model"
	"github.com/jayakeshav/vizlab/internal/obs"
	"github.com/jayakeshav/vizlab/internal/ratio"
	"github.com/jayakeshav/vizlab/internal/registry"
	"github.com/jayakeshav/vizlab/internal/signal"
)

type ratioAPI struct {
	resolver *signal.Resolver
	cache    *ratio.Cache
	metrics  *obs.Metrics
}

func (a *ratioAPI) derive(w http.ResponseWriter, r *http.Request) {
	var req model.RatioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Numerator == req.Denominator {
		writeError(w, &registry.InvalidArgumentError{
			Reason: "numerator and denominator must be different metrics",
		})
		return
	}

	key := ratio.Key{
		Device:      req.Device,
		Workload:    req.Workload,
		Run:         req.Run,
		Numerator:   req.Numerator,
		Denominator: req.Denominator,
	}
	if entry, ok := a.cache.Get(key); ok {
		a.metrics.RatioCacheHits.Inc()
		writeJSON(w, http.StatusOK, entry)
		return
	}
	a.metrics.RatioCacheMisses.Inc()

	num, err := a.resolver.Resolve(model.SignalRequest{
		Device: req.Device, Workload: req.Workload, Run: req.Run,
		Metric: req.Numerator, WindowSize: 1,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	den, err := a.resolver.Resolve(model.SignalRequest{
		Device: req.Device, Workload: req.Workload, Run: req.Run,
		Metric: req.Denominator, WindowSize: 1,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := ratio.Derive(num, den)
	if err != nil {
		writeError(w, err)
		return
	}
	a.cache.Put(key, entry)
	writeJSON(w, http.StatusOK, entry)
}

func (a *ratioAPI) resetCache(w http.ResponseWriter, r *http.Request) {
	a.cache.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
