package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jayakeshav/vizlab/internal/model"
	"github.com/jayakeshav/vizlab/internal/obs"
	"github.com/jayakeshav/vizlab/internal/signal"
)

type signalsAPI struct {
	resolver *signal.Resolver
	metrics  *obs.Metrics
}

// resolve runs one resolution and records its outcome and latency.
func (a *signalsAPI) resolve(req model.SignalRequest) (*model.Signal, error) {
	start := time.Now()
	sig, err := a.resolver.Resolve(req)
	a.metrics.ResolveSeconds.Observe(time.Since(start).Seconds())
	a.metrics.SignalResolves.WithLabelValues(errorStatus(err)).Inc()
	return sig, err
}

func (a *signalsAPI) signal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := model.SignalRequest{
		Device:     q.Get("device"),
		Workload:   q.Get("workload"),
		Run:        q.Get("run"),
		Metric:     q.Get("metric"),
		WindowSize: 1,
	}
	if ws := q.Get("window_size"); ws != "" {
		if v, err := strconv.Atoi(ws); err == nil {
			req.WindowSize = v
		}
	}

	sig, err := a.resolve(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// signals resolves a batch of requests. Like single resolution, the first
// invalid tuple fails the whole batch.
func (a *signalsAPI) signals(w http.ResponseWriter, r *http.Request) {
	var payload model.SignalsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	resp := model.SignalsResponse{Signals: []*model.Signal{}}
	for _, req := range payload.Requests {
		sig, err := a.resolve(req)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Signals = append(resp.Signals, sig)
	}
	writeJSON(w, http.StatusOK, resp)
}
