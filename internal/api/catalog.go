package api

import (
	"net/http"

	"github.com/jayakeshav/vizlab/internal/obs"
	"github.com/jayakeshav/vizlab/internal/registry"
)

type catalogAPI struct {
	catalog *registry.Catalog
	metrics *obs.Metrics
}

func (a *catalogAPI) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "vizlab backend alive"})
}

func (a *catalogAPI) devices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.catalog.Snapshot().Devices())
}

func (a *catalogAPI) deviceMetrics(w http.ResponseWriter, r *http.Request) {
	device := r.URL.Query().Get("device")
	metrics, err := a.catalog.Snapshot().Metrics(device)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (a *catalogAPI) workloads(w http.ResponseWriter, r *http.Request) {
	device := r.URL.Query().Get("device")
	workloads, err := a.catalog.Snapshot().Workloads(device)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workloads)
}

func (a *catalogAPI) runs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	runs, err := a.catalog.Snapshot().Runs(q.Get("device"), q.Get("workload"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (a *catalogAPI) reload(w http.ResponseWriter, r *http.Request) {
	snap, err := a.catalog.Reload()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	a.metrics.RegistryDevices.Set(float64(len(snap.Devices())))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"devices": snap.Devices(),
	})
}
