package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jayakeshav/vizlab/internal/registry"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the typed failure taxonomy onto HTTP status classes:
// registry misses are 404, invalid requests are 400, everything else
// (config mismatch, table load failures, internal inconsistencies) is 500.
func writeError(w http.ResponseWriter, err error) {
	var nf *registry.NotFoundError
	var ia *registry.InvalidArgumentError
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &ia):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ia.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// errorStatus reports the outcome class used for instrumentation labels.
func errorStatus(err error) string {
	var nf *registry.NotFoundError
	var ia *registry.InvalidArgumentError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ia):
		return "invalid"
	default:
		return "error"
	}
}
