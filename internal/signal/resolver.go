// Package signal resolves (device, workload, run, metric) requests against
// the registry and derives attack labels from probe columns.
package signal

import (
	"path/filepath"

	"github.com/jayakeshav/vizlab/internal/model"
	"github.com/jayakeshav/vizlab/internal/registry"
)

// metricUnit is the unit reported for raw counter series.
const metricUnit = "events"

// Delimiter joins the components of a signal ID.
const Delimiter = "::"

// ConfigMismatchError reports a device config whose embedded device name
// disagrees with the requested device. Proceeding would apply the wrong
// probe definitions to the data, so resolution aborts instead.
type ConfigMismatchError struct {
	ConfigName string
	Requested  string
}

func (e *ConfigMismatchError) Error() string {
	return "device config mismatch: cfg=" + e.ConfigName + ", request=" + e.Requested
}

// Resolver turns signal requests into fully assembled signals.
type Resolver struct {
	catalog *registry.Catalog
}

// NewResolver creates a resolver backed by a catalog.
func NewResolver(catalog *registry.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve validates the request against the current registry snapshot, loads
// the run table and assembles the signal. Validation order is fixed:
// device, then workload, then run, then metric.
func (r *Resolver) Resolve(req model.SignalRequest) (*model.Signal, error) {
	entry, err := r.catalog.Snapshot().Lookup(req.Device, req.Workload, req.Run, req.Metric)
	if err != nil {
		return nil, err
	}

	table, err := LoadTable(filepath.Join(entry.Path, req.Workload, req.Run+registry.RunExt))
	if err != nil {
		return nil, err
	}

	return makeSignal(table, entry.Config, req)
}

// makeSignal assembles the canonical signal record from a loaded run table.
func makeSignal(t *Table, cfg *model.DeviceConfig, req model.SignalRequest) (*model.Signal, error) {
	// Misfiled configs must never be silently applied to another
	// device's data.
	if name := cfg.Device.Name; name != "" && name != req.Device {
		return nil, &ConfigMismatchError{ConfigName: name, Requested: req.Device}
	}

	batch, ok := cfg.BatchFor(req.Metric)
	if !ok {
		// Unreachable when the metric passed registry validation,
		// since the metric set is derived from the batches.
		return nil, &registry.InternalError{Reason: "metric not defined in device config: " + req.Metric}
	}

	values, ok := t.Column(req.Metric)
	if !ok {
		return nil, &registry.InternalError{Reason: "run table missing metric column: " + req.Metric}
	}

	windowSize := req.WindowSize
	if windowSize < 1 {
		windowSize = 1
	}

	return &model.Signal{
		SignalID: req.Device + Delimiter + req.Workload + Delimiter + req.Run + Delimiter + req.Metric,
		Source: model.SignalSource{
			Device:   req.Device,
			Workload: req.Workload,
			Run:      req.Run,
		},
		Metric: model.SignalMetric{Name: req.Metric, Unit: metricUnit},
		Time:   model.SignalTime{Type: "index", Values: t.Index},
		Values: values,
		Labels: model.SignalLabels{
			Type:   "attack",
			Values: deriveLabels(t, batch),
			Batch:  batch.Name,
		},
		Transform: model.SignalTransform{WindowSize: windowSize, Aggregation: "none"},
	}, nil
}
