package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// DeviceInfo identifies the device a config file belongs to.
type DeviceInfo struct {
	Name string `json:"name"`
}

// Batch is a named group of metrics sharing a probe-column naming convention.
type Batch struct {
	Name        string   `json:"-"`
	ProbePrefix string   `json:"probe_prefix"`
	Probes      []string `json:"probes"`
	Metrics     []string `json:"metrics"`
}

// DeviceConfig is the parsed per-device configuration. Batches keep the order
// they were declared in, so first-match metric lookups are deterministic.
type DeviceConfig struct {
	Device  DeviceInfo
	Batches []Batch
}

// ParseDeviceConfig parses a device_config.json document.
func ParseDeviceConfig(data []byte) (*DeviceConfig, error) {
	var doc struct {
		Device  DeviceInfo                 `json:"device"`
		Batches map[string]json.RawMessage `json:"batches"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse device config: %w", err)
	}

	order, err := batchOrder(data)
	if err != nil {
		return nil, fmt.Errorf("parse device config: %w", err)
	}

	cfg := &DeviceConfig{Device: doc.Device}
	for _, name := range order {
		raw, ok := doc.Batches[name]
		if !ok {
			continue
		}
		var b Batch
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("parse batch %q: %w", name, err)
		}
		b.Name = name
		cfg.Batches = append(cfg.Batches, b)
	}
	return cfg, nil
}

// batchOrder extracts the batch names in declaration order. encoding/json maps
// lose key order, so the raw document is tokenized once to recover it.
func batchOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		if key != "batches" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := dec.Token(); err != nil { // opening { of batches
			return nil, err
		}
		var order []string
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, _ := tok.(string)
			order = append(order, name)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		return order, nil
	}
	return nil, nil
}

// BatchFor returns the first declared batch containing the metric.
func (c *DeviceConfig) BatchFor(metric string) (*Batch, bool) {
	for i := range c.Batches {
		for _, m := range c.Batches[i].Metrics {
			if m == metric {
				return &c.Batches[i], true
			}
		}
	}
	return nil, false
}

// MetricSet returns the deduplicated union of all batch metrics, sorted.
func (c *DeviceConfig) MetricSet() []string {
	seen := make(map[string]bool)
	var metrics []string
	for _, b := range c.Batches {
		for _, m := range b.Metrics {
			if !seen[m] {
				seen[m] = true
				metrics = append(metrics, m)
			}
		}
	}
	sort.Strings(metrics)
	return metrics
}
