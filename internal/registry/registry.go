package registry

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jayakeshav/vizlab/internal/model"
)

const (
	// ConfigFileName is the per-device config artifact a directory must
	// contain to be registered as a device.
	ConfigFileName = "device_config.json"

	// MasterLogFile is the reserved experiments log; it is never a run.
	MasterLogFile = "experiments_master_log.csv"

	// RunExt is the extension of run tables.
	RunExt = ".csv"
)

// Entry describes one registered device.
type Entry struct {
	Name      string
	Path      string
	Config    *model.DeviceConfig
	Metrics   []string            // sorted union of all batch metrics
	Workloads map[string][]string // workload name → sorted run names
}

// Snapshot is an immutable view of the device catalog. It is built whole
// and never mutated, so readers can hold it across a reload.
type Snapshot struct {
	devices map[string]*Entry
	names   []string
}

// Build scans the immediate subdirectories of root and produces a snapshot.
// Directories without a parseable device config are skipped, not reported:
// a registry build succeeds even when individual devices are malformed.
func Build(root string) (*Snapshot, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{devices: make(map[string]*Entry), names: []string{}}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		devDir := filepath.Join(root, d.Name())

		data, err := os.ReadFile(filepath.Join(devDir, ConfigFileName))
		if err != nil {
			continue // no config artifact: not a device
		}
		cfg, err := model.ParseDeviceConfig(data)
		if err != nil {
			log.Printf("[registry] skipping device %s: %v", d.Name(), err)
			continue
		}

		workloads, err := scanWorkloads(devDir)
		if err != nil {
			log.Printf("[registry] skipping device %s: %v", d.Name(), err)
			continue
		}

		snap.devices[d.Name()] = &Entry{
			Name:      d.Name(),
			Path:      devDir,
			Config:    cfg,
			Metrics:   cfg.MetricSet(),
			Workloads: workloads,
		}
		snap.names = append(snap.names, d.Name())
	}
	sort.Strings(snap.names)

	log.Printf("[registry] loaded %d devices", len(snap.names))
	return snap, nil
}

// scanWorkloads enumerates workload subdirectories of a device directory and
// the run tables directly inside each one.
func scanWorkloads(devDir string) (map[string][]string, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	workloads := make(map[string][]string)
	for _, e := range entries {
		if !e.IsDir() || skipDir(e.Name()) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(devDir, e.Name()))
		if err != nil {
			return nil, err
		}
		runs := []string{}
		for _, f := range files {
			if f.IsDir() || f.Name() == MasterLogFile {
				continue
			}
			if !strings.HasSuffix(f.Name(), RunExt) {
				continue
			}
			runs = append(runs, strings.TrimSuffix(f.Name(), RunExt))
		}
		sort.Strings(runs)
		workloads[e.Name()] = runs
	}
	return workloads, nil
}

// skipDir filters cache and build directories out of workload enumeration.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__")
}

// Devices returns all device names, sorted.
func (s *Snapshot) Devices() []string { return s.names }

// Device returns the entry for a device.
func (s *Snapshot) Device(name string) (*Entry, bool) {
	e, ok := s.devices[name]
	return e, ok
}

// Metrics returns the metric set of a device.
func (s *Snapshot) Metrics(device string) ([]string, error) {
	e, ok := s.devices[device]
	if !ok {
		return nil, &NotFoundError{Kind: "device", Name: device}
	}
	return e.Metrics, nil
}

// Workloads returns the workload names of a device, sorted.
func (s *Snapshot) Workloads(device string) ([]string, error) {
	e, ok := s.devices[device]
	if !ok {
		return nil, &NotFoundError{Kind: "device", Name: device}
	}
	names := make([]string, 0, len(e.Workloads))
	for w := range e.Workloads {
		names = append(names, w)
	}
	sort.Strings(names)
	return names, nil
}

// Runs returns the run names of a device workload.
func (s *Snapshot) Runs(device, workload string) ([]string, error) {
	e, ok := s.devices[device]
	if !ok {
		return nil, &NotFoundError{Kind: "device", Name: device}
	}
	runs, ok := e.Workloads[workload]
	if !ok {
		return nil, &NotFoundError{Kind: "workload", Name: workload}
	}
	return runs, nil
}

// Lookup validates a (device, workload, run, metric) tuple in order, so the
// first invalid element determines which error surfaces.
func (s *Snapshot) Lookup(device, workload, run, metric string) (*Entry, error) {
	e, ok := s.devices[device]
	if !ok {
		return nil, &NotFoundError{Kind: "device", Name: device}
	}
	runs, ok := e.Workloads[workload]
	if !ok {
		return nil, &NotFoundError{Kind: "workload", Name: workload}
	}
	found := false
	for _, r := range runs {
		if r == run {
			found = true
			break
		}
	}
	if !found {
		return nil, &NotFoundError{Kind: "run", Name: run}
	}
	valid := false
	for _, m := range e.Metrics {
		if m == metric {
			valid = true
			break
		}
	}
	if !valid {
		return nil, &InvalidArgumentError{Reason: "metric not valid for device: " + metric}
	}
	return e, nil
}
