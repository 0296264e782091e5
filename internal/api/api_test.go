package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jayakeshav/vizlab/internal/model"
	"github.com/jayakeshav/vizlab/internal/obs"
	"github.com/jayakeshav/vizlab/internal/ratio"
	"github.com/jayakeshav/vizlab/internal/registry"
	"github.com/jayakeshav/vizlab/internal/signal"
)

const apiTestConfig = `{
  "device": {"name": "D1"},
  "batches": {
    "b1": {"probe_prefix": "pmc_", "probes": ["core0"], "metrics": ["cycles", "instructions"]}
  }
}`

// row 2 has instructions=0 so the cycles/instructions ratio hits the
// non-finite path there.
const apiTestCSV = "index,pmc_core0,cycles,instructions\n" +
	"0,5,100,50\n" +
	"1,0,200,80\n" +
	"2,0,300,0\n"

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	root := t.TempDir()
	w1 := filepath.Join(root, "D1", "W1")
	if err := os.MkdirAll(w1, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "D1", registry.ConfigFileName), []byte(apiTestConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(w1, "R1.csv"), []byte(apiTestCSV), 0o644); err != nil {
		t.Fatalf("write run: %v", err)
	}
	if err := os.WriteFile(filepath.Join(w1, registry.MasterLogFile), []byte(apiTestCSV), 0o644); err != nil {
		t.Fatalf("write master log: %v", err)
	}

	catalog, err := registry.Open(root)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	router := NewRouter(catalog, signal.NewResolver(catalog), ratio.NewCache(), obs.New(), "/")
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, root
}

func getJSON(t *testing.T, url string, wantStatus int, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func postJSON(t *testing.T, url string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestListEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var devices []string
	getJSON(t, srv.URL+"/api/v1/devices", http.StatusOK, &devices)
	if !reflect.DeepEqual(devices, []string{"D1"}) {
		t.Fatalf("unexpected devices %v", devices)
	}

	var metrics []string
	getJSON(t, srv.URL+"/api/v1/metrics?device=D1", http.StatusOK, &metrics)
	if !reflect.DeepEqual(metrics, []string{"cycles", "instructions"}) {
		t.Fatalf("unexpected metrics %v", metrics)
	}

	var workloads []string
	getJSON(t, srv.URL+"/api/v1/workloads?device=D1", http.StatusOK, &workloads)
	if !reflect.DeepEqual(workloads, []string{"W1"}) {
		t.Fatalf("unexpected workloads %v", workloads)
	}

	var runs []string
	getJSON(t, srv.URL+"/api/v1/runs?device=D1&workload=W1", http.StatusOK, &runs)
	if !reflect.DeepEqual(runs, []string{"R1"}) {
		t.Fatalf("master log must not appear in runs: %v", runs)
	}

	getJSON(t, srv.URL+"/api/v1/metrics?device=ghost", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/v1/runs?device=D1&workload=ghost", http.StatusNotFound, nil)
}

func TestSignalEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var sig model.Signal
	getJSON(t, srv.URL+"/api/v1/signal?device=D1&workload=W1&run=R1&metric=cycles&window_size=3", http.StatusOK, &sig)

	if sig.SignalID != "D1::W1::R1::cycles" {
		t.Fatalf("unexpected signal id %q", sig.SignalID)
	}
	if !reflect.DeepEqual(sig.Values, []float64{100, 200, 300}) {
		t.Fatalf("unexpected values %v", sig.Values)
	}
	if !reflect.DeepEqual(sig.Labels.Values, []int{1, 0, 0}) {
		t.Fatalf("unexpected labels %v", sig.Labels.Values)
	}
	if sig.Transform.WindowSize != 3 || sig.Transform.Aggregation != "none" {
		t.Fatalf("unexpected transform %+v", sig.Transform)
	}

	// Failure taxonomy: registry misses are 404, bad metric is 400.
	getJSON(t, srv.URL+"/api/v1/signal?device=ghost&workload=W1&run=R1&metric=cycles", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/v1/signal?device=D1&workload=W1&run=experiments_master_log&metric=cycles", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/v1/signal?device=D1&workload=W1&run=R1&metric=ghost", http.StatusBadRequest, nil)
}

func TestSignalsBatchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := model.SignalsRequest{Requests: []model.SignalRequest{
		{Device: "D1", Workload: "W1", Run: "R1", Metric: "cycles", WindowSize: 1},
		{Device: "D1", Workload: "W1", Run: "R1", Metric: "instructions", WindowSize: 1},
	}}
	var resp model.SignalsResponse
	postJSON(t, srv.URL+"/api/v1/signals", req, http.StatusOK, &resp)
	if len(resp.Signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(resp.Signals))
	}
	if resp.Signals[1].Metric.Name != "instructions" {
		t.Fatalf("unexpected second signal %q", resp.Signals[1].SignalID)
	}

	// One bad tuple fails the whole batch.
	req.Requests[1].Device = "ghost"
	postJSON(t, srv.URL+"/api/v1/signals", req, http.StatusNotFound, nil)
}

// ratioResponse mirrors RatioEntry with nullable values, since non-finite
// samples arrive as JSON null.
type ratioResponse struct {
	Name   string         `json:"name"`
	Values []*float64     `json:"values"`
	Labels []int          `json:"labels"`
	Time   struct {
		Values []int `json:"values"`
	} `json:"time"`
	Regions []model.Region `json:"attack_regions"`
}

func TestRatioEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := model.RatioRequest{Device: "D1", Workload: "W1", Run: "R1", Numerator: "cycles", Denominator: "instructions"}
	var resp ratioResponse
	postJSON(t, srv.URL+"/api/v1/ratio", req, http.StatusOK, &resp)

	if resp.Name != "cycles / instructions" {
		t.Fatalf("unexpected name %q", resp.Name)
	}
	if len(resp.Values) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(resp.Values))
	}
	if resp.Values[0] == nil || *resp.Values[0] != 2 {
		t.Fatalf("unexpected ratio at 0: %v", resp.Values[0])
	}
	// 300/0 is the sentinel, which crosses the wire as null.
	if resp.Values[2] != nil {
		t.Fatalf("expected null sentinel at 2, got %v", *resp.Values[2])
	}
	if !reflect.DeepEqual(resp.Labels, []int{1, 0, 0}) {
		t.Fatalf("unexpected fused labels %v", resp.Labels)
	}
	if !reflect.DeepEqual(resp.Regions, []model.Region{{Start: 0, End: 1}}) {
		t.Fatalf("unexpected regions %v", resp.Regions)
	}

	// Second request is a cache hit and must return the same content.
	var cached ratioResponse
	postJSON(t, srv.URL+"/api/v1/ratio", req, http.StatusOK, &cached)
	if !reflect.DeepEqual(resp, cached) {
		t.Fatal("cache hit returned different content")
	}

	// Identical metrics are rejected before any resolution.
	bad := model.RatioRequest{Device: "D1", Workload: "W1", Run: "R1", Numerator: "cycles", Denominator: "cycles"}
	postJSON(t, srv.URL+"/api/v1/ratio", bad, http.StatusBadRequest, nil)
}

func TestRatioCacheReset(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/ratio/cache", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestReloadEndpoint(t *testing.T) {
	srv, root := newTestServer(t)

	// A device added after startup appears only after an explicit reload.
	d2 := filepath.Join(root, "D2")
	if err := os.MkdirAll(filepath.Join(d2, "W1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := strings.Replace(apiTestConfig, `"D1"`, `"D2"`, 1)
	if err := os.WriteFile(filepath.Join(d2, registry.ConfigFileName), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var devices []string
	getJSON(t, srv.URL+"/api/v1/devices", http.StatusOK, &devices)
	if !reflect.DeepEqual(devices, []string{"D1"}) {
		t.Fatalf("unexpected devices before reload: %v", devices)
	}

	var reload struct {
		Status  string   `json:"status"`
		Devices []string `json:"devices"`
	}
	postJSON(t, srv.URL+"/api/v1/reload", nil, http.StatusOK, &reload)
	if reload.Status != "reloaded" || !reflect.DeepEqual(reload.Devices, []string{"D1", "D2"}) {
		t.Fatalf("unexpected reload response %+v", reload)
	}
}

func TestHealthAndCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	var health map[string]string
	getJSON(t, srv.URL+"/api/v1/health", http.StatusOK, &health)
	if health["status"] == "" {
		t.Fatal("expected a status message")
	}
	getJSON(t, srv.URL+"/", http.StatusOK, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/devices", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected preflight status %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}
