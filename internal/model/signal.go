package model

// SignalSource identifies where a signal came from.
type SignalSource struct {
	Device   string `json:"device"`
	Workload string `json:"workload"`
	Run      string `json:"run"`
}

// SignalMetric names the metric and its unit.
type SignalMetric struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// SignalTime is the sample axis of a signal.
type SignalTime struct {
	Type   string `json:"type"`
	Values []int  `json:"values"`
}

// SignalLabels carries the per-sample attack labels (0/1) and the batch
// whose probe columns produced them.
type SignalLabels struct {
	Type   string `json:"type"`
	Values []int  `json:"values"`
	Batch  string `json:"batch"`
}

// SignalTransform records the requested windowing. Aggregation is "none":
// window_size is passed through but not applied.
type SignalTransform struct {
	WindowSize  int    `json:"window_size"`
	Aggregation string `json:"aggregation"`
}

// Signal is the fully resolved time series for one
// (device, workload, run, metric) query. Time, Values and Labels.Values
// always have the same length.
type Signal struct {
	SignalID  string          `json:"signal_id"`
	Source    SignalSource    `json:"source"`
	Metric    SignalMetric    `json:"metric"`
	Time      SignalTime      `json:"time"`
	Values    []float64       `json:"values"`
	Labels    SignalLabels    `json:"labels"`
	Transform SignalTransform `json:"transform"`
}

// SignalRequest asks for one resolved signal.
type SignalRequest struct {
	Device     string `json:"device"`
	Workload   string `json:"workload"`
	Run        string `json:"run"`
	Metric     string `json:"metric"`
	WindowSize int    `json:"window_size"`
}

// SignalsRequest is a batch of signal requests.
type SignalsRequest struct {
	Requests []SignalRequest `json:"requests"`
}

// SignalsResponse carries the resolved batch.
type SignalsResponse struct {
	Signals []*Signal `json:"signals"`
}

// Region is a half-open [Start, End) span of consecutive attack samples.
type Region struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
