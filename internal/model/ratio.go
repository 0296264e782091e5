package model

import (
	"math"
	"strconv"
)

// Series is a float series that marshals non-finite values as JSON null.
// Ratio division keeps NaN as an in-memory sentinel for undefined samples;
// encoding/json refuses NaN, so the sentinel becomes null on the wire.
type Series []float64

func (s Series) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 1+len(s)*8)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
		} else {
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
	}
	buf = append(buf, ']')
	return buf, nil
}

// RatioRequest asks for a derived ratio of two metrics over the same run.
type RatioRequest struct {
	Device      string `json:"device"`
	Workload    string `json:"workload"`
	Run         string `json:"run"`
	Numerator   string `json:"numerator"`
	Denominator string `json:"denominator"`
}

// RatioEntry is a derived ratio series with fused attack labels. The time
// axis is the numerator's.
type RatioEntry struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Source      SignalSource `json:"source"`
	Numerator   string       `json:"numerator"`
	Denominator string       `json:"denominator"`
	Time        SignalTime   `json:"time"`
	Values      Series       `json:"values"`
	Labels      []int        `json:"labels"`
	Regions     []Region     `json:"attack_regions"`
}
