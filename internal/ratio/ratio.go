// Package ratio derives element-wise ratio series from two resolved signals
// and fuses their attack labels.
package ratio

import (
	"fmt"
	"math"

	"github.com/jayakeshav/vizlab/internal/model"
	"github.com/jayakeshav/vizlab/internal/registry"
	"github.com/jayakeshav/vizlab/internal/signal"
)

// Derive divides numerator values by denominator values position-wise.
// Non-finite results (x/0, 0/0, overflow) become NaN so downstream plotting
// and filtering stay well-defined. The time axis is the numerator's; a
// fused label is 1 when either source labeled the sample as attack.
func Derive(num, den *model.Signal) (*model.RatioEntry, error) {
	if num.Metric.Name == den.Metric.Name {
		return nil, &registry.InvalidArgumentError{
			Reason: "numerator and denominator must be different metrics",
		}
	}
	if len(num.Values) != len(den.Values) {
		// Dividing misaligned series would shift the fused attack
		// labels, so reject instead of truncating.
		return nil, &registry.InvalidArgumentError{
			Reason: fmt.Sprintf("signal length mismatch: %s has %d samples, %s has %d",
				num.Metric.Name, len(num.Values), den.Metric.Name, len(den.Values)),
		}
	}

	values := make(model.Series, len(num.Values))
	for i := range num.Values {
		v := num.Values[i] / den.Values[i]
		if math.IsInf(v, 0) || math.IsNaN(v) {
			v = math.NaN()
		}
		values[i] = v
	}

	labels := make([]int, len(num.Labels.Values))
	for i := range labels {
		if num.Labels.Values[i] == 1 || den.Labels.Values[i] == 1 {
			labels[i] = 1
		}
	}

	src := num.Source
	name := num.Metric.Name + " / " + den.Metric.Name
	return &model.RatioEntry{
		Name: name,
		DisplayName: src.Device + " | " + src.Workload + " | " + src.Run +
			" | " + name,
		Source:      src,
		Numerator:   num.Metric.Name,
		Denominator: den.Metric.Name,
		Time:        num.Time,
		Values:      values,
		Labels:      labels,
		Regions:     signal.AttackRegions(labels),
	}, nil
}
