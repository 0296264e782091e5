package signal

import (
	"strings"

	"github.com/jayakeshav/vizlab/internal/model"
)

// probeColumns selects the table columns used to derive labels for a batch:
// the name must carry the batch's probe prefix and contain at least one of
// its declared probe substrings.
func probeColumns(t *Table, batch *model.Batch) []string {
	var cols []string
	for _, name := range t.Columns() {
		if !strings.HasPrefix(name, batch.ProbePrefix) {
			continue
		}
		for _, p := range batch.Probes {
			if strings.Contains(name, p) {
				cols = append(cols, name)
				break
			}
		}
	}
	return cols
}

// deriveLabels computes the per-sample attack label: 1 when any probe column
// is strictly positive at that row. A batch with no matching probe columns
// yields all zeros.
func deriveLabels(t *Table, batch *model.Batch) []int {
	labels := make([]int, t.Len())
	for _, name := range probeColumns(t, batch) {
		col, _ := t.Column(name)
		for i, v := range col {
			if v > 0 {
				labels[i] = 1
			}
		}
	}
	return labels
}

// AttackRegions collapses a label series into half-open [Start, End) spans of
// consecutive attack samples.
func AttackRegions(labels []int) []model.Region {
	var regions []model.Region
	start := -1
	for i, v := range labels {
		switch {
		case v == 1 && start < 0:
			start = i
		case v == 0 && start >= 0:
			regions = append(regions, model.Region{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		regions = append(regions, model.Region{Start: start, End: len(labels)})
	}
	return regions
}
