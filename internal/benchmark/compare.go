package benchmark

import (
	"fmt"
	"sort"
)

// Comparison is the change of one run between two executions. Diffs are
// percentages relative to Prev.
type Comparison struct {
	Name        string
	TimeDiff    float64
	MetricDiffs map[string]float64
	Prev        Result
	Curr        Result
}

// Compare returns a comparison for every run present in both executions,
// in the order of curr.
func Compare(prev, curr Run) []Comparison {
	prevMap := make(map[string]Result)
	for _, r := range prev.Results {
		prevMap[r.Name] = r
	}

	var comparisons []Comparison
	for _, c := range curr.Results {
		p, ok := prevMap[c.Name]
		if !ok {
			continue
		}

		comp := Comparison{
			Name:        c.Name,
			MetricDiffs: map[string]float64{},
			Prev:        p,
			Curr:        c,
		}
		if p.TimeNs > 0 {
			comp.TimeDiff = percent(float64(p.TimeNs), float64(c.TimeNs))
		}
		for name, pv := range p.Metrics {
			cv, ok := c.Metrics[name]
			if !ok || pv == 0 {
				continue
			}
			comp.MetricDiffs[name] = percent(float64(pv), float64(cv))
		}

		comparisons = append(comparisons, comp)
	}
	return comparisons
}

// Added lists runs of curr that prev does not have.
func Added(prev, curr Run) []string {
	seen := make(map[string]bool, len(prev.Results))
	for _, r := range prev.Results {
		seen[r.Name] = true
	}
	var added []string
	for _, r := range curr.Results {
		if !seen[r.Name] {
			added = append(added, r.Name)
		}
	}
	return added
}

func percent(prev, curr float64) float64 {
	return (curr - prev) / prev * 100
}

// Regressed reports whether time or any metric grew by more than threshold
// percent.
func (c Comparison) Regressed(threshold float64) bool {
	if c.TimeDiff > threshold {
		return true
	}
	for _, d := range c.MetricDiffs {
		if d > threshold {
			return true
		}
	}
	return false
}

// Improved reports whether time shrank by more than threshold percent.
func (c Comparison) Improved(threshold float64) bool {
	return c.TimeDiff < -threshold
}

// Status is REGRESSED, IMPROVED or PASS for the given threshold.
func (c Comparison) Status(threshold float64) string {
	switch {
	case c.Regressed(threshold):
		return "REGRESSED"
	case c.Improved(threshold):
		return "IMPROVED"
	default:
		return "PASS"
	}
}

// Regressions filters comps to those that regressed.
func Regressions(comps []Comparison, threshold float64) []Comparison {
	var out []Comparison
	for _, c := range comps {
		if c.Regressed(threshold) {
			out = append(out, c)
		}
	}
	return out
}

// MetricNames returns the compared metric names in sorted order.
func (c Comparison) MetricNames() []string {
	names := make([]string, 0, len(c.MetricDiffs))
	for name := range c.MetricDiffs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %+.2f%% time", c.Name, c.TimeDiff)
}
