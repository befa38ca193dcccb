package cleaning

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// quantile computes the q-th quantile of values using linear
// interpolation between closest ranks, matching the convention used by
// common dataframe libraries. Returns 0 for an empty slice.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	index := q * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// median is the 0.5 quantile. Returns ok=false when there are no
// values, so callers can substitute a defined fill value.
func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return quantile(values, 0.5), true
}

// mode returns the most frequent string. Ties break toward the
// lexicographically smallest value. ok=false when values is empty.
func mode(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := ""
	bestCount := 0
	for v, count := range counts {
		if count > bestCount || (count == bestCount && v < best) {
			best = v
			bestCount = count
		}
	}
	return best, true
}

// formatStat renders a statistic for report entries: rounded to two
// decimals, with a trailing ".0" kept on whole numbers so bounds read
// as "450.0" rather than "450".
func formatStat(v float64) string {
	rounded := math.Round(v*100) / 100
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
