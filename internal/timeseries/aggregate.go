// Package timeseries buckets dated observations into calendar-aligned
// periods for trend analysis.
package timeseries

import (
	"sort"
	"time"

	"salespulse/internal/dataset"
)

// Point is one aggregated period: its calendar start, the summed
// value, and a display label.
type Point struct {
	PeriodStart time.Time `json:"period_start"`
	Value       float64   `json:"value"`
	Label       string    `json:"label"`
}

// Aggregate sums the value column within each calendar-aligned bucket
// of the given granularity. Rows whose date or value cell does not
// coerce are dropped. Buckets with no matching rows are omitted rather
// than zero-filled, so the returned sequence is ordered but not
// necessarily gap-free. An empty input yields an empty sequence, not
// an error.
func Aggregate(t *dataset.Table, dateCol, valueCol string, period Period) []Point {
	if t.IsEmpty() {
		return nil
	}
	dateIdx := t.ColumnIndex(dateCol)
	valueIdx := t.ColumnIndex(valueCol)
	if dateIdx < 0 || valueIdx < 0 {
		return nil
	}

	sums := make(map[time.Time]float64)
	for _, row := range t.Rows {
		dateVal, ok := row[dateIdx].AsDate()
		if !ok {
			continue
		}
		numVal, ok := row[valueIdx].AsNumber()
		if !ok {
			continue
		}
		d, _ := dateVal.Time()
		f, _ := numVal.Float()
		sums[period.BucketStart(d)] += f
	}

	points := make([]Point, 0, len(sums))
	for start, sum := range sums {
		points = append(points, Point{
			PeriodStart: start,
			Value:       sum,
			Label:       period.Label(start),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].PeriodStart.Before(points[j].PeriodStart)
	})
	return points
}
