// Package kpi computes minimal, comparable dataset indicators used for
// cross-upload comparison without pulling in dashboard logic.
package kpi

import (
	"math"

	"salespulse/internal/dataset"
)

// Basic holds the headline indicators of a cleaned dataset.
type Basic struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  float64 `json:"total_orders"`
	TotalRows    float64 `json:"total_rows"`
}

// Direction of a KPI change against its baseline.
type Direction string

// Change directions.
const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
	NoChange Direction = "no_change"
)

// Comparison is the result of comparing a KPI value against a
// baseline.
type Comparison struct {
	Current       float64   `json:"current"`
	Baseline      float64   `json:"baseline"`
	AbsDiff       float64   `json:"abs_diff"`
	PctChange     float64   `json:"pct_change"`
	Direction     Direction `json:"direction"`
	IsSignificant bool      `json:"is_significant"`
}

// Compute sums quantity*price row by row, coercing cells and treating
// unparseable ones as zero. Row count doubles as the order count.
func Compute(t *dataset.Table, qtyCol, priceCol string) Basic {
	if t.IsEmpty() {
		return Basic{}
	}
	qtyIdx := t.ColumnIndex(qtyCol)
	priceIdx := t.ColumnIndex(priceCol)
	if qtyIdx < 0 || priceIdx < 0 {
		return Basic{TotalRows: float64(t.NumRows())}
	}

	total := 0.0
	for _, row := range t.Rows {
		q, _ := coerceOrZero(row[qtyIdx])
		p, _ := coerceOrZero(row[priceIdx])
		total += q * p
	}
	rows := float64(t.NumRows())
	return Basic{TotalRevenue: total, TotalOrders: rows, TotalRows: rows}
}

// Compare evaluates a current KPI against a baseline. A missing or
// zero baseline is treated as "new" data with a zero percent change
// rather than a division failure.
func Compare(current, baseline, thresholdPct float64) Comparison {
	absDiff := current - baseline
	pctChange := 0.0
	if baseline > 0 {
		pctChange = absDiff / baseline * 100
	}

	direction := NoChange
	switch {
	case absDiff > 0:
		direction = Increase
	case absDiff < 0:
		direction = Decrease
	}

	return Comparison{
		Current:       current,
		Baseline:      baseline,
		AbsDiff:       absDiff,
		PctChange:     pctChange,
		Direction:     direction,
		IsSignificant: math.Abs(pctChange) >= thresholdPct,
	}
}

func coerceOrZero(v dataset.Value) (float64, bool) {
	coerced, ok := v.AsNumber()
	if !ok {
		return 0, false
	}
	f, _ := coerced.Float()
	return f, true
}
