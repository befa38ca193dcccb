// Package cleaning implements the fixed-order data cleaning pipeline:
// header trimming, duplicate removal, date validation, numeric
// coercion, outlier capping, missing-value imputation, text
// standardization and derived columns, with an ordered change log.
//
// The step order is part of the contract. In particular, outlier
// capping runs before missing-value imputation: quartiles are computed
// over non-missing values only, so the capping thresholds see a
// different row subset than the later median fill. Downstream
// consumers depend on this ordering.
package cleaning

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"salespulse/internal/dataset"
	"salespulse/internal/schema"
)

// Config holds the tunable cleaning policy.
type Config struct {
	// IQRMultiplier scales the interquartile range when computing the
	// outlier cap (upper bound = Q3 + multiplier*IQR).
	IQRMultiplier float64
	// Sentinel replaces cells that are still empty after imputation.
	Sentinel string
}

// DefaultConfig returns the standard cleaning policy.
func DefaultConfig() Config {
	return Config{
		IQRMultiplier: 1.5,
		Sentinel:      "dd",
	}
}

// Cleaner runs the cleaning pipeline. It is stateless between runs and
// safe for concurrent use across datasets.
type Cleaner struct {
	resolver *schema.Resolver
	logger   *slog.Logger
	cfg      Config
	titler   cases.Caser
}

// NewCleaner creates a cleaner. A nil resolver uses the default alias
// table; a nil logger uses slog.Default().
func NewCleaner(resolver *schema.Resolver, logger *slog.Logger, cfg Config) *Cleaner {
	if resolver == nil {
		resolver = schema.NewResolver(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IQRMultiplier == 0 {
		cfg.IQRMultiplier = 1.5
	}
	if cfg.Sentinel == "" {
		cfg.Sentinel = "dd"
	}
	return &Cleaner{
		resolver: resolver,
		logger:   logger,
		cfg:      cfg,
		titler:   cases.Title(language.English),
	}
}

// Literal text values treated as spelled-out missing markers after
// title-casing.
var missingMarkers = map[string]bool{
	"Nan":  true,
	"None": true,
	"Null": true,
}

// Clean runs the full pipeline over a copy of the input and returns
// the cleaned table with its change log. An empty or nil input is
// returned unchanged with an empty report; cleaning is a no-op there,
// unlike validation which rejects empty datasets outright.
func (c *Cleaner) Clean(input *dataset.Table) (*dataset.Table, *Report) {
	report := &Report{}
	if input.IsEmpty() {
		return input, report
	}

	t := input.Clone()

	// Step 1: trim header whitespace.
	for i, col := range t.Columns {
		t.Columns[i] = strings.TrimSpace(col)
	}

	// Step 2: best-effort resolution of the core columns. Unlike the
	// validator this never fails; absent columns just disable the
	// steps that need them.
	mapping := c.resolver.Resolve(t.Columns)
	dateCol, _ := mapping.Column(schema.FieldDate)
	qtyCol, _ := mapping.Column(schema.FieldQuantity)
	priceCol, _ := mapping.Column(schema.FieldPrice)

	c.removeDuplicates(t, report)
	c.enforceDates(t, dateCol, report)
	numericCols := c.coerceNumerics(t, dateCol, qtyCol, priceCol, report)
	c.treatOutliers(t, numericCols, qtyCol, priceCol, report)
	c.fillNumericMissing(t, numericCols, report)
	categoricalCols := c.categoricalColumns(t, numericCols, dateCol)
	c.fillCategoricalMissing(t, categoricalCols, report)
	c.standardizeText(t, categoricalCols, dateCol, report)
	c.deriveColumns(t, dateCol, qtyCol, priceCol, report)
	c.fillRemaining(t, report)

	if report.Len() == 0 {
		report.Add(NoIssuesEntry)
	}

	c.logger.Info("cleaning completed",
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()),
		slog.Int("changes", report.Len()))

	return t, report
}

// removeDuplicates drops exact-duplicate rows (step 3).
func (c *Cleaner) removeDuplicates(t *dataset.Table, report *Report) {
	removed := t.Deduplicate()
	report.record("remove_duplicates", removed > 0, "")
	if removed > 0 {
		report.Add("Removed %d duplicate rows.", removed)
	}
}

// enforceDates parses the date column and drops rows whose date cell
// does not parse (step 4).
func (c *Cleaner) enforceDates(t *dataset.Table, dateCol string, report *Report) {
	if dateCol == "" {
		report.record("enforce_dates", false, "no date column resolved")
		return
	}
	idx := t.ColumnIndex(dateCol)
	if idx < 0 {
		report.record("enforce_dates", false, "date column missing")
		return
	}
	for _, row := range t.Rows {
		coerced, _ := row[idx].AsDate()
		row[idx] = coerced
	}
	dropped := t.FilterRows(func(row []dataset.Value) bool {
		return !row[idx].IsNull()
	})
	report.record("enforce_dates", dropped > 0, "")
	if dropped > 0 {
		report.Add("Removed %d rows with invalid dates in column '%s'.", dropped, dateCol)
	}
}

// coerceNumerics converts the candidate numeric columns, plus any
// column whose cells all parse as numbers, to the number type (step
// 5). Unparseable cells become missing. It returns the ordered list of
// numeric column labels, excluding the date column.
func (c *Cleaner) coerceNumerics(t *dataset.Table, dateCol, qtyCol, priceCol string, report *Report) []string {
	candidates := map[string]bool{}
	if qtyCol != "" {
		candidates[qtyCol] = true
	}
	if priceCol != "" {
		candidates[priceCol] = true
	}
	for _, col := range t.Columns {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "sales", "revenue", "cost", "profit":
			candidates[col] = true
		}
	}

	var numericCols []string
	coercedCells := 0
	for _, col := range t.Columns {
		if col == dateCol {
			continue
		}
		values, err := t.Column(col)
		if err != nil {
			continue
		}
		if candidates[col] {
			coerced, nulled := dataset.CoerceNumeric(values)
			t.SetColumn(col, coerced)
			coercedCells += nulled
			numericCols = append(numericCols, col)
			continue
		}
		if dataset.InferColumnType(values) == dataset.TypeNumber {
			coerced, _ := dataset.CoerceNumeric(values)
			t.SetColumn(col, coerced)
			numericCols = append(numericCols, col)
		}
	}
	report.record("coerce_numerics", coercedCells > 0, "")
	return numericCols
}

// treatOutliers clips negatives in quantity/price and caps values
// above Q3 + multiplier*IQR per numeric column (step 6). Quartiles are
// computed over non-missing values only.
func (c *Cleaner) treatOutliers(t *dataset.Table, numericCols []string, qtyCol, priceCol string, report *Report) {
	applied := false
	for _, col := range numericCols {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}

		if col == qtyCol || col == priceCol {
			negatives := 0
			for _, row := range t.Rows {
				if f, ok := row[idx].Float(); ok && f < 0 {
					row[idx] = dataset.Number(0)
					negatives++
				}
			}
			if negatives > 0 {
				applied = true
				report.Add("Corrected %d negative values in '%s'.", negatives, col)
			}
		}

		var observed []float64
		for _, row := range t.Rows {
			if f, ok := row[idx].Float(); ok {
				observed = append(observed, f)
			}
		}
		if len(observed) == 0 {
			continue
		}
		q1 := quantile(observed, 0.25)
		q3 := quantile(observed, 0.75)
		upperBound := q3 + c.cfg.IQRMultiplier*(q3-q1)

		capped := 0
		for _, row := range t.Rows {
			if f, ok := row[idx].Float(); ok && f > upperBound {
				row[idx] = dataset.Number(upperBound)
				capped++
			}
		}
		if capped > 0 {
			applied = true
			report.Add("Capped %d outliers in '%s' to upper limit %s.", capped, col, formatStat(upperBound))
		}
	}
	report.record("treat_outliers", applied, "")
}

// fillNumericMissing fills missing numeric cells with the column
// median, or 0 when the median is undefined (step 7).
func (c *Cleaner) fillNumericMissing(t *dataset.Table, numericCols []string, report *Report) {
	applied := false
	for _, col := range numericCols {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		var observed []float64
		missing := 0
		for _, row := range t.Rows {
			if f, ok := row[idx].Float(); ok {
				observed = append(observed, f)
			} else {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		fill, ok := median(observed)
		if !ok {
			fill = 0
		}
		for _, row := range t.Rows {
			if row[idx].IsNull() {
				row[idx] = dataset.Number(fill)
			}
		}
		applied = true
		report.Add("Filled %d missing values in '%s' with median (%s).", missing, col, formatStat(fill))
	}
	report.record("fill_numeric_missing", applied, "")
}

// categoricalColumns lists the columns treated as text: everything
// that is neither numeric nor the date column.
func (c *Cleaner) categoricalColumns(t *dataset.Table, numericCols []string, dateCol string) []string {
	numeric := make(map[string]bool, len(numericCols))
	for _, col := range numericCols {
		numeric[col] = true
	}
	var categorical []string
	for _, col := range t.Columns {
		if col == dateCol || numeric[col] {
			continue
		}
		categorical = append(categorical, col)
	}
	return categorical
}

// fillCategoricalMissing fills missing text cells with the column
// mode, or "Unknown" when no mode exists (step 8).
func (c *Cleaner) fillCategoricalMissing(t *dataset.Table, categoricalCols []string, report *Report) {
	applied := false
	for _, col := range categoricalCols {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		var observed []string
		missing := 0
		for _, row := range t.Rows {
			if row[idx].IsNull() {
				missing++
			} else {
				observed = append(observed, row[idx].String())
			}
		}
		if missing == 0 {
			continue
		}
		fill, ok := mode(observed)
		if !ok {
			fill = "Unknown"
		}
		for _, row := range t.Rows {
			if row[idx].IsNull() {
				row[idx] = dataset.Text(fill)
			}
		}
		applied = true
		report.Add("Filled %d missing values in '%s' with '%s'.", missing, col, fill)
	}
	report.record("fill_categorical_missing", applied, "")
}

// standardizeText trims and title-cases text cells and maps
// spelled-out missing markers to "Unknown" (step 9). This step is
// silent: it changes presentation, not content, so it adds no
// change-log entries.
func (c *Cleaner) standardizeText(t *dataset.Table, categoricalCols []string, dateCol string, report *Report) {
	for _, col := range categoricalCols {
		if col == dateCol {
			continue
		}
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		for _, row := range t.Rows {
			if row[idx].Kind() != dataset.KindText {
				continue
			}
			text := c.titler.String(strings.TrimSpace(row[idx].String()))
			if missingMarkers[text] {
				text = "Unknown"
			}
			row[idx] = dataset.Text(text)
		}
	}
	report.record("standardize_text", true, "")
}

// deriveColumns adds Revenue, Month and Year when their source columns
// permit and the targets do not already exist (step 10).
func (c *Cleaner) deriveColumns(t *dataset.Table, dateCol, qtyCol, priceCol string, report *Report) {
	applied := false

	if qtyCol != "" && priceCol != "" && !t.HasColumn("Revenue") {
		qtyIdx := t.ColumnIndex(qtyCol)
		priceIdx := t.ColumnIndex(priceCol)
		if qtyIdx >= 0 && priceIdx >= 0 {
			revenue := make([]dataset.Value, t.NumRows())
			for i, row := range t.Rows {
				q, qok := row[qtyIdx].Float()
				p, pok := row[priceIdx].Float()
				if qok && pok {
					revenue[i] = dataset.Number(q * p)
				} else {
					revenue[i] = dataset.Null()
				}
			}
			t.AddColumn("Revenue", revenue)
			applied = true
			report.Add("Created derived column 'Revenue' (Quantity * Price).")
		}
	}

	if dateCol != "" {
		dateIdx := t.ColumnIndex(dateCol)
		if dateIdx >= 0 {
			if !t.HasColumn("Month") {
				months := make([]dataset.Value, t.NumRows())
				for i, row := range t.Rows {
					if d, ok := row[dateIdx].Time(); ok {
						months[i] = dataset.Text(d.Format("January"))
					} else {
						months[i] = dataset.Null()
					}
				}
				t.AddColumn("Month", months)
				applied = true
				report.Add("Created derived column 'Month'.")
			}
			if !t.HasColumn("Year") {
				years := make([]dataset.Value, t.NumRows())
				for i, row := range t.Rows {
					if d, ok := row[dateIdx].Time(); ok {
						years[i] = dataset.Number(float64(d.Year()))
					} else {
						years[i] = dataset.Null()
					}
				}
				t.AddColumn("Year", years)
				applied = true
				report.Add("Created derived column 'Year'.")
			}
		}
	}

	report.record("derive_columns", applied, "")
}

// fillRemaining is the catch-all (step 11): any cell still missing, or
// holding only whitespace, becomes the configured sentinel.
func (c *Cleaner) fillRemaining(t *dataset.Table, report *Report) {
	replaced := 0
	for _, row := range t.Rows {
		for i, v := range row {
			if v.IsNull() || (v.Kind() == dataset.KindText && strings.TrimSpace(v.String()) == "") {
				row[i] = dataset.Text(c.cfg.Sentinel)
				replaced++
			}
		}
	}
	report.record("fill_remaining", replaced > 0, "")
	if replaced > 0 {
		report.Add("Filled %d remaining empty cells with '%s'.", replaced, c.cfg.Sentinel)
	}
}
