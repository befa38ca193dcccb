package schema

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"salespulse/internal/dataset"
	"salespulse/internal/errors"
)

// DerivedPriceColumn is the label of the synthetic price column added
// when a dataset ships Sales and Quantity but no Price. The alias
// table lists it first for the price field so re-resolution picks it
// up.
const DerivedPriceColumn = "Derived_Price"

// CoreColumns is the resolved column-name triple required by the
// cleaning and forecasting stages.
type CoreColumns struct {
	DateCol  string `json:"date_col"`
	QtyCol   string `json:"qty_col"`
	PriceCol string `json:"price_col"`
}

// Validator enforces the presence of the core canonical fields and
// produces a comparable schema signature.
type Validator struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewValidator creates a validator over the given resolver. A nil
// logger uses slog.Default().
func NewValidator(resolver *Resolver, logger *slog.Logger) *Validator {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{resolver: resolver, logger: logger}
}

// Normalize derives missing core columns where possible. When price is
// unresolved but sales and quantity are present, it returns a copy of
// the table extended with Derived_Price = sales ÷ quantity, with zero
// quantities substituted by 1 to avoid division failure. The input is
// never mutated; when nothing is derivable the input is returned as is.
func (v *Validator) Normalize(t *dataset.Table) *dataset.Table {
	if t.IsEmpty() {
		return t
	}
	mapping := v.resolver.Resolve(t.Columns)
	if _, ok := mapping.Column(FieldPrice); ok {
		return t
	}
	salesCol, hasSales := mapping.Column(FieldSales)
	qtyCol, hasQty := mapping.Column(FieldQuantity)
	if !hasSales || !hasQty {
		return t
	}

	sales, err := t.Column(salesCol)
	if err != nil {
		return t
	}
	qty, err := t.Column(qtyCol)
	if err != nil {
		return t
	}

	derived := make([]dataset.Value, len(sales))
	for i := range sales {
		s, sok := sales[i].AsNumber()
		q, qok := qty[i].AsNumber()
		if !sok || !qok {
			derived[i] = dataset.Null()
			continue
		}
		sv, _ := s.Float()
		qv, _ := q.Float()
		divisor := qv
		if divisor == 0 {
			divisor = 1
		}
		derived[i] = dataset.Number(sv / divisor)
	}

	normalized := t.Clone()
	normalized.AddColumn(DerivedPriceColumn, derived)
	v.logger.Info("derived price column from sales and quantity",
		slog.String("sales_col", salesCol),
		slog.String("qty_col", qtyCol))
	return normalized
}

// Validate checks a dataset for the core canonical fields and
// computes its schema signature. The previously stored signature is
// informational only: semantically equivalent schemas with different
// spellings are accepted, so it is logged for comparison rather than
// enforced. Datasets should be passed through Normalize first.
func (v *Validator) Validate(t *dataset.Table, existingSignature string) (string, CoreColumns, error) {
	if t.IsEmpty() {
		return "", CoreColumns{}, errors.NewEmptyDataset()
	}

	mapping := v.resolver.Resolve(t.Columns)
	dateCol, hasDate := mapping.Column(FieldDate)
	qtyCol, hasQty := mapping.Column(FieldQuantity)
	priceCol, hasPrice := mapping.Column(FieldPrice)

	if !hasDate || !hasQty || !hasPrice {
		return "", CoreColumns{}, errors.NewSchemaValidation(
			"Dataset must include Date, Quantity and Price columns. " +
				"Common names: Order Date / Date, Quantity / Qty, Price / UnitPrice. " +
				"(Or provide Sales/Revenue + Quantity to automatically calculate Price)")
	}

	// A core column where every cell fails coercion is unusable
	// downstream. Dates coerce as dates, the other two as numbers.
	for _, check := range []struct {
		col  string
		date bool
	}{
		{dateCol, true},
		{qtyCol, false},
		{priceCol, false},
	} {
		values, err := t.Column(check.col)
		if err != nil {
			return "", CoreColumns{}, errors.NewSchemaValidation("core column not found: " + check.col)
		}
		var coerced []dataset.Value
		if check.date {
			coerced, _ = dataset.CoerceDates(values)
		} else {
			coerced, _ = dataset.CoerceNumeric(values)
		}
		if allNull(coerced) {
			return "", CoreColumns{}, errors.NewSchemaValidation(
				"One or more core columns (date, quantity, price) contain only missing " +
					"or invalid values. Please clean the file and try again.")
		}
	}

	signature := Signature(t.Columns)
	if existingSignature != "" && existingSignature != signature {
		v.logger.Info("schema signature differs from stored baseline",
			slog.String("existing", existingSignature),
			slog.String("new", signature))
	}

	return signature, CoreColumns{DateCol: dateCol, QtyCol: qtyCol, PriceCol: priceCol}, nil
}

// Signature builds the order-independent schema fingerprint: a JSON
// array of lowercased, sorted column labels. Kept as a plain string so
// it is easy to store, diff and show in error messages.
func Signature(columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.ToLower(c)
	}
	sort.Strings(cols)
	encoded, err := json.Marshal(cols)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func allNull(values []dataset.Value) bool {
	for _, v := range values {
		if !v.IsNull() {
			return false
		}
	}
	return true
}
