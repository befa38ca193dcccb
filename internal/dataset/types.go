package dataset

// ColumnType is the descriptor produced once per column and consumed
// by later coercion steps, instead of re-inferring cell types at each
// use site.
type ColumnType int

const (
	// TypeUnknown marks a column with no non-null cells.
	TypeUnknown ColumnType = iota
	// TypeText marks a column holding free text.
	TypeText
	// TypeNumber marks a column whose non-null cells all parse as numbers.
	TypeNumber
	// TypeDate marks a column whose non-null cells all parse as dates.
	TypeDate
)

// String returns the string representation of the column type
func (ct ColumnType) String() string {
	switch ct {
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	default:
		return "unknown"
	}
}

// InferColumnType classifies a column from its cells. A column is
// numeric or date only when every non-null cell coerces; anything
// mixed falls back to text.
func InferColumnType(values []Value) ColumnType {
	nonNull := 0
	numbers := 0
	dates := 0
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		nonNull++
		if _, ok := v.AsNumber(); ok {
			numbers++
		}
		if _, ok := v.AsDate(); ok {
			dates++
		}
	}
	switch {
	case nonNull == 0:
		return TypeUnknown
	case numbers == nonNull:
		return TypeNumber
	case dates == nonNull:
		return TypeDate
	default:
		return TypeText
	}
}

// CoerceNumeric converts every cell to a number, turning unparseable
// cells into null. It returns the coerced column and the count of
// cells that became null.
func CoerceNumeric(values []Value) ([]Value, int) {
	out := make([]Value, len(values))
	nulled := 0
	for i, v := range values {
		coerced, ok := v.AsNumber()
		out[i] = coerced
		if !ok && !v.IsNull() {
			nulled++
		}
	}
	return out, nulled
}

// CoerceDates converts every cell to a date, turning unparseable cells
// into null. It returns the coerced column and the count of cells that
// became null.
func CoerceDates(values []Value) ([]Value, int) {
	out := make([]Value, len(values))
	nulled := 0
	for i, v := range values {
		coerced, ok := v.AsDate()
		out[i] = coerced
		if !ok && !v.IsNull() {
			nulled++
		}
	}
	return out, nulled
}
