package cleaning

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataset"
)

func buildTable(columns []string, rows [][]string) *dataset.Table {
	t := dataset.New(columns)
	for _, row := range rows {
		cells := make([]dataset.Value, len(row))
		for i, cell := range row {
			if cell == "<nil>" {
				cells[i] = dataset.Null()
			} else {
				cells[i] = dataset.Text(cell)
			}
		}
		t.AppendRow(cells)
	}
	return t
}

func newTestCleaner() *Cleaner {
	return NewCleaner(nil, nil, DefaultConfig())
}

func TestCleanEmptyInputIsNoOp(t *testing.T) {
	c := newTestCleaner()

	cleaned, report := c.Clean(nil)
	assert.Nil(t, cleaned)
	assert.Empty(t, report.Entries(), "empty input yields an empty report, not the sentinel entry")

	empty := dataset.New([]string{"Order Date", "Quantity", "Price"})
	cleaned, report = c.Clean(empty)
	assert.Same(t, empty, cleaned)
	assert.Empty(t, report.Entries())
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	table := buildTable(
		[]string{" Order Date ", "Quantity", "Price"},
		[][]string{{"2024-01-05", "-2", "10"}},
	)
	c := newTestCleaner()

	c.Clean(table)

	assert.Equal(t, " Order Date ", table.Columns[0], "input headers must stay untouched")
	assert.Equal(t, "-2", table.Rows[0][1].String(), "input cells must stay untouched")
}

// Scenario: 5 byte-identical duplicate rows among 20.
func TestCleanRemovesDuplicates(t *testing.T) {
	rows := make([][]string, 0, 20)
	for i := 0; i < 15; i++ {
		rows = append(rows, []string{fmt.Sprintf("2024-01-%02d", i+1), "Widget", "2", "10"})
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, []string{"2024-01-01", "Widget", "2", "10"})
	}
	table := buildTable([]string{"Order Date", "Product", "Quantity", "Price"}, rows)

	cleaned, report := newTestCleaner().Clean(table)

	assert.Equal(t, 15, cleaned.NumRows())
	assert.Contains(t, report.Entries(), "Removed 5 duplicate rows.")
}

func TestCleanDropsInvalidDates(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price"},
		[][]string{
			{"2024-01-05", "2", "10"},
			{"not a date", "3", "11"},
			{"<nil>", "4", "12"},
		},
	)

	cleaned, report := newTestCleaner().Clean(table)

	assert.Equal(t, 1, cleaned.NumRows())
	assert.Contains(t, report.Entries(), "Removed 2 rows with invalid dates in column 'Order Date'.")
}

// Scenario: a Quantity column containing one value -50 among otherwise
// positive values.
func TestCleanCorrectsNegativeQuantity(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price"},
		[][]string{
			{"2024-01-01", "-50", "10"},
			{"2024-01-02", "10", "11"},
			{"2024-01-03", "20", "12"},
			{"2024-01-04", "30", "13"},
			{"2024-01-05", "40", "14"},
		},
	)

	cleaned, report := newTestCleaner().Clean(table)

	corrections := 0
	for _, entry := range report.Entries() {
		if strings.Contains(entry, "negative values") {
			corrections++
			assert.Equal(t, "Corrected 1 negative values in 'Quantity'.", entry)
		}
	}
	assert.Equal(t, 1, corrections, "exactly one correction entry")

	qtyIdx := cleaned.ColumnIndex("Quantity")
	f, ok := cleaned.Rows[0][qtyIdx].Float()
	require.True(t, ok)
	assert.Equal(t, 0.0, f)
}

// Outlier capping runs before missing-value imputation: the cap
// threshold is computed over non-missing values only, and the later
// median fill sees the capped column.
func TestCleanCapsOutliersBeforeImputation(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price"},
		[][]string{
			{"2024-01-01", "1", "10"},
			{"2024-01-02", "1", "10"},
			{"2024-01-03", "1", "10"},
			{"2024-01-04", "1", "10"},
			{"2024-01-05", "1", "100"},
			{"2024-01-06", "1", "<nil>"},
		},
	)

	cleaned, report := newTestCleaner().Clean(table)
	entries := report.Entries()

	// Q1=Q3=10 over the five observed prices, so the bound is 10 and
	// the 100 is capped to it.
	capIdx := indexOfEntry(t, entries, "Capped 1 outliers in 'Price' to upper limit 10.0.")
	// The fill value is the median of the capped column, and the fill
	// entry comes after the cap entry.
	fillIdx := indexOfEntry(t, entries, "Filled 1 missing values in 'Price' with median (10.0).")
	assert.Less(t, capIdx, fillIdx)

	priceIdx := cleaned.ColumnIndex("Price")
	for _, row := range cleaned.Rows {
		f, ok := row[priceIdx].Float()
		require.True(t, ok)
		assert.Equal(t, 10.0, f)
	}
}

func indexOfEntry(t *testing.T, entries []string, want string) int {
	t.Helper()
	for i, entry := range entries {
		if entry == want {
			return i
		}
	}
	t.Fatalf("entry %q not found in %v", want, entries)
	return -1
}

func TestCleanFillsCategoricalWithMode(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price", "Region"},
		[][]string{
			{"2024-01-01", "1", "10", "west"},
			{"2024-01-02", "2", "11", "west"},
			{"2024-01-03", "3", "12", "east"},
			{"2024-01-04", "4", "13", "<nil>"},
		},
	)

	cleaned, report := newTestCleaner().Clean(table)

	assert.Contains(t, report.Entries(), "Filled 1 missing values in 'Region' with 'west'.")

	// Text standardization title-cases after the fill.
	regionIdx := cleaned.ColumnIndex("Region")
	assert.Equal(t, "West", cleaned.Rows[3][regionIdx].String())
}

func TestCleanStandardizesMissingMarkers(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price", "Product"},
		[][]string{
			{"2024-01-01", "1", "10", "  nan "},
			{"2024-01-02", "2", "11", "null"},
			{"2024-01-03", "3", "12", "widget pro"},
		},
	)

	cleaned, _ := newTestCleaner().Clean(table)

	productIdx := cleaned.ColumnIndex("Product")
	assert.Equal(t, "Unknown", cleaned.Rows[0][productIdx].String())
	assert.Equal(t, "Unknown", cleaned.Rows[1][productIdx].String())
	assert.Equal(t, "Widget Pro", cleaned.Rows[2][productIdx].String())
}

func TestCleanDerivesColumns(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price"},
		[][]string{
			{"2024-03-05", "2", "10"},
			{"2024-04-06", "3", "20"},
		},
	)

	cleaned, report := newTestCleaner().Clean(table)

	entries := report.Entries()
	assert.Contains(t, entries, "Created derived column 'Revenue' (Quantity * Price).")
	assert.Contains(t, entries, "Created derived column 'Month'.")
	assert.Contains(t, entries, "Created derived column 'Year'.")

	revIdx := cleaned.ColumnIndex("Revenue")
	require.GreaterOrEqual(t, revIdx, 0)
	f, _ := cleaned.Rows[0][revIdx].Float()
	assert.Equal(t, 20.0, f)
	f, _ = cleaned.Rows[1][revIdx].Float()
	assert.Equal(t, 60.0, f)

	monthIdx := cleaned.ColumnIndex("Month")
	assert.Equal(t, "March", cleaned.Rows[0][monthIdx].String())

	yearIdx := cleaned.ColumnIndex("Year")
	assert.Equal(t, "2024", cleaned.Rows[0][yearIdx].String())
}

func TestCleanKeepsExistingRevenue(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price", "Revenue"},
		[][]string{{"2024-03-05", "2", "10", "99"}},
	)

	cleaned, report := newTestCleaner().Clean(table)

	for _, entry := range report.Entries() {
		assert.NotContains(t, entry, "derived column 'Revenue'")
	}
	revIdx := cleaned.ColumnIndex("Revenue")
	f, _ := cleaned.Rows[0][revIdx].Float()
	assert.Equal(t, 99.0, f)
}

func TestCleanCatchAllSentinel(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price", "Notes"},
		[][]string{
			{"2024-01-01", "1", "10", "   "},
			{"2024-01-02", "2", "11", "fine"},
		},
	)

	cleaned, report := newTestCleaner().Clean(table)

	assert.Contains(t, report.Entries(), "Filled 1 remaining empty cells with 'dd'.")
	notesIdx := cleaned.ColumnIndex("Notes")
	assert.Equal(t, "dd", cleaned.Rows[0][notesIdx].String())
}

func TestCleanReportSentinelWhenNoIssues(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price", "Revenue", "Month", "Year"},
		[][]string{
			{"2024-01-05", "1", "10", "10", "January", "2024"},
			{"2024-01-20", "2", "11", "22", "January", "2024"},
		},
	)

	_, report := newTestCleaner().Clean(table)

	assert.Equal(t, []string{NoIssuesEntry}, report.Entries())
}

// Re-running the cleaner on its own output changes nothing.
func TestCleanIdempotence(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Product", "Quantity", "Price"},
		[][]string{
			{"2024-01-05", "widget", "1", "10"},
			{"2024-02-06", "gadget", "2", "12"},
			{"2024-02-06", "gadget", "2", "12"},
			{"2024-03-07", "<nil>", "3", "14"},
			{"2024-04-08", "widget", "-1", "16"},
			{"bad date", "widget", "4", "18"},
		},
	)
	c := newTestCleaner()

	first, firstReport := c.Clean(table)
	assert.Greater(t, firstReport.Len(), 1, "first pass must report changes")

	second, secondReport := c.Clean(first)

	assert.Equal(t, []string{NoIssuesEntry}, secondReport.Entries())
	require.Equal(t, first.Columns, second.Columns)
	require.Equal(t, first.NumRows(), second.NumRows())
	for i := range first.Rows {
		assert.True(t, dataset.RowEqual(first.Rows[i], second.Rows[i]), "row %d changed on second pass", i)
	}
}

// A sentinel written by the catch-all is ordinary text on the next
// pass: standardization title-cases "dd" to "Dd" without a change-log
// entry. Known and accepted; exact re-run stability only holds for
// datasets the catch-all never touched (see TestCleanIdempotence).
func TestCleanRerunTitleCasesSentinel(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price", "Notes"},
		[][]string{
			{"2024-01-01", "1", "10", "   "},
			{"2024-01-02", "2", "11", "fine"},
		},
	)
	c := newTestCleaner()

	first, _ := c.Clean(table)
	notesIdx := first.ColumnIndex("Notes")
	require.Equal(t, "dd", first.Rows[0][notesIdx].String())

	second, secondReport := c.Clean(first)

	assert.Equal(t, "Dd", second.Rows[0][notesIdx].String())
	assert.Equal(t, []string{NoIssuesEntry}, secondReport.Entries())
}

// Post-cleaning invariants: quantity and price are non-negative and no
// cell is null or empty.
func TestCleanInvariants(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Product", "Quantity", "Price", "Notes"},
		[][]string{
			{"2024-01-05", "widget", "-5", "10", " "},
			{"2024-01-06", "<nil>", "2", "-3", "ok"},
			{"2024-01-07", "gadget", "<nil>", "junk", "<nil>"},
			{"junk", "widget", "3", "12", "x"},
		},
	)

	cleaned, _ := newTestCleaner().Clean(table)

	qtyIdx := cleaned.ColumnIndex("Quantity")
	priceIdx := cleaned.ColumnIndex("Price")
	for i, row := range cleaned.Rows {
		q, ok := row[qtyIdx].Float()
		require.True(t, ok, "row %d quantity must be numeric", i)
		assert.GreaterOrEqual(t, q, 0.0)

		p, ok := row[priceIdx].Float()
		require.True(t, ok, "row %d price must be numeric", i)
		assert.GreaterOrEqual(t, p, 0.0)

		for j, cell := range row {
			assert.False(t, cell.IsNull(), "row %d col %d is null", i, j)
			assert.NotEqual(t, "", strings.TrimSpace(cell.String()), "row %d col %d is empty", i, j)
		}
	}
}

func TestCleanStepOutcomes(t *testing.T) {
	table := buildTable(
		[]string{"Order Date", "Quantity", "Price"},
		[][]string{
			{"2024-01-05", "1", "10"},
			{"2024-01-05", "1", "10"},
		},
	)

	_, report := newTestCleaner().Clean(table)

	outcomes := report.Outcomes()
	require.NotEmpty(t, outcomes)

	byStep := make(map[string]StepOutcome, len(outcomes))
	for _, o := range outcomes {
		byStep[o.Step] = o
	}
	assert.True(t, byStep["remove_duplicates"].Applied)
	assert.False(t, byStep["treat_outliers"].Applied)
	assert.False(t, byStep["fill_numeric_missing"].Applied)
}
