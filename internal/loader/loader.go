// Package loader decodes uploaded CSV and Excel files into the
// in-memory table consumed by the pipeline. It is the boundary where
// encoding and format problems are turned into UnreadableInput errors;
// nothing past this package touches raw bytes.
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"salespulse/internal/dataset"
	"salespulse/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads data files into tables.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Read decodes the raw bytes of a data file into a table based on its
// extension (.csv, .xlsx, .xls). Failures return an UnreadableInput
// error with no partial result.
func (l *Loader) Read(name string, data []byte) (*dataset.Table, error) {
	var t *dataset.Table
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		t, err = l.readCSV(data)
	case ".xlsx", ".xls":
		t, err = l.readExcel(data)
	default:
		err = fmt.Errorf("unsupported file extension: %s", filepath.Ext(name))
	}
	if err != nil {
		return nil, errors.NewUnreadableInput(name, err)
	}

	l.logger.Info("loaded data file",
		slog.String("file", filepath.Base(name)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return t, nil
}

// readCSV parses CSV bytes, trying UTF-8 first and falling back to
// Windows-1252 when the payload is not valid UTF-8. A UTF-8 BOM is
// stripped.
func (l *Loader) readCSV(data []byte) (*dataset.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode bytes: %w", err)
		}
		l.logger.Debug("decoded CSV as Windows-1252")
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := dataset.New(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		t.AppendRow(cellsFromStrings(record, len(header)))
	}
	return t, nil
}

// readExcel parses the first sheet of an Excel workbook, using the
// first row as the header.
func (l *Loader) readExcel(data []byte) (*dataset.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	t := dataset.New(rows[0])
	for _, row := range rows[1:] {
		t.AppendRow(cellsFromStrings(row, len(rows[0])))
	}
	return t, nil
}

// cellsFromStrings maps raw string cells to values, turning empty
// cells into missing markers.
func cellsFromStrings(record []string, width int) []dataset.Value {
	cells := make([]dataset.Value, width)
	for i := range cells {
		if i >= len(record) || record[i] == "" {
			cells[i] = dataset.Null()
			continue
		}
		cells[i] = dataset.Text(record[i])
	}
	return cells
}
