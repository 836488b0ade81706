// Package batch classifies many filled forms read from CSV, one form
// controller per row.
package batch

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/income-predict/internal/controller"
	"github.com/sells-group/income-predict/internal/form"
)

// ModelColumn is the optional CSV column selecting a model per row.
const ModelColumn = "model"

// Output columns appended after the form fields.
const (
	StatusColumn = "status"
	ChanceColumn = "income_chance"
	ErrorColumn  = "error"
)

// Row is one form read from CSV.
type Row struct {
	// Line is the 1-based line number in the source file.
	Line   int
	Values form.Values
	// Model is empty when the row does not choose one.
	Model controller.Model
}

// LoadCSV reads rows from the CSV file at path.
func LoadCSV(path string, schema *form.Schema) ([]Row, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the --csv flag
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, schema)
}

// ReadCSV reads a header row of field names followed by one form per row.
// Columns must be schema fields or the model column; fields the header omits
// are left blank and fail validation if required.
func ReadCSV(r io.Reader, schema *form.Schema) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("batch: csv is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "batch: read header")
	}

	modelIdx := -1
	seen := make(map[string]bool, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		header[i] = col
		if seen[col] {
			return nil, eris.Errorf("batch: duplicate column %q", col)
		}
		seen[col] = true
		if col == ModelColumn {
			modelIdx = i
			continue
		}
		if !schema.Has(col) {
			return nil, eris.Errorf("batch: unknown column %q", col)
		}
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "batch: read line %d", line)
		}

		row := Row{Line: line, Values: schema.Blank()}
		for i, cell := range record {
			if i == modelIdx {
				row.Model = controller.Model(strings.TrimSpace(cell))
				continue
			}
			row.Values[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes each outcome as the submitted fields followed by the
// model, status, income chance and error columns.
func WriteCSV(w io.Writer, schema *form.Schema, outcomes []Outcome) error {
	cw := csv.NewWriter(w)

	names := schema.Names()
	header := append(append([]string{}, names...), ModelColumn, StatusColumn, ChanceColumn, ErrorColumn)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "batch: write header")
	}

	for _, o := range outcomes {
		record := make([]string, 0, len(header))
		for _, name := range names {
			record = append(record, o.Row.Values[name])
		}
		var chance string
		if o.State.Result != nil {
			chance = o.State.Result.IncomeChance
		}
		record = append(record, string(o.Model), o.Status(), chance, o.Message())
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "batch: write line %d", o.Row.Line)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "batch: flush csv")
	}
	return nil
}
