package caseio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/explain"
)

// ReadXLSXFile reads a two-column case table from the named sheet of a
// spreadsheet. An empty sheet name selects the first sheet. As with
// CSV, a leading "attribute,value" header row is skipped.
func ReadXLSXFile(model *ast.DecisionModel, path, sheet string) (*explain.Case, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open case spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: spreadsheet has no sheets", path)
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: read sheet %q: %w", path, sheet, err)
	}

	origin := fmt.Sprintf("%s[%s]", path, sheet)
	var rows []row
	for i, record := range records {
		line := i + 1
		if len(record) == 0 {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%s row %d: expected 2 columns (attribute, value), got %d", origin, line, len(record))
		}
		if i == 0 && isHeader(record) {
			continue
		}
		rows = append(rows, row{name: record[0], value: record[1], line: line})
	}

	return bindRows(model, origin, rows)
}
