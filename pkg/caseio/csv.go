package caseio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/explain"
)

// ReadCSV reads a two-column case table from r. A first row reading
// "attribute,value" (any case) is treated as a header and skipped.
func ReadCSV(model *ast.DecisionModel, origin string, r io.Reader) (*explain.Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: read case table: %w", origin, err)
	}

	var rows []row
	for i, record := range records {
		line := i + 1
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

// ReadCSVFile reads a case table from a CSV file.
func ReadCSVFile(model *ast.DecisionModel, path string) (*explain.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open case file: %w", err)
	}
	defer f.Close()
	return ReadCSV(model, path, f)
}

func isHeader(record []string) bool {
	return strings.EqualFold(strings.TrimSpace(record[0]), "attribute") &&
		strings.EqualFold(strings.TrimSpace(record[1]), "value")
}
