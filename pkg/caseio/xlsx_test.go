package caseio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTestSpreadsheet(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("SetSheetName failed: %v", err)
		}
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "case.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

func TestReadXLSXFile(t *testing.T) {
	model := testModel(t)
	path := writeTestSpreadsheet(t, "Case", [][]interface{}{
		{"attribute", "value"},
		{"applicant.age", 30},
		{"applicant.status", "married"},
	})

	c, err := ReadXLSXFile(model, path, "Case")
	if err != nil {
		t.Fatalf("ReadXLSXFile failed: %v", err)
	}
	if v, ok := c.Inputs["applicant.age"].(float64); !ok || v != 30 {
		t.Errorf("expected float64(30), got %T %v", c.Inputs["applicant.age"], c.Inputs["applicant.age"])
	}
	if c.Inputs["applicant.status"] != "married" {
		t.Errorf("expected married, got %v", c.Inputs["applicant.status"])
	}
}

func TestReadXLSXFileDefaultsToFirstSheet(t *testing.T) {
	model := testModel(t)
	path := writeTestSpreadsheet(t, "Sheet1", [][]interface{}{
		{"applicant.eligible", "true"},
	})

	c, err := ReadXLSXFile(model, path, "")
	if err != nil {
		t.Fatalf("ReadXLSXFile failed: %v", err)
	}
	if v, ok := c.Inputs["applicant.eligible"].(bool); !ok || !v {
		t.Errorf("expected true, got %v", c.Inputs["applicant.eligible"])
	}
}

func TestReadXLSXFileUnknownSheet(t *testing.T) {
	model := testModel(t)
	path := writeTestSpreadsheet(t, "Case", [][]interface{}{
		{"applicant.age", 30},
	})

	_, err := ReadXLSXFile(model, path, "Missing")
	if err == nil {
		t.Fatal("expected an error for an unknown sheet")
	}
	if !strings.Contains(err.Error(), `"Missing"`) {
		t.Errorf("expected the sheet name in the error, got %q", err.Error())
	}
}
