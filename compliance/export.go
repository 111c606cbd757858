package compliance

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// AlertWorkbook flattens the alert log into an Excel workbook with one
// row per alert.
func AlertWorkbook(alerts []Alert) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Alerts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []string{"ID", "Contract", "VehicleID", "Rule", "Violation", "Severity", "ViolationTime", "CheckedAt", "Sample"}
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, a := range alerts {
		sample, err := json.Marshal(a.Sample)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sample of alert %s: %w", a.ID, err)
		}
		row := i + 2
		values := []any{a.ID, a.Contract, a.VehicleID, a.Rule, a.Message, a.Severity, a.ViolationTime, a.CheckedAt, string(sample)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write alert row %d: %w", row, err)
			}
		}
	}

	return f, nil
}
