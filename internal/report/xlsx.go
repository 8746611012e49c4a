package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/alexshd/bianchi"
)

const sheetName = "Saturation"

var xlsxHeaders = []string{
	"Stations", "Strategy", "Tau", "P", "Residual", "Evaluations",
	"PEmpty", "PSuccess", "PCollision", "Mbit/s", "Sim Mbit/s", "Sim StdDev Mbit/s",
}

// WriteXLSX saves the results as a single-sheet workbook at path.
func WriteXLSX(path string, results []bianchi.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", h, err)
		}
	}

	for i, r := range results {
		row := []any{
			r.Stations(),
			r.Equilibrium.Strategy,
			r.Equilibrium.Tau,
			r.Equilibrium.P,
			r.Equilibrium.Residual,
			r.Equilibrium.Evaluations,
			r.Throughput.PEmpty,
			r.Throughput.PSuccess,
			r.Throughput.PCollision,
			r.Throughput.Mbps(),
		}
		if r.Sim != nil {
			row = append(row, r.Sim.Mbps(), r.Sim.StdDev/1e6)
		}

		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
