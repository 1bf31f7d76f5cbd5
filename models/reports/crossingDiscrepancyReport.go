package reports

import (
	"fmt"

	"github.com/comexdata/customs_backend/models"
	"github.com/xuri/excelize/v2"
)

const crossingSheet = "Crossing"

// BuildCrossingWorkbook renders an operation's crossing result as an Excel
// workbook for the audit/export views: a summary block followed by one row
// per discrepancy.
func BuildCrossingWorkbook(operation *models.Operation, result *models.CrossingResult) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(crossingSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(crossingSheet, "A1", "Operation")
	f.SetCellValue(crossingSheet, "B1", operation.OperationNumber)
	f.SetCellValue(crossingSheet, "A2", "Client")
	f.SetCellValue(crossingSheet, "B2", operation.ClientName)
	f.SetCellValue(crossingSheet, "A3", "Crossing status")
	f.SetCellValue(crossingSheet, "B3", string(result.Status))
	f.SetCellValue(crossingSheet, "A4", "Executed at")
	f.SetCellValue(crossingSheet, "B4", result.ExecutedAt.Format("2006-01-02 15:04:05"))
	if result.ResolvedAt != nil {
		f.SetCellValue(crossingSheet, "A5", "Resolved by")
		f.SetCellValue(crossingSheet, "B5", result.ResolvedByUserName)
		f.SetCellValue(crossingSheet, "C5", result.ResolvedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(crossingSheet, "D5", result.ResolutionComment)
	}

	headerRow := 7
	f.SetCellValue(crossingSheet, fmt.Sprintf("A%d", headerRow), "Field")
	f.SetCellValue(crossingSheet, fmt.Sprintf("B%d", headerRow), "Line")
	f.SetCellValue(crossingSheet, fmt.Sprintf("C%d", headerRow), "Preliminary")
	f.SetCellValue(crossingSheet, fmt.Sprintf("D%d", headerRow), "Final")
	f.SetCellValue(crossingSheet, fmt.Sprintf("E%d", headerRow), "Difference")
	f.SetCellValue(crossingSheet, fmt.Sprintf("F%d", headerRow), "Description")

	for i, d := range result.Discrepancies {
		row := headerRow + 1 + i
		f.SetCellValue(crossingSheet, fmt.Sprintf("A%d", row), string(d.Field))
		if d.LineNumber != nil {
			f.SetCellValue(crossingSheet, fmt.Sprintf("B%d", row), *d.LineNumber)
		}
		f.SetCellValue(crossingSheet, fmt.Sprintf("C%d", row), d.PreliminaryValue)
		f.SetCellValue(crossingSheet, fmt.Sprintf("D%d", row), d.FinalValue)
		f.SetCellValue(crossingSheet, fmt.Sprintf("E%d", row), d.Difference.StringFixed(2))
		f.SetCellValue(crossingSheet, fmt.Sprintf("F%d", row), d.Description)
	}

	return f, nil
}
