package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Cyriloo7/Interviewer/internal/models"
)

// WriteExcel streams the workbook to a writer. Both the HTTP download
// endpoint and the desktop save dialog go through this.
func WriteExcel(w io.Writer, report models.BatchReport) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel workbook: %w", err)
	}

	return nil
}

// buildWorkbook assembles the summary and results sheets.
func buildWorkbook(report models.BatchReport) (*excelize.File, error) {
	f := excelize.NewFile()

	summarySheet := "Summary"
	resultsSheet := "Resumes"

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(resultsSheet)

	if err := createSummarySheet(f, summarySheet, report); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := createResultsSheet(f, resultsSheet, report.Rows); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create results sheet: %w", err)
	}

	return f, nil
}

// createSummarySheet creates the summary sheet with run details.
func createSummarySheet(f *excelize.File, sheetName string, report models.BatchReport) error {
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Resume Extraction Report")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Generated:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	generated := report.Timestamp
	if generated == "" {
		generated = time.Now().Format(time.RFC3339)
	}
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), generated)
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Resumes Processed:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), report.Processed)
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Files Skipped:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), len(report.Skipped))
	row++

	if len(report.Skipped) > 0 {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Skipped Files:")
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), strings.Join(report.Skipped, ", "))
		row++
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Note:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	noteText := "Files are skipped when no text can be extracted, typically scanned " +
		"images, certificate-only PDFs, or unsupported formats."
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), noteText)

	return nil
}

// createResultsSheet writes one row per extracted resume.
func createResultsSheet(f *excelize.File, sheetName string, rows []models.ExtractionRow) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	headers := []string{"File", "Name", "Summary", "Experience (Yrs)", "Skills", "Links"}
	widths := []float64{25, 25, 60, 16, 40, 40}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, header)

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(sheetName, col, col, widths[i])
	}

	endCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	f.SetCellStyle(sheetName, "A1", endCol+"1", headerStyle)

	for i, row := range rows {
		values := []interface{}{row.FileName, row.Name, row.Summary, row.Experience, row.Skills, row.Links}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return nil
}
