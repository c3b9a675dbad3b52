package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// WritePerformancePDF renders one employee's performance report.
func WritePerformancePDF(result Result) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Performance Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", result.Profile.FullName))
	pdf.Ln(7)
	if result.Profile.Department != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", result.Profile.Department))
		pdf.Ln(7)
	}
	if result.Profile.JobTitle != "" {
		job := result.Profile.JobTitle
		if result.Profile.JobLevel != "" {
			job += " (" + result.Profile.JobLevel + ")"
		}
		pdf.Cell(0, 8, fmt.Sprintf("Position: %s", job))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Performance Score: %d / 100 - %s", result.Score, result.Grade.Text))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Goals")
	pdf.Ln(9)

	for _, row := range result.Goals {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		g := row.Goal

		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, g.Title)
		pdf.Ln(6)

		pdf.SetFont("Helvetica", "", 10)
		if g.Description != "" {
			pdf.MultiCell(0, 5, g.Description, "", "L", false)
		}

		scoreText := "not evaluated"
		if g.EvaluationScore > 0 {
			scoreText = fmt.Sprintf("%d/5", g.EvaluationScore)
		}
		pdf.Cell(0, 6, fmt.Sprintf("Status: %s | Weight: %d%% | Score: %s | Impact: %d%%",
			g.Status, g.Weight, scoreText, row.Impact))
		pdf.Ln(9)
	}

	if len(result.Goals) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "No goals set for this period.")
		pdf.Ln(6)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
