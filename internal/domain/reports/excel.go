package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Performance Results"

var resultsHeader = []string{
	"Employee Name",
	"Employee Email",
	"Department",
	"Job Title",
	"Manager Name",
	"Goal Title",
	"Goal Description",
	"Goal Status",
	"Goal Weight",
	"Evaluation Score",
	"Due Date",
	"Total Grade",
	"Created At",
	"Last Updated",
}

// buildResultRows flattens results into one row per goal. Employees with
// no goals still get a placeholder row so they appear in the export.
func buildResultRows(results []Result) [][]string {
	rows := [][]string{}
	for _, result := range results {
		base := []string{
			result.Profile.FullName,
			result.Profile.Email,
			result.Profile.Department,
			result.Profile.JobTitle,
			result.ManagerName,
		}
		if len(result.Goals) == 0 {
			rows = append(rows, append(append([]string{}, base...),
				"No goals set", "", "", "", "", "", result.Grade.Text, "", "",
			))
			continue
		}
		for _, row := range result.Goals {
			g := row.Goal
			scoreCell := "Not evaluated"
			if g.EvaluationScore > 0 {
				scoreCell = fmt.Sprintf("%d/5", g.EvaluationScore)
			}
			dueCell := ""
			if g.DueDate != nil {
				dueCell = g.DueDate.Format("2006-01-02")
			}
			rows = append(rows, append(append([]string{}, base...),
				g.Title,
				g.Description,
				g.Status,
				fmt.Sprintf("%d%%", g.Weight),
				scoreCell,
				dueCell,
				result.Grade.Text,
				g.CreatedAt.Format(time.RFC3339),
				g.UpdatedAt.Format(time.RFC3339),
			))
		}
	}
	return rows
}

// WriteResultsWorkbook renders the results into an xlsx workbook held in
// memory; the handler streams it as the response body.
func WriteResultsWorkbook(results []Result) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for col, title := range resultsHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(resultsSheet, cell, title); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(resultsSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, row := range buildResultRows(results) {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(resultsSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
