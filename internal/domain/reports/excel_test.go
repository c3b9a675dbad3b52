package reports

import (
	"testing"
	"time"

	"perfdash/internal/domain/goals"
	"perfdash/internal/domain/org"
	"perfdash/internal/domain/scoring"
)

func TestBuildResultRows(t *testing.T) {
	due := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	results := []Result{
		{
			Profile:     org.Profile{FullName: "Ada Jones", Email: "ada@acme.test", Department: "Engineering", JobTitle: "Engineer"},
			ManagerName: "Max Ray",
			Score:       84,
			Grade:       scoring.Grade{Text: "Good", Level: 4},
			Goals: []GoalRow{
				{
					Goal: goals.Goal{
						Title:           "Ship search",
						Description:     "Deliver the new search stack",
						Status:          goals.GoalStatusCompleted,
						Weight:          60,
						EvaluationScore: 5,
						DueDate:         &due,
						CreatedAt:       created,
						UpdatedAt:       created,
					},
					Impact: 60,
				},
				{
					Goal: goals.Goal{
						Title:     "Mentoring",
						Status:    goals.GoalStatusInProgress,
						Weight:    40,
						CreatedAt: created,
						UpdatedAt: created,
					},
					Impact: 8,
				},
			},
		},
		{
			Profile: org.Profile{FullName: "New Hire", Email: "new@acme.test"},
			Grade:   scoring.Grade{Text: "Unsatisfactory", Level: 1},
		},
	}

	rows := buildResultRows(results)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	for i, row := range rows {
		if len(row) != len(resultsHeader) {
			t.Fatalf("row %d has %d cells, header has %d", i, len(row), len(resultsHeader))
		}
	}

	first := rows[0]
	if first[0] != "Ada Jones" || first[4] != "Max Ray" || first[5] != "Ship search" {
		t.Fatalf("first row = %v", first)
	}
	if first[8] != "60%" || first[9] != "5/5" || first[10] != "2026-06-30" || first[11] != "Good" {
		t.Fatalf("first row goal cells = %v", first)
	}

	second := rows[1]
	if second[9] != "Not evaluated" {
		t.Fatalf("unevaluated score cell = %q", second[9])
	}
	if second[10] != "" {
		t.Fatalf("missing due date cell = %q", second[10])
	}

	placeholder := rows[2]
	if placeholder[0] != "New Hire" || placeholder[5] != "No goals set" {
		t.Fatalf("placeholder row = %v", placeholder)
	}
}

func TestWriteResultsWorkbook(t *testing.T) {
	buf, err := WriteResultsWorkbook([]Result{
		{
			Profile: org.Profile{FullName: "Ada Jones", Email: "ada@acme.test"},
			Grade:   scoring.Grade{Text: "Good", Level: 4},
		},
	})
	if err != nil {
		t.Fatalf("WriteResultsWorkbook: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("workbook buffer is empty")
	}
}

func TestWritePerformancePDF(t *testing.T) {
	buf, err := WritePerformancePDF(Result{
		Profile: org.Profile{FullName: "Ada Jones", Department: "Engineering"},
		Score:   84,
		Grade:   scoring.Grade{Text: "Good", Level: 4},
		Goals: []GoalRow{
			{Goal: goals.Goal{Title: "Ship search", Weight: 60, EvaluationScore: 5, Status: goals.GoalStatusCompleted}, Impact: 60},
		},
	})
	if err != nil {
		t.Fatalf("WritePerformancePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("pdf buffer is empty")
	}
}
