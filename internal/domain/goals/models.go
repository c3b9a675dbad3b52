package goals

import (
	"time"

	"perfdash/internal/domain/scoring"
)

type Cycle struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Goal belongs to one user and optionally one evaluation cycle. An
// EvaluationScore of 0 means the goal has not been evaluated yet; scoring
// treats it as the floor of the 1-5 scale.
type Goal struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	OrganizationID   string         `json:"organizationId"`
	CycleID          string         `json:"cycleId,omitempty"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Weight           int            `json:"weight"`
	Status           string         `json:"status"`
	EvaluationScore  int            `json:"evaluationScore"`
	EvaluationStatus scoring.Status `json:"evaluationStatus"`
	DueDate          *time.Time     `json:"dueDate,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type SummaryEvaluation struct {
	UserID      string    `json:"userId"`
	CycleID     string    `json:"cycleId"`
	Summary     string    `json:"summary"`
	Suggestions string    `json:"suggestions"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
