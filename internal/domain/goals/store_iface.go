package goals

import (
	"context"

	"perfdash/internal/domain/scoring"
)

type StoreAPI interface {
	CreateCycle(ctx context.Context, c Cycle) (string, error)
	CycleByID(ctx context.Context, orgID, id string) (Cycle, error)
	ListCycles(ctx context.Context, orgID, status string) ([]Cycle, error)
	UpdateCycle(ctx context.Context, orgID string, c Cycle) error
	DeleteCycle(ctx context.Context, orgID, id string) error

	CreateGoal(ctx context.Context, g Goal) (string, error)
	GoalByID(ctx context.Context, orgID, id string) (Goal, error)
	ListGoals(ctx context.Context, orgID, userID, cycleID string) ([]Goal, error)
	UpdateGoal(ctx context.Context, orgID string, g Goal) error
	DeleteGoal(ctx context.Context, orgID, id string) error
	SetEvaluationStatusForUser(ctx context.Context, orgID, userID, cycleID string, status scoring.Status) (int64, error)
	EvaluationStatuses(ctx context.Context, orgID, userID, cycleID string) ([]scoring.Status, error)

	SummaryEvaluation(ctx context.Context, orgID, userID, cycleID string) (SummaryEvaluation, error)
	UpsertSummaryEvaluation(ctx context.Context, orgID string, se SummaryEvaluation) error
}
