package goals

import (
	"context"
	"errors"

	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/scoring"
)

var (
	ErrInvalidWeight = errors.New("goals: weight must be between 0 and 100")
	ErrInvalidScore  = errors.New("goals: evaluation score must be between 1 and 5")
	ErrInvalidStatus = errors.New("goals: unknown goal status")
	ErrInactiveCycle = errors.New("goals: cycle is not active")
	ErrNotOwner      = errors.New("goals: only the owner or a manager-tier user may change this goal")
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) CreateCycle(ctx context.Context, c Cycle) (Cycle, error) {
	if c.Status == "" {
		c.Status = CycleStatusActive
	}
	if !ValidCycleStatus(c.Status) {
		return Cycle{}, ErrInvalidStatus
	}
	id, err := s.Store.CreateCycle(ctx, c)
	if err != nil {
		return Cycle{}, err
	}
	return s.Store.CycleByID(ctx, c.OrganizationID, id)
}

func (s *Service) Cycle(ctx context.Context, orgID, id string) (Cycle, error) {
	return s.Store.CycleByID(ctx, orgID, id)
}

func (s *Service) ListCycles(ctx context.Context, orgID, status string) ([]Cycle, error) {
	return s.Store.ListCycles(ctx, orgID, status)
}

func (s *Service) UpdateCycle(ctx context.Context, orgID string, c Cycle) (Cycle, error) {
	if !ValidCycleStatus(c.Status) {
		return Cycle{}, ErrInvalidStatus
	}
	if err := s.Store.UpdateCycle(ctx, orgID, c); err != nil {
		return Cycle{}, err
	}
	return s.Store.CycleByID(ctx, orgID, c.ID)
}

func (s *Service) DeleteCycle(ctx context.Context, orgID, id string) error {
	return s.Store.DeleteCycle(ctx, orgID, id)
}

// CreateGoal stores a new goal for actor or, when actor is manager-tier,
// on another user's behalf. New goals start pending and awaiting goal
// setting with no evaluation score. Weight allocation beyond 100% is not
// rejected here; callers read the weight summary off the list response.
func (s *Service) CreateGoal(ctx context.Context, actor auth.UserContext, g Goal) (Goal, error) {
	if g.UserID == "" {
		g.UserID = actor.UserID
	}
	if g.UserID != actor.UserID && !auth.IsManagerTier(actor.Role) {
		return Goal{}, ErrNotOwner
	}
	if g.Weight < 0 || g.Weight > 100 {
		return Goal{}, ErrInvalidWeight
	}
	if g.CycleID != "" {
		cycle, err := s.Store.CycleByID(ctx, actor.OrgID, g.CycleID)
		if err != nil {
			return Goal{}, err
		}
		if cycle.Status != CycleStatusActive {
			return Goal{}, ErrInactiveCycle
		}
	}

	g.OrganizationID = actor.OrgID
	if g.Status == "" {
		g.Status = GoalStatusPending
	}
	if !ValidGoalStatus(g.Status) {
		return Goal{}, ErrInvalidStatus
	}
	g.EvaluationScore = 0
	g.EvaluationStatus = scoring.StatusAwaitingGoalSetting

	id, err := s.Store.CreateGoal(ctx, g)
	if err != nil {
		return Goal{}, err
	}
	return s.Store.GoalByID(ctx, actor.OrgID, id)
}

func (s *Service) Goal(ctx context.Context, orgID, id string) (Goal, error) {
	return s.Store.GoalByID(ctx, orgID, id)
}

// ListGoals returns a user's goals newest-first plus the weight summary for
// the listed set, so callers can warn about partial or over-allocation.
func (s *Service) ListGoals(ctx context.Context, orgID, userID, cycleID string) ([]Goal, scoring.WeightSummary, error) {
	list, err := s.Store.ListGoals(ctx, orgID, userID, cycleID)
	if err != nil {
		return nil, scoring.WeightSummary{}, err
	}
	inputs := make([]scoring.GoalInput, len(list))
	for i, g := range list {
		inputs[i] = scoring.GoalInput{Weight: g.Weight, Score: g.EvaluationScore}
	}
	return list, scoring.SummarizeWeights(inputs), nil
}

// UpdateGoal applies field-level gating: the owner may edit title,
// description, weight, due date, cycle, and completion status; the
// evaluation score and evaluation status only change for manager-tier
// actors and are silently preserved otherwise.
func (s *Service) UpdateGoal(ctx context.Context, actor auth.UserContext, g Goal) (Goal, error) {
	existing, err := s.Store.GoalByID(ctx, actor.OrgID, g.ID)
	if err != nil {
		return Goal{}, err
	}
	if existing.UserID != actor.UserID && !auth.IsManagerTier(actor.Role) {
		return Goal{}, ErrNotOwner
	}

	if g.Weight < 0 || g.Weight > 100 {
		return Goal{}, ErrInvalidWeight
	}
	if !ValidGoalStatus(g.Status) {
		return Goal{}, ErrInvalidStatus
	}

	if auth.IsManagerTier(actor.Role) {
		if g.EvaluationScore < 0 || g.EvaluationScore > 5 {
			return Goal{}, ErrInvalidScore
		}
		if _, err := scoring.ParseStatus(string(g.EvaluationStatus)); err != nil {
			return Goal{}, ErrInvalidStatus
		}
	} else {
		g.EvaluationScore = existing.EvaluationScore
		g.EvaluationStatus = existing.EvaluationStatus
	}

	g.UserID = existing.UserID
	g.OrganizationID = existing.OrganizationID
	if err := s.Store.UpdateGoal(ctx, actor.OrgID, g); err != nil {
		return Goal{}, err
	}
	return s.Store.GoalByID(ctx, actor.OrgID, g.ID)
}

func (s *Service) DeleteGoal(ctx context.Context, actor auth.UserContext, id string) error {
	existing, err := s.Store.GoalByID(ctx, actor.OrgID, id)
	if err != nil {
		return err
	}
	if existing.UserID != actor.UserID && !auth.IsManagerTier(actor.Role) {
		return ErrNotOwner
	}
	return s.Store.DeleteGoal(ctx, actor.OrgID, id)
}

// BulkSetEvaluationStatus moves every goal of one user (optionally limited
// to a cycle) to the given stage in one statement. Any target stage is
// allowed; the workflow carries no guard conditions.
func (s *Service) BulkSetEvaluationStatus(ctx context.Context, orgID, userID, cycleID string, status scoring.Status) (int64, error) {
	if _, err := scoring.ParseStatus(string(status)); err != nil {
		return 0, ErrInvalidStatus
	}
	return s.Store.SetEvaluationStatusForUser(ctx, orgID, userID, cycleID, status)
}

// CurrentStatus resolves a user's aggregate evaluation stage from the mix
// of their goals' stages.
func (s *Service) CurrentStatus(ctx context.Context, orgID, userID, cycleID string) (scoring.Status, error) {
	statuses, err := s.Store.EvaluationStatuses(ctx, orgID, userID, cycleID)
	if err != nil {
		return "", err
	}
	return scoring.AggregateStatus(statuses), nil
}

func (s *Service) Summary(ctx context.Context, orgID, userID, cycleID string) (SummaryEvaluation, error) {
	return s.Store.SummaryEvaluation(ctx, orgID, userID, cycleID)
}

func (s *Service) UpsertSummary(ctx context.Context, orgID string, se SummaryEvaluation) error {
	return s.Store.UpsertSummaryEvaluation(ctx, orgID, se)
}
