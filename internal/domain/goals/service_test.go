package goals

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/scoring"
)

type fakeStore struct {
	cycles map[string]Cycle
	goals  map[string]Goal
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{cycles: map[string]Cycle{}, goals: map[string]Goal{}}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) CreateCycle(_ context.Context, c Cycle) (string, error) {
	c.ID = f.id()
	f.cycles[c.ID] = c
	return c.ID, nil
}

func (f *fakeStore) CycleByID(_ context.Context, _, id string) (Cycle, error) {
	c, ok := f.cycles[id]
	if !ok {
		return Cycle{}, errors.New("no rows")
	}
	return c, nil
}

func (f *fakeStore) ListCycles(_ context.Context, _, _ string) ([]Cycle, error) { return nil, nil }

func (f *fakeStore) UpdateCycle(_ context.Context, _ string, c Cycle) error {
	f.cycles[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteCycle(_ context.Context, _, id string) error {
	delete(f.cycles, id)
	return nil
}

func (f *fakeStore) CreateGoal(_ context.Context, g Goal) (string, error) {
	g.ID = f.id()
	f.goals[g.ID] = g
	return g.ID, nil
}

func (f *fakeStore) GoalByID(_ context.Context, _, id string) (Goal, error) {
	g, ok := f.goals[id]
	if !ok {
		return Goal{}, errors.New("no rows")
	}
	return g, nil
}

func (f *fakeStore) ListGoals(_ context.Context, _, userID, _ string) ([]Goal, error) {
	out := []Goal{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateGoal(_ context.Context, _ string, g Goal) error {
	f.goals[g.ID] = g
	return nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, _, id string) error {
	delete(f.goals, id)
	return nil
}

func (f *fakeStore) SetEvaluationStatusForUser(_ context.Context, _, userID, _ string, status scoring.Status) (int64, error) {
	var n int64
	for id, g := range f.goals {
		if g.UserID == userID {
			g.EvaluationStatus = status
			f.goals[id] = g
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) EvaluationStatuses(_ context.Context, _, userID, _ string) ([]scoring.Status, error) {
	out := []scoring.Status{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g.EvaluationStatus)
		}
	}
	return out, nil
}

func (f *fakeStore) SummaryEvaluation(_ context.Context, _, _, _ string) (SummaryEvaluation, error) {
	return SummaryEvaluation{}, errors.New("no rows")
}

func (f *fakeStore) UpsertSummaryEvaluation(_ context.Context, _ string, _ SummaryEvaluation) error {
	return nil
}

var (
	employee = auth.UserContext{UserID: "emp", OrgID: "org-1", Role: auth.RoleEmployee}
	manager  = auth.UserContext{UserID: "mgr", OrgID: "org-1", Role: auth.RoleManager}
)

func TestCreateGoalDefaults(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	g, err := svc.CreateGoal(context.Background(), employee, Goal{Title: "Ship the thing", Weight: 40})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if g.Status != GoalStatusPending {
		t.Fatalf("status = %q, want pending", g.Status)
	}
	if g.EvaluationStatus != scoring.StatusAwaitingGoalSetting {
		t.Fatalf("evaluation status = %q", g.EvaluationStatus)
	}
	if g.EvaluationScore != 0 {
		t.Fatalf("evaluation score = %d, want unset", g.EvaluationScore)
	}
	if g.UserID != "emp" || g.OrganizationID != "org-1" {
		t.Fatalf("ownership = %s/%s", g.UserID, g.OrganizationID)
	}
}

func TestCreateGoalOnBehalf(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, employee, Goal{UserID: "other", Title: "x", Weight: 10}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}

	g, err := svc.CreateGoal(ctx, manager, Goal{UserID: "emp", Title: "x", Weight: 10})
	if err != nil {
		t.Fatalf("CreateGoal on behalf: %v", err)
	}
	if g.UserID != "emp" {
		t.Fatalf("user = %q", g.UserID)
	}
}

func TestCreateGoalWeightBounds(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, employee, Goal{Title: "x", Weight: -1}); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("negative weight err = %v", err)
	}
	if _, err := svc.CreateGoal(ctx, employee, Goal{Title: "x", Weight: 101}); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("oversized weight err = %v", err)
	}
}

func TestCreateGoalRejectsInactiveCycle(t *testing.T) {
	store := newFakeStore()
	store.cycles["c1"] = Cycle{ID: "c1", Status: CycleStatusInactive}
	svc := NewService(store)

	if _, err := svc.CreateGoal(context.Background(), employee, Goal{Title: "x", Weight: 10, CycleID: "c1"}); !errors.Is(err, ErrInactiveCycle) {
		t.Fatalf("err = %v, want ErrInactiveCycle", err)
	}
}

func TestListGoalsWeightSummary(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	for _, w := range []int{50, 30} {
		if _, err := svc.CreateGoal(ctx, employee, Goal{Title: "g", Weight: w}); err != nil {
			t.Fatalf("CreateGoal: %v", err)
		}
	}

	_, summary, err := svc.ListGoals(ctx, "org-1", "emp", "")
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if summary.TotalWeight != 80 || summary.FullyAllocated || summary.Remaining != 20 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestUpdateGoalEvaluationFieldGating(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, employee, Goal{Title: "g", Weight: 50})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	// Owner edits content but cannot touch evaluation fields.
	edit := created
	edit.Title = "g v2"
	edit.EvaluationScore = 5
	edit.EvaluationStatus = scoring.StatusFinalized
	got, err := svc.UpdateGoal(ctx, employee, edit)
	if err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}
	if got.Title != "g v2" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.EvaluationScore != 0 || got.EvaluationStatus != scoring.StatusAwaitingGoalSetting {
		t.Fatalf("evaluation fields leaked through owner edit: %+v", got)
	}

	// Manager sets the evaluation.
	eval := got
	eval.EvaluationScore = 4
	eval.EvaluationStatus = scoring.StatusAwaitingApproval
	got, err = svc.UpdateGoal(ctx, manager, eval)
	if err != nil {
		t.Fatalf("UpdateGoal as manager: %v", err)
	}
	if got.EvaluationScore != 4 || got.EvaluationStatus != scoring.StatusAwaitingApproval {
		t.Fatalf("evaluation fields = %+v", got)
	}

	// Out-of-scale score is rejected.
	eval.EvaluationScore = 6
	if _, err := svc.UpdateGoal(ctx, manager, eval); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("err = %v, want ErrInvalidScore", err)
	}
}

func TestUpdateGoalForeignOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, manager, Goal{UserID: "someone", Title: "g", Weight: 10})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if _, err := svc.UpdateGoal(ctx, employee, created); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
	if err := svc.DeleteGoal(ctx, employee, created.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("delete err = %v, want ErrNotOwner", err)
	}
}

func TestBulkSetEvaluationStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateGoal(ctx, employee, Goal{Title: "g", Weight: 10}); err != nil {
			t.Fatalf("CreateGoal: %v", err)
		}
	}

	n, err := svc.BulkSetEvaluationStatus(ctx, "org-1", "emp", "", scoring.StatusAwaitingEvaluation)
	if err != nil {
		t.Fatalf("BulkSetEvaluationStatus: %v", err)
	}
	if n != 3 {
		t.Fatalf("updated %d goals, want 3", n)
	}

	status, err := svc.CurrentStatus(ctx, "org-1", "emp", "")
	if err != nil {
		t.Fatalf("CurrentStatus: %v", err)
	}
	if status != scoring.StatusAwaitingEvaluation {
		t.Fatalf("status = %q", status)
	}

	if _, err := svc.BulkSetEvaluationStatus(ctx, "org-1", "emp", "", scoring.Status("bogus")); err == nil {
		t.Fatal("accepted unknown status")
	}
}

func TestCurrentStatusNoGoals(t *testing.T) {
	svc := NewService(newFakeStore())

	status, err := svc.CurrentStatus(context.Background(), "org-1", "nobody", "")
	if err != nil {
		t.Fatalf("CurrentStatus: %v", err)
	}
	if status != scoring.StatusAwaitingGoalSetting {
		t.Fatalf("status = %q, want awaiting_goal_setting", status)
	}
}
