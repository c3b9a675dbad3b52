package goals

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfdash/internal/domain/scoring"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateCycle(ctx context.Context, c Cycle) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_cycles (organization_id, name, start_date, end_date, status)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, c.OrganizationID, c.Name, c.StartDate, c.EndDate, c.Status).Scan(&id)
	return id, err
}

func (s *Store) CycleByID(ctx context.Context, orgID, id string) (Cycle, error) {
	var out Cycle
	err := s.DB.QueryRow(ctx, `
    SELECT id, organization_id, name, start_date, end_date, status, created_at
    FROM evaluation_cycles
    WHERE organization_id = $1 AND id = $2
  `, orgID, id).Scan(&out.ID, &out.OrganizationID, &out.Name, &out.StartDate, &out.EndDate, &out.Status, &out.CreatedAt)
	return out, err
}

func (s *Store) ListCycles(ctx context.Context, orgID, status string) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, organization_id, name, start_date, end_date, status, created_at
    FROM evaluation_cycles
    WHERE organization_id = $1 AND ($2 = '' OR status = $2)
    ORDER BY start_date DESC
  `, orgID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Cycle{}
	for rows.Next() {
		var c Cycle
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.StartDate, &c.EndDate, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCycle(ctx context.Context, orgID string, c Cycle) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE evaluation_cycles
    SET name = $1, start_date = $2, end_date = $3, status = $4
    WHERE organization_id = $5 AND id = $6
  `, c.Name, c.StartDate, c.EndDate, c.Status, orgID, c.ID)
	return err
}

func (s *Store) DeleteCycle(ctx context.Context, orgID, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM evaluation_cycles WHERE organization_id = $1 AND id = $2", orgID, id)
	return err
}

const goalColumns = `
    id, user_id, organization_id, COALESCE(cycle_id::text, ''), title,
    COALESCE(description, ''), weight, status, COALESCE(evaluation_score, 0),
    evaluation_status, due_date, created_at, updated_at`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	var evalStatus string
	err := row.Scan(
		&g.ID, &g.UserID, &g.OrganizationID, &g.CycleID, &g.Title,
		&g.Description, &g.Weight, &g.Status, &g.EvaluationScore,
		&evalStatus, &g.DueDate, &g.CreatedAt, &g.UpdatedAt,
	)
	g.EvaluationStatus = scoring.Status(evalStatus)
	return g, err
}

func (s *Store) CreateGoal(ctx context.Context, g Goal) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goals (user_id, organization_id, cycle_id, title, description, weight, status, evaluation_score, evaluation_status, due_date)
    VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, NULLIF($8, 0), $9, $10)
    RETURNING id
  `, g.UserID, g.OrganizationID, g.CycleID, g.Title, g.Description, g.Weight, g.Status, g.EvaluationScore, string(g.EvaluationStatus), g.DueDate).Scan(&id)
	return id, err
}

func (s *Store) GoalByID(ctx context.Context, orgID, id string) (Goal, error) {
	return scanGoal(s.DB.QueryRow(ctx, `
    SELECT `+goalColumns+`
    FROM goals
    WHERE organization_id = $1 AND id = $2
  `, orgID, id))
}

func (s *Store) ListGoals(ctx context.Context, orgID, userID, cycleID string) ([]Goal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+goalColumns+`
    FROM goals
    WHERE organization_id = $1
      AND ($2 = '' OR user_id::text = $2)
      AND ($3 = '' OR cycle_id::text = $3)
    ORDER BY created_at DESC
  `, orgID, userID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGoal(ctx context.Context, orgID string, g Goal) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET title = $1, description = $2, weight = $3, status = $4,
        evaluation_score = NULLIF($5, 0), evaluation_status = $6,
        due_date = $7, cycle_id = NULLIF($8, '')::uuid, updated_at = now()
    WHERE organization_id = $9 AND id = $10
  `, g.Title, g.Description, g.Weight, g.Status, g.EvaluationScore, string(g.EvaluationStatus), g.DueDate, g.CycleID, orgID, g.ID)
	return err
}

func (s *Store) DeleteGoal(ctx context.Context, orgID, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM goals WHERE organization_id = $1 AND id = $2", orgID, id)
	return err
}

func (s *Store) SetEvaluationStatusForUser(ctx context.Context, orgID, userID, cycleID string, status scoring.Status) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET evaluation_status = $1, updated_at = now()
    WHERE organization_id = $2 AND user_id = $3 AND ($4 = '' OR cycle_id::text = $4)
  `, string(status), orgID, userID, cycleID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) EvaluationStatuses(ctx context.Context, orgID, userID, cycleID string) ([]scoring.Status, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT evaluation_status
    FROM goals
    WHERE organization_id = $1 AND user_id = $2 AND ($3 = '' OR cycle_id::text = $3)
  `, orgID, userID, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []scoring.Status{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		out = append(out, scoring.Status(raw))
	}
	return out, rows.Err()
}

func (s *Store) SummaryEvaluation(ctx context.Context, orgID, userID, cycleID string) (SummaryEvaluation, error) {
	var out SummaryEvaluation
	err := s.DB.QueryRow(ctx, `
    SELECT se.user_id, se.cycle_id, se.summary, COALESCE(se.suggestions, ''), se.updated_at
    FROM summary_evaluations se
    JOIN profiles p ON p.id = se.user_id
    WHERE p.organization_id = $1 AND se.user_id = $2 AND se.cycle_id = $3
  `, orgID, userID, cycleID).Scan(&out.UserID, &out.CycleID, &out.Summary, &out.Suggestions, &out.UpdatedAt)
	return out, err
}

func (s *Store) UpsertSummaryEvaluation(ctx context.Context, orgID string, se SummaryEvaluation) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO summary_evaluations (user_id, cycle_id, summary, suggestions)
    SELECT $1, $2, $3, $4
    WHERE EXISTS (SELECT 1 FROM profiles WHERE id = $1 AND organization_id = $5)
    ON CONFLICT (user_id, cycle_id) DO UPDATE SET summary = $3, suggestions = $4, updated_at = now()
  `, se.UserID, se.CycleID, se.Summary, se.Suggestions, orgID)
	return err
}
