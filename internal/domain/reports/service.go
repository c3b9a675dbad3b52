// Package reports assembles the score, grade, and goal breakdown consumed
// by the dashboard endpoints and both export formats. All of them share
// this one assembly path into the scoring package.
package reports

import (
	"context"
	"log/slog"

	"perfdash/internal/domain/goals"
	"perfdash/internal/domain/org"
	"perfdash/internal/domain/scoring"
)

type Service struct {
	Goals *goals.Service
	Org   *org.Service
}

func New(goalsSvc *goals.Service, orgSvc *org.Service) *Service {
	return &Service{Goals: goalsSvc, Org: orgSvc}
}

type GoalRow struct {
	Goal   goals.Goal `json:"goal"`
	Impact int        `json:"impact"`
}

type Result struct {
	Profile     org.Profile           `json:"profile"`
	ManagerName string                `json:"managerName,omitempty"`
	Score       int                   `json:"score"`
	Grade       scoring.Grade         `json:"grade"`
	Weights     scoring.WeightSummary `json:"weights"`
	Status      scoring.Status        `json:"status"`
	Goals       []GoalRow             `json:"goals"`
}

// UserResult computes the full performance picture for one user in one
// cycle (cycleID may be empty for all goals).
func (s *Service) UserResult(ctx context.Context, orgID, userID, cycleID string) (Result, error) {
	profile, err := s.Org.Profile(ctx, orgID, userID)
	if err != nil {
		return Result{}, err
	}

	list, weights, err := s.Goals.ListGoals(ctx, orgID, userID, cycleID)
	if err != nil {
		return Result{}, err
	}

	inputs := make([]scoring.GoalInput, len(list))
	statuses := make([]scoring.Status, len(list))
	for i, g := range list {
		inputs[i] = scoring.GoalInput{Weight: g.Weight, Score: g.EvaluationScore}
		statuses[i] = g.EvaluationStatus
	}

	score, err := scoring.WeightedScore(inputs)
	if err != nil {
		return Result{}, err
	}
	grade, err := s.Org.Grade(ctx, orgID, score)
	if err != nil {
		return Result{}, err
	}

	rows := make([]GoalRow, len(list))
	for i, g := range list {
		rows[i] = GoalRow{Goal: g, Impact: scoring.Impact(inputs[i])}
	}

	result := Result{
		Profile: profile,
		Score:   score,
		Grade:   grade,
		Weights: weights,
		Status:  scoring.AggregateStatus(statuses),
		Goals:   rows,
	}
	if profile.ManagerID != "" {
		manager, err := s.Org.Profile(ctx, orgID, profile.ManagerID)
		if err != nil {
			slog.Warn("report manager lookup failed", "userId", userID, "err", err)
		} else {
			result.ManagerName = manager.FullName
		}
	}
	return result, nil
}

type OverviewEntry struct {
	Profile org.Profile    `json:"profile"`
	Score   int            `json:"score"`
	Grade   scoring.Grade  `json:"grade"`
	Status  scoring.Status `json:"status"`
}

type Overview struct {
	Subordinates []OverviewEntry `json:"subordinates"`
	// Distribution counts subordinates per grade level for the chart.
	Distribution map[int]int `json:"distribution"`
}

// ManagerOverview scores every direct report of a manager.
func (s *Service) ManagerOverview(ctx context.Context, orgID, managerID, cycleID string) (Overview, error) {
	subs, err := s.Org.Subordinates(ctx, orgID, managerID)
	if err != nil {
		return Overview{}, err
	}

	out := Overview{Subordinates: []OverviewEntry{}, Distribution: map[int]int{}}
	for _, sub := range subs {
		result, err := s.UserResult(ctx, orgID, sub.ID, cycleID)
		if err != nil {
			slog.Warn("overview result failed", "userId", sub.ID, "err", err)
			continue
		}
		out.Subordinates = append(out.Subordinates, OverviewEntry{
			Profile: sub,
			Score:   result.Score,
			Grade:   result.Grade,
			Status:  result.Status,
		})
		out.Distribution[result.Grade.Level]++
	}
	return out, nil
}

// OrgResults assembles one Result per active profile, for the workbook
// export. One sequential round per employee matches the scale of the tool.
func (s *Service) OrgResults(ctx context.Context, orgID, cycleID string) ([]Result, error) {
	profiles, err := s.Org.ListProfiles(ctx, orgID, "", org.StatusActive)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		result, err := s.UserResult(ctx, orgID, p.ID, cycleID)
		if err != nil {
			slog.Warn("export result failed", "userId", p.ID, "err", err)
			continue
		}
		out = append(out, result)
	}
	return out, nil
}
