// Package scoring holds the performance scoring, grading, and evaluation
// workflow rules shared by the dashboard, manager overview, and report code.
// Every consumer goes through this package; the formula lives here once.
package scoring

import (
	"errors"
	"math"
)

var ErrInvalidGoalInput = errors.New("scoring: invalid goal input")

// GoalInput carries the two goal fields scoring cares about. A Score of 0
// means the goal has not been evaluated yet.
type GoalInput struct {
	Weight int `json:"weight"`
	Score  int `json:"score"`
}

type WeightSummary struct {
	TotalWeight    int  `json:"totalWeight"`
	FullyAllocated bool `json:"fullyAllocated"`
	Remaining      int  `json:"remaining"`
}

// Normalize maps a 1-5 evaluation score onto a 0-100 scale. An unset score
// counts as 1, never 0, so a goal awaiting evaluation reads as 20% instead
// of dragging the weighted score to zero.
func Normalize(score int) float64 {
	if score <= 0 {
		score = 1
	}
	return float64(score) / 5 * 100
}

// SummarizeWeights reports how much of the 100% weight budget a goal set
// uses. Remaining goes negative on over-allocation. Advisory only: nothing
// rejects a save over it, callers surface the warning.
func SummarizeWeights(goals []GoalInput) WeightSummary {
	total := 0
	for _, g := range goals {
		total += g.Weight
	}
	return WeightSummary{
		TotalWeight:    total,
		FullyAllocated: total == 100,
		Remaining:      100 - total,
	}
}

// WeightedScore combines a goal set into one 0-100 score. Weights are
// renormalized against the actual total, so a partially allocated set still
// scores proportionally among the goals that exist. Rounding is half-up.
// An empty or zero-weight set scores 0.
func WeightedScore(goals []GoalInput) (int, error) {
	totalWeight := 0
	for _, g := range goals {
		if g.Weight < 0 || g.Score < 0 || g.Score > 5 {
			return 0, ErrInvalidGoalInput
		}
		totalWeight += g.Weight
	}
	if totalWeight == 0 {
		return 0, nil
	}

	sum := 0.0
	for _, g := range goals {
		sum += Normalize(g.Score) * float64(g.Weight) / float64(totalWeight)
	}
	return int(math.Floor(sum + 0.5)), nil
}

// Impact is the number of points one goal contributes to a fully allocated
// score, shown per goal on the performance report.
func Impact(goal GoalInput) int {
	return int(math.Floor(Normalize(goal.Score)*float64(goal.Weight)/100 + 0.5))
}
