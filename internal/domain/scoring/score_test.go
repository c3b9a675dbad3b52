package scoring

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  float64
	}{
		{"unset score counts as one", 0, 20},
		{"lowest score", 1, 20},
		{"mid score", 3, 60},
		{"top score", 5, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.score); got != tc.want {
				t.Fatalf("Normalize(%d) = %v, want %v", tc.score, got, tc.want)
			}
		})
	}
}

func TestSummarizeWeights(t *testing.T) {
	full := SummarizeWeights([]GoalInput{{Weight: 60}, {Weight: 40}})
	if !full.FullyAllocated || full.TotalWeight != 100 || full.Remaining != 0 {
		t.Fatalf("fully allocated set: got %+v", full)
	}

	partial := SummarizeWeights([]GoalInput{{Weight: 50}, {Weight: 30}})
	if partial.FullyAllocated || partial.TotalWeight != 80 || partial.Remaining != 20 {
		t.Fatalf("partial set: got %+v", partial)
	}

	over := SummarizeWeights([]GoalInput{{Weight: 70}, {Weight: 50}})
	if over.Remaining != -20 {
		t.Fatalf("over-allocated remaining = %d, want -20", over.Remaining)
	}

	empty := SummarizeWeights(nil)
	if empty.TotalWeight != 0 || empty.Remaining != 100 {
		t.Fatalf("empty set: got %+v", empty)
	}
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name  string
		goals []GoalInput
		want  int
	}{
		{"no goals", nil, 0},
		{"all zero weights", []GoalInput{{Weight: 0, Score: 5}}, 0},
		{"fully allocated", []GoalInput{{Weight: 60, Score: 5}, {Weight: 40, Score: 3}}, 84},
		{"renormalizes against actual total", []GoalInput{{Weight: 50, Score: 4}, {Weight: 30, Score: 5}}, 88},
		{"unevaluated goals score twenty percent", []GoalInput{{Weight: 100, Score: 0}}, 20},
		{"single goal", []GoalInput{{Weight: 25, Score: 4}}, 80},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WeightedScore(tc.goals)
			if err != nil {
				t.Fatalf("WeightedScore: %v", err)
			}
			if got != tc.want {
				t.Fatalf("WeightedScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWeightedScoreRange(t *testing.T) {
	sets := [][]GoalInput{
		{{Weight: 100, Score: 1}},
		{{Weight: 20, Score: 1}, {Weight: 30, Score: 3}, {Weight: 50, Score: 5}},
		{{Weight: 10, Score: 2}, {Weight: 90, Score: 4}},
	}
	for _, goals := range sets {
		got, err := WeightedScore(goals)
		if err != nil {
			t.Fatalf("WeightedScore: %v", err)
		}
		if got < 0 || got > 100 {
			t.Fatalf("WeightedScore(%v) = %d, outside 0-100", goals, got)
		}
	}
}

func TestWeightedScoreInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		goals []GoalInput
	}{
		{"negative weight", []GoalInput{{Weight: -10, Score: 3}}},
		{"negative score", []GoalInput{{Weight: 50, Score: -1}}},
		{"score above scale", []GoalInput{{Weight: 50, Score: 6}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := WeightedScore(tc.goals); !errors.Is(err, ErrInvalidGoalInput) {
				t.Fatalf("err = %v, want ErrInvalidGoalInput", err)
			}
		})
	}
}

func TestWeightedScoreStable(t *testing.T) {
	goals := []GoalInput{{Weight: 60, Score: 5}, {Weight: 40, Score: 3}}
	first, err := WeightedScore(goals)
	if err != nil {
		t.Fatalf("WeightedScore: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := WeightedScore(goals)
		if err != nil {
			t.Fatalf("WeightedScore: %v", err)
		}
		if again != first {
			t.Fatalf("run %d: score drifted from %d to %d", i, first, again)
		}
	}
}

func TestImpact(t *testing.T) {
	tests := []struct {
		name string
		goal GoalInput
		want int
	}{
		{"top score full weight", GoalInput{Weight: 100, Score: 5}, 100},
		{"partial weight", GoalInput{Weight: 60, Score: 5}, 60},
		{"mid score", GoalInput{Weight: 40, Score: 3}, 24},
		{"unset score", GoalInput{Weight: 50, Score: 0}, 10},
		{"rounds half up", GoalInput{Weight: 13, Score: 3}, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Impact(tc.goal); got != tc.want {
				t.Fatalf("Impact(%+v) = %d, want %d", tc.goal, got, tc.want)
			}
		})
	}
}

func TestEndToEndScoreAndGrade(t *testing.T) {
	goals := []GoalInput{
		{Weight: 60, Score: 5},
		{Weight: 40, Score: 3},
	}

	score, err := WeightedScore(goals)
	if err != nil {
		t.Fatalf("WeightedScore: %v", err)
	}
	if score != 84 {
		t.Fatalf("score = %d, want 84", score)
	}

	// 84 sits in the top default band (81-100).
	grade := ResolveGrade(score, nil, DefaultBands())
	if grade.Text != "Excellent" || grade.Level != 5 {
		t.Fatalf("grade = %+v, want Excellent level 5", grade)
	}
}
