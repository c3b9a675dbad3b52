package scoring

import "testing"

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"awaiting_goal_setting", "awaiting_evaluation", "awaiting_approval", "finalized"} {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", raw, err)
		}
		if string(got) != raw {
			t.Fatalf("ParseStatus(%q) = %q", raw, got)
		}
	}

	if _, err := ParseStatus("approved"); err == nil {
		t.Fatal("ParseStatus accepted unknown status")
	}
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no goals", nil, StatusAwaitingGoalSetting},
		{
			"mode wins",
			[]Status{StatusAwaitingEvaluation, StatusAwaitingEvaluation, StatusFinalized},
			StatusAwaitingEvaluation,
		},
		{
			"all finalized",
			[]Status{StatusFinalized, StatusFinalized},
			StatusFinalized,
		},
		{
			"tie resolves to earliest stage",
			[]Status{StatusFinalized, StatusAwaitingEvaluation},
			StatusAwaitingEvaluation,
		},
		{
			"three way tie",
			[]Status{StatusAwaitingApproval, StatusFinalized, StatusAwaitingGoalSetting},
			StatusAwaitingGoalSetting,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AggregateStatus(tc.statuses); got != tc.want {
				t.Fatalf("AggregateStatus = %q, want %q", got, tc.want)
			}
		})
	}
}
