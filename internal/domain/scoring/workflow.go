package scoring

import "fmt"

// Status is the per-goal evaluation workflow stage. Stages are set manually
// by manager-tier users and carry no guard conditions; any goal may move to
// any stage at any time.
type Status string

const (
	StatusAwaitingGoalSetting Status = "awaiting_goal_setting"
	StatusAwaitingEvaluation  Status = "awaiting_evaluation"
	StatusAwaitingApproval    Status = "awaiting_approval"
	StatusFinalized           Status = "finalized"
)

// statusOrder is the lifecycle order, earliest first. It doubles as the
// tie-break order for AggregateStatus.
var statusOrder = []Status{
	StatusAwaitingGoalSetting,
	StatusAwaitingEvaluation,
	StatusAwaitingApproval,
	StatusFinalized,
}

func ParseStatus(raw string) (Status, error) {
	for _, s := range statusOrder {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown evaluation status %q", raw)
}

// AggregateStatus resolves a user's overall stage as the most frequent
// stage among their goals. Ties resolve to the earliest stage in the
// lifecycle; a user with no goals is awaiting goal setting.
func AggregateStatus(statuses []Status) Status {
	counts := make(map[Status]int, len(statusOrder))
	for _, s := range statuses {
		counts[s]++
	}

	best := StatusAwaitingGoalSetting
	bestCount := 0
	for _, s := range statusOrder {
		if counts[s] > bestCount {
			best = s
			bestCount = counts[s]
		}
	}
	return best
}
