package goals

const (
	GoalStatusPending    = "pending"
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
)

func ValidGoalStatus(status string) bool {
	switch status {
	case GoalStatusPending, GoalStatusInProgress, GoalStatusCompleted:
		return true
	}
	return false
}

const (
	CycleStatusActive   = "active"
	CycleStatusInactive = "inactive"
)

func ValidCycleStatus(status string) bool {
	return status == CycleStatusActive || status == CycleStatusInactive
}
