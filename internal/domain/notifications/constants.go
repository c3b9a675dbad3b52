package notifications

const (
	TypeGoalCreated         = "goal_created"
	TypeGoalEvaluated       = "goal_evaluated"
	TypeEvaluationFinalized = "evaluation_finalized"
	TypeWelcome             = "welcome"
)
