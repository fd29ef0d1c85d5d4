package domain

// TaskStatus represents the lifecycle state of a recorded task
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// TaskType classifies what a recorded task produces
type TaskType string

const (
	TaskGenerate TaskType = "generate"
	TaskFix      TaskType = "fix"
)

// RunStatus represents the outcome of one orchestrator run
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// IssueSeverity classifies issues found during code review
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityHigh     IssueSeverity = "high"
	SeverityMedium   IssueSeverity = "medium"
	SeverityLow      IssueSeverity = "low"
)

// ActionRequired returns true if the severity warrants an automated fix
func (s IssueSeverity) ActionRequired() bool {
	return s == SeverityCritical || s == SeverityHigh
}
