package model

type AlertType string

const (
	AlertOverdue          AlertType = "overdue"
	AlertDueToday         AlertType = "due-today"
	AlertAtRisk           AlertType = "at-risk"
	AlertMilestoneDueSoon AlertType = "milestone-due-soon"
)

// AlertItem is derived state: recomputed wholesale on every scan, never
// persisted. Only its dismissal (keyed by ID) survives recomputation, so
// the ID must be deterministic for a given condition.
type AlertItem struct {
	ID            string    `json:"id"`
	Type          AlertType `json:"type"`
	TaskID        TaskID    `json:"taskId"`
	TaskTitle     string    `json:"taskTitle"`
	MilestoneID   string    `json:"milestoneId,omitempty"`
	MilestoneName string    `json:"milestoneName,omitempty"`
	Date          string    `json:"date"`
}
