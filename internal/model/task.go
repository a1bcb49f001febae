package model

import (
	"time"
)

type TaskID string

type TaskStatus string

const (
	StatusNotStarted  TaskStatus = "not_started"
	StatusInProgress  TaskStatus = "in_progress"
	StatusBlocked     TaskStatus = "blocked"
	StatusUnderReview TaskStatus = "under_review"
	StatusComplete    TaskStatus = "complete"
	StatusCancelled   TaskStatus = "cancelled"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type TaskType string

const (
	TypeFeature  TaskType = "feature"
	TypeBug      TaskType = "bug"
	TypeChore    TaskType = "chore"
	TypeResearch TaskType = "research"
	TypeOps      TaskType = "ops"
)

type SubtaskStatus string

const (
	SubtaskOpen SubtaskStatus = "open"
	SubtaskDone SubtaskStatus = "done"
)

type MilestoneStatus string

const (
	MilestoneUpcoming   MilestoneStatus = "upcoming"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneAchieved   MilestoneStatus = "achieved"
	MilestoneMissed     MilestoneStatus = "missed"
)

type RecurrencePattern string

const (
	PatternDaily     RecurrencePattern = "daily"
	PatternWeekly    RecurrencePattern = "weekly"
	PatternBiweekly  RecurrencePattern = "biweekly"
	PatternMonthly   RecurrencePattern = "monthly"
	PatternQuarterly RecurrencePattern = "quarterly"
	PatternCustom    RecurrencePattern = "custom"
)

// DefaultReminderDays is the at-risk lookahead when a task doesn't set one.
const DefaultReminderDays = 2

type Subtask struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Status  SubtaskStatus `json:"status"`
	DueDate *string       `json:"dueDate,omitempty"`
}

type Milestone struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	TargetDate string          `json:"targetDate"`
	Status     MilestoneStatus `json:"status"`
}

// UpdateEntry is a free-text progress note. Kept newest-first.
type UpdateEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// ChangelogEntry is one immutable audit record of a field change.
// The changelog only grows; entries are never edited or removed.
type ChangelogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Field     string    `json:"field"`
	OldValue  string    `json:"oldValue"`
	NewValue  string    `json:"newValue"`
}

type TaskLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type RecurrenceConfig struct {
	Pattern       RecurrencePattern `json:"pattern"`
	Interval      int               `json:"interval"`
	NextDue       *string           `json:"nextDue,omitempty"`
	LastCompleted *time.Time        `json:"lastCompleted,omitempty"`
	CycleCount    int               `json:"cycleCount"`
}

type Task struct {
	ID          TaskID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TaskType    TaskType   `json:"taskType"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`

	// Dates are YYYY-MM-DD, no time component.
	DueDate      *string `json:"dueDate,omitempty"`
	StartDate    *string `json:"startDate,omitempty"`
	ReminderDays *int    `json:"reminderDays,omitempty"`

	ProjectID *ProjectID `json:"projectId,omitempty"`

	Subtasks   []Subtask        `json:"subtasks"`
	Milestones []Milestone      `json:"milestones"`
	Updates    []UpdateEntry    `json:"updates"`
	Changelog  []ChangelogEntry `json:"changelog"`
	Links      []TaskLink       `json:"links,omitempty"`

	IsRecurring bool              `json:"isRecurring"`
	IsPaused    bool              `json:"isPaused,omitempty"`
	Recurrence  *RecurrenceConfig `json:"recurrence,omitempty"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EffectiveReminderDays returns the at-risk window for this task.
func (t Task) EffectiveReminderDays() int {
	if t.ReminderDays == nil || *t.ReminderDays < 0 {
		return DefaultReminderDays
	}
	return *t.ReminderDays
}
