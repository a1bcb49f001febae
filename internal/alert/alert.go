package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

const ymdLayout = "2006-01-02"

// milestoneLookaheadDays is the fixed window for milestone-due-soon alerts.
const milestoneLookaheadDays = 3

// DataError records a malformed date found during an alert scan. The scan
// skips the bad value and keeps going; the error is surfaced so the client
// can flag the task instead of silently losing the alert.
type DataError struct {
	TaskID      model.TaskID `json:"taskId"`
	MilestoneID string       `json:"milestoneId,omitempty"`
	Field       string       `json:"field"`
	Value       string       `json:"value"`
}

func (e DataError) Error() string {
	if e.MilestoneID != "" {
		return fmt.Sprintf("task %s milestone %s: bad %s %q", e.TaskID, e.MilestoneID, e.Field, e.Value)
	}
	return fmt.Sprintf("task %s: bad %s %q", e.TaskID, e.Field, e.Value)
}

// AlertID builds the deterministic identity of an alert condition. The same
// condition always yields the same ID, so a dismissal keeps suppressing it
// across rescans.
func AlertID(typ model.AlertType, taskID model.TaskID, milestoneID string) string {
	if milestoneID != "" {
		return fmt.Sprintf("%s:%s:%s", typ, taskID, milestoneID)
	}
	return fmt.Sprintf("%s:%s", typ, taskID)
}

// ComputeAlerts scans tasks against the reference instant and derives the
// active alert set. Completed and cancelled tasks produce no alerts at all.
// A task yields at most one due-date alert; the conditions are mutually
// exclusive by construction (overdue, else due today, else at risk).
// Milestone alerts are evaluated independently of the task's due date.
func ComputeAlerts(tasks []model.Task, ref time.Time) ([]model.AlertItem, []DataError) {
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	alerts := []model.AlertItem{}
	problems := []DataError{}

	for _, t := range tasks {
		if t.Status == model.StatusComplete || t.Status == model.StatusCancelled {
			continue
		}

		if t.DueDate != nil && strings.TrimSpace(*t.DueDate) != "" {
			raw := strings.TrimSpace(*t.DueDate)
			due, err := time.ParseInLocation(ymdLayout, raw, today.Location())
			if err != nil {
				problems = append(problems, DataError{TaskID: t.ID, Field: "dueDate", Value: raw})
			} else if a, ok := dueDateAlert(t, due, today); ok {
				alerts = append(alerts, a)
			}
		}

		for _, ms := range t.Milestones {
			if ms.Status == model.MilestoneAchieved || ms.Status == model.MilestoneMissed {
				continue
			}
			raw := strings.TrimSpace(ms.TargetDate)
			if raw == "" {
				continue
			}
			target, err := time.ParseInLocation(ymdLayout, raw, today.Location())
			if err != nil {
				problems = append(problems, DataError{TaskID: t.ID, MilestoneID: ms.ID, Field: "targetDate", Value: raw})
				continue
			}
			if target.Before(today) {
				continue
			}
			if today.AddDate(0, 0, milestoneLookaheadDays).After(target) {
				alerts = append(alerts, model.AlertItem{
					ID:            AlertID(model.AlertMilestoneDueSoon, t.ID, ms.ID),
					Type:          model.AlertMilestoneDueSoon,
					TaskID:        t.ID,
					TaskTitle:     t.Title,
					MilestoneID:   ms.ID,
					MilestoneName: ms.Name,
					Date:          raw,
				})
			}
		}
	}

	return alerts, problems
}

func dueDateAlert(t model.Task, due, today time.Time) (model.AlertItem, bool) {
	date := due.Format(ymdLayout)
	mk := func(typ model.AlertType) model.AlertItem {
		return model.AlertItem{
			ID:        AlertID(typ, t.ID, ""),
			Type:      typ,
			TaskID:    t.ID,
			TaskTitle: t.Title,
			Date:      date,
		}
	}

	switch {
	case due.Before(today):
		return mk(model.AlertOverdue), true
	case due.Equal(today):
		return mk(model.AlertDueToday), true
	}

	// At risk: a critical or high priority task whose reminder window has
	// opened. The comparison is strict: today must be past due minus
	// reminderDays, not merely at it.
	if t.Priority != model.PriorityCritical && t.Priority != model.PriorityHigh {
		return model.AlertItem{}, false
	}
	if !today.After(due.AddDate(0, 0, -t.EffectiveReminderDays())) {
		return model.AlertItem{}, false
	}
	return mk(model.AlertAtRisk), true
}
