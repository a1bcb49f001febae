package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

const ymdLayout = "2006-01-02"

// BuildRecurrenceUpdate computes the regeneration patch for a completed
// recurring task: the next cycle's due date plus a reset of the per-cycle
// state. It is pure; the caller applies the patch through ApplyUpdate.
//
// The next due date is derived from the task's *current* due date, not from
// "today" and not from recurrence.nextDue. Milestones are deliberately left
// alone: they behave as cycle-independent markers and survive regeneration.
//
// Returns an empty patch when the task isn't recurring or carries no
// recurrence config. A missing or unparseable due date is an error; the
// caller skips the task rather than guessing a date.
func BuildRecurrenceUpdate(cur model.Task, now time.Time) (Patch, error) {
	if !cur.IsRecurring || cur.Recurrence == nil {
		return Patch{}, nil
	}

	raw := ""
	if cur.DueDate != nil {
		raw = strings.TrimSpace(*cur.DueDate)
	}
	if raw == "" {
		return Patch{}, fmt.Errorf("task %s: recurring task has no due date", cur.ID)
	}
	due, err := time.ParseInLocation(ymdLayout, raw, time.Local)
	if err != nil {
		return Patch{}, fmt.Errorf("task %s: bad due date %q: %w", cur.ID, raw, err)
	}

	nextDue := nextOccurrence(due, cur.Recurrence.Pattern, cur.Recurrence.Interval).Format(ymdLayout)

	status := model.StatusNotStarted
	subtasks := resetSubtasks(cur.Subtasks)
	updates := []model.UpdateEntry{}

	rec := *cur.Recurrence
	ts := now
	rec.LastCompleted = &ts
	rec.NextDue = &nextDue
	rec.CycleCount++

	return Patch{
		Status:     &status,
		DueDate:    &nextDue,
		Subtasks:   &subtasks,
		Updates:    &updates,
		Recurrence: &rec,
	}, nil
}

// nextOccurrence adds one recurrence step to base.
// "custom" is treated identically to daily: a plain day interval. Unknown
// patterns fall back to one week.
func nextOccurrence(base time.Time, pattern model.RecurrencePattern, interval int) time.Time {
	if interval <= 0 {
		interval = 1
	}
	switch pattern {
	case model.PatternDaily, model.PatternCustom:
		return base.AddDate(0, 0, interval)
	case model.PatternWeekly:
		return base.AddDate(0, 0, 7*interval)
	case model.PatternBiweekly:
		return base.AddDate(0, 0, 14*interval)
	case model.PatternMonthly:
		return addMonthsClamped(base, interval)
	case model.PatternQuarterly:
		return addMonthsClamped(base, 3*interval)
	default:
		return base.AddDate(0, 0, 7)
	}
}

// addMonthsClamped adds calendar months, clamping the day to the target
// month's length: Jan 31 + 1 month = Feb 29 in a leap year, Feb 28
// otherwise. time.AddDate would normalize into March instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// resetSubtasks reopens every subtask for the new cycle, keeping titles,
// due dates and order.
func resetSubtasks(subs []model.Subtask) []model.Subtask {
	out := make([]model.Subtask, len(subs))
	for i, s := range subs {
		s.Status = model.SubtaskOpen
		out[i] = s
	}
	return out
}

// ShouldRegenerate reports whether the sweep's driving rule applies to t:
// a completed, unpaused recurring task with a recurrence config. The rule
// is idempotent because applying the regeneration patch moves status away
// from complete.
func ShouldRegenerate(t model.Task) bool {
	return t.IsRecurring && !t.IsPaused && t.Status == model.StatusComplete && t.Recurrence != nil
}
