package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/ident"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

// Patch represents a partial update.
// nil pointer => "no change"
// empty string for pointer date/ref fields (DueDate/StartDate/ProjectID) => clear
//
// The field set is closed on purpose: changelog synthesis enumerates the
// auditable fields statically instead of reflecting over arbitrary keys.
// Subtasks/Updates/Recurrence are engine-controlled collection merges and
// never produce changelog entries; ID, CreatedAt and Changelog itself are
// not patchable at all.
type Patch struct {
	Title        *string           `json:"title,omitempty"`
	Description  *string           `json:"description,omitempty"`
	TaskType     *model.TaskType   `json:"taskType,omitempty"`
	Status       *model.TaskStatus `json:"status,omitempty"`
	Priority     *model.Priority   `json:"priority,omitempty"`
	DueDate      *string           `json:"dueDate,omitempty"`
	StartDate    *string           `json:"startDate,omitempty"`
	ReminderDays *int              `json:"reminderDays,omitempty"`
	ProjectID    *string           `json:"projectId,omitempty"`
	IsRecurring  *bool             `json:"isRecurring,omitempty"`
	IsPaused     *bool             `json:"isPaused,omitempty"`
	Links        *[]model.TaskLink `json:"links,omitempty"`

	Subtasks   *[]model.Subtask        `json:"-"`
	Updates    *[]model.UpdateEntry    `json:"-"`
	Recurrence *model.RecurrenceConfig `json:"-"`
}

// ApplyUpdate merges p onto cur and returns a new task value.
// The input is never mutated: callers holding the prior version keep seeing
// it unchanged until they re-read.
//
// Every auditable field present in p gets one changelog entry (old and new
// value rendered as text). CompletedAt is engine-controlled: set when status
// transitions into complete, cleared when it transitions away, untouched
// when the patch carries no status. UpdatedAt is always stamped to now.
func ApplyUpdate(cur model.Task, p Patch, now time.Time) model.Task {
	next := cloneTask(cur)
	var entries []model.ChangelogEntry
	record := func(field, oldVal, newVal string) {
		entries = append(entries, model.ChangelogEntry{
			ID:        ident.New("log"),
			Timestamp: now,
			Field:     field,
			OldValue:  oldVal,
			NewValue:  newVal,
		})
	}

	if p.Title != nil {
		record("title", cur.Title, *p.Title)
		next.Title = *p.Title
	}
	if p.Description != nil {
		record("description", cur.Description, *p.Description)
		next.Description = *p.Description
	}
	if p.TaskType != nil {
		record("taskType", string(cur.TaskType), string(*p.TaskType))
		next.TaskType = *p.TaskType
	}
	if p.Status != nil {
		record("status", string(cur.Status), string(*p.Status))
		next.Status = *p.Status
		if *p.Status == model.StatusComplete {
			if cur.Status != model.StatusComplete {
				ts := now
				next.CompletedAt = &ts
			}
		} else {
			next.CompletedAt = nil
		}
	}
	if p.Priority != nil {
		record("priority", string(cur.Priority), string(*p.Priority))
		next.Priority = *p.Priority
	}
	if p.DueDate != nil {
		record("dueDate", strOrEmpty(cur.DueDate), *p.DueDate)
		next.DueDate = clearableString(*p.DueDate)
	}
	if p.StartDate != nil {
		record("startDate", strOrEmpty(cur.StartDate), *p.StartDate)
		next.StartDate = clearableString(*p.StartDate)
	}
	if p.ReminderDays != nil {
		record("reminderDays", renderIntPtr(cur.ReminderDays), fmt.Sprintf("%d", *p.ReminderDays))
		v := *p.ReminderDays
		if v < 0 {
			v = 0
		}
		next.ReminderDays = &v
	}
	if p.ProjectID != nil {
		record("projectId", renderProjectRef(cur.ProjectID), *p.ProjectID)
		if strings.TrimSpace(*p.ProjectID) == "" {
			next.ProjectID = nil
		} else {
			pid := model.ProjectID(*p.ProjectID)
			next.ProjectID = &pid
		}
	}
	if p.IsRecurring != nil {
		record("isRecurring", renderBool(cur.IsRecurring), renderBool(*p.IsRecurring))
		next.IsRecurring = *p.IsRecurring
	}
	if p.IsPaused != nil {
		record("isPaused", renderBool(cur.IsPaused), renderBool(*p.IsPaused))
		next.IsPaused = *p.IsPaused
	}
	if p.Links != nil {
		record("links", renderLinks(cur.Links), renderLinks(*p.Links))
		next.Links = append([]model.TaskLink{}, (*p.Links)...)
	}

	if p.Subtasks != nil {
		next.Subtasks = append([]model.Subtask{}, (*p.Subtasks)...)
	}
	if p.Updates != nil {
		next.Updates = append([]model.UpdateEntry{}, (*p.Updates)...)
	}
	if p.Recurrence != nil {
		rec := *p.Recurrence
		next.Recurrence = &rec
	}

	next.UpdatedAt = now
	next.Changelog = append(next.Changelog, entries...)
	return next
}

// cloneTask copies t deeply enough that mutating the copy's owned
// collections can't be observed through the original.
func cloneTask(t model.Task) model.Task {
	out := t
	out.Subtasks = append([]model.Subtask{}, t.Subtasks...)
	out.Milestones = append([]model.Milestone{}, t.Milestones...)
	out.Updates = append([]model.UpdateEntry{}, t.Updates...)
	out.Changelog = append([]model.ChangelogEntry{}, t.Changelog...)
	if t.Links != nil {
		out.Links = append([]model.TaskLink{}, t.Links...)
	}
	if t.Recurrence != nil {
		rec := *t.Recurrence
		out.Recurrence = &rec
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		out.CompletedAt = &ts
	}
	return out
}

func clearableString(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func renderIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func renderBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func renderProjectRef(p *model.ProjectID) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

func renderLinks(links []model.TaskLink) string {
	if len(links) == 0 {
		return ""
	}
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, l.Label+"="+l.URL)
	}
	return strings.Join(parts, ", ")
}
