package task

import (
	"strings"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/ident"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

// Sub-entity operations mutate a task's owned collections at smaller grain
// than ApplyUpdate. Only creation (and free-text update entries) append a
// changelog record; structural subtask/milestone edits do not, keeping the
// history focused on task-level events.
//
// Every operation is copy-on-write and reports whether anything changed;
// an unknown sub-entity ID is a no-op (the caller only references IDs it
// has seen) and must not bump UpdatedAt.

type SubtaskPatch struct {
	Title   *string              `json:"title,omitempty"`
	Status  *model.SubtaskStatus `json:"status,omitempty"`
	DueDate *string              `json:"dueDate,omitempty"`
}

type MilestonePatch struct {
	Name       *string                `json:"name,omitempty"`
	TargetDate *string                `json:"targetDate,omitempty"`
	Status     *model.MilestoneStatus `json:"status,omitempty"`
}

func AddSubtask(cur model.Task, title string, dueDate *string, now time.Time) (model.Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return cur, false
	}
	next := cloneTask(cur)
	st := model.Subtask{
		ID:     ident.New("sub"),
		Title:  title,
		Status: model.SubtaskOpen,
	}
	if dueDate != nil && strings.TrimSpace(*dueDate) != "" {
		d := strings.TrimSpace(*dueDate)
		st.DueDate = &d
	}
	next.Subtasks = append(next.Subtasks, st)
	next.Changelog = append(next.Changelog, model.ChangelogEntry{
		ID:        ident.New("log"),
		Timestamp: now,
		Field:     "subtasks",
		OldValue:  "",
		NewValue:  "added: " + title,
	})
	next.UpdatedAt = now
	return next, true
}

func UpdateSubtask(cur model.Task, subtaskID string, p SubtaskPatch, now time.Time) (model.Task, bool) {
	idx := subtaskIndex(cur.Subtasks, subtaskID)
	if idx < 0 {
		return cur, false
	}
	next := cloneTask(cur)
	st := &next.Subtasks[idx]
	if p.Title != nil {
		st.Title = *p.Title
	}
	if p.Status != nil {
		st.Status = *p.Status
	}
	if p.DueDate != nil {
		st.DueDate = clearableString(*p.DueDate)
	}
	next.UpdatedAt = now
	return next, true
}

func DeleteSubtask(cur model.Task, subtaskID string, now time.Time) (model.Task, bool) {
	idx := subtaskIndex(cur.Subtasks, subtaskID)
	if idx < 0 {
		return cur, false
	}
	next := cloneTask(cur)
	next.Subtasks = append(next.Subtasks[:idx], next.Subtasks[idx+1:]...)
	next.UpdatedAt = now
	return next, true
}

func AddMilestone(cur model.Task, name, targetDate string, now time.Time) (model.Task, bool) {
	name = strings.TrimSpace(name)
	targetDate = strings.TrimSpace(targetDate)
	if name == "" || targetDate == "" {
		return cur, false
	}
	next := cloneTask(cur)
	next.Milestones = append(next.Milestones, model.Milestone{
		ID:         ident.New("ms"),
		Name:       name,
		TargetDate: targetDate,
		Status:     model.MilestoneUpcoming,
	})
	next.Changelog = append(next.Changelog, model.ChangelogEntry{
		ID:        ident.New("log"),
		Timestamp: now,
		Field:     "milestones",
		OldValue:  "",
		NewValue:  "added: " + name,
	})
	next.UpdatedAt = now
	return next, true
}

func UpdateMilestone(cur model.Task, milestoneID string, p MilestonePatch, now time.Time) (model.Task, bool) {
	idx := milestoneIndex(cur.Milestones, milestoneID)
	if idx < 0 {
		return cur, false
	}
	next := cloneTask(cur)
	ms := &next.Milestones[idx]
	if p.Name != nil {
		ms.Name = *p.Name
	}
	if p.TargetDate != nil {
		ms.TargetDate = strings.TrimSpace(*p.TargetDate)
	}
	if p.Status != nil {
		ms.Status = *p.Status
	}
	next.UpdatedAt = now
	return next, true
}

func DeleteMilestone(cur model.Task, milestoneID string, now time.Time) (model.Task, bool) {
	idx := milestoneIndex(cur.Milestones, milestoneID)
	if idx < 0 {
		return cur, false
	}
	next := cloneTask(cur)
	next.Milestones = append(next.Milestones[:idx], next.Milestones[idx+1:]...)
	next.UpdatedAt = now
	return next, true
}

// AddUpdateEntry prepends a free-text progress note (updates are kept
// newest-first) and records it in the changelog.
func AddUpdateEntry(cur model.Task, text string, now time.Time) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return cur, false
	}
	next := cloneTask(cur)
	entry := model.UpdateEntry{
		ID:        ident.New("upd"),
		Timestamp: now,
		Text:      text,
	}
	next.Updates = append([]model.UpdateEntry{entry}, next.Updates...)
	next.Changelog = append(next.Changelog, model.ChangelogEntry{
		ID:        ident.New("log"),
		Timestamp: now,
		Field:     "updates",
		OldValue:  "",
		NewValue:  text,
	})
	next.UpdatedAt = now
	return next, true
}

func DeleteUpdateEntry(cur model.Task, entryID string, now time.Time) (model.Task, bool) {
	idx := -1
	for i, u := range cur.Updates {
		if u.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cur, false
	}
	next := cloneTask(cur)
	next.Updates = append(next.Updates[:idx], next.Updates[idx+1:]...)
	next.UpdatedAt = now
	return next, true
}

func subtaskIndex(subs []model.Subtask, id string) int {
	for i, s := range subs {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func milestoneIndex(ms []model.Milestone, id string) int {
	for i, m := range ms {
		if m.ID == id {
			return i
		}
	}
	return -1
}
