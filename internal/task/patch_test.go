package task

import (
	"testing"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

func strPtr(s string) *string { return &s }

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }

func baseTask() model.Task {
	due := "2024-06-20"
	return model.Task{
		ID:        "task_base",
		Title:     "Ship the report",
		Status:    model.StatusInProgress,
		Priority:  model.PriorityHigh,
		TaskType:  model.TypeFeature,
		DueDate:   &due,
		Subtasks:  []model.Subtask{{ID: "sub_1", Title: "draft", Status: model.SubtaskDone}},
		Updates:   []model.UpdateEntry{},
		Changelog: []model.ChangelogEntry{},
		CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestApplyUpdate_DoesNotMutateInput(t *testing.T) {
	cur := baseTask()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	next := ApplyUpdate(cur, Patch{Title: strPtr("Renamed")}, now)

	if cur.Title != "Ship the report" {
		t.Fatalf("input title mutated: %q", cur.Title)
	}
	if len(cur.Changelog) != 0 {
		t.Fatalf("input changelog mutated: %d entries", len(cur.Changelog))
	}
	if next.Title != "Renamed" {
		t.Fatalf("next title = %q, want Renamed", next.Title)
	}

	next.Subtasks[0].Title = "tampered"
	if cur.Subtasks[0].Title != "draft" {
		t.Fatalf("subtask slice shared between input and output")
	}
}

func TestApplyUpdate_OneChangelogEntryPerField(t *testing.T) {
	cur := baseTask()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	next := ApplyUpdate(cur, Patch{
		Title:    strPtr("New title"),
		Priority: func() *model.Priority { p := model.PriorityCritical; return &p }(),
		DueDate:  strPtr("2024-07-01"),
	}, now)

	if len(next.Changelog) != 3 {
		t.Fatalf("changelog entries = %d, want 3", len(next.Changelog))
	}
	fields := map[string]model.ChangelogEntry{}
	for _, e := range next.Changelog {
		fields[e.Field] = e
	}
	e, ok := fields["dueDate"]
	if !ok {
		t.Fatalf("missing dueDate entry; got fields %v", fields)
	}
	if e.OldValue != "2024-06-20" || e.NewValue != "2024-07-01" {
		t.Fatalf("dueDate entry old=%q new=%q", e.OldValue, e.NewValue)
	}
	if e.Timestamp != now {
		t.Fatalf("entry timestamp = %v, want %v", e.Timestamp, now)
	}
}

func TestApplyUpdate_ChangelogIsAppendOnly(t *testing.T) {
	cur := baseTask()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	v1 := ApplyUpdate(cur, Patch{Title: strPtr("first")}, now)
	v2 := ApplyUpdate(v1, Patch{Title: strPtr("second")}, now.Add(time.Hour))

	if len(v2.Changelog) != 2 {
		t.Fatalf("changelog entries = %d, want 2", len(v2.Changelog))
	}
	if v2.Changelog[0].ID != v1.Changelog[0].ID {
		t.Fatalf("earlier changelog entry replaced")
	}
	if v2.Changelog[0].NewValue != "first" || v2.Changelog[1].NewValue != "second" {
		t.Fatalf("changelog order wrong: %+v", v2.Changelog)
	}
}

func TestApplyUpdate_CompletedAtOnTransition(t *testing.T) {
	cur := baseTask()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	done := ApplyUpdate(cur, Patch{Status: statusPtr(model.StatusComplete)}, now)
	if done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("CompletedAt = %v, want %v", done.CompletedAt, now)
	}

	// Completing an already-complete task must not move the stamp.
	later := now.Add(48 * time.Hour)
	again := ApplyUpdate(done, Patch{Status: statusPtr(model.StatusComplete)}, later)
	if again.CompletedAt == nil || !again.CompletedAt.Equal(now) {
		t.Fatalf("CompletedAt moved on re-complete: %v", again.CompletedAt)
	}

	reopened := ApplyUpdate(done, Patch{Status: statusPtr(model.StatusInProgress)}, later)
	if reopened.CompletedAt != nil {
		t.Fatalf("CompletedAt not cleared on reopen: %v", reopened.CompletedAt)
	}

	// A patch with no status leaves the stamp alone.
	renamed := ApplyUpdate(done, Patch{Title: strPtr("x")}, later)
	if renamed.CompletedAt == nil || !renamed.CompletedAt.Equal(now) {
		t.Fatalf("CompletedAt touched by non-status patch: %v", renamed.CompletedAt)
	}
}

func TestApplyUpdate_EmptyStringClears(t *testing.T) {
	cur := baseTask()
	pid := model.ProjectID("proj_1")
	cur.ProjectID = &pid
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	next := ApplyUpdate(cur, Patch{
		DueDate:   strPtr(""),
		ProjectID: strPtr(""),
	}, now)

	if next.DueDate != nil {
		t.Fatalf("DueDate not cleared: %v", *next.DueDate)
	}
	if next.ProjectID != nil {
		t.Fatalf("ProjectID not cleared: %v", *next.ProjectID)
	}
	// Both clears are still audited.
	if len(next.Changelog) != 2 {
		t.Fatalf("changelog entries = %d, want 2", len(next.Changelog))
	}
}

func TestApplyUpdate_StampsUpdatedAt(t *testing.T) {
	cur := baseTask()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	next := ApplyUpdate(cur, Patch{Title: strPtr("x")}, now)
	if !next.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt = %v, want %v", next.UpdatedAt, now)
	}
	if !next.CreatedAt.Equal(cur.CreatedAt) {
		t.Fatalf("CreatedAt changed")
	}
}

func TestSubEntityOps(t *testing.T) {
	cur := baseTask()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	withSub, ok := AddSubtask(cur, "review", nil, now)
	if !ok {
		t.Fatalf("AddSubtask reported no change")
	}
	if len(withSub.Subtasks) != 2 {
		t.Fatalf("subtasks = %d, want 2", len(withSub.Subtasks))
	}
	if withSub.Subtasks[1].Status != model.SubtaskOpen {
		t.Fatalf("new subtask status = %q", withSub.Subtasks[1].Status)
	}
	if len(withSub.Changelog) != 1 || withSub.Changelog[0].Field != "subtasks" {
		t.Fatalf("subtask add not audited: %+v", withSub.Changelog)
	}

	// Unknown IDs are silent no-ops and must not bump UpdatedAt.
	same, ok := UpdateSubtask(withSub, "sub_missing", SubtaskPatch{Title: strPtr("x")}, now.Add(time.Hour))
	if ok {
		t.Fatalf("update of unknown subtask reported a change")
	}
	if !same.UpdatedAt.Equal(withSub.UpdatedAt) {
		t.Fatalf("UpdatedAt bumped by no-op")
	}

	withMs, ok := AddMilestone(withSub, "beta", "2024-07-15", now)
	if !ok || len(withMs.Milestones) != 1 {
		t.Fatalf("AddMilestone failed: ok=%v milestones=%d", ok, len(withMs.Milestones))
	}
	if withMs.Milestones[0].Status != model.MilestoneUpcoming {
		t.Fatalf("new milestone status = %q", withMs.Milestones[0].Status)
	}

	withNote, ok := AddUpdateEntry(withMs, "made progress", now)
	if !ok || len(withNote.Updates) != 1 {
		t.Fatalf("AddUpdateEntry failed")
	}
	withNote2, _ := AddUpdateEntry(withNote, "more progress", now.Add(time.Minute))
	if withNote2.Updates[0].Text != "more progress" {
		t.Fatalf("updates not newest-first: %+v", withNote2.Updates)
	}

	trimmed, ok := DeleteUpdateEntry(withNote2, withNote2.Updates[0].ID, now.Add(2*time.Minute))
	if !ok || len(trimmed.Updates) != 1 {
		t.Fatalf("DeleteUpdateEntry failed")
	}
	if trimmed.Updates[0].Text != "made progress" {
		t.Fatalf("wrong entry deleted: %+v", trimmed.Updates)
	}
}
