package alert

import (
	"testing"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

// All scan tests use the same reference instant so the date math is easy to
// eyeball: "today" is 2024-06-15.
var ref = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func scanTask(id, due string, priority model.Priority) model.Task {
	t := model.Task{
		ID:       model.TaskID(id),
		Title:    "Task " + id,
		Status:   model.StatusInProgress,
		Priority: priority,
	}
	if due != "" {
		t.DueDate = &due
	}
	return t
}

func alertTypes(alerts []model.AlertItem) []model.AlertType {
	out := make([]model.AlertType, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Type)
	}
	return out
}

func TestComputeAlerts_DueDateMatrix(t *testing.T) {
	cases := []struct {
		name     string
		due      string
		priority model.Priority
		want     []model.AlertType
	}{
		{"overdue", "2024-06-10", model.PriorityMedium, []model.AlertType{model.AlertOverdue}},
		{"due today", "2024-06-15", model.PriorityMedium, []model.AlertType{model.AlertDueToday}},
		{"due today stays due-today even when critical", "2024-06-15", model.PriorityCritical, []model.AlertType{model.AlertDueToday}},
		{"critical within reminder window", "2024-06-16", model.PriorityCritical, []model.AlertType{model.AlertAtRisk}},
		{"high at strict window boundary", "2024-06-17", model.PriorityHigh, nil},
		{"critical outside window", "2024-06-20", model.PriorityCritical, nil},
		{"medium never at risk", "2024-06-16", model.PriorityMedium, nil},
		{"no due date", "", model.PriorityCritical, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts, problems := ComputeAlerts([]model.Task{scanTask("t1", tc.due, tc.priority)}, ref)
			if len(problems) != 0 {
				t.Fatalf("unexpected problems: %v", problems)
			}
			got := alertTypes(alerts)
			if len(got) != len(tc.want) {
				t.Fatalf("alerts = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("alerts = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestComputeAlerts_TerminalStatusesSilent(t *testing.T) {
	done := scanTask("t1", "2024-06-10", model.PriorityCritical)
	done.Status = model.StatusComplete
	done.Milestones = []model.Milestone{{ID: "ms_1", Name: "soon", TargetDate: "2024-06-16", Status: model.MilestoneUpcoming}}

	cancelled := scanTask("t2", "2024-06-10", model.PriorityCritical)
	cancelled.Status = model.StatusCancelled

	alerts, _ := ComputeAlerts([]model.Task{done, cancelled}, ref)
	if len(alerts) != 0 {
		t.Fatalf("terminal tasks produced alerts: %v", alerts)
	}
}

func TestComputeAlerts_CustomReminderWindow(t *testing.T) {
	wide := scanTask("t1", "2024-06-19", model.PriorityHigh)
	five := 5
	wide.ReminderDays = &five

	alerts, _ := ComputeAlerts([]model.Task{wide}, ref)
	if len(alerts) != 1 || alerts[0].Type != model.AlertAtRisk {
		t.Fatalf("alerts = %v, want single at-risk", alerts)
	}

	// A zero-day window can never open before the due date arrives.
	zero := 0
	narrow := scanTask("t2", "2024-06-16", model.PriorityCritical)
	narrow.ReminderDays = &zero
	alerts, _ = ComputeAlerts([]model.Task{narrow}, ref)
	if len(alerts) != 0 {
		t.Fatalf("zero-day window still alerted: %v", alerts)
	}
}

func TestComputeAlerts_Milestones(t *testing.T) {
	task := scanTask("t1", "", model.PriorityLow)
	task.Milestones = []model.Milestone{
		{ID: "ms_in", Name: "inside window", TargetDate: "2024-06-17", Status: model.MilestoneUpcoming},
		{ID: "ms_today", Name: "today", TargetDate: "2024-06-15", Status: model.MilestoneInProgress},
		{ID: "ms_out", Name: "outside window", TargetDate: "2024-06-19", Status: model.MilestoneUpcoming},
		{ID: "ms_past", Name: "already past", TargetDate: "2024-06-10", Status: model.MilestoneUpcoming},
		{ID: "ms_done", Name: "achieved", TargetDate: "2024-06-16", Status: model.MilestoneAchieved},
		{ID: "ms_missed", Name: "missed", TargetDate: "2024-06-16", Status: model.MilestoneMissed},
	}

	alerts, problems := ComputeAlerts([]model.Task{task}, ref)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if len(alerts) != 2 {
		t.Fatalf("alerts = %v, want ms_in and ms_today", alerts)
	}
	got := map[string]bool{}
	for _, a := range alerts {
		if a.Type != model.AlertMilestoneDueSoon {
			t.Fatalf("unexpected alert type %q", a.Type)
		}
		got[a.MilestoneID] = true
	}
	if !got["ms_in"] || !got["ms_today"] {
		t.Fatalf("wrong milestones alerted: %v", got)
	}
}

func TestComputeAlerts_BadDatesIsolated(t *testing.T) {
	bad := scanTask("t1", "someday", model.PriorityCritical)
	bad.Milestones = []model.Milestone{{ID: "ms_bad", Name: "x", TargetDate: "not-a-date", Status: model.MilestoneUpcoming}}
	good := scanTask("t2", "2024-06-10", model.PriorityLow)

	alerts, problems := ComputeAlerts([]model.Task{bad, good}, ref)

	if len(alerts) != 1 || alerts[0].TaskID != "t2" {
		t.Fatalf("good task's alert lost: %v", alerts)
	}
	if len(problems) != 2 {
		t.Fatalf("problems = %v, want dueDate and targetDate errors", problems)
	}
	if problems[0].Field != "dueDate" || problems[1].Field != "targetDate" {
		t.Fatalf("problem fields = %q, %q", problems[0].Field, problems[1].Field)
	}
}

func TestAlertID_Deterministic(t *testing.T) {
	if AlertID(model.AlertOverdue, "task_9", "") != "overdue:task_9" {
		t.Fatalf("task alert ID format changed: %s", AlertID(model.AlertOverdue, "task_9", ""))
	}
	if AlertID(model.AlertMilestoneDueSoon, "task_9", "ms_3") != "milestone-due-soon:task_9:ms_3" {
		t.Fatalf("milestone alert ID format changed: %s", AlertID(model.AlertMilestoneDueSoon, "task_9", "ms_3"))
	}

	// Two scans of identical state yield byte-identical IDs.
	task := scanTask("t1", "2024-06-10", model.PriorityLow)
	first, _ := ComputeAlerts([]model.Task{task}, ref)
	second, _ := ComputeAlerts([]model.Task{task}, ref.Add(time.Hour))
	if first[0].ID != second[0].ID {
		t.Fatalf("alert ID unstable across scans: %s vs %s", first[0].ID, second[0].ID)
	}
}
