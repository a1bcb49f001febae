package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

const icsDateLayout = "20060102"

// BuildTaskCalendarICS renders a task (and its pending milestones) as an
// iCalendar document. A due date is required so the exported event has a
// concrete start date.
func BuildTaskCalendarICS(t model.Task, now time.Time) (string, error) {
	dueRaw := ""
	if t.DueDate != nil {
		dueRaw = strings.TrimSpace(*t.DueDate)
	}
	if dueRaw == "" {
		return "", fmt.Errorf("task due date required for calendar export")
	}

	due, err := time.ParseInLocation(ymdLayout, dueRaw, time.Local)
	if err != nil {
		return "", fmt.Errorf("task due date must be YYYY-MM-DD")
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Work Tracker Task"
	}
	stamp := now.UTC().Format("20060102T150405Z")

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//WorkTracker//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	lines = append(lines, taskEventLines(t, title, due, stamp)...)

	for _, ms := range t.Milestones {
		if ms.Status == model.MilestoneAchieved || ms.Status == model.MilestoneMissed {
			continue
		}
		target, err := time.ParseInLocation(ymdLayout, strings.TrimSpace(ms.TargetDate), time.Local)
		if err != nil {
			continue
		}
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(fmt.Sprintf("milestone-%s-%s@worktracker", t.ID, ms.ID)),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(title+": "+ms.Name),
			"DTSTART;VALUE=DATE:"+target.Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+target.AddDate(0, 0, 1).Format(icsDateLayout),
			"END:VEVENT",
		)
	}

	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n"), nil
}

func taskEventLines(t model.Task, title string, due time.Time, stamp string) []string {
	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(fmt.Sprintf("task-%s@worktracker", t.ID)),
		"DTSTAMP:" + stamp,
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + due.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + due.AddDate(0, 0, 1).Format(icsDateLayout),
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	if t.IsRecurring {
		if rrule := recurrenceToICSRRULE(t.Recurrence); rrule != "" {
			lines = append(lines, "RRULE:"+rrule)
		}
	}
	lines = append(lines, "END:VEVENT")
	return lines
}

func recurrenceToICSRRULE(rec *model.RecurrenceConfig) string {
	if rec == nil {
		return ""
	}
	interval := rec.Interval
	if interval <= 0 {
		interval = 1
	}

	// biweekly maps to WEEKLY with a doubled interval; quarterly to MONTHLY
	// with a tripled one. custom recurs like daily.
	switch rec.Pattern {
	case model.PatternDaily, model.PatternCustom:
		return fmt.Sprintf("FREQ=DAILY;INTERVAL=%d", interval)
	case model.PatternWeekly:
		return fmt.Sprintf("FREQ=WEEKLY;INTERVAL=%d", interval)
	case model.PatternBiweekly:
		return fmt.Sprintf("FREQ=WEEKLY;INTERVAL=%d", 2*interval)
	case model.PatternMonthly:
		return fmt.Sprintf("FREQ=MONTHLY;INTERVAL=%d", interval)
	case model.PatternQuarterly:
		return fmt.Sprintf("FREQ=MONTHLY;INTERVAL=%d", 3*interval)
	default:
		return ""
	}
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
