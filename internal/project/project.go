package project

import (
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/ident"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

// Patch carries partial project updates. Nil means "leave unchanged";
// for clearable strings an explicit empty string clears the field.
type Patch struct {
	Name       *string              `json:"name,omitempty"`
	Status     *model.ProjectStatus `json:"status,omitempty"`
	Priority   *model.Priority      `json:"priority,omitempty"`
	TargetDate *string              `json:"targetDate,omitempty"`
	StartDate  *string              `json:"startDate,omitempty"`
	Owner      *string              `json:"owner,omitempty"`
	Links      *[]model.ProjectLink `json:"links,omitempty"`
}

// ApplyPatch returns a copy of cur with the present fields applied and
// UpdatedAt stamped. Projects carry no changelog; only tasks are audited.
func ApplyPatch(cur model.Project, p Patch, now time.Time) model.Project {
	next := cur
	next.Links = append([]model.ProjectLink(nil), cur.Links...)

	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.TargetDate != nil {
		next.TargetDate = clearableString(*p.TargetDate)
	}
	if p.StartDate != nil {
		next.StartDate = clearableString(*p.StartDate)
	}
	if p.Owner != nil {
		next.Owner = *p.Owner
	}
	if p.Links != nil {
		next.Links = append([]model.ProjectLink(nil), (*p.Links)...)
	}
	next.UpdatedAt = now
	return next
}

func clearableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func newProjectID() model.ProjectID {
	return model.ProjectID(ident.New("proj"))
}

func initProject(p *model.Project, now time.Time) {
	p.ID = newProjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	if p.Priority == "" {
		p.Priority = model.PriorityMedium
	}
}
