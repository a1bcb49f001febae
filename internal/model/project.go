package model

import "time"

type ProjectID string

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectComplete  ProjectStatus = "complete"
	ProjectCancelled ProjectStatus = "cancelled"
)

type ProjectLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Project groups tasks logically. Tasks point at it via Task.ProjectID;
// the project does not own them.
type Project struct {
	ID         ProjectID     `json:"id"`
	Name       string        `json:"name"`
	Status     ProjectStatus `json:"status"`
	Priority   Priority      `json:"priority"`
	TargetDate *string       `json:"targetDate,omitempty"`
	StartDate  *string       `json:"startDate,omitempty"`
	Owner      string        `json:"owner,omitempty"`
	Links      []ProjectLink `json:"links,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
