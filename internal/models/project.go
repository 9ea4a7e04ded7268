package models

import (
	"time"
)

// Project status values, stored verbatim in the Projects table.
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusFailed     = "Failed"
)

// LeadStatusVerified is written on every synthesized lead.
const LeadStatusVerified = "Verified"

const (
	DefaultIndustry    = "Technology"
	DefaultRegion      = "Global"
	DefaultProjectName = "New Project"
	DefaultLeadCount   = 10
)

// Project is a row of the Projects table.
type Project struct {
	ID            string     `json:"id"`
	Name          string     `json:"project_name"`
	Industry      string     `json:"industry"`
	Region        string     `json:"region"`
	LeadCount     int        `json:"lead_count"`
	Status        string     `json:"status"`
	DateCreated   *time.Time `json:"date_created,omitempty"`
	DateCompleted *time.Time `json:"date_completed,omitempty"`
}

// ResolvedIndustry returns the industry to synthesize for.
func (p Project) ResolvedIndustry() string {
	if p.Industry == "" {
		return DefaultIndustry
	}
	return p.Industry
}

// ResolvedLeadCount returns the requested lead count, treating zero as unset.
func (p Project) ResolvedLeadCount() int {
	if p.LeadCount == 0 {
		return DefaultLeadCount
	}
	return p.LeadCount
}

// DisplayName is used in logs.
func (p Project) DisplayName() string {
	if p.Name == "" {
		return "Unknown Project"
	}
	return p.Name
}

// ProjectInput carries the fields of a project created through the webhook.
type ProjectInput struct {
	Name      string
	Industry  string
	Region    string
	LeadCount int
}

// Lead is one synthesized sales contact.
type Lead struct {
	Company  string `json:"company"`
	Website  string `json:"website,omitempty"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Score    int    `json:"score"`
	Analysis string `json:"analysis"`
}

// ProjectRun is a ledger row describing one processing attempt.
type ProjectRun struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Industry    string    `json:"industry"`
	Status      string    `json:"status"`
	LeadCount   int       `json:"lead_count"`
	Detail      string    `json:"detail"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
