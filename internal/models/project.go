package models

import (
	"errors"
	"fmt"
	"time"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	StatusInProgress ProjectStatus = "InProgress"
	StatusFinished   ProjectStatus = "Finished"
	StatusPlanning   ProjectStatus = "Planning"
)

// Valid reports whether s is one of the known statuses
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusFinished, StatusPlanning:
		return true
	}
	return false
}

// DefaultClientContact is used when a project is created without a responsible contact
const DefaultClientContact = "Unassigned"

type Project struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Client        string        `json:"client"`
	ClientContact string        `json:"client_contact"`
	Status        ProjectStatus `json:"status"`
	Description   string        `json:"description"`
	Progress      int           `json:"progress"`
	StartDate     time.Time     `json:"start_date"`
	Deadline      time.Time     `json:"deadline"`
	LeadID        string        `json:"lead_id"`
	TeamIDs       []string      `json:"team_ids"`
	Technologies  []string      `json:"technologies"`
	Year          int           `json:"year"`
	IsOngoing     bool          `json:"is_ongoing"`
	Report        bool          `json:"report"`
	Logs          []LogEntry    `json:"logs"`
	Repositories  []Repository  `json:"repositories"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SyncStatusFlags recomputes the flags that mirror the status
func (p *Project) SyncStatusFlags() {
	p.IsOngoing = p.Status == StatusInProgress
	p.Report = p.Status == StatusInProgress
}

// Clone returns a copy that shares no slices with p
func (p *Project) Clone() *Project {
	c := *p
	c.TeamIDs = append([]string(nil), p.TeamIDs...)
	c.Technologies = append([]string(nil), p.Technologies...)
	c.Logs = append([]LogEntry(nil), p.Logs...)
	c.Repositories = append([]Repository(nil), p.Repositories...)
	return &c
}

// Validate checks a project about to be created
func (p *Project) Validate() error {
	if p.Name == "" {
		if p.ID == "" {
			return &ValidationError{Field: "id", Message: "Project ID is required"}
		}
		return ErrProjectNameRequired
	}
	return p.ValidateUpdate()
}

// ValidateUpdate checks a stored project being changed. Edits may clear any
// text field; only the identifier and the value ranges are enforced.
func (p *Project) ValidateUpdate() error {
	if p.ID == "" {
		return &ValidationError{Field: "id", Message: "Project ID is required"}
	}
	if !p.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("Unknown project status %q", p.Status)}
	}
	if p.Progress < 0 || p.Progress > 100 {
		return &ValidationError{Field: "progress", Message: "Progress must be between 0 and 100"}
	}
	return nil
}

// Common errors
var (
	ErrProjectNameRequired = &ValidationError{Field: "name", Message: "Project name is required"}

	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectIDInUse    = errors.New("project ID is used by an existing project")
	ErrIncompleteDraft   = errors.New("name, client and project ID are required")
	ErrNoProjectSelected = errors.New("no project selected")
)

// DuplicateIDError is returned when a new project reuses an identifier found in
// the ledger and the caller has not confirmed the reuse.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("project ID %s already exists in the ledger; confirm to reuse it", e.ID)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
