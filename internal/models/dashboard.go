package models

import (
	"errors"
	"time"
)

// StatusFilterAll is the status selector that matches every project
const StatusFilterAll = "all"

// ProjectFilter selects projects by name-or-ID, client and status
type ProjectFilter struct {
	Name   string `json:"name" form:"name"`
	Client string `json:"client" form:"client"`
	Status string `json:"status" form:"status"`
}

// DefaultDashboardFilter shows in-progress projects, as the dashboard does on open
func DefaultDashboardFilter() ProjectFilter {
	return ProjectFilter{Status: string(StatusInProgress)}
}

// Modal names one of the dashboard dialogs
type Modal string

const (
	ModalCreate           Modal = "create"
	ModalEdit             Modal = "edit"
	ModalLog              Modal = "log"
	ModalTeam             Modal = "team"
	ModalSummary          Modal = "summary"
	ModalRepositoryLinker Modal = "linker"
)

var ErrUnknownModal = errors.New("unknown modal")

func (m Modal) Valid() bool {
	switch m {
	case ModalCreate, ModalEdit, ModalLog, ModalTeam, ModalSummary, ModalRepositoryLinker:
		return true
	}
	return false
}

// LinkerTarget is the project and link kind the repository linker was opened for
type LinkerTarget struct {
	ProjectID string         `json:"project_id"`
	Kind      RepositoryKind `json:"kind"`
}

// ModalFlags holds one independent flag per dialog
type ModalFlags struct {
	Create           bool `json:"create"`
	Edit             bool `json:"edit"`
	Log              bool `json:"log"`
	Team             bool `json:"team"`
	Summary          bool `json:"summary"`
	RepositoryLinker bool `json:"repository_linker"`
}

// AnyOpen reports whether at least one dialog is open
func (f ModalFlags) AnyOpen() bool {
	return f.Create || f.Edit || f.Log || f.Team || f.Summary || f.RepositoryLinker
}

// DashboardState is everything one operator's dashboard remembers between requests
type DashboardState struct {
	SessionID         string        `json:"session_id"`
	OperatorID        string        `json:"operator_id"`
	Modals            ModalFlags    `json:"modals"`
	Linker            *LinkerTarget `json:"linker,omitempty"`
	SelectedProjectID string        `json:"selected_project_id,omitempty"`
	ActiveMenuID      string        `json:"active_menu_id,omitempty"`
	Filters           ProjectFilter `json:"filters"`
	CreateDraft       ProjectDraft  `json:"create_draft"`
	EditDraft         ProjectPatch  `json:"edit_draft"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

var ErrSessionNotFound = errors.New("dashboard session not found")

// NewDashboardState returns the state of a freshly opened dashboard
func NewDashboardState(sessionID, operatorID string) *DashboardState {
	return &DashboardState{
		SessionID:  sessionID,
		OperatorID: operatorID,
		Filters:    DefaultDashboardFilter(),
		UpdatedAt:  time.Now(),
	}
}
