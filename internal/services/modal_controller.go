package services

import (
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
)

// ModalController drives the dialog flags of one dashboard session. Flags are
// independent: opening one dialog does not close another.
type ModalController struct {
	state *models.DashboardState
}

func NewModalController(state *models.DashboardState) *ModalController {
	return &ModalController{state: state}
}

// State returns the controlled state
func (c *ModalController) State() *models.DashboardState {
	return c.state
}

// OpenCreate opens the create dialog with a fresh draft
func (c *ModalController) OpenCreate(draft models.ProjectDraft) {
	c.state.CreateDraft = draft
	c.state.Modals.Create = true
	c.touch()
}

// Open opens a project dialog and selects the project. Opening the edit
// dialog loads the project into the edit draft.
func (c *ModalController) Open(modal models.Modal, project *models.Project) error {
	if project == nil {
		return models.ErrNoProjectSelected
	}

	switch modal {
	case models.ModalEdit:
		c.state.EditDraft = models.PatchFromProject(project)
		c.state.Modals.Edit = true
	case models.ModalLog:
		c.state.Modals.Log = true
	case models.ModalTeam:
		c.state.Modals.Team = true
	case models.ModalSummary:
		c.state.Modals.Summary = true
	default:
		return models.ErrUnknownModal
	}

	c.state.SelectedProjectID = project.ID
	c.touch()
	return nil
}

// OpenRepositoryLinker opens the linker for one kind of link and closes the row menu
func (c *ModalController) OpenRepositoryLinker(project *models.Project, kind models.RepositoryKind) error {
	if project == nil {
		return models.ErrNoProjectSelected
	}
	if !kind.Valid() {
		return models.ErrInvalidRepositoryKind
	}

	c.state.Linker = &models.LinkerTarget{ProjectID: project.ID, Kind: kind}
	c.state.Modals.RepositoryLinker = true
	c.state.SelectedProjectID = project.ID
	c.state.ActiveMenuID = ""
	c.touch()
	return nil
}

// ToggleMenu opens the row menu of projectID, or closes it if it is already open
func (c *ModalController) ToggleMenu(projectID string) {
	if c.state.ActiveMenuID == projectID {
		c.state.ActiveMenuID = ""
	} else {
		c.state.ActiveMenuID = projectID
	}
	c.touch()
}

// Close closes a single dialog
func (c *ModalController) Close(modal models.Modal) error {
	switch modal {
	case models.ModalCreate:
		c.state.Modals.Create = false
	case models.ModalEdit:
		c.state.Modals.Edit = false
	case models.ModalLog:
		c.state.Modals.Log = false
	case models.ModalTeam:
		c.state.Modals.Team = false
	case models.ModalSummary:
		c.state.Modals.Summary = false
	case models.ModalRepositoryLinker:
		c.state.Modals.RepositoryLinker = false
		c.state.Linker = nil
	default:
		return models.ErrUnknownModal
	}
	c.touch()
	return nil
}

// Cancel closes every dialog and the row menu at once
func (c *ModalController) Cancel() {
	c.state.Modals = models.ModalFlags{}
	c.state.Linker = nil
	c.state.ActiveMenuID = ""
	c.touch()
}

// Bind makes the controller react to cancel signals addressed to its session.
// The returned release must be called once the controller is no longer used.
func (c *ModalController) Bind(signals *Signals) (release func()) {
	return signals.Subscribe(func(sig Signal) {
		if sig.Kind != SignalCancel {
			return
		}
		if sig.SessionID != "" && sig.SessionID != c.state.SessionID {
			return
		}
		c.Cancel()
	})
}

func (c *ModalController) touch() {
	c.state.UpdatedAt = time.Now()
}
