package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/google/uuid"
)

var ErrNothingToSubmit = errors.New("neither the create nor the edit dialog is open")

// DashboardService runs the operations of the project dashboard. Each call
// loads the session state, applies one change and saves it again. Calls for
// the same session run one at a time.
type DashboardService struct {
	store          repositories.SessionStateStore
	projectService *ProjectService
	userService    *UserService
	signals        *Signals
	locks          *sessionLocks
}

func NewDashboardService(
	store repositories.SessionStateStore,
	projectService *ProjectService,
	userService *UserService,
	signals *Signals,
) *DashboardService {
	return &DashboardService{
		store:          store,
		projectService: projectService,
		userService:    userService,
		signals:        signals,
		locks:          newSessionLocks(),
	}
}

// Start opens a new dashboard session for operatorID
func (s *DashboardService) Start(ctx context.Context, operatorID string) (*models.DashboardState, error) {
	if _, err := s.userService.GetUserByID(ctx, operatorID); err != nil {
		return nil, err
	}
	state := models.NewDashboardState(uuid.New().String(), operatorID)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save dashboard session: %w", err)
	}
	return state, nil
}

// State returns the stored state of a session
func (s *DashboardService) State(ctx context.Context, sessionID string) (*models.DashboardState, error) {
	return s.store.Get(ctx, sessionID)
}

// End discards a session
func (s *DashboardService) End(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.store.Delete(ctx, sessionID)
}

// SetFilters replaces the session's project filters
func (s *DashboardService) SetFilters(ctx context.Context, sessionID string, filter models.ProjectFilter) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		c.State().Filters = filter
		return nil
	})
}

// Projects lists the live projects matching the session's filters
func (s *DashboardService) Projects(ctx context.Context, sessionID string) ([]*models.Project, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.projectService.ListProjects(ctx, state.Filters)
}

// OpenCreate opens the create dialog with a freshly proposed identifier
func (s *DashboardService) OpenCreate(ctx context.Context, sessionID string) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		draft, err := s.projectService.NewDraft(ctx)
		if err != nil {
			return err
		}
		c.OpenCreate(draft)
		return nil
	})
}

// OpenProjectModal opens the edit, log, team or summary dialog for a project
func (s *DashboardService) OpenProjectModal(ctx context.Context, sessionID string, modal models.Modal, projectID string) (*models.DashboardState, error) {
	if modal == models.ModalCreate || modal == models.ModalRepositoryLinker || !modal.Valid() {
		return nil, models.ErrUnknownModal
	}
	return s.update(ctx, sessionID, func(c *ModalController) error {
		project, err := s.projectService.GetProjectByID(ctx, projectID)
		if err != nil {
			return err
		}
		return c.Open(modal, project)
	})
}

// OpenLinker opens the repository linker for a project and link kind
func (s *DashboardService) OpenLinker(ctx context.Context, sessionID, projectID string, kind models.RepositoryKind) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		project, err := s.projectService.GetProjectByID(ctx, projectID)
		if err != nil {
			return err
		}
		return c.OpenRepositoryLinker(project, kind)
	})
}

// CloseModal closes one dialog
func (s *DashboardService) CloseModal(ctx context.Context, sessionID string, modal models.Modal) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		return c.Close(modal)
	})
}

// ToggleMenu opens or closes the row menu of a project
func (s *DashboardService) ToggleMenu(ctx context.Context, sessionID, projectID string) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		c.ToggleMenu(projectID)
		return nil
	})
}

// Cancel broadcasts the cancel signal to the session. Only the controller
// bound for this request can be listening for the session, so it alone
// closes everything.
func (s *DashboardService) Cancel(ctx context.Context, sessionID string) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		s.signals.Emit(Signal{Kind: SignalCancel, SessionID: sessionID})
		return nil
	})
}

// UpdateDraft merges a change into the form being edited: the edit draft when
// the edit dialog is open, the create draft otherwise
func (s *DashboardService) UpdateDraft(ctx context.Context, sessionID string, change models.ProjectDraft) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		state := c.State()
		if state.Modals.Edit {
			state.EditDraft = state.EditDraft.Merge(change.ProjectPatch)
			return nil
		}
		state.CreateDraft = state.CreateDraft.Merge(change)
		return nil
	})
}

// ToggleDraftTeamMember flips a user in the create draft's team. Nothing is
// stored until the draft is submitted.
func (s *DashboardService) ToggleDraftTeamMember(ctx context.Context, sessionID, userID string) (*models.DashboardState, error) {
	return s.update(ctx, sessionID, func(c *ModalController) error {
		c.State().CreateDraft = c.State().CreateDraft.ToggleTeamMember(userID)
		return nil
	})
}

// ToggleTeamMember flips a user in the selected project's team and stores the
// change immediately
func (s *DashboardService) ToggleTeamMember(ctx context.Context, sessionID, userID string) (*models.Project, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.SelectedProjectID == "" {
		return nil, models.ErrNoProjectSelected
	}
	return s.projectService.ToggleTeamMember(ctx, state.SelectedProjectID, userID)
}

// Submit commits the open form. With the edit dialog open the edit draft is
// applied to the selected project; with the create dialog open the create
// draft becomes a new project. A *models.DuplicateIDError leaves the dialog
// open so the operator can confirm.
func (s *DashboardService) Submit(ctx context.Context, sessionID string, confirmDuplicate bool) (*models.Project, *models.DashboardState, error) {
	var result *models.Project
	state, err := s.update(ctx, sessionID, func(c *ModalController) error {
		state := c.State()
		switch {
		case state.Modals.Edit:
			var selected *models.Project
			if state.SelectedProjectID != "" {
				p, err := s.projectService.GetProjectByID(ctx, state.SelectedProjectID)
				if err != nil {
					return err
				}
				selected = p
			}
			updated, err := s.projectService.ApplyEdit(ctx, selected, state.EditDraft)
			if err != nil {
				return err
			}
			result = updated
			state.EditDraft = models.ProjectPatch{}
			return c.Close(models.ModalEdit)
		case state.Modals.Create:
			operator, err := s.userService.GetUserByID(ctx, state.OperatorID)
			if err != nil {
				return err
			}
			created, err := s.projectService.CreateProject(ctx, state.CreateDraft, operator, confirmDuplicate)
			if err != nil {
				return err
			}
			result = created
			state.CreateDraft = models.ProjectDraft{}
			return c.Close(models.ModalCreate)
		}
		return ErrNothingToSubmit
	})
	if err != nil {
		return nil, nil, err
	}
	return result, state, nil
}

// update loads a session, binds a controller to the cancel signal for the
// duration of fn and saves the result. Nothing is saved when fn fails. The
// session lock is held from load to save.
func (s *DashboardService) update(ctx context.Context, sessionID string, fn func(c *ModalController) error) (*models.DashboardState, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	controller := NewModalController(state)
	release := controller.Bind(s.signals)
	defer release()

	if err := fn(controller); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, controller.State()); err != nil {
		return nil, fmt.Errorf("failed to save dashboard session: %w", err)
	}
	return controller.State(), nil
}

// sessionLocks hands out one mutex per session id. Entries are dropped once
// nobody holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(sessionID string) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
