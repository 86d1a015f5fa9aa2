package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/sirupsen/logrus"
)

type ProjectService struct {
	projectRepo         *repositories.ProjectRepository
	usedIDRepo          *repositories.UsedIDRepository
	logEntryRepo        *repositories.LogEntryRepository
	issuer              *IDIssuer
	defaultDeadlineDays int
	now                 func() time.Time
}

func NewProjectService(
	projectRepo *repositories.ProjectRepository,
	usedIDRepo *repositories.UsedIDRepository,
	logEntryRepo *repositories.LogEntryRepository,
	issuer *IDIssuer,
	defaultDeadlineDays int,
) *ProjectService {
	return &ProjectService{
		projectRepo:         projectRepo,
		usedIDRepo:          usedIDRepo,
		logEntryRepo:        logEntryRepo,
		issuer:              issuer,
		defaultDeadlineDays: defaultDeadlineDays,
		now:                 time.Now,
	}
}

// ProposeID returns the next sequential identifier
func (s *ProjectService) ProposeID(ctx context.Context) (string, error) {
	return s.issuer.Propose(ctx)
}

// NewDraft returns the create-dialog draft with its defaults and a proposed ID
func (s *ProjectService) NewDraft(ctx context.Context) (models.ProjectDraft, error) {
	id, err := s.ProposeID(ctx)
	if err != nil {
		return models.ProjectDraft{}, err
	}

	today := truncateToDay(s.now())
	deadline := today.AddDate(0, 0, s.defaultDeadlineDays)
	status := models.StatusInProgress
	progress := 0
	empty := ""
	team := []string{}

	return models.ProjectDraft{
		ProjectPatch: models.ProjectPatch{
			Name:        &empty,
			Client:      &empty,
			Status:      &status,
			Progress:    &progress,
			Description: &empty,
			StartDate:   &today,
			Deadline:    &deadline,
			TeamIDs:     &team,
		},
		ManualID:   &id,
		RepoGithub: &empty,
		RepoDrive:  &empty,
	}, nil
}

// CreateProject creates a project from a draft and registers its identifier in
// the ledger. It is the second step of the create protocol: when the identifier
// is already in the ledger the call fails with *models.DuplicateIDError unless
// confirmDuplicate is set. Nothing is written on any error.
func (s *ProjectService) CreateProject(ctx context.Context, draft models.ProjectDraft, operator *models.User, confirmDuplicate bool) (*models.Project, error) {
	if !draft.Complete() {
		return nil, models.ErrIncompleteDraft
	}
	if operator == nil {
		return nil, errors.New("operator is required")
	}

	id := strings.TrimSpace(*draft.ManualID)
	used, err := s.usedIDRepo.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error checking ID ledger: %w", err)
	}
	if used && !confirmDuplicate {
		return nil, &models.DuplicateIDError{ID: id}
	}

	project := s.BuildProject(draft, operator)
	if err := project.Validate(); err != nil {
		return nil, err
	}

	usedID := models.NewUsedID(project.ID, project.Name, operator.Name)
	usedID.DateUsed = s.now()

	if err := s.projectRepo.CreateWithUsedID(ctx, project, usedID); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"operator":   operator.Name,
		"reused_id":  used,
	}).Info("Project created")

	return project, nil
}

// BuildProject turns a complete draft into a project, filling the defaults a
// new project gets. It does not touch storage.
func (s *ProjectService) BuildProject(draft models.ProjectDraft, operator *models.User) *models.Project {
	now := s.now()
	today := truncateToDay(now)

	project := &models.Project{
		ID:            strings.TrimSpace(valueOr(draft.ManualID, "")),
		Name:          strings.TrimSpace(valueOr(draft.Name, "")),
		Client:        strings.TrimSpace(valueOr(draft.Client, "")),
		ClientContact: valueOr(draft.ClientContact, ""),
		Status:        models.StatusInProgress,
		Description:   valueOr(draft.Description, ""),
		StartDate:     today,
		Deadline:      today.AddDate(0, 0, s.defaultDeadlineDays),
		LeadID:        operator.ID,
		TeamIDs:       []string{},
		Technologies:  []string{},
		Logs:          []models.LogEntry{},
		Repositories:  []models.Repository{},
	}

	if project.ClientContact == "" {
		project.ClientContact = models.DefaultClientContact
	}
	if draft.Status != nil && *draft.Status != "" {
		project.Status = *draft.Status
	}
	if draft.Progress != nil {
		project.Progress = *draft.Progress
	}
	if draft.StartDate != nil && !draft.StartDate.IsZero() {
		project.StartDate = *draft.StartDate
	}
	if draft.Deadline != nil && !draft.Deadline.IsZero() {
		project.Deadline = *draft.Deadline
	}
	if draft.LeadID != nil && *draft.LeadID != "" {
		project.LeadID = *draft.LeadID
	}
	if draft.TeamIDs != nil {
		project.TeamIDs = append(project.TeamIDs, *draft.TeamIDs...)
	}
	if draft.Technologies != nil {
		project.Technologies = append(project.Technologies, *draft.Technologies...)
	}

	if url := strings.TrimSpace(valueOr(draft.RepoGithub, "")); url != "" {
		project.Repositories = append(project.Repositories, *models.NewRepository(models.RepositoryKindGitHub, "", url))
	}
	if url := strings.TrimSpace(valueOr(draft.RepoDrive, "")); url != "" {
		project.Repositories = append(project.Repositories, *models.NewRepository(models.RepositoryKindDrive, "", url))
	}

	project.Year = project.StartDate.Year()
	project.SyncStatusFlags()
	return project
}

// GetProjectByID retrieves a project by ID
func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	if id == "" {
		return nil, errors.New("project ID is required")
	}
	return s.projectRepo.GetByID(ctx, id)
}

// ListProjects retrieves the live projects matching filter
func (s *ProjectService) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*models.Project, error) {
	projects, err := s.projectRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterProjects(projects, filter), nil
}

// UpdateProject stores a full project record. Blank text fields are accepted.
func (s *ProjectService) UpdateProject(ctx context.Context, project *models.Project) error {
	project.Name = strings.TrimSpace(project.Name)
	project.SyncStatusFlags()
	if err := project.ValidateUpdate(); err != nil {
		return err
	}
	return s.projectRepo.Update(ctx, project)
}

// ApplyEdit merges an edit draft onto the selected project and stores it.
// A nil selected project fails with models.ErrNoProjectSelected.
func (s *ProjectService) ApplyEdit(ctx context.Context, selected *models.Project, patch models.ProjectPatch) (*models.Project, error) {
	updated, err := MergeEdit(selected, patch)
	if err != nil {
		return nil, err
	}
	if err := s.UpdateProject(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// PatchProject loads a project by ID and applies patch to it
func (s *ProjectService) PatchProject(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ApplyEdit(ctx, project, patch)
}

// MergeEdit applies patch onto selected. The status is the patched one when
// present and the original otherwise; the status flags follow it.
func MergeEdit(selected *models.Project, patch models.ProjectPatch) (*models.Project, error) {
	if selected == nil {
		return nil, models.ErrNoProjectSelected
	}
	updated := patch.ApplyTo(selected)
	updated.ID = selected.ID
	if patch.Status == nil {
		updated.Status = selected.Status
	}
	updated.SyncStatusFlags()
	return updated, nil
}

// DeleteProject removes a project. Its ledger entry stays.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("project ID is required")
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithField("project_id", id).Info("Project deleted")
	return nil
}

// ToggleTeamMember adds or removes userID from the project's team and stores
// the change immediately.
func (s *ProjectService) ToggleTeamMember(ctx context.Context, projectID, userID string) (*models.Project, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	project, err := s.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	project.TeamIDs = models.ToggleMember(project.TeamIDs, userID)
	if err := s.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListUsedIDs returns the identifier ledger
func (s *ProjectService) ListUsedIDs(ctx context.Context) ([]*models.UsedID, error) {
	return s.usedIDRepo.GetAll(ctx)
}

// ProjectSummary is the read-only overview shown in the summary dialog
type ProjectSummary struct {
	ProjectID          string                        `json:"project_id"`
	Name               string                        `json:"name"`
	Description        string                        `json:"description"`
	Technologies       []string                      `json:"technologies"`
	Progress           int                           `json:"progress"`
	LogEntries         int                           `json:"log_entries"`
	TeamSize           int                           `json:"team_size"`
	RepositoriesByKind map[models.RepositoryKind]int `json:"repositories_by_kind"`
}

// Summary builds the summary of a project
func (s *ProjectService) Summary(ctx context.Context, id string) (*ProjectSummary, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logCount, err := s.logEntryRepo.CountByProjectID(ctx, id)
	if err != nil {
		return nil, err
	}

	byKind := map[models.RepositoryKind]int{
		models.RepositoryKindGitHub: 0,
		models.RepositoryKindDrive:  0,
	}
	for _, r := range project.Repositories {
		byKind[r.Kind]++
	}

	return &ProjectSummary{
		ProjectID:          project.ID,
		Name:               project.Name,
		Description:        project.Description,
		Technologies:       project.Technologies,
		Progress:           project.Progress,
		LogEntries:         logCount,
		TeamSize:           len(project.TeamIDs),
		RepositoriesByKind: byKind,
	}, nil
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
