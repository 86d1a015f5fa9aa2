package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/sirupsen/logrus"
)

var ErrRepositoryLinkNotFound = errors.New("repository link not found")

// RepositoryLinkService attaches source-control and cloud-storage links to
// projects. Changes go through the same update path as any project edit.
type RepositoryLinkService struct {
	projectService *ProjectService
	linkRepo       *repositories.RepositoryLinkRepository
	checker        LinkChecker
}

// NewRepositoryLinkService creates the service. checker may be nil, in which
// case GitHub links are stored unverified.
func NewRepositoryLinkService(projectService *ProjectService, linkRepo *repositories.RepositoryLinkRepository, checker LinkChecker) *RepositoryLinkService {
	return &RepositoryLinkService{
		projectService: projectService,
		linkRepo:       linkRepo,
		checker:        checker,
	}
}

// AddRepository links a new repository to a project
func (s *RepositoryLinkService) AddRepository(ctx context.Context, projectID string, kind models.RepositoryKind, alias, rawURL string) (*models.Project, error) {
	project, err := s.projectService.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	link := models.NewRepository(kind, strings.TrimSpace(alias), strings.TrimSpace(rawURL))
	if err := link.Validate(); err != nil {
		return nil, err
	}

	if kind == models.RepositoryKindGitHub && s.checker != nil {
		s.verify(ctx, projectID, link)
	}

	project.Repositories = append(project.Repositories, *link)
	if err := s.projectService.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// RemoveRepository unlinks a repository from a project
func (s *RepositoryLinkService) RemoveRepository(ctx context.Context, projectID, repositoryID string) (*models.Project, error) {
	project, err := s.projectService.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	kept := make([]models.Repository, 0, len(project.Repositories))
	for _, r := range project.Repositories {
		if r.ID != repositoryID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(project.Repositories) {
		return nil, ErrRepositoryLinkNotFound
	}

	project.Repositories = kept
	if err := s.projectService.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// RecheckDue re-verifies GitHub links not checked since cutoff and returns how
// many were checked
func (s *RepositoryLinkService) RecheckDue(ctx context.Context, cutoff time.Time) (int, error) {
	if s.checker == nil {
		return 0, nil
	}
	links, err := s.linkRepo.GetGitHubDueForCheck(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	checked := 0
	for _, l := range links {
		if ctx.Err() != nil {
			return checked, ctx.Err()
		}
		link := l.Repository
		s.verify(ctx, l.ProjectID, &link)
		if err := s.linkRepo.UpdateCheck(ctx, link.ID, *link.Verified, *link.LastChecked); err != nil {
			return checked, err
		}
		checked++
	}
	return checked, nil
}

// verify records the check outcome on link. A failed check counts as
// unverified; it never blocks linking.
func (s *RepositoryLinkService) verify(ctx context.Context, projectID string, link *models.Repository) {
	ok, err := s.checker.CheckRepository(ctx, link.URL)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"url":        link.URL,
		}).WithError(err).Warn("Repository link check failed")
		ok = false
	}
	now := time.Now()
	link.Verified = &ok
	link.LastChecked = &now
}
