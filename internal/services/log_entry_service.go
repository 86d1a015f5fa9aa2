package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
)

type LogEntryService struct {
	logEntryRepo *repositories.LogEntryRepository
	projectRepo  *repositories.ProjectRepository
}

func NewLogEntryService(logEntryRepo *repositories.LogEntryRepository, projectRepo *repositories.ProjectRepository) *LogEntryService {
	return &LogEntryService{
		logEntryRepo: logEntryRepo,
		projectRepo:  projectRepo,
	}
}

// AppendLog adds an activity entry to a project's log
func (s *LogEntryService) AppendLog(ctx context.Context, projectID, authorName, text string, link *string) (*models.LogEntry, error) {
	exists, err := s.projectRepo.ExistsByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error checking project: %w", err)
	}
	if !exists {
		return nil, models.ErrProjectNotFound
	}

	if link != nil && strings.TrimSpace(*link) == "" {
		link = nil
	}
	entry := models.NewLogEntry(projectID, authorName, strings.TrimSpace(text), link)
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.logEntryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("error saving log entry: %w", err)
	}
	return entry, nil
}

// ListLogs returns a project's log, newest first
func (s *LogEntryService) ListLogs(ctx context.Context, projectID string) ([]*models.LogEntry, error) {
	exists, err := s.projectRepo.ExistsByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error checking project: %w", err)
	}
	if !exists {
		return nil, models.ErrProjectNotFound
	}
	return s.logEntryRepo.GetByProjectID(ctx, projectID)
}
