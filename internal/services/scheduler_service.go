package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ReconcileCreatedBy is the author recorded on ledger entries added by reconciliation
const ReconcileCreatedBy = "system"

type SchedulerService struct {
	projectRepo *repositories.ProjectRepository
	usedIDRepo  *repositories.UsedIDRepository
	schedule    string
	cron        *cron.Cron
}

func NewSchedulerService(
	projectRepo *repositories.ProjectRepository,
	usedIDRepo *repositories.UsedIDRepository,
	schedule string,
) *SchedulerService {
	return &SchedulerService{
		projectRepo: projectRepo,
		usedIDRepo:  usedIDRepo,
		schedule:    schedule,
	}
}

// StartScheduler registers the nightly reconciliation and starts the cron runner
func (s *SchedulerService) StartScheduler(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		added, err := s.Reconcile(ctx)
		if err != nil {
			logger.WithError(err).Error("Ledger reconciliation failed")
			return
		}
		logger.WithField("added", added).Info("Ledger reconciliation finished")
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", s.schedule, err)
	}

	s.cron = c
	c.Start()
	logger.Infof("Scheduler started (reconcile schedule %q)", s.schedule)
	return nil
}

// StopScheduler stops the cron runner and waits for a running job to finish
func (s *SchedulerService) StopScheduler() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped")
}

// Reconcile adds a ledger entry for every live project whose identifier was
// never registered and returns how many were added
func (s *SchedulerService) Reconcile(ctx context.Context) (int, error) {
	projects, err := s.projectRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, p := range projects {
		exists, err := s.usedIDRepo.Exists(ctx, p.ID)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		if err := s.usedIDRepo.Register(ctx, models.NewUsedID(p.ID, p.Name, ReconcileCreatedBy)); err != nil {
			return added, fmt.Errorf("failed to register %s: %w", p.ID, err)
		}
		logger.WithField("project_id", p.ID).Warn("Registered missing ledger entry")
		added++
	}
	return added, nil
}
