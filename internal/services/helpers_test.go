package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/alimgiray/projectdesk/pkg/database"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db             *sql.DB
	projectRepo    *repositories.ProjectRepository
	usedIDRepo     *repositories.UsedIDRepository
	logEntryRepo   *repositories.LogEntryRepository
	linkRepo       *repositories.RepositoryLinkRepository
	userRepo       *repositories.UserRepository
	projectService *ProjectService
	userService    *UserService
	operator       *models.User
}

var fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:           db,
		projectRepo:  repositories.NewProjectRepository(db),
		usedIDRepo:   repositories.NewUsedIDRepository(db),
		logEntryRepo: repositories.NewLogEntryRepository(db),
		linkRepo:     repositories.NewRepositoryLinkRepository(db),
		userRepo:     repositories.NewUserRepository(db),
	}

	issuer := NewIDIssuer(env.usedIDRepo, env.projectRepo, "PROYECTO")
	env.projectService = NewProjectService(env.projectRepo, env.usedIDRepo, env.logEntryRepo, issuer, 30)
	env.projectService.now = func() time.Time { return fixedNow }
	env.userService = NewUserService(env.userRepo)

	ctx := context.Background()
	for _, u := range []*models.User{
		{ID: "u1", Name: "Ana", Role: "lead"},
		{ID: "u2", Name: "Bruno", Role: "dev"},
		{ID: "u3", Name: "Carla", Role: "dev"},
	} {
		require.NoError(t, env.userRepo.Create(ctx, u))
	}
	env.operator, err = env.userRepo.GetByID(ctx, "u1")
	require.NoError(t, err)
	return env
}

func draftFor(id, name, client string) models.ProjectDraft {
	return models.ProjectDraft{
		ProjectPatch: models.ProjectPatch{
			Name:   models.StringPtr(name),
			Client: models.StringPtr(client),
		},
		ManualID: models.StringPtr(id),
	}
}

// createProject creates a project through the service and fails the test on error
func (e *testEnv) createProject(t *testing.T, id, name string, status models.ProjectStatus) *models.Project {
	t.Helper()
	draft := draftFor(id, name, "Acme")
	draft.Status = &status
	p, err := e.projectService.CreateProject(context.Background(), draft, e.operator, false)
	require.NoError(t, err)
	return p
}
