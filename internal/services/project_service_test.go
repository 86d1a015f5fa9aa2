package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectDefaults(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	draft := draftFor("PROYECTO_001", "  Alpha ", "Acme")
	draft.RepoGithub = models.StringPtr("https://github.com/acme/alpha")
	draft.RepoDrive = models.StringPtr("")
	draft.TeamIDs = &[]string{"u2"}

	project, err := env.projectService.CreateProject(ctx, draft, env.operator, false)
	require.NoError(t, err)

	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Alpha", project.Name)
	assert.Equal(t, models.DefaultClientContact, project.ClientContact)
	assert.Equal(t, models.StatusInProgress, project.Status)
	assert.True(t, project.IsOngoing)
	assert.True(t, project.Report)
	assert.Equal(t, "u1", project.LeadID)
	assert.Equal(t, today, project.StartDate)
	assert.Equal(t, today.AddDate(0, 0, 30), project.Deadline)
	assert.Equal(t, 2024, project.Year)
	assert.Equal(t, []string{"u2"}, project.TeamIDs)
	require.Len(t, project.Repositories, 1)
	assert.Equal(t, models.RepositoryKindGitHub, project.Repositories[0].Kind)
	assert.Equal(t, "Official repository", project.Repositories[0].Alias)

	ledger, err := env.projectService.ListUsedIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "PROYECTO_001", ledger[0].ID)
	assert.Equal(t, "Alpha", ledger[0].ProjectName)
	assert.Equal(t, "Ana", ledger[0].CreatedBy)
}

func TestCreateProjectIncompleteDraft(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	testCases := []struct {
		name  string
		draft models.ProjectDraft
	}{
		{"Missing name", draftFor("PROYECTO_004", "", "Acme")},
		{"Blank client", draftFor("PROYECTO_004", "Alpha", "   ")},
		{"Missing identifier", draftFor("", "Alpha", "Acme")},
		{"Nil fields", models.ProjectDraft{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.projectService.CreateProject(ctx, tc.draft, env.operator, true)
			assert.ErrorIs(t, err, models.ErrIncompleteDraft)
		})
	}

	projects, err := env.projectService.ListProjects(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, projects)
	ledger, err := env.projectService.ListUsedIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestCreateProjectDuplicateConfirmation(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	env.createProject(t, "PROYECTO_003", "Alpha", models.StatusInProgress)
	require.NoError(t, env.projectService.DeleteProject(ctx, "PROYECTO_003"))

	// Declined: the caller never resubmits with confirmation
	_, err := env.projectService.CreateProject(ctx, draftFor("PROYECTO_003", "Beta", "Acme"), env.operator, false)
	var duplicate *models.DuplicateIDError
	require.True(t, errors.As(err, &duplicate))
	assert.Equal(t, "PROYECTO_003", duplicate.ID)

	projects, err := env.projectService.ListProjects(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, projects)
	ledger, err := env.projectService.ListUsedIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)

	// Accepted
	project, err := env.projectService.CreateProject(ctx, draftFor("PROYECTO_003", "Beta", "Acme"), env.operator, true)
	require.NoError(t, err)
	assert.Equal(t, "PROYECTO_003", project.ID)

	projects, err = env.projectService.ListProjects(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	ledger, err = env.projectService.ListUsedIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, "PROYECTO_003", ledger[1].ID)
	assert.Equal(t, "Beta", ledger[1].ProjectName)
}

func TestCreateProjectLiveIDCannotBeReused(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	env.createProject(t, "PROYECTO_001", "Alpha", models.StatusInProgress)

	_, err := env.projectService.CreateProject(ctx, draftFor("PROYECTO_001", "Beta", "Acme"), env.operator, true)
	assert.ErrorIs(t, err, models.ErrProjectIDInUse)

	ledger, err := env.projectService.ListUsedIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestCreateProjectRejectsInvalidProgress(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	draft := draftFor("PROYECTO_001", "Alpha", "Acme")
	progress := 150
	draft.Progress = &progress

	_, err := env.projectService.CreateProject(ctx, draft, env.operator, false)
	var validation *models.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "progress", validation.Field)
}

func TestNewDraft(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	env.createProject(t, "PROYECTO_009", "Alpha", models.StatusInProgress)

	draft, err := env.projectService.NewDraft(ctx)
	require.NoError(t, err)
	require.NotNil(t, draft.ManualID)
	assert.Equal(t, "PROYECTO_010", *draft.ManualID)
	assert.Equal(t, models.StatusInProgress, *draft.Status)
	assert.Equal(t, 0, *draft.Progress)
	assert.Equal(t, "", *draft.RepoGithub)
	assert.False(t, draft.Complete())
}

func TestApplyEdit(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	project := env.createProject(t, "PROYECTO_001", "Alpha", models.StatusInProgress)

	t.Run("No project selected", func(t *testing.T) {
		_, err := env.projectService.ApplyEdit(ctx, nil, models.ProjectPatch{Name: models.StringPtr("x")})
		assert.ErrorIs(t, err, models.ErrNoProjectSelected)
	})

	t.Run("Absent fields keep their values", func(t *testing.T) {
		updated, err := env.projectService.ApplyEdit(ctx, project, models.ProjectPatch{
			Description: models.StringPtr(""),
			Client:      models.StringPtr("Globex"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Alpha", updated.Name)
		assert.Equal(t, "Globex", updated.Client)
		assert.Equal(t, models.StatusInProgress, updated.Status)
		assert.True(t, updated.IsOngoing)
	})

	t.Run("Status change recomputes flags", func(t *testing.T) {
		finished := models.StatusFinished
		updated, err := env.projectService.PatchProject(ctx, project.ID, models.ProjectPatch{Status: &finished})
		require.NoError(t, err)
		assert.False(t, updated.IsOngoing)
		assert.False(t, updated.Report)

		stored, err := env.projectService.GetProjectByID(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFinished, stored.Status)
		assert.Equal(t, "Globex", stored.Client)
		assert.False(t, stored.IsOngoing)
	})
}

func TestMergeEdit(t *testing.T) {
	original := &models.Project{ID: "PROYECTO_001", Name: "Alpha", Status: models.StatusFinished, TeamIDs: []string{"u1"}}

	updated, err := MergeEdit(original, models.ProjectPatch{Name: models.StringPtr("Alpha 2")})
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", updated.Name)
	assert.Equal(t, models.StatusFinished, updated.Status)
	assert.False(t, updated.IsOngoing)
	assert.Equal(t, "Alpha", original.Name, "the selected project is not modified")

	_, err = MergeEdit(nil, models.ProjectPatch{})
	assert.ErrorIs(t, err, models.ErrNoProjectSelected)
}

func TestToggleTeamMember(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	draft := draftFor("PROYECTO_001", "Alpha", "Acme")
	draft.TeamIDs = &[]string{"u1", "u2", "u3"}
	_, err := env.projectService.CreateProject(ctx, draft, env.operator, false)
	require.NoError(t, err)

	project, err := env.projectService.ToggleTeamMember(ctx, "PROYECTO_001", "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, project.TeamIDs)

	project, err = env.projectService.ToggleTeamMember(ctx, "PROYECTO_001", "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3", "u2"}, project.TeamIDs)

	stored, err := env.projectService.GetProjectByID(ctx, "PROYECTO_001")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3", "u2"}, stored.TeamIDs)

	_, err = env.projectService.ToggleTeamMember(ctx, "PROYECTO_404", "u2")
	assert.ErrorIs(t, err, models.ErrProjectNotFound)
}

func TestListProjectsFilters(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	env.createProject(t, "PROYECTO_001", "Alpha", models.StatusInProgress)
	env.createProject(t, "PROYECTO_002", "Beta", models.StatusFinished)

	projects, err := env.projectService.ListProjects(ctx, models.ProjectFilter{Status: "InProgress"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Alpha", projects[0].Name)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	logService := NewLogEntryService(env.logEntryRepo, env.projectRepo)

	draft := draftFor("PROYECTO_001", "Alpha", "Acme")
	draft.TeamIDs = &[]string{"u1", "u2"}
	draft.Technologies = &[]string{"go"}
	draft.RepoGithub = models.StringPtr("https://github.com/acme/alpha")
	draft.RepoDrive = models.StringPtr("https://drive.example.com/alpha")
	_, err := env.projectService.CreateProject(ctx, draft, env.operator, false)
	require.NoError(t, err)

	_, err = logService.AppendLog(ctx, "PROYECTO_001", "Ana", "Kickoff", nil)
	require.NoError(t, err)

	summary, err := env.projectService.Summary(ctx, "PROYECTO_001")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", summary.Name)
	assert.Equal(t, 1, summary.LogEntries)
	assert.Equal(t, 2, summary.TeamSize)
	assert.Equal(t, []string{"go"}, summary.Technologies)
	assert.Equal(t, 1, summary.RepositoriesByKind[models.RepositoryKindGitHub])
	assert.Equal(t, 1, summary.RepositoriesByKind[models.RepositoryKindDrive])
}

func TestAppendLog(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	logService := NewLogEntryService(env.logEntryRepo, env.projectRepo)
	env.createProject(t, "PROYECTO_001", "Alpha", models.StatusInProgress)

	_, err := logService.AppendLog(ctx, "PROYECTO_001", "Ana", "   ", nil)
	var validation *models.ValidationError
	assert.True(t, errors.As(err, &validation))

	_, err = logService.AppendLog(ctx, "PROYECTO_404", "Ana", "text", nil)
	assert.ErrorIs(t, err, models.ErrProjectNotFound)

	entry, err := logService.AppendLog(ctx, "PROYECTO_001", "Ana", "Kickoff", models.StringPtr(" "))
	require.NoError(t, err)
	assert.Nil(t, entry.Link)

	_, err = logService.AppendLog(ctx, "PROYECTO_001", "Bruno", "Design review", models.StringPtr("https://docs.example.com/review"))
	require.NoError(t, err)

	logs, err := logService.ListLogs(ctx, "PROYECTO_001")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Design review", logs[0].Text, "newest first")
	require.NotNil(t, logs[0].Link)
}
