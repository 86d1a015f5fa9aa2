package services

import (
	"testing"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModalControllerOpenAndClose(t *testing.T) {
	state := models.NewDashboardState("s1", "u1")
	c := NewModalController(state)
	project := &models.Project{ID: "PROYECTO_001", Name: "Alpha", Status: models.StatusInProgress}

	require.NoError(t, c.Open(models.ModalEdit, project))
	require.NoError(t, c.Open(models.ModalLog, project))
	assert.True(t, state.Modals.Edit)
	assert.True(t, state.Modals.Log, "dialogs are not mutually exclusive")
	assert.Equal(t, "PROYECTO_001", state.SelectedProjectID)
	require.NotNil(t, state.EditDraft.Name)
	assert.Equal(t, "Alpha", *state.EditDraft.Name)

	require.NoError(t, c.Close(models.ModalEdit))
	assert.False(t, state.Modals.Edit)
	assert.True(t, state.Modals.Log)

	assert.ErrorIs(t, c.Open(models.Modal("bogus"), project), models.ErrUnknownModal)
	assert.ErrorIs(t, c.Open(models.ModalTeam, nil), models.ErrNoProjectSelected)
	assert.ErrorIs(t, c.Close(models.Modal("bogus")), models.ErrUnknownModal)
}

func TestModalControllerLinkerClosesMenu(t *testing.T) {
	state := models.NewDashboardState("s1", "u1")
	c := NewModalController(state)
	project := &models.Project{ID: "PROYECTO_001"}

	c.ToggleMenu("PROYECTO_001")
	assert.Equal(t, "PROYECTO_001", state.ActiveMenuID)

	require.NoError(t, c.OpenRepositoryLinker(project, models.RepositoryKindDrive))
	assert.True(t, state.Modals.RepositoryLinker)
	assert.Empty(t, state.ActiveMenuID)
	require.NotNil(t, state.Linker)
	assert.Equal(t, models.RepositoryKindDrive, state.Linker.Kind)

	assert.ErrorIs(t, c.OpenRepositoryLinker(project, "svn"), models.ErrInvalidRepositoryKind)
}

func TestModalControllerToggleMenu(t *testing.T) {
	state := models.NewDashboardState("s1", "u1")
	c := NewModalController(state)

	c.ToggleMenu("a")
	assert.Equal(t, "a", state.ActiveMenuID)
	c.ToggleMenu("b")
	assert.Equal(t, "b", state.ActiveMenuID)
	c.ToggleMenu("b")
	assert.Empty(t, state.ActiveMenuID)
}

func TestModalControllerCancelClearsEverySubset(t *testing.T) {
	project := &models.Project{ID: "PROYECTO_001"}
	open := []func(c *ModalController){
		func(c *ModalController) { c.OpenCreate(models.ProjectDraft{}) },
		func(c *ModalController) { _ = c.Open(models.ModalEdit, project) },
		func(c *ModalController) { _ = c.Open(models.ModalLog, project) },
		func(c *ModalController) { _ = c.Open(models.ModalTeam, project) },
		func(c *ModalController) { _ = c.Open(models.ModalSummary, project) },
		func(c *ModalController) { _ = c.OpenRepositoryLinker(project, models.RepositoryKindGitHub) },
	}

	for mask := 0; mask < 1<<len(open); mask++ {
		state := models.NewDashboardState("s1", "u1")
		c := NewModalController(state)
		for i, fn := range open {
			if mask&(1<<i) != 0 {
				fn(c)
			}
		}
		c.ToggleMenu("PROYECTO_001")

		signals := NewSignals()
		release := c.Bind(signals)
		signals.Emit(Signal{Kind: SignalCancel, SessionID: "s1"})
		release()

		assert.Equal(t, models.ModalFlags{}, state.Modals, "mask %b", mask)
		assert.Empty(t, state.ActiveMenuID)
		assert.Nil(t, state.Linker)
	}
}

func TestModalControllerReleasedSubscription(t *testing.T) {
	signals := NewSignals()
	state := models.NewDashboardState("s1", "u1")
	c := NewModalController(state)

	release := c.Bind(signals)
	assert.Equal(t, 1, signals.Subscribers())
	release()
	release()
	assert.Equal(t, 0, signals.Subscribers())

	c.OpenCreate(models.ProjectDraft{})
	signals.Emit(Signal{Kind: SignalCancel})
	assert.True(t, state.Modals.Create, "a released controller no longer reacts")
}

func TestModalControllerIgnoresOtherSessions(t *testing.T) {
	signals := NewSignals()
	state := models.NewDashboardState("s1", "u1")
	c := NewModalController(state)
	c.OpenCreate(models.ProjectDraft{})

	release := c.Bind(signals)
	defer release()

	signals.Emit(Signal{Kind: SignalCancel, SessionID: "s2"})
	assert.True(t, state.Modals.Create)

	signals.Emit(Signal{Kind: SignalCancel})
	assert.False(t, state.Modals.Create)
}
