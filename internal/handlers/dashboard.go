package handlers

import (
	"net/http"
	"strconv"

	"github.com/alimgiray/projectdesk/internal/middleware"
	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/services"
	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

type startSessionRequest struct {
	OperatorID string `json:"operator_id" binding:"required"`
}

// StartSession opens a dashboard for an operator and sets the session cookie
func (h *DashboardHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.dashboardService.Start(c.Request.Context(), req.OperatorID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := middleware.SetSession(c, state.OperatorID, state.SessionID); err != nil {
		respondError(c, err)
		return
	}

	logger.WithField("operator_id", state.OperatorID).Info("Dashboard session started")
	c.JSON(http.StatusCreated, state)
}

// EndSession discards the dashboard session and clears the cookie
func (h *DashboardHandler) EndSession(c *gin.Context) {
	session := middleware.GetSession(c)
	if err := h.dashboardService.End(c.Request.Context(), session.SessionID); err != nil {
		respondError(c, err)
		return
	}
	middleware.ClearSession(c)
	c.Status(http.StatusNoContent)
}

// State returns the stored dashboard state
func (h *DashboardHandler) State(c *gin.Context) {
	state, err := h.dashboardService.State(c.Request.Context(), sessionID(c))
	respondState(c, state, err)
}

// SetFilters replaces the dashboard filters
func (h *DashboardHandler) SetFilters(c *gin.Context) {
	var filter models.ProjectFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.dashboardService.SetFilters(c.Request.Context(), sessionID(c), filter)
	respondState(c, state, err)
}

// Projects lists the projects under the dashboard filters
func (h *DashboardHandler) Projects(c *gin.Context) {
	projects, err := h.dashboardService.Projects(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// OpenCreate opens the create dialog
func (h *DashboardHandler) OpenCreate(c *gin.Context) {
	state, err := h.dashboardService.OpenCreate(c.Request.Context(), sessionID(c))
	respondState(c, state, err)
}

// OpenProjectModal opens the edit, log, team or summary dialog
func (h *DashboardHandler) OpenProjectModal(c *gin.Context) {
	modal := models.Modal(c.Param("modal"))
	state, err := h.dashboardService.OpenProjectModal(c.Request.Context(), sessionID(c), modal, c.Param("project_id"))
	respondState(c, state, err)
}

// OpenLinker opens the repository linker
func (h *DashboardHandler) OpenLinker(c *gin.Context) {
	kind := models.RepositoryKind(c.Param("kind"))
	state, err := h.dashboardService.OpenLinker(c.Request.Context(), sessionID(c), c.Param("project_id"), kind)
	respondState(c, state, err)
}

// CloseModal closes one dialog
func (h *DashboardHandler) CloseModal(c *gin.Context) {
	state, err := h.dashboardService.CloseModal(c.Request.Context(), sessionID(c), models.Modal(c.Param("modal")))
	respondState(c, state, err)
}

// ToggleMenu opens or closes a project's row menu
func (h *DashboardHandler) ToggleMenu(c *gin.Context) {
	state, err := h.dashboardService.ToggleMenu(c.Request.Context(), sessionID(c), c.Param("project_id"))
	respondState(c, state, err)
}

// Cancel closes every dialog and the row menu
func (h *DashboardHandler) Cancel(c *gin.Context) {
	state, err := h.dashboardService.Cancel(c.Request.Context(), sessionID(c))
	respondState(c, state, err)
}

// UpdateDraft merges form changes into the open draft
func (h *DashboardHandler) UpdateDraft(c *gin.Context) {
	var change models.ProjectDraft
	if err := c.ShouldBindJSON(&change); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.dashboardService.UpdateDraft(c.Request.Context(), sessionID(c), change)
	respondState(c, state, err)
}

// ToggleDraftTeamMember flips a user in the create draft's team
func (h *DashboardHandler) ToggleDraftTeamMember(c *gin.Context) {
	state, err := h.dashboardService.ToggleDraftTeamMember(c.Request.Context(), sessionID(c), c.Param("user_id"))
	respondState(c, state, err)
}

// ToggleTeamMember flips a user in the selected project's team and stores it
func (h *DashboardHandler) ToggleTeamMember(c *gin.Context) {
	project, err := h.dashboardService.ToggleTeamMember(c.Request.Context(), sessionID(c), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Submit commits the open create or edit form
func (h *DashboardHandler) Submit(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.DefaultQuery("confirm", "false"))

	project, state, err := h.dashboardService.Submit(c.Request.Context(), sessionID(c), confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project, "state": state})
}

func sessionID(c *gin.Context) string {
	if session := middleware.GetSession(c); session != nil {
		return session.SessionID
	}
	return ""
}

func respondState(c *gin.Context, state *models.DashboardState, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
