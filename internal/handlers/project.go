package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alimgiray/projectdesk/internal/middleware"
	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/services"
	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProjectHandler struct {
	projectService *services.ProjectService
	userService    *services.UserService
	logService     *services.LogEntryService
	linkService    *services.RepositoryLinkService
}

func NewProjectHandler(projectService *services.ProjectService, userService *services.UserService,
	logService *services.LogEntryService, linkService *services.RepositoryLinkService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		userService:    userService,
		logService:     logService,
		linkService:    linkService,
	}
}

type appendLogRequest struct {
	Text string  `json:"text"`
	Link *string `json:"link"`
}

type addRepositoryRequest struct {
	Kind  models.RepositoryKind `json:"kind"`
	Alias string                `json:"alias"`
	URL   string                `json:"url"`
}

// ListProjects returns the projects matching the query filters. The API shows
// every status unless one is asked for.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	filter := models.ProjectFilter{Status: models.StatusFilterAll}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// NextID proposes the identifier for the next project
func (h *ProjectHandler) NextID(c *gin.Context) {
	id, err := h.projectService.ProposeID(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// CreateProject creates a project from a draft. A reused identifier needs
// the request repeated with confirm=true.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var draft models.ProjectDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	confirm, _ := strconv.ParseBool(c.DefaultQuery("confirm", "false"))

	operator, ok := h.operator(c)
	if !ok {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), draft, operator, confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProject returns one project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProjectByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject applies a partial update to a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var patch models.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.PatchProject(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject removes a project; its identifier stays in the ledger
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleTeamMember adds or removes a user from the project team
func (h *ProjectHandler) ToggleTeamMember(c *gin.Context) {
	project, err := h.projectService.ToggleTeamMember(c.Request.Context(), c.Param("id"), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ListLogs returns the activity log of a project
func (h *ProjectHandler) ListLogs(c *gin.Context) {
	entries, err := h.logService.ListLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AppendLog adds an entry to the activity log, authored by the operator
func (h *ProjectHandler) AppendLog(c *gin.Context) {
	var req appendLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	operator, ok := h.operator(c)
	if !ok {
		return
	}

	entry, err := h.logService.AppendLog(c.Request.Context(), c.Param("id"), operator.Name, req.Text, req.Link)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// AddRepository links a repository or storage folder to a project
func (h *ProjectHandler) AddRepository(c *gin.Context) {
	var req addRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.linkService.AddRepository(c.Request.Context(), c.Param("id"), req.Kind, req.Alias, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// RemoveRepository unlinks a repository from a project
func (h *ProjectHandler) RemoveRepository(c *gin.Context) {
	project, err := h.linkService.RemoveRepository(c.Request.Context(), c.Param("id"), c.Param("repository_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Summary returns the read-only overview of a project
func (h *ProjectHandler) Summary(c *gin.Context) {
	summary, err := h.projectService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportProjects downloads the filtered register as a spreadsheet
func (h *ProjectHandler) ExportProjects(c *gin.Context) {
	filter := models.ProjectFilter{Status: models.StatusFilterAll}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	workbook, err := services.ExportProjects(projects)
	if err != nil {
		respondError(c, err)
		return
	}
	defer workbook.Close()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("projects-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListUsers returns the user directory
func (h *ProjectHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListUsedIDs returns the identifier ledger
func (h *ProjectHandler) ListUsedIDs(c *gin.Context) {
	ledger, err := h.projectService.ListUsedIDs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ledger)
}

// operator resolves the user behind the session cookie. It writes the error
// response itself and reports false when there is none.
func (h *ProjectHandler) operator(c *gin.Context) (*models.User, bool) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No dashboard session"})
		return nil, false
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), session.OperatorID)
	if err != nil {
		logger.WithField("operator_id", session.OperatorID).WithError(err).Warn("Unknown operator in session")
		respondError(c, err)
		return nil, false
	}
	return user, true
}
