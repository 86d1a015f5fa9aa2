package handlers

import (
	"github.com/alimgiray/projectdesk/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler of the service
type Handlers struct {
	Project   *ProjectHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
	NotFound  *NotFoundHandler
}

// RegisterRoutes mounts the API and dashboard routes on router
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	router.Use(middleware.SessionMiddleware())

	router.GET("/health", h.Health.Health)
	router.NoRoute(h.NotFound.NotFound)

	// Opening a session is the only dashboard route without a cookie
	router.POST("/dashboard/session", h.Dashboard.StartSession)

	api := router.Group("/api")
	api.Use(middleware.SessionRequired())
	{
		api.GET("/users", h.Project.ListUsers)
		api.GET("/used-ids", h.Project.ListUsedIDs)

		api.GET("/projects", h.Project.ListProjects)
		api.POST("/projects", h.Project.CreateProject)
		api.GET("/projects/next-id", h.Project.NextID)
		api.GET("/projects/export", h.Project.ExportProjects)
		api.GET("/projects/:id", h.Project.GetProject)
		api.PATCH("/projects/:id", h.Project.UpdateProject)
		api.DELETE("/projects/:id", h.Project.DeleteProject)
		api.POST("/projects/:id/team/:user_id/toggle", h.Project.ToggleTeamMember)
		api.GET("/projects/:id/logs", h.Project.ListLogs)
		api.POST("/projects/:id/logs", h.Project.AppendLog)
		api.POST("/projects/:id/repositories", h.Project.AddRepository)
		api.DELETE("/projects/:id/repositories/:repository_id", h.Project.RemoveRepository)
		api.GET("/projects/:id/summary", h.Project.Summary)
	}

	dashboard := router.Group("/dashboard")
	dashboard.Use(middleware.SessionRequired())
	{
		dashboard.DELETE("/session", h.Dashboard.EndSession)
		dashboard.GET("/state", h.Dashboard.State)
		dashboard.PUT("/filters", h.Dashboard.SetFilters)
		dashboard.GET("/projects", h.Dashboard.Projects)
		dashboard.POST("/modals/create", h.Dashboard.OpenCreate)
		dashboard.POST("/modals/linker/:project_id/:kind", h.Dashboard.OpenLinker)
		dashboard.POST("/modals/:modal/:project_id", h.Dashboard.OpenProjectModal)
		dashboard.DELETE("/modals/:modal", h.Dashboard.CloseModal)
		dashboard.POST("/menu/:project_id", h.Dashboard.ToggleMenu)
		dashboard.POST("/cancel", h.Dashboard.Cancel)
		dashboard.PATCH("/draft", h.Dashboard.UpdateDraft)
		dashboard.POST("/draft/team/:user_id", h.Dashboard.ToggleDraftTeamMember)
		dashboard.POST("/team/:user_id", h.Dashboard.ToggleTeamMember)
		dashboard.POST("/submit", h.Dashboard.Submit)
	}
}
