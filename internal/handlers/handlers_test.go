package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
	"github.com/alimgiray/projectdesk/internal/services"
	"github.com/alimgiray/projectdesk/pkg/config"
	"github.com/alimgiray/projectdesk/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	cookie *http.Cookie
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, config.Load())

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	usedIDRepo := repositories.NewUsedIDRepository(db)
	logEntryRepo := repositories.NewLogEntryRepository(db)
	linkRepo := repositories.NewRepositoryLinkRepository(db)

	ctx := context.Background()
	require.NoError(t, userRepo.Create(ctx, &models.User{ID: "u1", Name: "Ana"}))
	require.NoError(t, userRepo.Create(ctx, &models.User{ID: "u2", Name: "Bruno"}))

	issuer := services.NewIDIssuer(usedIDRepo, projectRepo, "PROYECTO")
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo, usedIDRepo, logEntryRepo, issuer, 30)
	logService := services.NewLogEntryService(logEntryRepo, projectRepo)
	linkService := services.NewRepositoryLinkService(projectService, linkRepo, nil)
	dashboardService := services.NewDashboardService(
		repositories.NewMemorySessionRepository(time.Hour), projectService, userService, services.NewSignals())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, &Handlers{
		Project:   NewProjectHandler(projectService, userService, logService, linkService),
		Dashboard: NewDashboardHandler(dashboardService),
		Health:    NewHealthHandler(db),
		NotFound:  NewNotFoundHandler(),
	})

	ts := &testServer{router: router}
	w := ts.do(t, http.MethodPost, "/dashboard/session", gin.H{"operator_id": "u1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "dashboard_session" {
			ts.cookie = c
		}
	}
	require.NotNil(t, ts.cookie)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthAndNotFound(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	w = ts.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIRequiresSession(t *testing.T) {
	ts := setupTestServer(t)
	ts.cookie = nil

	w := ts.do(t, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/dashboard/session", gin.H{"operator_id": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectAPICreateFlow(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/projects/next-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PROYECTO_001")

	w = ts.do(t, http.MethodPost, "/api/projects", gin.H{"name": "", "client": "Acme", "manual_id": "PROYECTO_004"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodPost, "/api/projects", gin.H{
		"name":        "Alpha",
		"client":      "Acme",
		"manual_id":   "PROYECTO_001",
		"repo_github": "https://github.com/acme/alpha",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Project
	decode(t, w, &created)
	assert.Equal(t, "u1", created.LeadID)
	assert.Len(t, created.Repositories, 1)

	w = ts.do(t, http.MethodPost, "/api/projects", gin.H{"name": "Beta", "client": "Acme", "manual_id": "PROYECTO_001"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "confirmation_required")

	w = ts.do(t, http.MethodPost, "/api/projects?confirm=true", gin.H{"name": "Beta", "client": "Acme", "manual_id": "PROYECTO_001"})
	assert.Equal(t, http.StatusConflict, w.Code, "a live identifier cannot be reused")

	w = ts.do(t, http.MethodDelete, "/api/projects/PROYECTO_001", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodPost, "/api/projects?confirm=true", gin.H{"name": "Beta", "client": "Acme", "manual_id": "PROYECTO_001"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/api/used-ids", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger []models.UsedID
	decode(t, w, &ledger)
	assert.Len(t, ledger, 2)
}

func TestProjectAPIOperations(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/projects", gin.H{"name": "Alpha", "client": "Acme", "manual_id": "PROYECTO_001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, "/api/projects", gin.H{"name": "Beta", "client": "Globex", "manual_id": "PROYECTO_002", "status": "Finished"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var projects []models.Project
	w = ts.do(t, http.MethodGet, "/api/projects?status=InProgress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, "Alpha", projects[0].Name)

	w = ts.do(t, http.MethodGet, "/api/projects", nil)
	decode(t, w, &projects)
	assert.Len(t, projects, 2, "the API lists every status by default")

	w = ts.do(t, http.MethodPatch, "/api/projects/PROYECTO_001", gin.H{"progress": 50})
	require.Equal(t, http.StatusOK, w.Code)
	var patched models.Project
	decode(t, w, &patched)
	assert.Equal(t, 50, patched.Progress)
	assert.Equal(t, "Alpha", patched.Name)

	w = ts.do(t, http.MethodPatch, "/api/projects/PROYECTO_001", gin.H{"progress": 500})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodPost, "/api/projects/PROYECTO_001/team/u2/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"team_ids":["u2"]`)

	w = ts.do(t, http.MethodPost, "/api/projects/PROYECTO_001/logs", gin.H{"text": "Kickoff"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"author_name":"Ana"`)

	w = ts.do(t, http.MethodGet, "/api/projects/PROYECTO_001/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kickoff")

	w = ts.do(t, http.MethodPost, "/api/projects/PROYECTO_001/repositories", gin.H{"kind": "drive", "url": "https://drive.example.com/a"})
	require.Equal(t, http.StatusCreated, w.Code)
	var withLink models.Project
	decode(t, w, &withLink)
	require.Len(t, withLink.Repositories, 1)
	assert.Equal(t, "Official Drive folder", withLink.Repositories[0].Alias)

	w = ts.do(t, http.MethodPost, "/api/projects/PROYECTO_001/repositories", gin.H{"kind": "svn", "url": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects/PROYECTO_001/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"log_entries":1`)

	w = ts.do(t, http.MethodDelete, "/api/projects/PROYECTO_001/repositories/"+withLink.Repositories[0].ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects/PROYECTO_404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects/export?client=acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())

	w = ts.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bruno")
}

func TestDashboardAPIFlow(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodPost, "/dashboard/modals/create", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state models.DashboardState
	decode(t, w, &state)
	assert.True(t, state.Modals.Create)
	require.NotNil(t, state.CreateDraft.ManualID)
	assert.Equal(t, "PROYECTO_001", *state.CreateDraft.ManualID)

	w = ts.do(t, http.MethodPatch, "/dashboard/draft", gin.H{"name": "Alpha", "client": "Acme"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/dashboard/draft/team/u2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/dashboard/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"team_ids":["u2"]`)

	w = ts.do(t, http.MethodPost, "/dashboard/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/dashboard/modals/team/PROYECTO_001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/dashboard/team/u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"team_ids":[]`)

	w = ts.do(t, http.MethodPost, "/dashboard/modals/linker/PROYECTO_001/github", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/dashboard/menu/PROYECTO_001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/dashboard/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.False(t, state.Modals.AnyOpen())
	assert.Empty(t, state.ActiveMenuID)

	w = ts.do(t, http.MethodPost, "/dashboard/modals/bogus/PROYECTO_001", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/dashboard/filters", gin.H{"name": "alp", "status": "all"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/dashboard/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var projects []models.Project
	decode(t, w, &projects)
	assert.Len(t, projects, 1)

	w = ts.do(t, http.MethodDelete, "/dashboard/session", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/dashboard/state", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
