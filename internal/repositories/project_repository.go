package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

const projectColumns = `id, name, client, client_contact, status, description, progress,
	start_date, deadline, lead_id, technologies, year, is_ongoing, report, created_at, updated_at`

// CreateWithUsedID inserts the project, its team, its repository links and the
// ledger entry in one transaction. Nothing is written if any step fails.
func (r *ProjectRepository) CreateWithUsedID(ctx context.Context, project *models.Project, usedID *models.UsedID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	exists, err := projectExists(ctx, tx, project.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrProjectIDInUse
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	technologies, err := json.Marshal(nonNil(project.Technologies))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		project.ID, project.Name, project.Client, project.ClientContact, string(project.Status),
		project.Description, project.Progress, project.StartDate, project.Deadline, project.LeadID,
		string(technologies), project.Year, project.IsOngoing, project.Report,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	if err := replaceTeam(ctx, tx, project.ID, project.TeamIDs); err != nil {
		return err
	}
	if err := syncRepositoryLinks(ctx, tx, project.ID, project.Repositories); err != nil {
		return err
	}
	if err := insertUsedID(ctx, tx, usedID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a project with its team, log entries and repository links
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, []*models.Project{project}); err != nil {
		return nil, err
	}
	return project, nil
}

// GetAll retrieves every live project in creation order
func (r *ProjectRepository) GetAll(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ExistsByID checks whether a live project uses id
func (r *ProjectRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	return projectExists(ctx, r.db, id)
}

// Update replaces the stored project, its team and its repository links.
// Log entries are append-only and are not touched here.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	technologies, err := json.Marshal(nonNil(project.Technologies))
	if err != nil {
		return err
	}
	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET name = ?, client = ?, client_contact = ?, status = ?, description = ?, progress = ?,
			start_date = ?, deadline = ?, lead_id = ?, technologies = ?, year = ?,
			is_ongoing = ?, report = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		project.Name, project.Client, project.ClientContact, string(project.Status),
		project.Description, project.Progress, project.StartDate, project.Deadline,
		project.LeadID, string(technologies), project.Year, project.IsOngoing, project.Report,
		project.UpdatedAt, project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrProjectNotFound
	}

	if err := replaceTeam(ctx, tx, project.ID, project.TeamIDs); err != nil {
		return err
	}
	if err := syncRepositoryLinks(ctx, tx, project.ID, project.Repositories); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a project. Team rows, log entries and links cascade; the
// ledger keeps its entry.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) loadChildren(ctx context.Context, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	byID := make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		p.TeamIDs = []string{}
		p.Logs = []models.LogEntry{}
		p.Repositories = []models.Repository{}
		byID[p.ID] = p
	}

	teamRows, err := r.db.QueryContext(ctx, `
		SELECT project_id, user_id FROM project_team_members ORDER BY project_id, position ASC
	`)
	if err != nil {
		return err
	}
	defer teamRows.Close()
	for teamRows.Next() {
		var projectID, userID string
		if err := teamRows.Scan(&projectID, &userID); err != nil {
			return err
		}
		if p, ok := byID[projectID]; ok {
			p.TeamIDs = append(p.TeamIDs, userID)
		}
	}
	if err := teamRows.Err(); err != nil {
		return err
	}

	logs, err := listLogEntries(ctx, r.db, "")
	if err != nil {
		return err
	}
	for _, entry := range logs {
		if p, ok := byID[entry.ProjectID]; ok {
			p.Logs = append(p.Logs, *entry)
		}
	}

	links, err := listRepositoryLinks(ctx, r.db, "")
	if err != nil {
		return err
	}
	for _, link := range links {
		if p, ok := byID[link.projectID]; ok {
			p.Repositories = append(p.Repositories, link.Repository)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var status, technologies string
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Client,
		&project.ClientContact,
		&status,
		&project.Description,
		&project.Progress,
		&project.StartDate,
		&project.Deadline,
		&project.LeadID,
		&technologies,
		&project.Year,
		&project.IsOngoing,
		&project.Report,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.Status = models.ProjectStatus(status)
	if err := json.Unmarshal([]byte(technologies), &project.Technologies); err != nil {
		return nil, fmt.Errorf("decode technologies of %s: %w", project.ID, err)
	}
	if project.Technologies == nil {
		project.Technologies = []string{}
	}
	return project, nil
}

func projectExists(ctx context.Context, q execer, id string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, id).Scan(&count)
	return count > 0, err
}

func replaceTeam(ctx context.Context, q execer, projectID string, userIDs []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM project_team_members WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	seen := make(map[string]bool, len(userIDs))
	position := 0
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		_, err := q.ExecContext(ctx, `
			INSERT INTO project_team_members (project_id, user_id, position) VALUES (?, ?, ?)
		`, projectID, userID, position)
		if err != nil {
			return fmt.Errorf("insert team member %s: %w", userID, err)
		}
		position++
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
