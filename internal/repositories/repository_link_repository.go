package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
)

// RepositoryLinkRepository stores the external links attached to projects
type RepositoryLinkRepository struct {
	db *sql.DB
}

func NewRepositoryLinkRepository(db *sql.DB) *RepositoryLinkRepository {
	return &RepositoryLinkRepository{db: db}
}

// ProjectLink is a repository link together with the project that owns it
type ProjectLink struct {
	ProjectID  string
	Repository models.Repository
}

type linkRow struct {
	projectID string
	models.Repository
}

// GetByProjectID retrieves the links of one project in display order
func (r *RepositoryLinkRepository) GetByProjectID(ctx context.Context, projectID string) ([]models.Repository, error) {
	rows, err := listRepositoryLinks(ctx, r.db, projectID)
	if err != nil {
		return nil, err
	}
	links := make([]models.Repository, 0, len(rows))
	for _, row := range rows {
		links = append(links, row.Repository)
	}
	return links, nil
}

// GetGitHubDueForCheck returns GitHub links never checked or last checked before cutoff
func (r *RepositoryLinkRepository) GetGitHubDueForCheck(ctx context.Context, cutoff time.Time) ([]ProjectLink, error) {
	query := `
		SELECT project_id, id, kind, alias, url, verified, last_checked
		FROM project_repositories
		WHERE kind = ? AND (last_checked IS NULL OR last_checked < ?)
		ORDER BY project_id, position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, string(models.RepositoryKindGitHub), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []ProjectLink
	for rows.Next() {
		row, err := scanLinkRow(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, ProjectLink{ProjectID: row.projectID, Repository: row.Repository})
	}
	return links, rows.Err()
}

// UpdateCheck records the outcome of a link verification
func (r *RepositoryLinkRepository) UpdateCheck(ctx context.Context, id string, verified bool, checkedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE project_repositories SET verified = ?, last_checked = ? WHERE id = ?
	`, verified, checkedAt, id)
	return err
}

func listRepositoryLinks(ctx context.Context, q execer, projectID string) ([]linkRow, error) {
	query := `
		SELECT project_id, id, kind, alias, url, verified, last_checked
		FROM project_repositories
	`
	var args []interface{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY project_id, position ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []linkRow
	for rows.Next() {
		row, err := scanLinkRow(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, row)
	}
	return links, rows.Err()
}

func scanLinkRow(row rowScanner) (linkRow, error) {
	var out linkRow
	var kind string
	var verified sql.NullBool
	var lastChecked sql.NullTime
	err := row.Scan(&out.projectID, &out.ID, &kind, &out.Alias, &out.URL, &verified, &lastChecked)
	if err != nil {
		return out, err
	}
	out.Kind = models.RepositoryKind(kind)
	if verified.Valid {
		v := verified.Bool
		out.Verified = &v
	}
	if lastChecked.Valid {
		t := lastChecked.Time
		out.LastChecked = &t
	}
	return out, nil
}

// syncRepositoryLinks makes the stored links of a project match links. Rows
// that stay keep their verified and last_checked columns, which only
// UpdateCheck writes; new rows take the values carried by the link.
func syncRepositoryLinks(ctx context.Context, q execer, projectID string, links []models.Repository) error {
	deleteQuery := `DELETE FROM project_repositories WHERE project_id = ?`
	args := []interface{}{projectID}
	if len(links) > 0 {
		placeholders := make([]string, 0, len(links))
		for _, link := range links {
			placeholders = append(placeholders, "?")
			args = append(args, link.ID)
		}
		deleteQuery += ` AND id NOT IN (` + strings.Join(placeholders, ", ") + `)`
	}
	if _, err := q.ExecContext(ctx, deleteQuery, args...); err != nil {
		return fmt.Errorf("remove repository links: %w", err)
	}

	for position, link := range links {
		var verified interface{}
		if link.Verified != nil {
			verified = *link.Verified
		}
		var lastChecked interface{}
		if link.LastChecked != nil {
			lastChecked = *link.LastChecked
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO project_repositories (id, project_id, kind, alias, url, position, verified, last_checked)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				kind = excluded.kind,
				alias = excluded.alias,
				url = excluded.url,
				position = excluded.position
			WHERE project_repositories.project_id = excluded.project_id
		`, link.ID, projectID, string(link.Kind), link.Alias, link.URL, position, verified, lastChecked)
		if err != nil {
			return fmt.Errorf("upsert repository link %s: %w", link.ID, err)
		}
	}
	return nil
}
