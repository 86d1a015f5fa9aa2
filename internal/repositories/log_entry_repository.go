package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alimgiray/projectdesk/internal/models"
)

type LogEntryRepository struct {
	db *sql.DB
}

func NewLogEntryRepository(db *sql.DB) *LogEntryRepository {
	return &LogEntryRepository{db: db}
}

// Create appends a log entry to its project
func (r *LogEntryRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_log_entries (id, project_id, author_name, text, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ProjectID, entry.AuthorName, entry.Text, entry.Link, entry.Timestamp)
	return err
}

// GetByProjectID retrieves the log of a project, newest first
func (r *LogEntryRepository) GetByProjectID(ctx context.Context, projectID string) ([]*models.LogEntry, error) {
	return listLogEntries(ctx, r.db, projectID)
}

// CountByProjectID counts the log entries of a project
func (r *LogEntryRepository) CountByProjectID(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_log_entries WHERE project_id = ?`, projectID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

func listLogEntries(ctx context.Context, q execer, projectID string) ([]*models.LogEntry, error) {
	query := `SELECT id, project_id, author_name, text, link, created_at FROM project_log_entries`
	var args []interface{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.LogEntry{}
	for rows.Next() {
		entry := &models.LogEntry{}
		var link sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ProjectID, &entry.AuthorName, &entry.Text, &link, &entry.Timestamp); err != nil {
			return nil, err
		}
		if link.Valid {
			l := link.String
			entry.Link = &l
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
