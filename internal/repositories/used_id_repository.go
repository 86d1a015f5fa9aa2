package repositories

import (
	"context"
	"database/sql"

	"github.com/alimgiray/projectdesk/internal/models"
)

// UsedIDRepository is the append-only identifier ledger. It has no update or
// delete operations and the schema rejects both.
type UsedIDRepository struct {
	db *sql.DB
}

func NewUsedIDRepository(db *sql.DB) *UsedIDRepository {
	return &UsedIDRepository{db: db}
}

// Register appends an entry to the ledger
func (r *UsedIDRepository) Register(ctx context.Context, usedID *models.UsedID) error {
	return insertUsedID(ctx, r.db, usedID)
}

// GetAll retrieves the ledger in registration order
func (r *UsedIDRepository) GetAll(ctx context.Context) ([]*models.UsedID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_name, date_used, created_by FROM used_ids ORDER BY seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := []*models.UsedID{}
	for rows.Next() {
		entry := &models.UsedID{}
		if err := rows.Scan(&entry.ID, &entry.ProjectName, &entry.DateUsed, &entry.CreatedBy); err != nil {
			return nil, err
		}
		ledger = append(ledger, entry)
	}
	return ledger, rows.Err()
}

// Exists checks whether id was ever registered
func (r *UsedIDRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM used_ids WHERE id = ?`, id).Scan(&count)
	return count > 0, err
}

func insertUsedID(ctx context.Context, q execer, usedID *models.UsedID) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO used_ids (id, project_name, date_used, created_by) VALUES (?, ?, ?, ?)
	`, usedID.ID, usedID.ProjectName, usedID.DateUsed, usedID.CreatedBy)
	return err
}
