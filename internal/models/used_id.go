package models

import "time"

// UsedID is one entry of the append-only identifier ledger. Entries outlive
// the projects they were issued for.
type UsedID struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	DateUsed    time.Time `json:"date_used"`
	CreatedBy   string    `json:"created_by"`
}

func NewUsedID(id, projectName, createdBy string) *UsedID {
	return &UsedID{
		ID:          id,
		ProjectName: projectName,
		DateUsed:    time.Now(),
		CreatedBy:   createdBy,
	}
}
