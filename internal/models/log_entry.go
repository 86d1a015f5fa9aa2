package models

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one activity log record of a project
type LogEntry struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Timestamp  time.Time `json:"timestamp"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Link       *string   `json:"link,omitempty"`
}

// NewLogEntry creates a new LogEntry with a generated UUID
func NewLogEntry(projectID, authorName, text string, link *string) *LogEntry {
	return &LogEntry{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Timestamp:  time.Now(),
		AuthorName: authorName,
		Text:       text,
		Link:       link,
	}
}

func (l *LogEntry) Validate() error {
	if l.ProjectID == "" {
		return &ValidationError{Field: "project_id", Message: "Project ID is required"}
	}
	if l.Text == "" {
		return &ValidationError{Field: "text", Message: "Log text is required"}
	}
	return nil
}
