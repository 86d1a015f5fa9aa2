package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RepositoryKind distinguishes source-control links from cloud-storage folders
type RepositoryKind string

const (
	RepositoryKindGitHub RepositoryKind = "github"
	RepositoryKindDrive  RepositoryKind = "drive"
)

var ErrInvalidRepositoryKind = errors.New("repository kind must be github or drive")

func (k RepositoryKind) Valid() bool {
	return k == RepositoryKindGitHub || k == RepositoryKindDrive
}

// DefaultAlias is the display alias given to links created without one
func (k RepositoryKind) DefaultAlias() string {
	if k == RepositoryKindDrive {
		return "Official Drive folder"
	}
	return "Official repository"
}

// Repository is a named external link attached to a project
type Repository struct {
	ID          string         `json:"id"`
	Kind        RepositoryKind `json:"kind"`
	Alias       string         `json:"alias"`
	URL         string         `json:"url"`
	Verified    *bool          `json:"verified,omitempty"`
	LastChecked *time.Time     `json:"last_checked,omitempty"`
}

// NewRepository creates a new Repository with a generated UUID
func NewRepository(kind RepositoryKind, alias, url string) *Repository {
	if alias == "" {
		alias = kind.DefaultAlias()
	}
	return &Repository{
		ID:    uuid.New().String(),
		Kind:  kind,
		Alias: alias,
		URL:   url,
	}
}

func (r *Repository) Validate() error {
	if !r.Kind.Valid() {
		return ErrInvalidRepositoryKind
	}
	if r.URL == "" {
		return &ValidationError{Field: "url", Message: "Repository URL is required"}
	}
	return nil
}
