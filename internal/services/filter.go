package services

import (
	"strings"

	"github.com/alimgiray/projectdesk/internal/models"
)

// FilterProjects returns the projects matching filter in their original order.
// Name matches the project name or ID, client matches the client; both are
// case-insensitive substrings. An empty or "all" status matches every status.
func FilterProjects(projects []*models.Project, filter models.ProjectFilter) []*models.Project {
	name := strings.ToLower(filter.Name)
	client := strings.ToLower(filter.Client)
	matchAllStatuses := filter.Status == "" || strings.EqualFold(filter.Status, models.StatusFilterAll)

	filtered := make([]*models.Project, 0, len(projects))
	for _, p := range projects {
		matchName := strings.Contains(strings.ToLower(p.Name), name) ||
			strings.Contains(strings.ToLower(p.ID), name)
		if !matchName {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Client), client) {
			continue
		}
		if !matchAllStatuses && string(p.Status) != filter.Status {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}
