package models

import (
	"strings"
	"time"
)

// ProjectPatch is a partial project. A nil field is absent and leaves the
// target value alone; a non-nil field overrides it, even when it points at a
// zero value.
type ProjectPatch struct {
	Name          *string        `json:"name,omitempty"`
	Client        *string        `json:"client,omitempty"`
	ClientContact *string        `json:"client_contact,omitempty"`
	Status        *ProjectStatus `json:"status,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Progress      *int           `json:"progress,omitempty"`
	StartDate     *time.Time     `json:"start_date,omitempty"`
	Deadline      *time.Time     `json:"deadline,omitempty"`
	LeadID        *string        `json:"lead_id,omitempty"`
	TeamIDs       *[]string      `json:"team_ids,omitempty"`
	Technologies  *[]string      `json:"technologies,omitempty"`
}

// Merge returns p with every field present in next applied on top
func (p ProjectPatch) Merge(next ProjectPatch) ProjectPatch {
	if next.Name != nil {
		p.Name = next.Name
	}
	if next.Client != nil {
		p.Client = next.Client
	}
	if next.ClientContact != nil {
		p.ClientContact = next.ClientContact
	}
	if next.Status != nil {
		p.Status = next.Status
	}
	if next.Description != nil {
		p.Description = next.Description
	}
	if next.Progress != nil {
		p.Progress = next.Progress
	}
	if next.StartDate != nil {
		p.StartDate = next.StartDate
	}
	if next.Deadline != nil {
		p.Deadline = next.Deadline
	}
	if next.LeadID != nil {
		p.LeadID = next.LeadID
	}
	if next.TeamIDs != nil {
		ids := append([]string(nil), (*next.TeamIDs)...)
		p.TeamIDs = &ids
	}
	if next.Technologies != nil {
		tags := append([]string(nil), (*next.Technologies)...)
		p.Technologies = &tags
	}
	return p
}

// ApplyTo returns a copy of base with the present fields of p applied.
// base itself is not modified.
func (p ProjectPatch) ApplyTo(base *Project) *Project {
	out := base.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Client != nil {
		out.Client = *p.Client
	}
	if p.ClientContact != nil {
		out.ClientContact = *p.ClientContact
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Progress != nil {
		out.Progress = *p.Progress
	}
	if p.StartDate != nil {
		out.StartDate = *p.StartDate
	}
	if p.Deadline != nil {
		out.Deadline = *p.Deadline
	}
	if p.LeadID != nil {
		out.LeadID = *p.LeadID
	}
	if p.TeamIDs != nil {
		out.TeamIDs = append([]string(nil), (*p.TeamIDs)...)
	}
	if p.Technologies != nil {
		out.Technologies = append([]string(nil), (*p.Technologies)...)
	}
	return out
}

// PatchFromProject returns a patch with every field of p present
func PatchFromProject(p *Project) ProjectPatch {
	patch := ProjectPatch{}
	return patch.Merge(ProjectPatch{
		Name:          &p.Name,
		Client:        &p.Client,
		ClientContact: &p.ClientContact,
		Status:        &p.Status,
		Description:   &p.Description,
		Progress:      &p.Progress,
		StartDate:     &p.StartDate,
		Deadline:      &p.Deadline,
		LeadID:        &p.LeadID,
		TeamIDs:       &p.TeamIDs,
		Technologies:  &p.Technologies,
	})
}

// ProjectDraft is the create-dialog state: a patch plus transient fields that
// only exist until the project is created.
type ProjectDraft struct {
	ProjectPatch
	ManualID   *string `json:"manual_id,omitempty"`
	RepoGithub *string `json:"repo_github,omitempty"`
	RepoDrive  *string `json:"repo_drive,omitempty"`
}

// Merge applies the present fields of next, transient ones included
func (d ProjectDraft) Merge(next ProjectDraft) ProjectDraft {
	d.ProjectPatch = d.ProjectPatch.Merge(next.ProjectPatch)
	if next.ManualID != nil {
		d.ManualID = next.ManualID
	}
	if next.RepoGithub != nil {
		d.RepoGithub = next.RepoGithub
	}
	if next.RepoDrive != nil {
		d.RepoDrive = next.RepoDrive
	}
	return d
}

// Complete reports whether name, client and identifier are all present
func (d ProjectDraft) Complete() bool {
	return nonBlank(d.Name) && nonBlank(d.Client) && nonBlank(d.ManualID)
}

// ToggleTeamMember flips membership of userID in the draft's team list
func (d ProjectDraft) ToggleTeamMember(userID string) ProjectDraft {
	var current []string
	if d.TeamIDs != nil {
		current = *d.TeamIDs
	}
	ids := ToggleMember(current, userID)
	d.TeamIDs = &ids
	return d
}

// ToggleMember returns ids with userID removed if present, appended otherwise.
// The relative order of the other identifiers is kept.
func ToggleMember(ids []string, userID string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, id := range ids {
		if id == userID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		out = append(out, userID)
	}
	return out
}

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
