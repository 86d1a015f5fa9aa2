package services

import (
	"fmt"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Projects"

var exportHeader = []interface{}{
	"ID", "Name", "Client", "Client contact", "Status", "Progress",
	"Start date", "Deadline", "Team size", "Repositories", "Log entries",
}

// ExportProjects writes the project register to a workbook with one row per
// project, in the order given
func ExportProjects(projects []*models.Project) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}

	for i, p := range projects {
		row := []interface{}{
			p.ID,
			p.Name,
			p.Client,
			p.ClientContact,
			string(p.Status),
			p.Progress,
			p.StartDate.Format("2006-01-02"),
			p.Deadline.Format("2006-01-02"),
			len(p.TeamIDs),
			len(p.Repositories),
			len(p.Logs),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write project %s: %w", p.ID, err)
		}
	}

	return f, nil
}
