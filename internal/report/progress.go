package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"learning-service/internal/domain"
)

const progressSheet = "Progress"

var progressHeader = []interface{}{"User ID", "Last name", "Knowledge tokens", "Completed modules", "Total modules", "Progress %"}

// Users lists every learner.
type Users interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// Progress summarizes one learner's completions.
type Progress interface {
	GetProgress(ctx context.Context, userID int64) (domain.ProgressSummary, error)
}

// Row is one line of the progress sheet.
type Row struct {
	User    domain.User
	Summary domain.ProgressSummary
}

// CollectProgress gathers a row per user, ordered as ListUsers returns them.
func CollectProgress(ctx context.Context, users Users, progress Progress) ([]Row, error) {
	list, err := users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	rows := make([]Row, 0, len(list))
	for _, u := range list {
		summary, err := progress.GetProgress(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("progress for user %d: %w", u.ID, err)
		}
		rows = append(rows, Row{User: u, Summary: summary})
	}
	return rows, nil
}

// WriteProgress renders rows as an xlsx workbook with a single Progress sheet.
func WriteProgress(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), progressSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(progressSheet, "A1", &progressHeader); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(progressSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.User.ID,
			r.User.LastName,
			r.User.KnowledgeTokens,
			r.Summary.CompletedCount,
			r.Summary.TotalModules,
			r.Summary.Progress,
		}
		if err := f.SetSheetRow(progressSheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(progressSheet, "B", "B", 24); err != nil {
		return err
	}
	if err := f.AutoFilter(progressSheet, fmt.Sprintf("A1:F%d", len(rows)+1), nil); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
