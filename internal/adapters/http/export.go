package httpadapter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const overviewSheet = "Übersicht"

var overviewHeader = []any{
	"Kunde",
	"Rolle",
	"Status",
	"Fortschritt (%)",
	"Pflichtdokumente",
	"Mindestanzahl",
	"Tiefenprüfung bestanden",
	"Tiefenprüfung fehlgeschlagen",
	"Letzte Aktivität",
	"Ausgeblendet",
}

// writeOverviewXLSX renders one row per group with German labels.
func writeOverviewXLSX(w io.Writer, groups []domain.GroupSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(overviewSheet, "A1", &overviewHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(overviewSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, g := range groups {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		row := []any{
			g.CustomerName,
			g.RoleLabel,
			g.Lifecycle.Label(),
			g.ProgressPercent,
			fmt.Sprintf("%d/%d", g.RequiredSatisfied, g.RequiredTotal),
			fmt.Sprintf("%d/%d", g.MinimumSatisfied, g.MinimumTotal),
			fmt.Sprintf("%d/%d", g.DeepPassed, g.DeepTotal),
			g.DeepFailed,
			activityLabel(g),
			yesNo(g.Hidden),
		}
		if err := f.SetSheetRow(overviewSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(overviewSheet, "A", "A", 28); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(overviewSheet, "B", "J", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func activityLabel(g domain.GroupSummary) string {
	if g.LastActivityAt == nil {
		return ""
	}
	return g.LastActivityAt.Format("02.01.2006 15:04")
}

func yesNo(v bool) string {
	if v {
		return "ja"
	}
	return "nein"
}
