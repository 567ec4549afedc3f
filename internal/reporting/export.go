package reporting

import (
	"bytes"
	"fmt"

	"bloodbank-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary   = "Summary"
	sheetInventory = "Inventory"
	sheetByType    = "By Type"
)

// ExportStatistics renders a statistics view as an XLSX workbook.
func ExportStatistics(view StatisticsView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetInventory, sheetByType} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	summary := [][]any{
		{"Metric", "Value"},
		{"Generated at", view.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Donations", view.TotalDonations},
		{"Distributions", view.TotalDistributions},
		{"Unique donors", view.UniqueDonors},
		{"Unique hospitals", view.UniqueHospitals},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return nil, err
	}

	inv := [][]any{{"Blood Type", "Quantity", "Last Updated"}}
	for _, it := range view.Inventory {
		inv = append(inv, []any{string(it.BloodType), it.Quantity, it.LastUpdated})
	}
	if err := writeRows(f, sheetInventory, inv); err != nil {
		return nil, err
	}

	byType := [][]any{{"Blood Type", "Donated Units", "Distributed Units"}}
	for _, bt := range models.AllBloodTypes {
		byType = append(byType, []any{string(bt), view.DonationsByType[bt], view.DistributionsByType[bt]})
	}
	if err := writeRows(f, sheetByType, byType); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
