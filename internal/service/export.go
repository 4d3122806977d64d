package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"driver_dashboard/internal/model"

	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Fahrer"

var exportHeader = []string{
	"ID", "Vorname", "Nachname", "Email", "Rufnummer", "Status",
	"Fahrzeugtyp", "Kennzeichen", "Sticker", "App", "JoinedDate", "CreatedAt",
}

func exportRow(d model.Driver) []string {
	createdAt := ""
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		strconv.FormatInt(d.ID, 10),
		d.Vorname,
		d.Nachname,
		d.Email,
		d.Rufnummer,
		d.Status,
		d.Fahrzeugtyp,
		d.Kennzeichen,
		strconv.FormatBool(d.Sticker),
		strconv.FormatBool(d.App),
		d.JoinedDate,
		createdAt,
	}
}

func (s *driverService) ExportCSV(ctx context.Context, filter model.DriverFilter) (*bytes.Buffer, error) {
	drivers, err := s.ListDrivers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch drivers for CSV export: %w", err)
	}
	return writeDriversCSV(drivers)
}

func writeDriversCSV(drivers []model.Driver) (*bytes.Buffer, error) {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, d := range drivers {
		if err := writer.Write(exportRow(d)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}
	return buffer, nil
}

func (s *driverService) ExportXLSX(ctx context.Context, filter model.DriverFilter) (*bytes.Buffer, error) {
	drivers, err := s.ListDrivers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch drivers for XLSX export: %w", err)
	}
	return writeDriversXLSX(drivers)
}

func writeDriversXLSX(drivers []model.Driver) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for i, header := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write XLSX header: %w", err)
		}
	}

	for r, d := range drivers {
		values := []any{
			d.ID, d.Vorname, d.Nachname, d.Email, d.Rufnummer, d.Status,
			d.Fahrzeugtyp, d.Kennzeichen, d.Sticker, d.App, d.JoinedDate,
		}
		if d.CreatedAt.IsZero() {
			values = append(values, "")
		} else {
			values = append(values, d.CreatedAt.UTC().Format(time.RFC3339))
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(exportSheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write XLSX row: %w", err)
			}
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render XLSX: %w", err)
	}
	return buffer, nil
}
