// Package export produces XLSX workbooks from the entity store, for
// recruiters who live in spreadsheets.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/entity"
	"github.com/binarybreez/jobswipe/internal/store"
)

// Service is a tiny façade over the store that produces XLSX bytes.
type Service struct {
	store  store.Gateway
	logger *slog.Logger
}

func NewService(gw store.Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: gw, logger: logger}
}

// ExportCandidatesXLSX returns a workbook listing every candidate, one row
// per entity, ordered by natural key.
func (s *Service) ExportCandidatesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	ents, err := s.store.List(ctx, constants.EntityCandidate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Candidates"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Name",
		"Email",
		"Phone",
		"Location",
		"Years of Experience",
		"Skills",
		"Latest Role",
		"Updated",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range ents {
		rec := e.Record

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.DisplayName)
		write(2, rec.Email)
		write(3, rec.Phone)
		write(4, rec.Location)
		if rec.YearsOfExp > 0 {
			write(5, rec.YearsOfExp)
		}
		write(6, truncate(strings.Join(rec.Skills, ", "), 140))
		write(7, latestRole(rec.Experience))
		write(8, e.UpdatedAt.UTC().Format("2006-01-02"))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 24) // name
	_ = f.SetColWidth(sheet, "B", "B", 32) // email
	_ = f.SetColWidth(sheet, "C", "C", 16) // phone
	_ = f.SetColWidth(sheet, "D", "D", 22) // location
	_ = f.SetColWidth(sheet, "F", "F", 48) // skills
	_ = f.SetColWidth(sheet, "G", "G", 36) // latest role

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"sheet", sheet,
		"rows", len(ents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportJobsXLSX returns a workbook listing every job posting.
func (s *Service) ExportJobsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	ents, err := s.store.List(ctx, constants.EntityJobPosting)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Jobs"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Title", "Employer", "Location", "Posted", "Compensation", "Requirements"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range ents {
		rec := e.Record

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.Title)
		write(2, rec.EmployerKey)
		write(3, rec.Location)
		write(4, rec.PostedDate)
		write(5, formatMoney(rec.Compensation))
		write(6, truncate(strings.Join(rec.Requirements, "; "), 200))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 22)
	_ = f.SetColWidth(sheet, "F", "F", 64)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"sheet", sheet,
		"rows", len(ents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// latestRole picks the entry with the greatest start date.
func latestRole(entries []entity.ExperienceEntry) string {
	best := -1
	for i, e := range entries {
		if best < 0 || entries[best].Start.Before(e.Start) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	e := entries[best]
	if e.Employer == "" {
		return e.Title
	}
	return e.Title + " at " + e.Employer
}

func formatMoney(mr *entity.MoneyRange) string {
	if mr == nil {
		return ""
	}
	if mr.Min == mr.Max {
		return fmt.Sprintf("%.0f %s", mr.Min, mr.Currency)
	}
	return fmt.Sprintf("%.0f-%.0f %s", mr.Min, mr.Max, mr.Currency)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	// Cut on a rune boundary so multi-byte characters are never split.
	cut := n - 1
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
