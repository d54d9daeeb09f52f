// Package export writes batch results as an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docnamer/internal/pipeline"
)

const sheet = "Dateien"

var headers = []string{
	"Original",
	"Vorschlag",
	"Quelle",
	"Ergebnis",
	"Kategorie",
	"Ordner",
	"Firma",
	"Dokumenttyp",
	"Konfidenz",
	"Fehler",
}

// ReportXLSX returns an XLSX workbook (as bytes) with one row per result.
func ReportXLSX(results []pipeline.Suggestion, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, s := range results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		company, docType := s.Heuristic.Company, s.Heuristic.DocumentType
		confidence := ""
		if s.Metadata != nil {
			company, docType = s.Metadata.Company, s.Metadata.DocumentType
			confidence = strconv.FormatFloat(s.Metadata.Confidence, 'f', 2, 64)
		}
		errText := s.Reason
		if s.Err != nil {
			errText = s.Err.Error()
		}

		write(1, s.OriginalName)
		write(2, s.Filename)
		write(3, string(s.Source))
		write(4, string(s.Outcome))
		write(5, s.Category)
		write(6, s.Folder)
		write(7, company)
		write(8, docType)
		write(9, confidence)
		write(10, truncate(errText, 140))
	}

	_ = f.SetColWidth(sheet, "A", "B", 48) // names
	_ = f.SetColWidth(sheet, "C", "D", 12)
	_ = f.SetColWidth(sheet, "E", "H", 20)
	_ = f.SetColWidth(sheet, "I", "I", 10)
	_ = f.SetColWidth(sheet, "J", "J", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
