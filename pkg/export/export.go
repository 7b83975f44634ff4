// Package export renders progress report tables into downloadable formats.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Section is a titled block of label/value rows within a report.
type Section struct {
	Title string
	Rows  [][2]string
}

// Report is the renderable form of a progress dashboard.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Sections    []Section
}

// RenderCSV encodes the report as section,label,value records.
func RenderCSV(report Report) ([]byte, error) {
	if len(report.Sections) == 0 {
		return nil, fmt.Errorf("report has no sections")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"section", "metric", "value"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, section := range report.Sections {
		for _, row := range section.Rows {
			if err := writer.Write([]string{section.Title, row[0], row[1]}); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF lays the report out as one table per section.
func RenderPDF(report Report) ([]byte, error) {
	if len(report.Sections) == 0 {
		return nil, fmt.Errorf("report has no sections")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(report.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for _, section := range report.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, section.Title, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Rows {
			pdf.CellFormat(95, 7, row[0], "1", 0, "", false, 0, "")
			pdf.CellFormat(95, 7, row[1], "1", 0, "", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	if !report.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, "Generated "+report.GeneratedAt.UTC().Format(time.RFC3339), "", 1, "R", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
