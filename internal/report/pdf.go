// Package report renders room summaries into downloadable documents.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// RoomSummaryPDF renders a one-or-more page letter-format PDF with a header
// naming the room and generation time, followed by the wrapped summary text.
func RoomSummaryPDF(room, summary string, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(fmt.Sprintf("Summary - %s", room), true)
	pdf.SetMargins(54, 54, 54)
	pdf.SetAutoPageBreak(true, 54)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 20, "Room Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 16, fmt.Sprintf("Room: %s", room), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 16, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(12)

	for _, paragraph := range strings.Split(summary, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			pdf.Ln(14)
			continue
		}
		pdf.MultiCell(0, 14, paragraph, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds the attachment name for a room summary download.
func Filename(room string, generatedAt time.Time) string {
	return fmt.Sprintf("room-summary-%s-%s.pdf", room, generatedAt.UTC().Format("20060102-1504"))
}
