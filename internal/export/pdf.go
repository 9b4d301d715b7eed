package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// ShiftNotesDocument carries everything the shift notes PDF renders.
type ShiftNotesDocument struct {
	ClientName string
	CarerName  string
	ShiftStart time.Time
	ShiftEnd   time.Time
	Notes      string
}

// IncidentDocument carries everything an incident report PDF renders.
type IncidentDocument struct {
	ClientName   string
	CarerName    string
	ShiftStart   time.Time
	DisplayIndex int
	Text         string
}

// RenderShiftNotes renders a shift notes PDF and returns the raw bytes.
func RenderShiftNotes(doc ShiftNotesDocument) ([]byte, error) {
	pdf := newPage("Shift Notes")

	writeMeta(pdf, [][2]string{
		{"Client", doc.ClientName},
		{"Carer", doc.CarerName},
		{"Shift start", doc.ShiftStart.Format(time.RFC1123)},
		{"Shift end", doc.ShiftEnd.Format(time.RFC1123)},
	})

	writeBody(pdf, doc.Notes)

	return output(pdf)
}

// RenderIncident renders an incident report PDF and returns the raw bytes.
func RenderIncident(doc IncidentDocument) ([]byte, error) {
	pdf := newPage(fmt.Sprintf("Incident Report #%d", doc.DisplayIndex))

	writeMeta(pdf, [][2]string{
		{"Client", doc.ClientName},
		{"Carer", doc.CarerName},
		{"Shift start", doc.ShiftStart.Format(time.RFC1123)},
	})

	writeBody(pdf, doc.Text)

	return output(pdf)
}

func newPage(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)
	return pdf
}

func writeMeta(pdf *fpdf.Fpdf, rows [][2]string) {
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func writeBody(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5.5, text, "", "L", false)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
