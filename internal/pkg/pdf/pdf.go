package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Generator renders meeting summaries as downloadable PDF documents.
type Generator struct{}

// NewGenerator creates a new PDF generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate creates a single summary document. Title and date are optional;
// an empty summary is the caller's validation problem, not ours.
func (g *Generator) Generate(title, date, summary string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	if strings.TrimSpace(title) != "" {
		doc.SetFont("Arial", "B", 18)
		doc.MultiCell(0, 8, title, "", "L", false)
		doc.Ln(3)
	}

	if strings.TrimSpace(date) != "" {
		doc.SetFont("Arial", "", 10)
		doc.CellFormat(0, 5, "Generated: "+formatDate(date), "", 1, "L", false, 0, "")
		doc.Ln(3)
	}

	// Separator line under the header block.
	doc.SetDrawColor(200, 200, 200)
	left, _, right, _ := doc.GetMargins()
	pageWidth, _ := doc.GetPageSize()
	y := doc.GetY()
	doc.Line(left, y, pageWidth-right, y)
	doc.Ln(5)

	doc.SetFont("Arial", "", 12)
	doc.MultiCell(0, 7, summary, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output error: %w", err)
	}
	return buf.Bytes(), nil
}

// formatDate renders RFC3339 timestamps readably and passes anything else
// through unchanged.
func formatDate(date string) string {
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.Format("2 Jan 2006 15:04")
	}
	return date
}
