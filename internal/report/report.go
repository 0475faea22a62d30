// Package report renders learner progress as a PDF document.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/go-pdf/fpdf"
)

// Data is the content of a progress report.
type Data struct {
	Username string
	Date     time.Time
	// Stats holds one row per tier, in tier order.
	Stats []domain.TierStat
}

// Totals sums attempts and correct answers across all tiers.
func (d Data) Totals() (attempts, correct int) {
	for _, s := range d.Stats {
		attempts += s.Attempts
		correct += s.Correct
	}
	return attempts, correct
}

// GeneratePDF renders d as a single-page A4 report.
func GeneratePDF(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Markdown Practice Progress", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, "Markdown Practice Progress", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(0, 8,
		fmt.Sprintf("%s | %s", d.Username, d.Date.Format("2006-01-02")),
		"", 1, "C", false, 0, "")

	attempts, correct := d.Totals()
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8,
		fmt.Sprintf("Attempts: %d | Correct: %d | Accuracy: %.0f%%", attempts, correct, pct(correct, attempts)),
		"", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 7, "Tier", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Attempts", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 7, "Correct", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 7, "Accuracy", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, s := range d.Stats {
		pdf.CellFormat(80, 7, fmt.Sprintf("Tier %d: %s", s.TierIndex+1, s.TierName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", s.Attempts), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", s.Correct), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.0f%%", s.Accuracy()*100), "1", 1, "C", false, 0, "")
	}

	if len(d.Stats) == 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 7, "No attempts recorded yet.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pct(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) * 100 / float64(b)
}
