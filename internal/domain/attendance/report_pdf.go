package attendance

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"timekeeper/internal/domain/worktime"
)

var summaryColumns = []struct {
	title string
	width float64
}{
	{"Employee", 48},
	{"Period", 26},
	{"Weekday", 24},
	{"Overtime", 24},
	{"Special", 24},
	{"Verdict", 24},
}

// WriteSummaryPDF renders compliance summaries as an A4 table.
func WriteSummaryPDF(w io.Writer, title string, summaries []Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	for _, col := range summaryColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	violations := 0
	for _, s := range summaries {
		period := s.Key
		if s.Period != "" {
			period = s.Period
		}
		name := s.EmployeeName
		if name == "" {
			name = s.EmployeeID
		}
		if s.Compliance == ComplianceViolation {
			violations++
			pdf.SetTextColor(180, 0, 0)
		}
		cells := []string{
			name,
			period,
			worktime.FormatDuration(s.WeekdayWorkMinutes),
			worktime.FormatDuration(s.OvertimeMinutes),
			worktime.FormatDuration(s.SpecialWorkMinutes),
			s.Compliance,
		}
		for i, col := range summaryColumns {
			align := "R"
			if i < 2 || i == len(summaryColumns)-1 {
				align = "L"
			}
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.Ln(4)
	pdf.Cell(0, 8, fmt.Sprintf("Summaries: %d, violations: %d", len(summaries), violations))
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
