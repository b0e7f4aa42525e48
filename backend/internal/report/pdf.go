// Package report renders a student's mark list as a PDF report card.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"marklist/backend/internal/grade"
	"marklist/backend/internal/student"
)

// header fill used for the marks table
var headerFill = [3]int{72, 93, 166}

// Render writes a one-page A4 report card for m.
func Render(w io.Writer, m student.Marklist, subjects []string, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Report card %s", m.RegisterNumber), true)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(10, 12)
	pdf.CellFormat(190, 10, "Student Report Card", "", 1, "C", false, 0, "")

	// Student details
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 40, tr("Student Name: "+m.StudentName))
	pdf.Text(20, 50, tr("Register Number: "+m.RegisterNumber))
	pdf.Text(140, 40, "Date Generated: "+generatedAt.Format("02/01/2006"))

	// Marks table
	pdf.SetXY(20, 60)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 9, "Subject", "1", 0, "L", true, 0, "")
	pdf.CellFormat(100, 9, "Marks Obtained (out of 100)", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	for _, sm := range m.OrderedMarks(subjects) {
		pdf.SetX(20)
		pdf.CellFormat(70, 8, tr(strings.ToUpper(sm.Subject)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(100, 8, fmt.Sprintf("%d", sm.Mark), "1", 1, "L", false, 0, "")
	}

	// Summary
	finalY := pdf.GetY() + 15
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(20, finalY, "Result Summary")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, finalY+10, fmt.Sprintf("Total Marks: %d / %d", m.Total, grade.MaxTotal(len(subjects))))
	pdf.Text(20, finalY+20, fmt.Sprintf("Average: %.2f%%", m.Average))
	pdf.Text(20, finalY+30, "Grade: "+m.Grade)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return pdf.Output(w)
}

// Filename is the download name of a student's report card
func Filename(m student.Marklist) string {
	name := fmt.Sprintf("%s_%s_report.pdf", m.RegisterNumber, m.StudentName)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\n', '\r', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
