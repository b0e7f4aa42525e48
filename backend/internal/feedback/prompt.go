package feedback

import (
	"fmt"
	"strings"

	"marklist/backend/internal/grade"
	"marklist/backend/internal/shared"
)

// BuildPrompt renders the fixed feedback template for one student.
func BuildPrompt(studentName string, marks []shared.SubjectMark) string {
	values := make([]int, 0, len(marks))
	for _, m := range marks {
		values = append(values, m.Mark)
	}
	summary := grade.Summarize(values)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an encouraging school teacher. Write a short, constructive feedback paragraph for a student named %s.\n", studentName)
	b.WriteString("Their marks (out of 100) are:\n")
	for _, m := range marks {
		fmt.Fprintf(&b, "- %s: %d\n", strings.ToUpper(m.Subject), m.Mark)
	}
	fmt.Fprintf(&b, "Total: %d / %d. Average: %.2f%%. Grade: %s.\n", summary.Total, grade.MaxTotal(len(marks)), summary.Average, summary.Grade)
	b.WriteString("Mention their strongest subject, the subject that needs the most attention, and one practical study tip. Keep it under 120 words.")
	return b.String()
}
