package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"marklist/backend/internal/student"
)

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeMarklistTable prints mark lists as an aligned table, one column per subject
func writeMarklistTable(w io.Writer, marklists []student.Marklist, subjects []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"ID", "REG. NO.", "NAME"}
	for _, subject := range subjects {
		header = append(header, strings.ToUpper(subject))
	}
	header = append(header, "TOTAL", "AVG.", "GRADE")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, m := range marklists {
		row := []string{m.ID, m.RegisterNumber, m.StudentName}
		for _, mark := range m.MarkValues(subjects) {
			row = append(row, fmt.Sprintf("%d", mark))
		}
		row = append(row, fmt.Sprintf("%d", m.Total), fmt.Sprintf("%.2f", m.Average), m.Grade)
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}
