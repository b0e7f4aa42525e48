package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marklist/backend/internal/grade"
	"marklist/backend/internal/shared"
	"marklist/backend/internal/student"
)

var subjects = []string{"tamil", "english", "maths", "science", "social"}

func sampleMarklist() student.Marklist {
	st := shared.Student{
		ID:             "1",
		StudentName:    "Asha",
		RegisterNumber: "21CS001",
		Marks:          map[string]int{"tamil": 95, "english": 88, "maths": 76, "science": 64, "social": 51},
	}
	return student.Marklist{Student: st, Summary: grade.Summarize(st.MarkValues(subjects))}
}

func TestRender_ProducesPDF(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, sampleMarklist(), subjects, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should start with a PDF header")
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("%%EOF")))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "21CS001_Asha_report.pdf", Filename(sampleMarklist()))

	m := sampleMarklist()
	m.RegisterNumber = "21/CS\"001"
	assert.Equal(t, "21_CS_001_Asha_report.pdf", Filename(m))
}
