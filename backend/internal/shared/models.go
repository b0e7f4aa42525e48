// ============================================================================
// backend/internal/shared/models.go
// Student record models shared by the store, service and HTTP layers
// ============================================================================

package shared

import (
	"time"
)

// ============================================================================
// Student Models
// ============================================================================

// Student is a persisted mark list entry. Marks is keyed by subject name;
// the configured subject list gives the order.
type Student struct {
	ID             string
	StudentName    string
	RegisterNumber string
	Marks          map[string]int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubjectMark is one subject/mark pair in configured order
type SubjectMark struct {
	Subject string `json:"subject"`
	Mark    int    `json:"mark"`
}

// OrderedMarks returns the student's marks following the subject order.
// Subjects without a stored mark are skipped.
func (s *Student) OrderedMarks(subjects []string) []SubjectMark {
	marks := make([]SubjectMark, 0, len(subjects))
	for _, subject := range subjects {
		if mark, ok := s.Marks[subject]; ok {
			marks = append(marks, SubjectMark{Subject: subject, Mark: mark})
		}
	}
	return marks
}

// MarkValues returns only the mark numbers, in subject order
func (s *Student) MarkValues(subjects []string) []int {
	values := make([]int, 0, len(subjects))
	for _, m := range s.OrderedMarks(subjects) {
		values = append(values, m.Mark)
	}
	return values
}

// Fields flattens the record into its wire shape: one top-level key per
// subject next to the identity and timestamp fields.
func (s *Student) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"_id":            s.ID,
		"studentName":    s.StudentName,
		"registerNumber": s.RegisterNumber,
		"createdAt":      s.CreatedAt,
		"updatedAt":      s.UpdatedAt,
	}
	for subject, mark := range s.Marks {
		fields[subject] = mark
	}
	return fields
}

// ============================================================================
// Validation Constants
// ============================================================================

const (
	MinMark = 0
	MaxMark = 100

	FieldStudentName    = "studentName"
	FieldRegisterNumber = "registerNumber"
)
