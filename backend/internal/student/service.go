// ============================================================================
// backend/internal/student/service.go
// Student mark list operations: list, add, lookup and AI feedback
// ============================================================================

package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"marklist/backend/internal/grade"
	"marklist/backend/internal/shared"
)

// Store persists student records. Implementations must enforce register
// number uniqueness and report clashes as shared.ErrDuplicateKey, unknown
// ids as shared.ErrNotFound, and anything else as *shared.StoreError.
type Store interface {
	List(ctx context.Context) ([]shared.Student, error)
	Insert(ctx context.Context, s shared.Student) (shared.Student, error)
	FindByID(ctx context.Context, id string) (shared.Student, error)
	Count(ctx context.Context) (int64, error)
}

// Requester produces free-text feedback for a student's marks
type Requester interface {
	RequestFeedback(ctx context.Context, studentName string, marks []shared.SubjectMark) (string, error)
}

// Marklist is a stored record together with its derived summary
type Marklist struct {
	shared.Student
	grade.Summary
}

// MarshalJSON renders the record flat, with total, average and grade beside the marks.
func (m Marklist) MarshalJSON() ([]byte, error) {
	fields := m.Student.Fields()
	fields["total"] = m.Total
	fields["average"] = m.Average
	fields["grade"] = m.Grade
	return json.Marshal(fields)
}

// Service implements the mark list operations on top of a Store
type Service struct {
	store        Store
	feedback     Requester
	subjects     []string
	queryTimeout time.Duration
}

// NewService creates a new Service instance. feedback may be nil, in which
// case RequestFeedback always fails with an upstream error.
func NewService(store Store, feedback Requester, subjects []string, queryTimeout time.Duration) *Service {
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &Service{
		store:        store,
		feedback:     feedback,
		subjects:     subjects,
		queryTimeout: queryTimeout,
	}
}

// Subjects returns the configured subject order
func (s *Service) Subjects() []string {
	return s.subjects
}

// List returns every record in store order, each with its summary.
func (s *Service) List(ctx context.Context) ([]Marklist, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	students, err := s.store.List(queryCtx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}

	marklists := make([]Marklist, 0, len(students))
	for _, st := range students {
		marklists = append(marklists, s.summarize(st))
	}
	return marklists, nil
}

// Get returns one record with its summary
func (s *Service) Get(ctx context.Context, id string) (Marklist, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	st, err := s.store.FindByID(queryCtx, id)
	if err != nil {
		return Marklist{}, fmt.Errorf("finding student %s: %w", id, err)
	}
	return s.summarize(st), nil
}

// Add persists a validated submission. A taken register number fails with
// shared.ErrDuplicateKey and leaves the existing record untouched.
func (s *Service) Add(ctx context.Context, sub Submission) (shared.Student, error) {
	if missing := s.missingSubjects(sub); len(missing) > 0 {
		verrs := &shared.ValidationError{}
		for _, subject := range missing {
			verrs.Add(subject, "is required")
		}
		return shared.Student{}, verrs
	}

	marks := make(map[string]int, len(s.subjects))
	for _, subject := range s.subjects {
		marks[subject] = sub.Marks[subject]
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	saved, err := s.store.Insert(queryCtx, shared.Student{
		StudentName:    sub.StudentName,
		RegisterNumber: sub.RegisterNumber,
		Marks:          marks,
	})
	if err != nil {
		return shared.Student{}, fmt.Errorf("adding student %s: %w", sub.RegisterNumber, err)
	}

	log.Printf("INFO: Added student %s (id %s)", saved.RegisterNumber, saved.ID)
	return saved, nil
}

// RequestFeedback asks the feedback requester to comment on a stored record.
// Each call is a fresh remote request; results are not cached.
func (s *Service) RequestFeedback(ctx context.Context, id string) (string, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if s.feedback == nil {
		return "", &shared.UpstreamError{Err: errors.New("feedback is not configured")}
	}

	text, err := s.feedback.RequestFeedback(ctx, m.StudentName, m.OrderedMarks(s.subjects))
	if err != nil {
		return "", fmt.Errorf("feedback for student %s: %w", id, err)
	}
	return text, nil
}

// Healthy reports whether the store answers a count query
func (s *Service) Healthy(ctx context.Context) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.store.Count(queryCtx)
	return err
}

func (s *Service) summarize(st shared.Student) Marklist {
	return Marklist{
		Student: st,
		Summary: grade.Summarize(st.MarkValues(s.subjects)),
	}
}

func (s *Service) missingSubjects(sub Submission) []string {
	var missing []string
	for _, subject := range s.subjects {
		if _, ok := sub.Marks[subject]; !ok {
			missing = append(missing, subject)
		}
	}
	return missing
}

// SortNewestFirst orders mark lists by descending creation time.
// Records created at the same instant keep their relative order.
func SortNewestFirst(marklists []Marklist) {
	sort.SliceStable(marklists, func(i, j int) bool {
		return marklists[i].CreatedAt.After(marklists[j].CreatedAt)
	})
}
