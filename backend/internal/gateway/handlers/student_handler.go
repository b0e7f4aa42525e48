package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marklist/backend/internal/gateway/metrics"
	"marklist/backend/internal/gateway/util"
	"marklist/backend/internal/report"
	"marklist/backend/internal/shared"
	"marklist/backend/internal/student"
)

// maxBodyBytes caps a student submission
const maxBodyBytes = 64 << 10

// StudentHandler serves the mark list endpoints
type StudentHandler struct {
	Service *student.Service
	Metrics *metrics.Metrics
}

// ListStudents handles GET /students
// Returns every record with its total, average and grade, in store order.
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	marklists, err := h.Service.List(r.Context())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, marklists)
}

// CreateStudent handles POST /students
// Body: {studentName, registerNumber, <one key per subject>}
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	// 1. Read Body
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.WriteJSONError(w, http.StatusRequestEntityTooLarge, shared.KindValidation, "Request body too large")
			return
		}
		util.WriteJSONError(w, http.StatusBadRequest, shared.KindValidation, "Invalid request body")
		return
	}

	// 2. Parse and Validate
	sub, err := student.ParseSubmission(body, h.Service.Subjects())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	// 3. Persist
	saved, err := h.Service.Add(r.Context(), sub)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.ObserveStudentCreated()
	}

	// 4. Respond
	response := map[string]interface{}{
		"message": "Student added successfully!",
		"student": saved.Fields(),
	}
	util.WriteJSON(w, http.StatusCreated, response)
}

// GetStudent handles GET /students/{id}
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.Service.Get(r.Context(), id)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, m)
}

// RequestFeedback handles POST /students/{id}/feedback
// Every call goes to the generative-language API; nothing is cached.
func (h *StudentHandler) RequestFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	text, err := h.Service.RequestFeedback(r.Context(), id)
	h.observeFeedback(err)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]string{"feedback": text})
}

// DownloadReport handles GET /students/{id}/report
// Streams a PDF report card as an attachment.
func (h *StudentHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.Service.Get(r.Context(), id)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	// Render fully before writing headers so a failure can still become JSON
	var buf bytes.Buffer
	if err := report.Render(&buf, m, h.Service.Subjects(), time.Now()); err != nil {
		log.Printf("ERROR: Failed to render report for %s: %v", id, err)
		util.WriteJSONError(w, http.StatusInternalServerError, shared.KindStore, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(m)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("WARN: Failed to write report for %s: %v", id, err)
	}
}

// ListSubjects handles GET /subjects
// Lets the frontend build its form from the configured subject order.
func (h *StudentHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, map[string][]string{"subjects": h.Service.Subjects()})
}

// Healthz handles GET /healthz
func (h *StudentHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Healthy(r.Context()); err != nil {
		log.Printf("WARN: Health check failed: %v", err)
		util.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StudentHandler) observeFeedback(err error) {
	if h.Metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.Metrics.ObserveFeedback(metrics.FeedbackOK)
	case errors.Is(err, shared.ErrNotFound):
		h.Metrics.ObserveFeedback(metrics.FeedbackNotFound)
	default:
		h.Metrics.ObserveFeedback(metrics.FeedbackFailed)
	}
}
