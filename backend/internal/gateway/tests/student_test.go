package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marklist/backend/internal/auth"
	"marklist/backend/internal/shared"
)

func do(t *testing.T, router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

const ashaBody = `{"studentName":"Asha","registerNumber":"21CS001","tamil":95,"english":88,"maths":76,"science":64,"social":51}`

func createStudent(t *testing.T, env *TestEnv, body string) string {
	t.Helper()
	rr := do(t, env.Router, http.MethodPost, "/api/students", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Student map[string]interface{} `json:"student"`
	}
	decode(t, rr, &resp)
	return resp.Student["_id"].(string)
}

func TestGateway_Students(t *testing.T) {
	env := setupGatewayTestEnv(t)
	var ashaID string

	// --- Test 1: Empty List (GET /api/students) ---
	t.Run("Empty List", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/students", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	// --- Test 2: Create Student (POST /api/students) ---
	t.Run("Create Student", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students", ashaBody)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var resp struct {
			Message string                 `json:"message"`
			Student map[string]interface{} `json:"student"`
		}
		decode(t, rr, &resp)
		assert.Equal(t, "Student added successfully!", resp.Message)
		assert.Equal(t, "Asha", resp.Student["studentName"])
		assert.Equal(t, float64(95), resp.Student["tamil"])
		assert.NotEmpty(t, resp.Student["createdAt"])
		ashaID = resp.Student["_id"].(string)
	})

	// --- Test 3: Duplicate Register Number ---
	t.Run("Duplicate Register Number", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students",
			`{"studentName":"Other","registerNumber":"21CS001","tamil":1,"english":1,"maths":1,"science":1,"social":1}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		var body map[string]interface{}
		decode(t, rr, &body)
		assert.Equal(t, shared.KindDuplicate, body["error"])
	})

	// --- Test 4: Validation Failure persists nothing ---
	t.Run("Missing Name", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students",
			`{"registerNumber":"21CS002","tamil":50,"english":50,"maths":50,"science":50,"social":50}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var body struct {
			Error  string              `json:"error"`
			Fields []shared.FieldError `json:"fields"`
		}
		decode(t, rr, &body)
		assert.Equal(t, shared.KindValidation, body.Error)
		require.NotEmpty(t, body.Fields)
		assert.Equal(t, "studentName", body.Fields[0].Field)
	})

	t.Run("Mark Out Of Range", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students",
			`{"studentName":"Bala","registerNumber":"21CS003","tamil":101,"english":50,"maths":50,"science":50,"social":50}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students", `{"studentName":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	// --- Test 5: List With Summaries ---
	t.Run("List With Summary", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/students", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var list []map[string]interface{}
		decode(t, rr, &list)
		require.Len(t, list, 1, "only the first insert may be stored")
		assert.Equal(t, float64(374), list[0]["total"])
		assert.InDelta(t, 74.8, list[0]["average"], 1e-9)
		assert.Equal(t, "A", list[0]["grade"])
	})

	// --- Test 6: Get One ---
	t.Run("Get Student", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/students/"+ashaID, "")
		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]interface{}
		decode(t, rr, &body)
		assert.Equal(t, "21CS001", body["registerNumber"])
		assert.Equal(t, "A", body["grade"])
	})

	t.Run("Get Unknown Student", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/students/999999", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	// --- Test 7: PDF Report ---
	t.Run("Download Report", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/students/"+ashaID+"/report", "")
		require.Equal(t, http.StatusOK, rr.Code)

		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="21CS001_Asha_report.pdf"`)
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("Report Unknown Student", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/students/424242/report", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})
}

func TestGateway_Feedback(t *testing.T) {
	env := setupGatewayTestEnv(t)
	id := createStudent(t, env, ashaBody)

	t.Run("Feedback Success", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students/"+id+"/feedback", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var body map[string]string
		decode(t, rr, &body)
		assert.Equal(t, "Keep up the good work.", body["feedback"])
	})

	t.Run("Feedback Is Not Cached", func(t *testing.T) {
		before := env.FeedbackCalls.Load()
		do(t, env.Router, http.MethodPost, "/api/students/"+id+"/feedback", "")
		do(t, env.Router, http.MethodPost, "/api/students/"+id+"/feedback", "")

		assert.Equal(t, before+2, env.FeedbackCalls.Load())
	})

	t.Run("Feedback Unknown Student", func(t *testing.T) {
		before := env.FeedbackCalls.Load()
		rr := do(t, env.Router, http.MethodPost, "/api/students/31337/feedback", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, before, env.FeedbackCalls.Load(), "no upstream call for a missing record")
	})

	t.Run("Feedback Upstream Failure", func(t *testing.T) {
		env.FeedbackStatus.Store(http.StatusForbidden)
		defer env.FeedbackStatus.Store(http.StatusOK)

		rr := do(t, env.Router, http.MethodPost, "/api/students/"+id+"/feedback", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		var body map[string]interface{}
		decode(t, rr, &body)
		assert.Equal(t, shared.KindUpstream, body["error"])
		assert.NotContains(t, rr.Body.String(), "sk-leaked")
	})

	t.Run("Feedback Metrics", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/metrics", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `marklist_feedback_requests_total{result="ok"}`)
		assert.Contains(t, rr.Body.String(), `marklist_feedback_requests_total{result="not_found"} 1`)
		assert.Contains(t, rr.Body.String(), `marklist_feedback_requests_total{result="error"} 1`)
	})
}

func TestGateway_WriteProtection(t *testing.T) {
	const secret = "gateway-test-secret"
	env := setupGatewayTestEnv(t, withTokenSecret(secret))

	t.Run("Missing Token", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students", ashaBody)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		var body map[string]interface{}
		decode(t, rr, &body)
		assert.Equal(t, shared.KindUnauthorized, body["error"])
	})

	t.Run("Bad Token", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodPost, "/api/students", ashaBody, "Authorization", "Bearer nope")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, _, err := auth.IssueToken(secret, "teacher", time.Hour)
		require.NoError(t, err)

		rr := do(t, env.Router, http.MethodPost, "/api/students", ashaBody, "Authorization", "Bearer "+token)

		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	})

	t.Run("Reads Stay Open", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/students", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestGateway_Operational(t *testing.T) {
	env := setupGatewayTestEnv(t)

	t.Run("Health", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("Subjects", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/subjects", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"subjects":["tamil","english","maths","science","social"]}`, rr.Body.String())
	})

	t.Run("Unknown API Route", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/api/teachers", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})

	t.Run("Static File", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodGet, "/app.js", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "marklist")
	})

	t.Run("SPA Fallback", func(t *testing.T) {
		for _, path := range []string{"/", "/students/new", "/reports/2025"} {
			rr := do(t, env.Router, http.MethodGet, path, "")

			assert.Equal(t, http.StatusOK, rr.Code, path)
			assert.Contains(t, rr.Body.String(), "Student Mark List", path)
		}
	})

	t.Run("CORS Preflight", func(t *testing.T) {
		rr := do(t, env.Router, http.MethodOptions, "/api/students", "",
			"Origin", "http://localhost:5173",
			"Access-Control-Request-Method", "POST")

		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
