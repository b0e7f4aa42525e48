package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marklist/backend/internal/shared"
)

var sampleMarks = []shared.SubjectMark{
	{Subject: "tamil", Mark: 92},
	{Subject: "english", Mark: 85},
	{Subject: "maths", Mark: 64},
	{Subject: "science", Mark: 77},
	{Subject: "social", Mark: 70},
}

func newTestClient(url string) *Client {
	return NewClient(shared.FeedbackConfig{
		APIKey:   "test-key",
		Endpoint: url + "/v1beta/",
		Model:    "gemini-test",
		Timeout:  2 * time.Second,
	})
}

func TestClient_RequestFeedback(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req generateRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) &&
			assert.Len(t, req.Contents, 1) &&
			assert.Len(t, req.Contents[0].Parts, 1) {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  Asha shines in Tamil.\n"},{"text":"ignored"}]}},{"content":{"parts":[{"text":"second"}]}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).RequestFeedback(context.Background(), "Asha", sampleMarks)

	require.NoError(t, err)
	assert.Equal(t, "  Asha shines in Tamil.\n", text, "text must be returned verbatim")
	assert.Contains(t, gotPrompt, "Asha")
	assert.Contains(t, gotPrompt, "- TAMIL: 92")
	assert.Contains(t, gotPrompt, "Total: 388 / 500")
}

func TestClient_RequestFeedbackFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, 500},
		{"bad key", http.StatusForbidden, `{"error":{"message":"API key not valid"}}`, 403},
		{"malformed body", http.StatusOK, `not json`, 200},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, 200},
		{"no parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).RequestFeedback(context.Background(), "Asha", sampleMarks)

			var ue *shared.UpstreamError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.wantStatus, ue.StatusCode)
		})
	}
}

func TestClient_RequestFeedbackUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).RequestFeedback(context.Background(), "Asha", sampleMarks)

	var ue *shared.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.StatusCode)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Ravi", []shared.SubjectMark{
		{Subject: "subject1", Mark: 40},
		{Subject: "subject2", Mark: 40},
	})

	assert.Contains(t, prompt, "student named Ravi")
	assert.Contains(t, prompt, "- SUBJECT1: 40")
	assert.Contains(t, prompt, "Total: 80 / 200. Average: 40.00%. Grade: C.")
}
