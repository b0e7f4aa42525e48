// ============================================================================
// backend/internal/feedback/client.go
// Client for the generative-language generateContent endpoint
// ============================================================================

package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"marklist/backend/internal/shared"
)

// maxResponseBytes caps how much of an upstream body is read
const maxResponseBytes = 1 << 20

// Client asks a generative model for narrative feedback on a mark list.
// It never retries and never caches: every call is one remote request.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

// NewClient creates a Client from the feedback configuration
func NewClient(cfg shared.FeedbackConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
	}
}

// ============================================================================
// Wire types
// ============================================================================

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// RequestFeedback sends the prompt for one student and returns the first
// candidate's text unmodified.
func (c *Client) RequestFeedback(ctx context.Context, studentName string, marks []shared.SubjectMark) (string, error) {
	// 1. Build Request
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: BuildPrompt(studentName, marks)}}}},
	})
	if err != nil {
		return "", &shared.UpstreamError{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL(), bytes.NewReader(payload))
	if err != nil {
		return "", &shared.UpstreamError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	// 2. Call Upstream
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &shared.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &shared.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("ERROR: Feedback upstream returned %d: %s", resp.StatusCode, truncate(string(body), 300))
		return "", &shared.UpstreamError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	// 3. Extract First Candidate
	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &shared.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", &shared.UpstreamError{StatusCode: resp.StatusCode, Err: errors.New("response has no candidate text")}
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) generateURL() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
