package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"marklist/backend/internal/gateway"
	"marklist/backend/internal/gateway/metrics"
	"marklist/backend/internal/shared"
)

const indexHTML = "<!DOCTYPE html><title>Student Mark List</title>"

// TestEnv holds all the running components for the test
type TestEnv struct {
	Router   http.Handler
	Services *gateway.Services
	Config   *shared.Config
	Metrics  *metrics.Metrics

	// FeedbackStatus is the status the fake generative API answers with
	FeedbackStatus atomic.Int32
	FeedbackCalls  atomic.Int32
}

type envOption func(t *testing.T)

// withTokenSecret turns on write protection
func withTokenSecret(secret string) envOption {
	return func(t *testing.T) { t.Setenv("API_TOKEN_SECRET", secret) }
}

// setupGatewayTestEnv spins up the whole stack in-process: a temp-file sqlite
// store, a fake generative-language API and a static frontend directory.
func setupGatewayTestEnv(t *testing.T, opts ...envOption) *TestEnv {
	t.Helper()
	env := &TestEnv{}
	env.FeedbackStatus.Store(http.StatusOK)

	// --- 1. Fake Generative-Language API ---
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.FeedbackCalls.Add(1)
		status := int(env.FeedbackStatus.Load())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"API key not valid: sk-leaked"}}`))
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Keep up the good work."}]}}]}`))
	}))
	t.Cleanup(fake.Close)

	// --- 2. Static Frontend ---
	staticDir := t.TempDir()
	writeFile(t, filepath.Join(staticDir, "index.html"), indexHTML)
	writeFile(t, filepath.Join(staticDir, "app.js"), "console.log('marklist');")

	// --- 3. Configuration ---
	t.Setenv("STORE_DRIVER", shared.StoreDriverSQLite)
	t.Setenv("SQL_DSN", filepath.Join(t.TempDir(), "marklist.db"))
	t.Setenv("SUBJECTS", "tamil,english,maths,science,social")
	t.Setenv("STATIC_DIR", staticDir)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FEEDBACK_ENDPOINT", fake.URL+"/v1beta")
	t.Setenv("FEEDBACK_MODEL", "gemini-test")
	t.Setenv("API_TOKEN_SECRET", "")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "10s")
	for _, opt := range opts {
		opt(t)
	}
	env.Config = shared.LoadConfig()

	// --- 4. Services and Router ---
	services, err := gateway.NewServices(context.Background(), env.Config)
	if err != nil {
		t.Fatalf("Failed to build services: %v", err)
	}
	t.Cleanup(services.Close)

	env.Services = services
	env.Metrics = metrics.New()
	env.Router = gateway.SetupRoutes(services, env.Config, env.Metrics)
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
