package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"cloudlead/internal/config"
)

func TestNewWorkerMinimalConfig(t *testing.T) {
	w, err := NewWorker(context.Background(), config.Config{AirtableAPIURL: "http://127.0.0.1:1"}, zap.NewNop())
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	defer w.Close()
	if w.Poller == nil {
		t.Fatalf("expected poller")
	}
}

func TestNewWorkerWithLocalArchive(t *testing.T) {
	cfg := config.Config{ArchiveDir: t.TempDir(), OpenAIAPIKey: "sk-test"}
	w, err := NewWorker(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	defer w.Close()
}

func TestNewAPIServerWithoutRedis(t *testing.T) {
	srv := NewAPIServer(config.Config{}, zap.NewNop())
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.Server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}
}
