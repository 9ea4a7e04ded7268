package archive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"cloudlead/internal/config"
	"cloudlead/internal/models"
)

func TestNewWithoutTargetsReturnsNil(t *testing.T) {
	a, err := New(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a != nil {
		t.Fatalf("expected nil archive when nothing is configured")
	}
}

func TestStoreLocal(t *testing.T) {
	dir := t.TempDir()
	a, err := New(context.Background(), config.Config{ArchiveDir: dir})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	leads := []models.Lead{{Company: "TechFlow Inc", Email: "sarah0@techflow.com", Score: 80}}
	loc, err := a.Store(context.Background(), models.Project{ID: "rec1", Name: "Alpha"}, leads)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.HasSuffix(loc, "projects/rec1/leads-20240501T120000Z.json") {
		t.Fatalf("unexpected location %s", loc)
	}

	data, err := os.ReadFile(loc)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Project.ID != "rec1" || len(snap.Leads) != 1 || snap.Leads[0].Email != "sarah0@techflow.com" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStoreS3(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	a, err := New(context.Background(), config.Config{
		ArchiveS3Bucket:    "leads",
		ArchiveS3Region:    "us-east-1",
		ArchiveS3Endpoint:  srv.URL,
		ArchiveS3PathStyle: true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	loc, err := a.Store(context.Background(), models.Project{ID: "rec1"}, []models.Lead{{Company: "CloudCraft"}})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if loc != "s3://leads/projects/rec1/leads-20240501T120000Z.json" {
		t.Fatalf("unexpected location %s", loc)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/leads/projects/rec1/leads-20240501T120000Z.json" {
		t.Fatalf("unexpected object path %s", gotPath)
	}
	if gotType != "application/json" {
		t.Fatalf("unexpected content type %s", gotType)
	}
	if !strings.Contains(string(gotBody), "CloudCraft") {
		t.Fatalf("snapshot body missing lead: %s", gotBody)
	}
}

func TestSnapshotKeySanitizes(t *testing.T) {
	key := snapshotKey("../rec/1", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if strings.Contains(key, "..") || strings.Count(key, "/") != 2 {
		t.Fatalf("unsafe key %s", key)
	}
}
