package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neilberkman/buildtracker/internal/core/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "clawd", "memory", "build-history.json"))
}

func build(id string) models.Build {
	return models.Build{ID: id, Project: "proj", Status: models.StatusSuccess}
}

func TestEnsureExists_CreatesEmptyDocument(t *testing.T) {
	store := newTestStore(t)

	if err := store.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("history file not created: %v", err)
	}
	if !strings.Contains(string(data), `"builds": []`) {
		t.Errorf("unexpected initial document: %s", data)
	}
}

func TestEnsureExists_Idempotent(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Append(build("build-1")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	before, _ := os.ReadFile(store.Path())

	if err := store.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if err := store.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	after, _ := os.ReadFile(store.Path())
	if string(before) != string(after) {
		t.Errorf("EnsureExists modified an existing document:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestEnsureExists_StorageError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	store := New(filepath.Join(blocker, "memory", "build-history.json"))
	err := store.EnsureExists()

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "not json"},
		{"truncated", `{"builds": [`},
		{"missing builds", `{"other": 1}`},
		{"builds not array", `{"builds": {"id": "x"}}`},
		{"top level array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			if err := os.MkdirAll(filepath.Dir(store.Path()), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := store.Load()
			var corrupt *CorruptDataError
			if !errors.As(err, &corrupt) {
				t.Fatalf("expected CorruptDataError, got %v", err)
			}

			// The file must not be reset
			data, _ := os.ReadFile(store.Path())
			if string(data) != tt.content {
				t.Errorf("corrupt file was modified: %s", data)
			}
		})
	}
}

func TestLoad_NullBuilds(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte(`{"builds": null}`), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Builds == nil || len(doc.Builds) != 0 {
		t.Errorf("expected empty non-nil builds, got %#v", doc.Builds)
	}
}

func TestAppend_PrependsMostRecentFirst(t *testing.T) {
	store := newTestStore(t)

	for i := 1; i <= 3; i++ {
		b := build(fmt.Sprintf("build-%d", i))
		got, err := store.Append(b)
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if got.ID != b.ID {
			t.Errorf("Append returned %s, want %s", got.ID, b.ID)
		}

		doc, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if doc.Builds[0].ID != b.ID {
			t.Errorf("first build = %s, want %s", doc.Builds[0].ID, b.ID)
		}
	}

	doc, _ := store.Load()
	want := []string{"build-3", "build-2", "build-1"}
	for i, id := range want {
		if doc.Builds[i].ID != id {
			t.Errorf("builds[%d] = %s, want %s", i, doc.Builds[i].ID, id)
		}
	}
}

func TestAppend_TruncatesToMaxBuilds(t *testing.T) {
	store := newTestStore(t)
	const n = MaxBuilds + 25

	for i := 0; i < n; i++ {
		if _, err := store.Append(build(fmt.Sprintf("build-%d", i))); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Builds) != MaxBuilds {
		t.Fatalf("len(builds) = %d, want %d", len(doc.Builds), MaxBuilds)
	}
	for i, b := range doc.Builds {
		want := fmt.Sprintf("build-%d", n-1-i)
		if b.ID != want {
			t.Fatalf("builds[%d] = %s, want %s", i, b.ID, want)
		}
	}
}

func TestAppend_RoundTripsRecord(t *testing.T) {
	store := newTestStore(t)
	dur := 12.5
	load := 0.42
	b := models.Build{
		ID:              "build-1700000000000",
		Timestamp:       "2024-01-01T10:00:00.000Z",
		Project:         "api",
		Description:     "nightly",
		Status:          "flaky",
		DurationMinutes: &dur,
		ResourceUsage: models.ResourceUsage{
			Start: models.ResourceSnapshot{LoadAverage: &load, Timestamp: "2024-01-01T10:00:00.000Z"},
		},
		CommitHash: models.StringPtr("abc123"),
		RepoURL:    models.StringPtr("https://github.com/acme/api"),
		Notes:      "ok",
	}

	if _, err := store.Append(b); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := doc.Builds[0]
	if got.Status != "flaky" || *got.DurationMinutes != dur || *got.CommitHash != "abc123" {
		t.Errorf("record did not round-trip: %+v", got)
	}
	if got.RepoURLFromGit != nil || got.ResourceUsage.End != nil || got.ResourceUsage.Start.MemoryUsagePercent != nil {
		t.Errorf("null fields did not round-trip: %+v", got)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Append(build("build-1")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := store.Append(build(fmt.Sprintf("build-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Builds) != 0 {
		t.Errorf("expected empty history after Clear, got %d", len(doc.Builds))
	}
}

func TestAppend_DuplicateIDGetsSuffix(t *testing.T) {
	store := newTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		got, err := store.Append(build("build-1700000000000"))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		ids = append(ids, got.ID)
	}

	want := []string{"build-1700000000000", "build-1700000000000-1", "build-1700000000000-2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Builds[0].ID != want[2] {
		t.Errorf("stored first id = %s, want %s", doc.Builds[0].ID, want[2])
	}
}
