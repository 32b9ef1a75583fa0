package runlog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/roster/config"
	"github.com/kilianp07/roster/core/runlog"
)

func sampleRecords(base time.Time) []runlog.Record {
	obj := 10.0
	return []runlog.Record{
		{RunID: "r1", Timestamp: base, Status: "optimal", Objective: &obj, Assignments: 2},
		{RunID: "r2", Timestamp: base.Add(time.Minute), Status: "infeasible"},
		{RunID: "r3", Timestamp: base.Add(2 * time.Minute), Status: "optimal", Error: ""},
	}
}

// exerciseStore runs the same append/query checks against any Store.
func exerciseStore(t *testing.T, store runlog.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	for _, rec := range sampleRecords(base) {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.Query(ctx, runlog.Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].RunID != "r1" || all[2].RunID != "r3" {
		t.Fatalf("unexpected records %+v", all)
	}
	if all[0].Objective == nil || *all[0].Objective != 10 {
		t.Fatalf("objective not round-tripped: %+v", all[0])
	}

	opt, err := store.Query(ctx, runlog.Query{Status: "optimal"})
	if err != nil {
		t.Fatalf("query status: %v", err)
	}
	if len(opt) != 2 {
		t.Fatalf("expected 2 optimal runs, got %d", len(opt))
	}

	window, err := store.Query(ctx, runlog.Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	if err != nil {
		t.Fatalf("query window: %v", err)
	}
	if len(window) != 1 || window[0].RunID != "r2" {
		t.Fatalf("unexpected window %+v", window)
	}

	last, err := store.Query(ctx, runlog.Query{Limit: 1})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(last) != 1 || last[0].RunID != "r3" {
		t.Fatalf("unexpected tail %+v", last)
	}

	byID, err := store.Query(ctx, runlog.Query{RunID: "r2"})
	if err != nil {
		t.Fatalf("query run id: %v", err)
	}
	if len(byID) != 1 || byID[0].Status != "infeasible" {
		t.Fatalf("unexpected run %+v", byID)
	}
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "runs.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_ReadsBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.jsonl")
	old := runlog.Record{RunID: "old", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: "feasible"}
	b, _ := json.Marshal(old)
	backup := filepath.Join(dir, "runs-2024-01-01T00-00-00.000.jsonl")
	if err := os.WriteFile(backup, append(b, '\n'), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	store, err := NewRotatingJSONLStore(path, 1, 2, 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Append(context.Background(), runlog.Record{RunID: "new", Timestamp: time.Now(), Status: "optimal"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	out, err := store.Query(context.Background(), runlog.Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 || out[0].RunID != "old" || out[1].RunID != "new" {
		t.Fatalf("unexpected records %+v", out)
	}
}

func TestRotatingJSONLStore_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.jsonl")
	stray := runlog.Record{RunID: "stray", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: "optimal"}
	b, _ := json.Marshal(stray)
	for _, name := range []string{"runs-archive.jsonl", "runsheet.jsonl", "runs-2024-01-01.jsonl"} {
		if err := os.WriteFile(filepath.Join(dir, name), append(b, '\n'), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	store, err := NewRotatingJSONLStore(path, 1, 2, 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Append(context.Background(), runlog.Record{RunID: "live", Timestamp: time.Now(), Status: "optimal"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	out, err := store.Query(context.Background(), runlog.Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].RunID != "live" {
		t.Fatalf("unexpected records %+v", out)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"jsonl", "sqlite", "none"} {
		store, err := Open(config.RunLogConfig{Backend: backend, Path: filepath.Join(dir, "runs."+backend)})
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("%s close: %v", backend, err)
		}
	}
	if _, err := Open(config.RunLogConfig{Backend: "s3"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
