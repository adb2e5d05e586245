package history

import (
	"path/filepath"
	"testing"
	"time"

	t0 "archmap/internal/types"
)

func sampleResult(score int) *t0.AnalysisResult {
	return &t0.AnalysisResult{
		Root:        "/repo",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		FileCount:   10,
		EdgeCount:   14,
		Health: t0.HealthSummary{
			CircularDependencyCount: 1,
			Score:                   score,
			Grade:                   "B",
			Status:                  "healthy",
		},
	}
}

func TestFileStoreAppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := New(path)

	if err := s.Append(sampleResult(85)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(sampleResult(90)); err != nil {
		t.Fatalf("append: %v", err)
	}

	runs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs: got %d want 2", len(runs))
	}
	// Newest first.
	if runs[0].Score != 90 || runs[1].Score != 85 {
		t.Fatalf("order: got %d,%d", runs[0].Score, runs[1].Score)
	}

	// A fresh store reads the persisted file.
	s2 := New(path)
	runs, err = s2.Recent(1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Score != 90 {
		t.Fatalf("reload: got %+v", runs)
	}
}

func TestRecentZeroOrNegative(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "history.json"))
	runs, err := s.Recent(0)
	if err != nil || runs != nil {
		t.Fatalf("got %v, %v", runs, err)
	}
}
