package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 3, 4, 15, 6, 7, 0, time.UTC)

func TestDeriveOutputName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		fromPrefix string
		toPrefix   string
		want       string
	}{
		{"scrape stage", "input_maret.csv", "input_", "text_output_", "text_output_maret.csv"},
		{"parse stage", "output_maret.csv", "output_", "final_output_", "final_output_maret.csv"},
		{"wrong prefix falls back", "text_output_maret.csv", "output_", "final_output_", "final_output_20250304_150607.csv"},
		{"empty input falls back", "", "input_", "text_output_", "text_output_20250304_150607.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveOutputName(tt.input, tt.fromPrefix, tt.toPrefix, fixedNow)
			if got != tt.want {
				t.Errorf("DeriveOutputName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckpointName(t *testing.T) {
	got := CheckpointName("input_maret.csv", "input_", "checkpoint_", 2, fixedNow)
	want := "checkpoint_maret_002_20250304_150607.csv"
	if got != want {
		t.Errorf("CheckpointName() = %q, want %q", got, want)
	}
}

func TestCheckpointNameFallback(t *testing.T) {
	got := CheckpointName("", "output_", "checkpoint_final_", 1, fixedNow)
	want := "checkpoint_final_20250304_001_20250304_150607.csv"
	if got != want {
		t.Errorf("CheckpointName() = %q, want %q", got, want)
	}
}

func TestDirLatestCSV(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "link_input")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	old := filepath.Join(dir, "input_old.csv")
	if err := os.WriteFile(old, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "input_new.csv"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	name, data, err := NewDir(root).LatestCSV(context.Background(), "link_input")
	if err != nil {
		t.Fatalf("LatestCSV() error: %v", err)
	}
	if name != "input_new.csv" {
		t.Errorf("name = %q, want the newest CSV", name)
	}
	if string(data) != "new" {
		t.Errorf("data = %q", data)
	}
}

func TestDirLatestCSVEmpty(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "link_input"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewDir(root).LatestCSV(context.Background(), "link_input"); err == nil {
		t.Error("LatestCSV() = nil error, want failure for an empty directory")
	}
}

func TestDirPutAndReadBack(t *testing.T) {
	root := t.TempDir()
	d := NewDir(root)

	if err := d.Put(context.Background(), "text_output", "text_output_x.csv", []byte("a,b\n")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	name, data, err := d.LatestCSV(context.Background(), "text_output")
	if err != nil {
		t.Fatalf("LatestCSV() error: %v", err)
	}
	if name != "text_output_x.csv" || string(data) != "a,b\n" {
		t.Errorf("round trip = %q/%q", name, data)
	}
}
