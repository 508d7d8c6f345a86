package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.URLDelay.Std() != 13*time.Second || cfg.PageDelay.Std() != 8*time.Second {
		t.Errorf("scrape pacing = %v/%v", cfg.URLDelay, cfg.PageDelay)
	}
	if cfg.ScrapeMaxRetries != 3 || cfg.MaxPages != 5 {
		t.Errorf("scrape bounds = %d/%d", cfg.ScrapeMaxRetries, cfg.MaxPages)
	}
	if cfg.Model != "gemini-2.0-flash-exp" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxContentLen != 6000 || cfg.AITimeout.Std() != 60*time.Second {
		t.Errorf("AI bounds = %d/%v", cfg.MaxContentLen, cfg.AITimeout)
	}
	if cfg.CheckpointEvery != 100 {
		t.Errorf("CheckpointEvery = %d", cfg.CheckpointEvery)
	}
	if cfg.ParsingThreads != 1 {
		t.Errorf("ParsingThreads = %d, serial must be the default", cfg.ParsingThreads)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model != Default().Model {
		t.Errorf("Model = %q, want default", cfg.Model)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotewire.yaml")
	yaml := "bucket_name: my-bucket\nparsing_threads: 4\nmodel: gemini-1.5-pro\npage_delay: 10s\nai_timeout: 120\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BucketName != "my-bucket" {
		t.Errorf("BucketName = %q", cfg.BucketName)
	}
	if cfg.ParsingThreads != 4 {
		t.Errorf("ParsingThreads = %d", cfg.ParsingThreads)
	}
	if cfg.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.PageDelay.Std() != 10*time.Second {
		t.Errorf("PageDelay = %v, want duration strings accepted", cfg.PageDelay)
	}
	if cfg.AITimeout.Std() != 120*time.Second {
		t.Errorf("AITimeout = %v, want bare seconds accepted", cfg.AITimeout)
	}
	// Untouched knobs keep their defaults.
	if cfg.URLDelay.Std() != 13*time.Second {
		t.Errorf("URLDelay = %v, want default", cfg.URLDelay)
	}
}

func TestLoadBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotewire.yaml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() = nil error, want parse failure")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARSING_THREADS", "8")
	t.Setenv("AI_TIMEOUT", "90")
	t.Setenv("DELAY_BETWEEN_URLS", "20")
	t.Setenv("LOCAL_MODE", "true")
	t.Setenv("GEMINI_MODEL", "gemini-x")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ParsingThreads != 8 {
		t.Errorf("ParsingThreads = %d, want 8", cfg.ParsingThreads)
	}
	if cfg.AITimeout.Std() != 90*time.Second {
		t.Errorf("AITimeout = %v, want 90s", cfg.AITimeout)
	}
	if cfg.URLDelay.Std() != 20*time.Second {
		t.Errorf("URLDelay = %v, want 20s", cfg.URLDelay)
	}
	if !cfg.LocalMode {
		t.Error("LocalMode = false, want true")
	}
	if cfg.Model != "gemini-x" {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotewire.yaml")
	if err := os.WriteFile(path, []byte("parsing_threads: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PARSING_THREADS", "6")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ParsingThreads != 6 {
		t.Errorf("ParsingThreads = %d, env must override the file", cfg.ParsingThreads)
	}
}
