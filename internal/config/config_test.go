package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"libretto/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "audiobooks") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	wantDB := filepath.Join(tempHome, ".local", "share", "libretto", "libretto.db")
	if cfg.Paths.DatabasePath != wantDB {
		t.Fatalf("unexpected database path: got %q want %q", cfg.Paths.DatabasePath, wantDB)
	}
	if cfg.Scan.BatchSize != 100 {
		t.Fatalf("unexpected scan batch size: %d", cfg.Scan.BatchSize)
	}
	if cfg.Scan.Workers != 0 {
		t.Fatalf("expected workers default 0, got %d", cfg.Scan.Workers)
	}
	if cfg.Processing.TargetSampleRate != 44100 {
		t.Fatalf("unexpected target sample rate: %d", cfg.Processing.TargetSampleRate)
	}
	if cfg.Processing.MixAlgorithm != "average" {
		t.Fatalf("unexpected mix algorithm: %q", cfg.Processing.MixAlgorithm)
	}
	if !cfg.Processing.Normalize {
		t.Fatal("expected normalization enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LibraryDir, cfg.Paths.LogDir, cfg.Paths.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "libretto.toml")

	body := strings.Join([]string{
		"[paths]",
		`library_dir = "` + filepath.ToSlash(filepath.Join(tempDir, "books")) + `"`,
		"[scan]",
		"workers = 4",
		"batch_size = 25",
		"[processing]",
		`mix_algorithm = "SUM"`,
		"[logging]",
		`level = "DEBUG"`,
	}, "\n")
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempDir, "books") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Scan.Workers != 4 || cfg.Scan.BatchSize != 25 {
		t.Fatalf("unexpected scan settings: %+v", cfg.Scan)
	}
	if cfg.Processing.MixAlgorithm != "sum" {
		t.Fatalf("expected mix algorithm normalized to sum, got %q", cfg.Processing.MixAlgorithm)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level normalized to debug, got %q", cfg.Logging.Level)
	}
	if cfg.Processing.NormalizeTarget != 0.9 {
		t.Fatalf("expected default normalize target, got %v", cfg.Processing.NormalizeTarget)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bad mix algorithm",
			body: "[processing]\nmix_algorithm = \"median\"\n",
			want: "mix_algorithm",
		},
		{
			name: "bad normalize metric",
			body: "[processing]\nnormalize_metric = \"lufs\"\n",
			want: "normalize_metric",
		},
		{
			name: "negative normalize target",
			body: "[processing]\nnormalize_target = -0.5\n",
			want: "normalize_target",
		},
		{
			name: "silence threshold above one",
			body: "[processing]\nsilence_threshold = 1.5\n",
			want: "silence_threshold",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "libretto.toml")
			if err := os.WriteFile(configPath, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(configPath)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Processing.MixAlgorithm != "average" {
		t.Fatalf("unexpected mix algorithm from sample: %q", cfg.Processing.MixAlgorithm)
	}
}
