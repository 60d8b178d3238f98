package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"libretto/internal/testsupport"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
library_dir = %q
database_path = %q
log_dir = %q
output_dir = %q

[logging]
format = "json"
level = "error"
`,
		filepath.Join(base, "library"),
		filepath.Join(base, "catalog.db"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "out"),
	)
	path := filepath.Join(base, "libretto.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[paths]") || !strings.Contains(out, "library_dir") {
		t.Fatalf("expected TOML output, got:\n%s", out)
	}
}

func TestLibrariesAddAndList(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := t.TempDir()

	out, err := runCommand(t, "--config", cfgPath, "libraries", "add", "fiction", "--root", root)
	if err != nil {
		t.Fatalf("libraries add failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "fiction") {
		t.Fatalf("unexpected add output:\n%s", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "libraries", "list")
	if err != nil {
		t.Fatalf("libraries list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "fiction") || !strings.Contains(out, root) {
		t.Fatalf("expected fiction library in listing:\n%s", out)
	}
}

func TestScanAndListEndToEnd(t *testing.T) {
	cfgPath := writeTestConfig(t)

	// scan auto-creates the default library at paths.library_dir.
	libraryDir := filepath.Join(filepath.Dir(cfgPath), "library")
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteSineWAV(t, libraryDir, "Hyperion.wav", 8000, 8000)

	out, err := runCommand(t, "--config", cfgPath, "scan")
	if err != nil {
		t.Fatalf("scan failed: %v\n%s", err, out)
	}
	// go-pretty's rounded style renders headers upper-cased.
	if !strings.Contains(out, "NEW") {
		t.Fatalf("expected scan summary table:\n%s", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "list")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Hyperion") {
		t.Fatalf("expected scanned title in listing:\n%s", out)
	}
	if !strings.Contains(out, "1 audiobooks") {
		t.Fatalf("expected stats line:\n%s", out)
	}
}

func TestListUnknownLibraryFails(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCommand(t, "--config", cfgPath, "list", "nope"); err == nil {
		t.Fatal("expected error for unknown library")
	}
}

func TestProcessCommandWritesOutput(t *testing.T) {
	cfgPath := writeTestConfig(t)
	dir := t.TempDir()
	input := testsupport.WriteSineWAV(t, dir, "tone.wav", 44100, 4410)
	outDir := filepath.Join(dir, "processed")

	out, err := runCommand(t, "--config", cfgPath, "process", input, "--output", outDir)
	if err != nil {
		t.Fatalf("process failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "tone.wav")); err != nil {
		t.Fatalf("expected processed output file: %v", err)
	}
}

func TestProcessCommandReportsFailures(t *testing.T) {
	cfgPath := writeTestConfig(t)
	missing := filepath.Join(t.TempDir(), "missing.wav")

	out, err := runCommand(t, "--config", cfgPath, "process", missing)
	if err == nil {
		t.Fatalf("expected failure for missing input:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Fatalf("expected FAIL line:\n%s", out)
	}
}
