package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	finddups "github.com/mattkeenan/finddups/pkg"
)

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	status := run(nil, "finddups", args, &stdout, &stderr)
	return status, stdout.String(), stderr.String()
}

func createFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", rel, err)
		}
	}
}

func TestRun_FindsDuplicates(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"f1": "hello", "f2": "hello", "f3": "world"})
	f1, f2, f3 := filepath.Join(dir, "f1"), filepath.Join(dir, "f2"), filepath.Join(dir, "f3")

	status, stdout, stderr := runCommand(t, "--color=never", f1, f2, f3)
	if status != finddups.ExitOK {
		t.Errorf("Expected exit 0, got %d (stderr %q)", status, stderr)
	}

	expected := "-- 5d41402abc4b2a76b9719d911017c592 --\n" + f1 + "\n" + f2 + "\n"
	if stdout != expected {
		t.Errorf("Unexpected output %q, expected %q", stdout, expected)
	}
	if stderr != "" {
		t.Errorf("Expected empty stderr, got %q", stderr)
	}
}

func TestRun_Verbose(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"f1": "hello", "f3": "world"})
	f1, f3 := filepath.Join(dir, "f1"), filepath.Join(dir, "f3")

	status, stdout, _ := runCommand(t, "-v", f3, f1)
	if status != finddups.ExitOK {
		t.Fatalf("Expected exit 0, got %d", status)
	}

	// The file set is sorted, so f1 is hashed first
	expected := "5d41402abc4b2a76b9719d911017c592: " + f1 + "\n" +
		"7d793037a0760186574b0282f2f435e7: " + f3 + "\n"
	if stdout != expected {
		t.Errorf("Unexpected output %q, expected %q", stdout, expected)
	}
}

func TestRun_MissingFile(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"a": "same", "b": "same"})
	missing := filepath.Join(dir, "missing.txt")

	status, stdout, stderr := runCommand(t, "--color=never", missing, filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	if status != finddups.ExitReadFailure {
		t.Errorf("Expected exit %d, got %d", finddups.ExitReadFailure, status)
	}
	if stderr != "finddups: File not found: "+missing+"\n" {
		t.Errorf("Unexpected stderr %q", stderr)
	}
	if !strings.Contains(stdout, filepath.Join(dir, "a")+"\n"+filepath.Join(dir, "b")+"\n") {
		t.Errorf("Expected the remaining duplicates to be reported, got %q", stdout)
	}
}

func TestRun_Directories(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"d/a.txt": "x", "d/sub/b.txt": "x"})
	d := filepath.Join(dir, "d")

	status, stdout, stderr := runCommand(t, "-r", "--format=fdupes", d)
	if status != finddups.ExitOK {
		t.Errorf("Expected exit 0 with -r, got %d (stderr %q)", status, stderr)
	}
	expected := filepath.Join(d, "a.txt") + "\n" + filepath.Join(d, "sub", "b.txt") + "\n"
	if stdout != expected {
		t.Errorf("Unexpected output %q, expected %q", stdout, expected)
	}

	status, stdout, stderr = runCommand(t, "--format=fdupes", d)
	if status != finddups.ExitReadFailure {
		t.Errorf("Expected exit %d without -r, got %d", finddups.ExitReadFailure, status)
	}
	if stdout != "" {
		t.Errorf("Expected no duplicates without -r, got %q", stdout)
	}
	if stderr != "finddups: Is a directory: "+filepath.Join(d, "sub")+"\n" {
		t.Errorf("Unexpected stderr %q", stderr)
	}
}

func TestRun_QuotedPaths(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"my file": "dup", "other": "dup"})

	status, stdout, _ := runCommand(t, "--format=fdupes", "--", filepath.Join(dir, "my file"), filepath.Join(dir, "other"))
	if status != finddups.ExitOK {
		t.Fatalf("Expected exit 0, got %d", status)
	}
	if !strings.HasPrefix(stdout, "'"+filepath.Join(dir, "my file")+"'\n") {
		t.Errorf("Expected a shell-quoted path, got %q", stdout)
	}
}

func TestRun_JSON(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"f1": "hello", "f2": "hello"})

	status, stdout, stderr := runCommand(t, "-v", "--format=json", "--algorithm=sha256", dir)
	if status != finddups.ExitOK {
		t.Fatalf("Expected exit 0, got %d (stderr %q)", status, stderr)
	}

	var doc struct {
		Algorithm string `json:"algorithm"`
		Groups    []struct {
			Hash  string   `json:"hash"`
			Files []string `json:"files"`
		} `json:"groups"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, stdout)
	}
	if doc.Algorithm != "sha256" || len(doc.Groups) != 1 {
		t.Fatalf("Unexpected document %+v", doc)
	}
	if doc.Groups[0].Hash != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("Unexpected hash %s", doc.Groups[0].Hash)
	}

	// Verbose lines move to stderr so stdout stays one document
	if strings.Count(stderr, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824: ") != 2 {
		t.Errorf("Expected two verbose lines on stderr, got %q", stderr)
	}
}

func TestRun_Exclude(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"a.txt": "dup", "b.bak": "dup", "c.txt": "dup"})

	patterns := filepath.Join(t.TempDir(), "patterns")
	if err := os.WriteFile(patterns, []byte("# skip c\nc\\.txt$\n"), 0644); err != nil {
		t.Fatal(err)
	}

	status, stdout, _ := runCommand(t, "--format=fdupes", `--exclude=\.bak$`, "--exclude-from="+patterns, dir)
	if status != finddups.ExitOK {
		t.Fatalf("Expected exit 0, got %d", status)
	}
	// Only a.txt remains, so there is nothing to report
	if stdout != "" {
		t.Errorf("Expected no duplicates, got %q", stdout)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"f1": "hello", "f2": "hello"})

	configPath := filepath.Join(t.TempDir(), "finddups.ini")
	config := "[filehash]\ndefault = sha256\n\n[output]\nformat = fdupes\n"
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	status, stdout, _ := runCommand(t, "-v", "--config="+configPath, dir)
	if status != finddups.ExitOK {
		t.Fatalf("Expected exit 0, got %d", status)
	}
	if !strings.HasPrefix(stdout, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824: ") {
		t.Errorf("Expected sha256 from the config file, got %q", stdout)
	}

	// Command-line flags override the file
	status, stdout, _ = runCommand(t, "-v", "--config="+configPath, "--algorithm=md5", dir)
	if status != finddups.ExitOK {
		t.Fatalf("Expected exit 0, got %d", status)
	}
	if !strings.HasPrefix(stdout, "5d41402abc4b2a76b9719d911017c592: ") {
		t.Errorf("Expected md5 override, got %q", stdout)
	}
}

func TestRun_ConfigVerboseLevel(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"f1": "hello", "f2": "hello"})

	configPath := filepath.Join(t.TempDir(), "finddups.ini")
	if err := os.WriteFile(configPath, []byte("[verbose]\nlevel = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		finddups.SetVerboseLevel(0)
		finddups.SetLogOutput(nil)
	})

	status, _, stderr := runCommand(t, "--config="+configPath, dir)
	if status != finddups.ExitOK {
		t.Fatalf("Expected exit 0, got %d: %s", status, stderr)
	}
	if !strings.Contains(stderr, "[VERBOSE-1] loaded configuration from "+configPath) {
		t.Errorf("Expected the configuration path in verbose output, got %q", stderr)
	}
	if !strings.Contains(stderr, "with md5") {
		t.Errorf("Expected the run summary in verbose output, got %q", stderr)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"no paths", nil, "at least one file or directory is required"},
		{"unknown option", []string{"--nope", dir}, "unknown option"},
		{"bad algorithm", []string{"--algorithm=crc32", dir}, "unsupported hash algorithm"},
		{"bad format", []string{"--format=xml", dir}, "unsupported output format"},
		{"bad color", []string{"--color=pink", dir}, "unsupported color mode"},
		{"too many workers", []string{"--workers=65", dir}, "should not exceed"},
		{"bad exclude", []string{"--exclude=(", dir}, "invalid regex pattern"},
		{"missing exclude file", []string{"--exclude-from=" + filepath.Join(dir, "none"), dir}, "failed to open exclude file"},
		{"missing config", []string{"--config=" + filepath.Join(dir, "none.ini"), dir}, "failed to load config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, stdout, stderr := runCommand(t, tt.args...)
			if status != finddups.ExitUsage {
				t.Errorf("Expected exit %d, got %d", finddups.ExitUsage, status)
			}
			if stdout != "" {
				t.Errorf("Expected empty stdout, got %q", stdout)
			}
			if !strings.HasPrefix(stderr, "finddups: ") || !strings.Contains(stderr, tt.errMsg) {
				t.Errorf("Expected stderr containing %q, got %q", tt.errMsg, stderr)
			}
		})
	}
}

func TestRun_HelpAndVersion(t *testing.T) {
	status, stdout, _ := runCommand(t, "--help")
	if status != finddups.ExitOK {
		t.Errorf("Expected exit 0 for --help, got %d", status)
	}
	for _, want := range []string{"Usage: finddups", "--recursive", "blake3", "EXIT STATUS"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected help to mention %q", want)
		}
	}

	status, stdout, _ = runCommand(t, "--version")
	if status != finddups.ExitOK {
		t.Errorf("Expected exit 0 for --version, got %d", status)
	}
	if !strings.HasPrefix(stdout, "finddups ") {
		t.Errorf("Unexpected version output %q", stdout)
	}
}

func TestRun_Aborted(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, map[string]string{"f1": "hello", "f2": "hello"})

	shutdown := make(chan struct{})
	close(shutdown)

	var stdout, stderr bytes.Buffer
	status := run(shutdown, "finddups", []string{dir}, &stdout, &stderr)
	if status != finddups.ExitAborted {
		t.Errorf("Expected exit %d, got %d", finddups.ExitAborted, status)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected no report after abort, got %q", stdout.String())
	}
}

func TestShutdownContext(t *testing.T) {
	shutdown := make(chan struct{})
	ctx, cancel := shutdownContext(shutdown)
	defer cancel()

	if ctx.Err() != nil {
		t.Fatal("Expected context to be live before shutdown")
	}
	close(shutdown)
	<-ctx.Done()
}
