package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEnvFile_missing(t *testing.T) {
	err := LoadEnvFile(filepath.Join(t.TempDir(), "nonexistent"))
	if err != nil {
		t.Fatalf("missing file should return nil: %v", err)
	}
}

func TestLoadEnvFile_setsEnv(t *testing.T) {
	os.Unsetenv("VP_FOO")
	os.Unsetenv("VP_BAZ")
	t.Cleanup(func() { os.Unsetenv("VP_FOO"); os.Unsetenv("VP_BAZ") })
	path := writeEnv(t, "VP_FOO=bar\n# comment\nexport VP_BAZ=quux\nnot a pair\n=nokey\n")
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if os.Getenv("VP_FOO") != "bar" {
		t.Errorf("VP_FOO = %q", os.Getenv("VP_FOO"))
	}
	if os.Getenv("VP_BAZ") != "quux" {
		t.Errorf("VP_BAZ = %q", os.Getenv("VP_BAZ"))
	}
}

func TestLoadEnvFile_unquote(t *testing.T) {
	os.Unsetenv("VP_X")
	t.Cleanup(func() { os.Unsetenv("VP_X") })
	path := writeEnv(t, `VP_X="hello world"`)
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if os.Getenv("VP_X") != "hello world" {
		t.Errorf("VP_X = %q", os.Getenv("VP_X"))
	}
}

func TestLoadEnvFile_environmentWins(t *testing.T) {
	t.Setenv("VP_KEEP", "from-env")
	path := writeEnv(t, "VP_KEEP=from-file\n")
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("VP_KEEP"); got != "from-env" {
		t.Errorf("VP_KEEP = %q, want from-env", got)
	}
}
