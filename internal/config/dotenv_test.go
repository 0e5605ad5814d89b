package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stewardapp/steward-go/internal/config"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDotEnv(t *testing.T) {
	path := writeDotEnv(t, `
# comment line
DOTENV_TEST_PLAIN=hello
DOTENV_TEST_QUOTED="with spaces"
export DOTENV_TEST_EXPORTED='single'
not a pair
=missing-key
`)
	for _, key := range []string{"DOTENV_TEST_PLAIN", "DOTENV_TEST_QUOTED", "DOTENV_TEST_EXPORTED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_PLAIN"); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
	if got := os.Getenv("DOTENV_TEST_QUOTED"); got != "with spaces" {
		t.Errorf("expected quotes stripped, got %q", got)
	}
	if got := os.Getenv("DOTENV_TEST_EXPORTED"); got != "single" {
		t.Errorf("expected export prefix tolerated, got %q", got)
	}
}

func TestLoadDotEnv_EnvWins(t *testing.T) {
	path := writeDotEnv(t, "DOTENV_TEST_PRESET=from-file\n")
	t.Setenv("DOTENV_TEST_PRESET", "from-env")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_PRESET"); got != "from-env" {
		t.Errorf("existing environment must win, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
