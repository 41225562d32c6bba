package book

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prosegen/narrate/pkg/errors"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.toml")
	content := "title = \"My Program\"\nauthor = \"A. Writer\"\nlicense_file = \"LICENSE.md\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Title != "My Program" || cfg.Author != "A. Writer" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LicenseFile != "LICENSE.md" {
		t.Errorf("license file = %q", cfg.LicenseFile)
	}
}

func TestLoadConfigDefaultsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.toml")
	if err := os.WriteFile(path, []byte("author = \"Someone\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Title != DefaultConfig().Title {
		t.Errorf("title = %q, want default", cfg.Title)
	}
	if cfg.Author != "Someone" {
		t.Errorf("author = %q", cfg.Author)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/book.toml"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("title = [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad toml error = %v, want code %s", err, errors.ErrCodeInvalidConfig)
	}
}
