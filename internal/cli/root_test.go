package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prosegen/narrate/pkg/book"
	"github.com/prosegen/narrate/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	oldVersion, oldCommit, oldDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	defer SetVersion(oldVersion, oldCommit, oldDate)

	SetVersion("v1.0.0", "abc123", "2026-01-01")

	if buildinfo.Version != "v1.0.0" {
		t.Errorf("Version = %q, want %q", buildinfo.Version, "v1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", buildinfo.Commit, "abc123")
	}
	if buildinfo.Date != "2026-01-01" {
		t.Errorf("Date = %q, want %q", buildinfo.Date, "2026-01-01")
	}
}

func TestResolveInputDefault(t *testing.T) {
	name, source, err := resolveInput(nil)
	if err != nil {
		t.Fatalf("resolveInput(nil) error = %v", err)
	}
	if name != book.DefaultSourceName {
		t.Errorf("name = %q, want %q", name, book.DefaultSourceName)
	}
	if source != book.DefaultSource() {
		t.Error("source should be the embedded sample program")
	}
}

func TestResolveInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.fable")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	name, source, err := resolveInput([]string{path})
	if err != nil {
		t.Fatalf("resolveInput() error = %v", err)
	}
	if name != path {
		t.Errorf("name = %q, want %q", name, path)
	}
	if source != "x = 1\n" {
		t.Errorf("source = %q, want %q", source, "x = 1\n")
	}
}

func TestResolveInputMissingFile(t *testing.T) {
	_, _, err := resolveInput([]string{filepath.Join(t.TempDir(), "missing.fable")})
	if err == nil {
		t.Error("resolveInput() should fail for a missing file")
	}
}

func TestNewStoreDisabled(t *testing.T) {
	store, err := newStore(context.Background(), true, "")
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	defer store.Close()

	if err := store.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "k"); ok {
		t.Error("null cache should never report a hit")
	}
}

func TestRenderForCommandDefault(t *testing.T) {
	doc, name, err := renderForCommand(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("renderForCommand() error = %v", err)
	}
	if name != book.DefaultSourceName {
		t.Errorf("name = %q, want %q", name, book.DefaultSourceName)
	}
	if doc == "" {
		t.Error("renderForCommand() returned an empty document")
	}
}

func TestRenderForCommandBadConfig(t *testing.T) {
	_, _, err := renderForCommand(context.Background(), nil, filepath.Join(t.TempDir(), "none.toml"))
	if err == nil {
		t.Error("renderForCommand() should fail for a missing config file")
	}
}
