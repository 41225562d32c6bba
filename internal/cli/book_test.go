package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/prosegen/narrate/pkg/book"
	"github.com/prosegen/narrate/pkg/cache"
	"github.com/prosegen/narrate/pkg/errors"
)

func quietLogger() *log.Logger {
	return newLogger(io.Discard, log.ErrorLevel)
}

func TestBuildBookCaches(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cfg := book.DefaultConfig()
	source := "x = 1\n"
	key := cache.BookKey(source, cfg, "test")

	doc, cached, err := buildBook(ctx, quietLogger(), store, key, cfg, "main.fable", source)
	if err != nil {
		t.Fatalf("buildBook() error = %v", err)
	}
	if cached {
		t.Error("first build should not be cached")
	}
	if !strings.Contains(doc, "# Bytecode") {
		t.Error("document should contain the bytecode chapter")
	}

	again, cached, err := buildBook(ctx, quietLogger(), store, key, cfg, "main.fable", source)
	if err != nil {
		t.Fatalf("buildBook() second call error = %v", err)
	}
	if !cached {
		t.Error("second build should hit the cache")
	}
	if again != doc {
		t.Error("cached document should match the rendered one")
	}
}

func TestBuildBookParseFailure(t *testing.T) {
	store := cache.NewNullCache()
	cfg := book.DefaultConfig()

	_, _, err := buildBook(context.Background(), quietLogger(), store, "k", cfg, "bad.fable", "def f(\n")
	if err == nil {
		t.Fatal("buildBook() should fail on unparsable source")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeParse)
	}
}

func TestRunBookWritesOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prog.fable")
	output := filepath.Join(dir, "book.md")
	if err := os.WriteFile(input, []byte("x = 1 + 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := withLogger(context.Background(), quietLogger())
	if err := runBook(ctx, output, []string{input}, "", true, ""); err != nil {
		t.Fatalf("runBook() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, "# Source code") {
		t.Error("output should contain the source chapter")
	}
	if !strings.Contains(doc, "the sum of one and two") {
		t.Error("output should describe the program in prose")
	}
}

func TestRunBookMissingInput(t *testing.T) {
	dir := t.TempDir()
	ctx := withLogger(context.Background(), quietLogger())

	err := runBook(ctx, filepath.Join(dir, "out.md"), []string{filepath.Join(dir, "none.fable")}, "", true, "")
	if err == nil {
		t.Error("runBook() should fail for a missing input file")
	}
}
