package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/prosegen/narrate/pkg/book"
	"github.com/prosegen/narrate/pkg/buildinfo"
	"github.com/prosegen/narrate/pkg/cache"
)

// bookCacheTTL bounds how long a rendered book is reused before it is
// rebuilt.
const bookCacheTTL = 24 * time.Hour

// newBookCmd creates the book command, the main entry point of the tool.
func newBookCmd() *cobra.Command {
	var (
		configPath string
		noCache    bool
		redisAddr  string
	)

	cmd := &cobra.Command{
		Use:   "book <output.md> [input.fable]",
		Short: "Render a program into the book which describes it",
		Long: `Render a program into the book which describes it.

The program is parsed and compiled, then both the syntax tree and the
bytecode are rendered as English prose and assembled into a markdown
document together with the source listing, a preface and a license.

Without an input file, the embedded sample program is described. Results
are cached locally, keyed by source text, book metadata and tool version.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(cmd.Context(), args[0], args[1:], configPath, noCache, redisAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "book metadata file (TOML)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the render cache (host:port)")

	return cmd
}

// runBook renders the book and writes it to the output path.
func runBook(ctx context.Context, output string, inputs []string, configPath string, noCache bool, redisAddr string) error {
	logger := loggerFromContext(ctx)

	cfg := book.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = book.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}

	sourceName, source, err := resolveInput(inputs)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	store, err := newStore(ctx, noCache, redisAddr)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	key := cache.BookKey(source, cfg, buildinfo.Version)
	doc, cached, err := buildBook(ctx, logger, store, key, cfg, sourceName, source)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Described %s", sourceName)
	printFile(output)
	printStats(len(book.Sections(doc)), len(doc), cached)
	return nil
}

// buildBook returns the rendered document, consulting the cache first.
// Cache failures degrade to a fresh render.
func buildBook(ctx context.Context, logger *log.Logger, store cache.Cache, key string, cfg book.Config, sourceName, source string) (string, bool, error) {
	if data, ok, err := store.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if ok {
		logger.Debug("cache hit", "key", key)
		return string(data), true, nil
	}

	sp := newSpinner(ctx, "Rendering book...")
	sp.Start()
	prog := newProgress(logger)

	doc, err := book.NewBuilder(cfg, logger).Build(sourceName, source)
	if err != nil {
		sp.StopWithError("Rendering failed")
		return "", false, err
	}
	sp.Stop()
	prog.done("Rendered book")

	if err := store.Set(ctx, key, []byte(doc), bookCacheTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return doc, false, nil
}
