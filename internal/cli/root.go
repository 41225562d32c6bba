package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/prosegen/narrate/pkg/book"
	"github.com/prosegen/narrate/pkg/buildinfo"
	"github.com/prosegen/narrate/pkg/cache"
)

// SetVersion sets the version information displayed by --version and
// stamped into generated books. This is typically called by the main
// package during initialization with values injected via ldflags at build
// time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2026-08-31T14:32:01Z")
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
	book.SetVersion(v)
}

// Execute runs the narrate CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (book, graph,
// serve, view, cache, completion), configures logging based on the
// --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext. The context cancels in-flight commands, so Ctrl-C
// shuts the serve command down cleanly.
func Execute(ctx context.Context) error {
	var verbose bool

	book.SetVersion(buildinfo.Version)

	root := &cobra.Command{
		Use:          "narrate",
		Short:        "Narrate renders programs as books of English prose",
		Long:         `Narrate is a CLI tool that parses and compiles a fable program, then renders both its syntax tree and its bytecode as a markdown book of English prose, so the program can be read cover to cover.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newBookCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newViewCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// resolveInput returns the source name and text for an optional input
// argument. Without an argument the embedded sample program is described.
func resolveInput(args []string) (string, string, error) {
	if len(args) == 0 {
		return book.DefaultSourceName, book.DefaultSource(), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}

// renderForCommand renders a book without touching the cache, for commands
// that consume the document directly.
func renderForCommand(ctx context.Context, inputs []string, configPath string) (string, string, error) {
	logger := loggerFromContext(ctx)

	cfg := book.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = book.LoadConfig(configPath)
		if err != nil {
			return "", "", err
		}
	}

	sourceName, source, err := resolveInput(inputs)
	if err != nil {
		return "", "", err
	}

	doc, err := book.NewBuilder(cfg, logger).Build(sourceName, source)
	if err != nil {
		return "", "", err
	}
	return doc, sourceName, nil
}

// newStore selects the cache backend: null when disabled, redis when an
// address is given, otherwise the file cache under the user cache dir.
func newStore(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr)
	}
	return cache.NewFileCache(cache.DefaultDir())
}
