// Package book assembles the full self-describing document: front matter,
// preface and license, the verbatim source listing, the syntax tree rendered
// as prose, and the bytecode rendered as prose.
package book

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/prosegen/narrate/pkg/fable"
	"github.com/prosegen/narrate/pkg/fable/bytecode"
	"github.com/prosegen/narrate/pkg/prose"
)

//go:embed sample.fable
var defaultSource string

//go:embed preface.md
var defaultPrefaceTemplate string

//go:embed license.md
var defaultLicense string

// defaultPreface is the preface with the tool version formatted in.
var defaultPreface string

// SetVersion stamps the generating tool's version into the default preface.
// The CLI calls it from build information at startup.
func SetVersion(v string) {
	defaultPreface = fmt.Sprintf(defaultPrefaceTemplate, v)
}

func init() {
	SetVersion("dev")
}

// DefaultSourceName labels the embedded program when no input is given.
const DefaultSourceName = "sample.fable"

// DefaultSource returns the embedded program described when no input file
// is given.
func DefaultSource() string {
	return defaultSource
}

// Builder renders a complete book from a single source text.
type Builder struct {
	cfg Config
	log *log.Logger
}

// NewBuilder returns a builder using the given configuration. A nil logger
// falls back to the default logger.
func NewBuilder(cfg Config, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{cfg: cfg, log: logger}
}

// Build parses, compiles and renders the given source, returning the fully
// assembled document text. sourceName labels the source listing and the
// root bytecode section.
func (b *Builder) Build(sourceName, source string) (string, error) {
	mod, err := fable.Parse(source)
	if err != nil {
		return "", err
	}
	root, err := bytecode.Compile(mod)
	if err != nil {
		return "", err
	}

	license, err := b.cfg.license()
	if err != nil {
		return "", err
	}
	preface, err := b.cfg.preface()
	if err != nil {
		return "", err
	}

	trees := prose.NewTreeRenderer(b.log)
	instructions := prose.NewInstructionRenderer(b.log)

	var doc strings.Builder
	fmt.Fprintf(&doc, "%% %s\n%% %s\n", b.cfg.Title, b.cfg.Author)
	doc.WriteString("# About this book\n\n")
	doc.WriteString(preface)
	doc.WriteString("\n\n## License\n\n")
	doc.WriteString(license)
	doc.WriteString("\n\n# Source code\n\n")
	doc.WriteString("```\n" + source + "\n```\n\n")
	doc.WriteString("# Abstract syntax tree\n\n")
	doc.WriteString(trees.Render(mod))
	doc.WriteString("\n\n# Bytecode\n\n")
	doc.WriteString(instructions.RenderAll(sourceName, root))

	b.log.Debug("book assembled", "source", sourceName, "bytes", doc.Len())
	return doc.String(), nil
}

// BuildDefault renders the embedded sample program.
func (b *Builder) BuildDefault() (string, error) {
	return b.Build(DefaultSourceName, DefaultSource())
}

// Sections splits an assembled document into its top-level sections, one
// per leading "# " heading, keeping the front matter as the first section.
// The section viewer uses this to page through the book.
func Sections(doc string) []Section {
	lines := strings.Split(doc, "\n")
	var sections []Section
	current := Section{Title: "Front matter"}
	flush := func() {
		if strings.TrimSpace(current.Body) != "" || len(sections) > 0 {
			sections = append(sections, current)
		}
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "# ") {
			flush()
			current = Section{Title: strings.TrimPrefix(line, "# ")}
			continue
		}
		current.Body += line + "\n"
	}
	flush()
	return sections
}

// Section is one top-level division of the assembled book.
type Section struct {
	Title string
	Body  string
}
