package prose

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/prosegen/narrate/pkg/fable"
)

func quietTreeRenderer() *TreeRenderer {
	return NewTreeRenderer(log.New(io.Discard))
}

func renderSource(t *testing.T, src string) string {
	t.Helper()
	mod, err := fable.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return quietTreeRenderer().Render(mod)
}

func TestRenderAssignment(t *testing.T) {
	got := renderSource(t, "x = 1 + 2\n")
	want := "A module, containing the following code:\n\n" +
		"An assignment to the name `x`, of the value of " +
		"the addition (or concatenation) operator, " +
		"with left hand side a numeric constant with value one, " +
		"and right hand side a numeric constant with value two."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderStatementOrder(t *testing.T) {
	got := renderSource(t, "a = 1\nb = 2\nc = 3\n")
	posA := strings.Index(got, "`a`")
	posB := strings.Index(got, "`b`")
	posC := strings.Index(got, "`c`")
	if posA < 0 || posB < 0 || posC < 0 {
		t.Fatalf("missing assignments in %q", got)
	}
	if !(posA < posB && posB < posC) {
		t.Errorf("statements out of order: a@%d b@%d c@%d", posA, posB, posC)
	}
	if strings.Count(got, "An assignment") != 3 {
		t.Errorf("assignment sentence count = %d, want 3", strings.Count(got, "An assignment"))
	}
}

func TestRenderFunctionDef(t *testing.T) {
	got := renderSource(t, "def f():\n    return 1\n")
	if !strings.Contains(got, "## f\n\n") {
		t.Errorf("missing function heading in %q", got)
	}
	if !strings.Contains(got, "A definition of a function named `f`.") {
		t.Errorf("missing definition sentence in %q", got)
	}
	if !strings.Contains(got, "A return statement, returning the value of a numeric constant with value one.") {
		t.Errorf("missing return sentence in %q", got)
	}
	if !strings.Contains(got, "The function f ends here.") {
		t.Errorf("missing closing sentence in %q", got)
	}
}

func TestRenderFunctionArguments(t *testing.T) {
	one := renderSource(t, "def f(n):\n    return n\n")
	if !strings.Contains(one, "with argument `n`.") {
		t.Errorf("single-argument phrasing missing in %q", one)
	}

	many := renderSource(t, "def f(a, b, c):\n    return a\n")
	if !strings.Contains(many, "with positional arguments `a`, `b`, and `c`.") {
		t.Errorf("multi-argument phrasing missing in %q", many)
	}
}

func TestRenderDecorator(t *testing.T) {
	got := renderSource(t, "@memo\ndef f():\n    return 1\n")
	if !strings.Contains(got, "The definition is decorated with the function `memo`.") {
		t.Errorf("decorator sentence missing in %q", got)
	}
}

func TestRenderCall(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "no arguments",
			src:  "f()\n",
			want: "a function call, calling the value of the name `f`, with no positional arguments",
		},
		{
			name: "one argument",
			src:  "f(x)\n",
			want: "with argument the name `x`",
		},
		{
			name: "several arguments",
			src:  "f(x, y)\n",
			want: "with positional arguments the name `x`, and the name `y`",
		},
		{
			name: "keyword argument",
			src:  "f(sep=x)\n",
			want: ", and keyword argument, assigning the name `x` as `sep`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSource(t, tt.src)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Render() = %q, missing %q", got, tt.want)
			}
		})
	}
}

func TestRenderControlFlow(t *testing.T) {
	ifText := renderSource(t, "if x:\n    y = 1\nelse:\n    y = 2\n")
	for _, want := range []string{
		"An `if` statement, testing the name `x`. The body of the main branch is as follows:",
		"The other ('else') branch of the `if` statement is as follows:",
		"The `if` statement ends here.",
	} {
		if !strings.Contains(ifText, want) {
			t.Errorf("if rendering missing %q in %q", want, ifText)
		}
	}

	forText := renderSource(t, "for n in xs:\n    f(n)\n")
	if !strings.Contains(forText, "A for loop, where the name `n` iterates over the name `xs`.") {
		t.Errorf("for phrasing missing in %q", forText)
	}
	if !strings.Contains(forText, "The for loop ends here.") {
		t.Errorf("for closing missing in %q", forText)
	}

	whileText := renderSource(t, "while n > 0:\n    n = n - 1\n")
	if !strings.Contains(whileText, "A while loop, testing a comparison (using the 'greater than' operator) of the name `n` and a numeric constant with value zero.") {
		t.Errorf("while phrasing missing in %q", whileText)
	}
}

func TestRenderChainedComparison(t *testing.T) {
	got := renderSource(t, "ok = 0 <= i < n\n")
	want := "a compound comparison, comparing " +
		"a numeric constant with value zero and the name `i` using the 'less than or equal to' operator, " +
		"and the name `i` and the name `n` using the 'less than' operator"
	if !strings.Contains(got, want) {
		t.Errorf("Render() = %q, missing %q", got, want)
	}
}

func TestRenderDisplays(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"xs = []\n", "an empty list"},
		{"xs = [1, 2]\n", "a list containing a numeric constant with value one, and a numeric constant with value two"},
		{"t = ()\n", "an empty tuple"},
		{"d = {}\n", "an empty dictionary"},
		{"d = {\"k\": 1}\n", "a dictionary mapping the literal string *'k'* to a numeric constant with value one"},
	}
	for _, tt := range tests {
		got := renderSource(t, tt.src)
		if !strings.Contains(got, tt.want) {
			t.Errorf("Render(%q) = %q, missing %q", tt.src, got, tt.want)
		}
	}
}

func TestRenderStringEscaping(t *testing.T) {
	got := renderSource(t, "s = \"a_b\"\n")
	if !strings.Contains(got, `the literal string *'a\_b'*`) {
		t.Errorf("escaped string missing in %q", got)
	}
}

func TestRenderSubscripts(t *testing.T) {
	got := renderSource(t, "y = xs[0]\n")
	if !strings.Contains(got, "the name `xs`, subscripted by a numeric constant with value zero") {
		t.Errorf("index phrasing missing in %q", got)
	}

	got = renderSource(t, "y = xs[1:n]\n")
	if !strings.Contains(got, "subscripted by a slice from a numeric constant with value one to the name `n`") {
		t.Errorf("slice phrasing missing in %q", got)
	}

	got = renderSource(t, "y = xs[:n]\n")
	if !strings.Contains(got, "subscripted by a slice up to the name `n`") {
		t.Errorf("open slice phrasing missing in %q", got)
	}
}

func TestRenderComprehensions(t *testing.T) {
	got := renderSource(t, "ys = [f(x) for x in xs]\n")
	if !strings.Contains(got, "a list comprehension, taking the value of a function call") {
		t.Errorf("list comprehension phrasing missing in %q", got)
	}
	if !strings.Contains(got, "as the name `x` ranges over the name `xs`") {
		t.Errorf("comprehension clause missing in %q", got)
	}
}

func TestRenderAssertSuppressed(t *testing.T) {
	got := renderSource(t, "x = 1\nassert x\ny = 2\n")
	if strings.Contains(got, "assert") {
		t.Errorf("assertion leaked into prose: %q", got)
	}
	// Both surrounding statements still render.
	if !strings.Contains(got, "`x`") || !strings.Contains(got, "`y`") {
		t.Errorf("sibling statements missing in %q", got)
	}
}

// oddNode is a node kind no rendering rule knows about.
type oddNode struct{}

func (oddNode) Pos() int { return 1 }

func TestRenderUnknownNode(t *testing.T) {
	r := quietTreeRenderer()
	if got := r.Render(oddNode{}); got != "" {
		t.Errorf("Render(unknown) = %q, want empty", got)
	}

	// An unknown node inside a module must not halt its siblings.
	mod := &fable.Module{Body: []fable.Node{oddNode{}, &fable.Continue{}}}
	got := r.Render(mod)
	if !strings.Contains(got, "A 'continue' statement.") {
		t.Errorf("sibling lost after unknown node: %q", got)
	}
}
