package docs

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal/types"
	"github.com/gnoverse/regexr/lexer"
)

// Mode controls how rendering failures surface.
type Mode int

const (
	// ModeDevelopment returns rendering failures as errors.
	ModeDevelopment Mode = iota
	// ModeProduction logs rendering failures and returns Placeholder.
	ModeProduction
)

// ParseMode reads "development" or "production".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "development", "dev":
		return ModeDevelopment, nil
	case "production", "prod":
		return ModeProduction, nil
	}
	return ModeDevelopment, fmt.Errorf("unknown docs mode %q", s)
}

func (m Mode) String() string {
	if m == ModeProduction {
		return "production"
	}
	return "development"
}

// Placeholder is the text returned for a failed description in production.
const Placeholder = "No documentation available."

const (
	errorPrefix   = "ERROR: "
	matchShorten  = 150
	groupShorten  = 40
	escapeDefault = "Escaped character."
)

// Renderer resolves descriptions for tokens, diagnostics and matches.
type Renderer struct {
	tree   *Tree
	mode   Mode
	logger *zap.Logger
}

// NewRenderer returns a renderer over tree. A nil tree uses Default and a
// nil logger discards output.
func NewRenderer(tree *Tree, mode Mode, logger *zap.Logger) *Renderer {
	if tree == nil {
		tree = Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{tree: tree, mode: mode, logger: logger}
}

// Tree returns the content the renderer reads from.
func (r *Renderer) Tree() *Tree { return r.tree }

// DescribeToken returns the description of tok. A closer is described by its
// opener and a token carrying a diagnostic by the diagnostic. Lookup is by
// kind with a fallback to the token class; quantifiers render the shared
// quantifier tip and escapes render the character tip prefixed with the
// escape's own description.
func (r *Renderer) DescribeToken(res *lexer.ParseResult, tok *lexer.Token) (string, error) {
	if tok == nil {
		return "", nil
	}
	if open := res.Token(tok.Open); open != nil {
		tok = open
	}
	if tok.Err != types.CodeNone {
		return r.DescribeCode(tok.Err)
	}

	id := docID(tok)
	node := r.tree.Node(id)

	var label, pre string
	if node != nil {
		label = tok.Label
		if label == "" {
			label = node.Title()
		}
		if tok.Kind == lexer.KindGroup {
			label += fmt.Sprintf(" #%d", tok.Num)
		}
		label = capitalize(label) + ". "
	} else if tok.Class != lexer.ClassNone {
		node = r.tree.Node(string(tok.Class))
	}

	if tok.Class == lexer.ClassQuant {
		node = r.tree.Node("quant")
	}
	if tok.Kind == lexer.KindChar || tok.Class == lexer.ClassEsc {
		if tok.Class == lexer.ClassEsc {
			pre = escapeDefault + " "
			if n := r.tree.Node(id); n != nil && n.Desc != "" {
				pre = n.Desc + " "
			}
		}
		if tok.Subst {
			node = r.tree.Node("subst_char")
		} else {
			node = r.tree.Node("char")
		}
	}
	if tok.Kind == lexer.KindFlag && node == nil {
		node = r.tree.Node("flag")
	}

	if node == nil || node.tmpl == nil {
		return r.fail(fmt.Errorf("%w for kind %q", ErrNoNode, id))
	}
	var buf bytes.Buffer
	if err := node.tmpl.Execute(&buf, newView(res, tok)); err != nil {
		return r.fail(fmt.Errorf("render %q: %w", id, err))
	}
	return label + pre + buf.String(), nil
}

// docID maps a token to the id of the node documenting it.
func docID(tok *lexer.Token) string {
	if tok.Kind == lexer.KindFlag {
		return "flag_" + string(tok.Code)
	}
	return tok.Kind.String()
}

// DescribeCode returns the description of a diagnostic code.
func (r *Renderer) DescribeCode(code types.Code) (string, error) {
	msg, err := r.Message(code)
	if err != nil || msg == Placeholder {
		return msg, err
	}
	return errorPrefix + msg, nil
}

// Message returns the bare message of a diagnostic code.
func (r *Renderer) Message(code types.Code) (string, error) {
	msg, ok := r.tree.Errors[code.String()]
	if !ok || msg == "" {
		return r.fail(fmt.Errorf("%w for code %q", ErrNoNode, code))
	}
	return msg, nil
}

// DescribeMatch summarises a match record: the matched text, its inclusive
// range and every capture group. Long text is shortened.
func (r *Renderer) DescribeMatch(rec *executor.Record) string {
	if rec == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "match: %s\nrange: %d-%d", shorten(rec.Text, matchShorten), rec.Start, rec.End-1)
	for i, g := range rec.Groups {
		text := "<no value>"
		if g.Valid {
			text = shorten(g.Text, groupShorten)
		}
		fmt.Fprintf(&sb, "\ngroup #%d: %s", i+1, text)
	}
	return sb.String()
}

func (r *Renderer) fail(err error) (string, error) {
	if r.mode == ModeDevelopment {
		return "", err
	}
	r.logger.Warn("documentation lookup failed", zap.Error(err))
	return Placeholder, nil
}

// shorten truncates s to n runes, the last being an ellipsis.
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}
