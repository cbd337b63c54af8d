package internal

import (
	"context"
	"fmt"

	"github.com/gnoverse/regexr/annotate"
	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/lexer"
)

// Explainer ties the lexer, the match session, the annotation resolver and
// the documentation renderer together for one interactive user.
type Explainer struct {
	renderer *docs.Renderer
	session  *executor.Session
}

// NewExplainer returns an explainer. A nil renderer uses the default content
// in development mode and a nil session uses a default session.
func NewExplainer(renderer *docs.Renderer, session *executor.Session) *Explainer {
	if renderer == nil {
		renderer = docs.NewRenderer(nil, docs.ModeDevelopment, nil)
	}
	if session == nil {
		session = executor.NewSession()
	}
	return &Explainer{renderer: renderer, session: session}
}

// Renderer returns the renderer descriptions are produced with.
func (x *Explainer) Renderer() *docs.Renderer { return x.renderer }

// Report is the outcome of explaining one case.
type Report struct {
	Case  Case
	Parse *lexer.ParseResult
	// Subst is the scanned substitution, nil when the case has none.
	Subst *lexer.ParseResult

	// Ran is false when the pattern has syntax problems and was not
	// executed. Empty text is executed like any other.
	Ran      bool
	Result   executor.Result
	Replaced string
	Lines    *annotate.LineIndex
}

// Explain scans the case and, when it has no syntax problems, runs it
// through the session. A run superseded by a later Explain returns
// executor.ErrSuperseded.
func (x *Explainer) Explain(ctx context.Context, c Case) (*Report, error) {
	rep := &Report{
		Case:  c,
		Parse: c.Parse(),
		Lines: annotate.NewLineIndex(c.Text),
	}
	if c.Substitution != "" {
		rep.Subst = lexer.Parse(c.Substitution, lexer.ModeSubstitution)
	}
	if rep.Parse.HasErrors() {
		return rep, nil
	}

	body, flags, err := c.Source(rep.Parse)
	if err != nil {
		return nil, err
	}
	result, err := x.session.Match(ctx, body, flags, c.Text)
	if err != nil {
		return nil, err
	}
	rep.Ran, rep.Result = true, result

	if rep.Subst != nil && !rep.Subst.HasErrors() {
		expr, err := executor.Compile(body, flags)
		if err != nil {
			return nil, err
		}
		if rep.Replaced, err = expr.Replace(c.Text, c.Substitution); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// Hover is the annotation of a pattern offset.
type Hover struct {
	Token       *lexer.Token
	Description string
	Selection   annotate.Selection
}

// TokenAt describes the token under offset of the pattern, or returns nil
// when the offset is outside every token.
func (x *Explainer) TokenAt(rep *Report, offset int) (*Hover, error) {
	tok := annotate.TokenAt(rep.Parse, offset, false)
	if tok == nil {
		return nil, nil
	}
	desc, err := x.renderer.DescribeToken(rep.Parse, annotate.Hover(rep.Parse, tok))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", tok, err)
	}
	return &Hover{
		Token:       tok,
		Description: desc,
		Selection:   annotate.Select(rep.Parse, tok),
	}, nil
}

// MatchAt describes the match record under a 1-based line and column of
// the sample text. It returns an empty string when no match covers it.
func (x *Explainer) MatchAt(rep *Report, line, col int) (*executor.Record, string, error) {
	offset, err := rep.Lines.Offset(line, col)
	if err != nil {
		return nil, "", err
	}
	rec := annotate.MatchAt(rep.Result.Matches, offset, false)
	return rec, x.renderer.DescribeMatch(rec), nil
}
