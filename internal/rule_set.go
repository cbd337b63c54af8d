package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal/types"
	"github.com/gnoverse/regexr/lexer"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on one case and returns its issues. Filename,
	// Severity and Message are filled in by the engine.
	Check(ctx context.Context, c *Case) ([]types.Issue, error)

	// Name returns the name of the lint rule.
	Name() string
}

// SyntaxRule reports the lexer diagnostics of the pattern and of the
// substitution string.
type SyntaxRule struct{}

func (r *SyntaxRule) Check(_ context.Context, c *Case) ([]types.Issue, error) {
	issues := diagnosticIssues(c, c.Pattern, c.Parse())
	if c.Substitution != "" {
		res := lexer.Parse(c.Substitution, lexer.ModeSubstitution)
		issues = append(issues, diagnosticIssues(c, c.Substitution, res)...)
	}
	return issues, nil
}

func (r *SyntaxRule) Name() string {
	return "syntax"
}

func diagnosticIssues(c *Case, source string, res *lexer.ParseResult) []types.Issue {
	issues := make([]types.Issue, 0, len(res.Errors))
	for _, d := range res.Errors {
		issues = append(issues, types.Issue{
			Code:    d.Code,
			Line:    c.Line,
			Pattern: source,
			Start:   d.Start,
			End:     d.End,
		})
	}
	return issues
}

// ExecutionRule runs a case with sample text and reports the match-time
// diagnostics. Cases without text (every line of a pattern list) and
// cases whose pattern has syntax problems are not run.
type ExecutionRule struct {
	timeout time.Duration
	logger  *zap.Logger
}

func (r *ExecutionRule) Check(ctx context.Context, c *Case) ([]types.Issue, error) {
	if c.Text == "" {
		return nil, nil
	}
	res := c.Parse()
	if res.HasErrors() {
		return nil, nil
	}
	body, flags, err := c.Source(res)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", c.Line, err)
	}

	// a session per check keeps concurrent files from superseding each other
	session := executor.NewSession(executor.WithTimeout(r.timeout), executor.WithLogger(r.logger))
	result, err := session.Match(ctx, body, flags, c.Text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("line %d: %w", c.Line, err)
	}
	if result.Code == types.CodeNone {
		return nil, nil
	}
	return []types.Issue{{
		Code:    result.Code,
		Line:    c.Line,
		Pattern: c.Pattern,
		Start:   0,
		End:     len([]rune(c.Pattern)),
	}}, nil
}

func (r *ExecutionRule) Name() string {
	return "execution"
}
