package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal/types"
)

// SourceName is the filename reported for issues found by RunSource.
const SourceName = "<source>"

// Engine manages the linting process.
type Engine struct {
	ignoredRules map[string]bool
	ignoredPaths []string
	severities   map[types.Code]types.Severity
	rules        []LintRule

	renderer *docs.Renderer
	logger   *zap.Logger
	cache    *Cache
	timeout  time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRenderer sets the renderer issue messages are read from.
func WithRenderer(r *docs.Renderer) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMatchTimeout bounds each sample-text run.
func WithMatchTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithCache makes Run reuse the issues of unchanged files.
func WithCache(c *Cache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// NewEngine creates a new lint engine. rules overrides the default severity
// of diagnostic codes; a code set to off is not reported.
func NewEngine(rules map[types.Code]types.ConfigRule, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		ignoredRules: make(map[string]bool),
		severities:   defaultSeverities(),
		logger:       zap.NewNop(),
		timeout:      executor.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = docs.NewRenderer(nil, docs.ModeProduction, e.logger)
	}

	for code, rule := range rules {
		if _, err := types.ParseCode(code.String()); err != nil {
			return nil, err
		}
		e.severities[code] = rule.Severity
		if rule.Severity == types.SeverityOff {
			e.IgnoreRule(code.String())
		}
	}

	e.rules = []LintRule{
		&SyntaxRule{},
		&ExecutionRule{timeout: e.timeout, logger: e.logger},
	}
	return e, nil
}

func defaultSeverities() map[types.Code]types.Severity {
	m := make(map[types.Code]types.Severity, len(types.Codes))
	for _, code := range types.Codes {
		m[code] = types.SeverityError
	}
	m[types.CodeLookbehind] = types.SeverityWarning
	m[types.CodeInfinite] = types.SeverityWarning
	m[types.CodeTimeout] = types.SeverityWarning
	return m
}

// Severity returns the severity code is reported with.
func (e *Engine) Severity(code types.Code) types.Severity {
	return e.severities[code]
}

// IgnoreRule disables a rule by name ("syntax", "execution") or a single
// diagnostic code.
func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath skips files matching the glob pattern.
func (e *Engine) IgnorePath(pattern string) {
	e.ignoredPaths = append(e.ignoredPaths, pattern)
}

func (e *Engine) isIgnoredPath(path string) bool {
	for _, pattern := range e.ignoredPaths {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// Run checks a pattern list (.regex) or a case file (.yaml, .yml) and
// returns a slice of Issues.
func (e *Engine) Run(filename string) ([]types.Issue, error) {
	return e.RunContext(context.Background(), filename)
}

// RunContext is Run with a context bounding the sample-text runs.
func (e *Engine) RunContext(ctx context.Context, filename string) ([]types.Issue, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}
	if e.cache != nil {
		if issues, ok := e.cache.Get(filename); ok {
			return issues, nil
		}
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	var cases []Case
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		cases, err = ParseCases(content)
	default:
		cases, err = ParsePatternList(content)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}

	issues, err := e.check(ctx, filename, cases)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		if err := e.cache.Set(filename, issues); err != nil {
			e.logger.Warn("cache write failed", zap.String("file", filename), zap.Error(err))
		}
	}
	return issues, nil
}

// RunSource checks a pattern list held in memory.
func (e *Engine) RunSource(source []byte) ([]types.Issue, error) {
	cases, err := ParsePatternList(source)
	if err != nil {
		return nil, fmt.Errorf("error parsing content: %w", err)
	}
	return e.check(context.Background(), SourceName, cases)
}

// CheckCases runs every rule over cases.
func (e *Engine) CheckCases(ctx context.Context, filename string, cases []Case) ([]types.Issue, error) {
	return e.check(ctx, filename, cases)
}

func (e *Engine) check(ctx context.Context, filename string, cases []Case) ([]types.Issue, error) {
	var allIssues []types.Issue
	for i := range cases {
		for _, rule := range e.rules {
			if e.ignoredRules[rule.Name()] {
				continue
			}
			issues, err := rule.Check(ctx, &cases[i])
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				e.logger.Warn("rule failed",
					zap.String("rule", rule.Name()),
					zap.String("file", filename),
					zap.Error(err))
				continue
			}
			allIssues = append(allIssues, e.finish(filename, issues)...)
		}
	}

	sort.SliceStable(allIssues, func(i, j int) bool {
		if allIssues[i].Line != allIssues[j].Line {
			return allIssues[i].Line < allIssues[j].Line
		}
		return allIssues[i].Start < allIssues[j].Start
	})
	return allIssues, nil
}

// finish drops ignored codes and fills in the fields rules leave empty.
func (e *Engine) finish(filename string, issues []types.Issue) []types.Issue {
	out := issues[:0]
	for _, issue := range issues {
		if e.ignoredRules[issue.Code.String()] {
			continue
		}
		msg, err := e.renderer.Message(issue.Code)
		if err != nil {
			msg = issue.Code.String()
		}
		issue.Filename = filename
		issue.Severity = e.severities[issue.Code]
		issue.Message = msg
		out = append(out, issue)
	}
	return out
}
