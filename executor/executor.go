package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/gnoverse/regexr/internal/types"
)

// BackstopTimeout bounds a single engine call. Cancellation is only observed
// between matches, so a pathological pattern is stopped by the engine itself.
const BackstopTimeout = 2 * time.Second

// Group is one capture group of a match. Valid is false when the group did
// not participate in the match.
type Group struct {
	Valid bool
	Start int
	End   int
	Text  string
}

// Record is a single match. Start and End are rune offsets into the
// searched text, End exclusive.
type Record struct {
	Num    int
	Start  int
	End    int
	Text   string
	Groups []Group
}

// Len returns the number of runes matched.
func (r *Record) Len() int { return r.End - r.Start }

// Empty reports whether the record is a zero-width match.
func (r *Record) Empty() bool { return r.End == r.Start }

// MatchList is the ordered output of one execution.
type MatchList []Record

// Result pairs the match list with the match-time code that stopped the
// run, if any. Code is types.CodeNone on a normal finish.
type Result struct {
	Matches MatchList
	Code    types.Code
}

// Expression is a compiled pattern with its flags.
type Expression struct {
	Source string
	Flags  Flags

	re *regexp2.Regexp
}

// Compile builds an executable expression from a pattern body.
func Compile(source string, flags Flags) (*Expression, error) {
	re, err := regexp2.Compile(source, flags.options())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", source, err)
	}
	re.MatchTimeout = BackstopTimeout
	return &Expression{Source: source, Flags: flags, re: re}, nil
}

// String returns the expression in /source/flags form.
func (e *Expression) String() string {
	return "/" + e.Source + "/" + e.Flags.String()
}

// Execute runs expr over text. Without the global flag at most one record is
// produced. With it, each search resumes where the previous match ended;
// a match ending where the previous one ended stops the run with
// types.CodeInfinite and the records found so far are kept.
//
// If ctx is done between matches, or the engine hits its own time limit,
// the result is {nil, timeout}.
func Execute(ctx context.Context, expr *Expression, text string) Result {
	if expr == nil {
		return Result{}
	}
	runes := []rune(text)
	global := expr.Flags.Global()

	var (
		matches MatchList
		pos     int
		lastEnd = -1
	)
	for {
		if ctx.Err() != nil {
			return Result{Code: types.CodeTimeout}
		}
		m, err := expr.re.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			return Result{Code: types.CodeTimeout}
		}
		if m == nil {
			break
		}

		end := m.Index + m.Length
		if global && end == lastEnd {
			return Result{Matches: matches, Code: types.CodeInfinite}
		}
		matches = append(matches, newRecord(len(matches), m))
		if !global {
			break
		}
		lastEnd, pos = end, end
	}
	return Result{Matches: matches}
}

func newRecord(num int, m *regexp2.Match) Record {
	rec := Record{
		Num:   num,
		Start: m.Index,
		End:   m.Index + m.Length,
		Text:  m.String(),
	}
	groups := m.Groups()
	if len(groups) > 1 {
		rec.Groups = make([]Group, len(groups)-1)
	}
	for i := 1; i < len(groups); i++ {
		g := groups[i]
		if len(g.Captures) == 0 {
			continue
		}
		rec.Groups[i-1] = Group{
			Valid: true,
			Start: g.Index,
			End:   g.Index + g.Length,
			Text:  g.String(),
		}
	}
	return rec
}

// Replace substitutes matches of expr in text with subst. Without the global
// flag only the first match is replaced. subst uses $&, $`, $', $$ and $N.
func (e *Expression) Replace(text, subst string) (string, error) {
	count := 1
	if e.Flags.Global() {
		count = -1
	}
	out, err := e.re.Replace(text, subst, -1, count)
	if err != nil {
		return "", fmt.Errorf("replace with %q: %w", subst, err)
	}
	return out, nil
}
