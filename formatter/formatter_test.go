package formatter

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal/types"
	"github.com/gnoverse/regexr/lexer"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestGenerateFormattedIssue(t *testing.T) {
	t.Parallel()
	issues := []types.Issue{
		{
			Code:     types.CodeGroupOpen,
			Severity: types.SeverityError,
			Filename: "patterns.regex",
			Line:     3,
			Pattern:  "(ab",
			Start:    0,
			End:      1,
			Message:  "Unmatched opening parenthesis.",
		},
		{
			Code:     types.CodeRangeRev,
			Severity: types.SeverityWarning,
			Filename: "patterns.regex",
			Line:     12,
			Pattern:  "x[z-a]",
			Start:    2,
			End:      5,
			Message:  "Range values reversed.",
		},
	}

	expected := `error: groupopen
 --> patterns.regex:3:1
  |
3 | (ab
  | ~
  = Unmatched opening parenthesis.

warning: rangerev
  --> patterns.regex:12:3
   |
12 | x[z-a]
   |   ~~~
   = Range values reversed.

`
	assert.Equal(t, expected, GenerateFormattedIssue(issues))
}

func TestGenerateFormattedIssue_Tabs(t *testing.T) {
	t.Parallel()
	issues := []types.Issue{
		{
			Code:     types.CodeGroupOpen,
			Severity: types.SeverityInfo,
			Filename: "tabs.regex",
			Line:     1,
			Pattern:  "\ta(",
			Start:    2,
			End:      3,
			Message:  "Unmatched opening parenthesis.",
		},
	}

	expected := "info: groupopen\n" +
		" --> tabs.regex:1:3\n" +
		"  |\n" +
		"1 | \ta(\n" +
		"  | " + strings.Repeat(" ", 9) + "~\n" +
		"  = Unmatched opening parenthesis.\n" +
		"\n"
	assert.Equal(t, expected, GenerateFormattedIssue(issues))
}

func TestGenerateFormattedIssue_MatchTime(t *testing.T) {
	t.Parallel()
	issues := []types.Issue{
		{
			Code:     types.CodeInfinite,
			Severity: types.SeverityWarning,
			Filename: "cases.yaml",
			Line:     4,
			Pattern:  "a*",
			Start:    0,
			End:      2,
			Message:  "Stopped.",
		},
	}

	expected := `warning: infinite
 --> cases.yaml:4:1
  |
4 | a*
  | ~~
  = Stopped.
Note: ` + matchTimeNotes[types.CodeInfinite] + `

`
	assert.Equal(t, expected, GenerateFormattedIssue(issues))
}

func TestUnderlineAndMessage_OutOfRange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		pattern    string
		start, end int
		underline  string
	}{
		{"past end", "ab", 5, 9, "  ~"},
		{"negative", "ab", -3, 1, "~"},
		{"zero width", "ab", 1, 1, " ~"},
		{"reversed", "abc", 2, 0, "  ~"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := underlineAndMessage("m", "  ", tt.pattern, tt.start, tt.end)
			first := strings.SplitN(out, "\n", 2)[0]
			assert.Equal(t, "  | "+tt.underline, first)
		})
	}
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line     string
		column   int
		expected int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"\tb", 1, 8},
		{"a\tb", 2, 8},
		{"ü\tb", 2, 8},
		{"日本", 2, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, calculateVisualColumn([]rune(tt.line), tt.column), "%q@%d", tt.line, tt.column)
	}
}

func TestFormatTokens(t *testing.T) {
	t.Parallel()
	r := docs.NewRenderer(nil, docs.ModeDevelopment, nil)

	out, err := FormatTokens(lexer.Parse("(a)", lexer.ModePattern), r)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "[0:1]  ("))
	assert.Contains(t, lines[0], "Capturing group #1.")
	assert.Contains(t, lines[1], "  a")
	assert.Contains(t, lines[1], `Matches a "a" character`)
	assert.Contains(t, lines[2], "Capturing group #1.")

	out, err = FormatTokens(lexer.Parse("(", lexer.ModePattern), r)
	require.NoError(t, err)
	assert.Contains(t, out, "ERROR: Unmatched opening parenthesis.")

	out, err = FormatTokens(lexer.Parse("", lexer.ModePattern), r)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFormatTokens_ControlCharacters(t *testing.T) {
	t.Parallel()
	r := docs.NewRenderer(nil, docs.ModeDevelopment, nil)

	out, err := FormatTokens(lexer.Parse("\t", lexer.ModePattern), r)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, `\t`)
}

func TestFormatMatches(t *testing.T) {
	t.Parallel()
	r := docs.NewRenderer(nil, docs.ModeDevelopment, nil)

	result := executor.Result{
		Matches: executor.MatchList{
			{Num: 0, Start: 0, End: 2, Text: "ab", Groups: []executor.Group{{Valid: true, Start: 0, End: 1, Text: "a"}}},
		},
	}
	out, err := FormatMatches(result, r)
	require.NoError(t, err)
	assert.Equal(t, "match #0 [0:2]\n  match: ab\n  range: 0-1\n  group #1: a\n", out)

	out, err = FormatMatches(executor.Result{}, r)
	require.NoError(t, err)
	assert.Equal(t, "no match\n", out)

	out, err = FormatMatches(executor.Result{Code: types.CodeTimeout}, r)
	require.NoError(t, err)
	assert.Equal(t, "timeout: ERROR: The expression took too long to execute and was stopped.\n", out)
}
