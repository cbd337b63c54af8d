package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/annotate"
	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal"
	"github.com/gnoverse/regexr/internal/types"
	"github.com/gnoverse/regexr/lint"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testExplainer() *internal.Explainer {
	renderer := docs.NewRenderer(nil, docs.ModeDevelopment, zap.NewNop())
	return internal.NewExplainer(renderer, executor.NewSession(executor.WithTimeout(time.Second)))
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"syntax", []string{"syntax"}},
		{" syntax , timeout ,", []string{"syntax", "timeout"}},
		{",,", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, splitList(tt.input))
		})
	}
}

func TestParsePosition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		line    int
		col     int
		wantErr bool
	}{
		{"2:5", 2, 5, false},
		{"7", 1, 7, false},
		{"x:1", 0, 0, true},
		{"1:y", 0, 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			line, col, err := parsePosition(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestMarkSpans(t *testing.T) {
	t.Parallel()
	got := markSpans("a(b)c", []annotate.Span{{Start: 1, End: 2}, {Start: 3, End: 4}})
	assert.Equal(t, "a(b)c\n ^ ^", got)

	got = markSpans("ab", []annotate.Span{{Start: 1, End: 9}})
	assert.Equal(t, "ab\n ^", got)
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".regexr.yaml")

	got, err := initConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := lint.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, lint.DefaultConfig().Name, cfg.Name)
	assert.Equal(t, lint.DefaultConfig().Timeout, cfg.Timeout)
}

func TestPrintIssues(t *testing.T) {
	t.Parallel()
	issues := []types.Issue{
		{Code: types.CodeGroupOpen, Severity: types.SeverityError, Filename: "b.regex", Line: 1, Pattern: "(a", Start: 0, End: 1, Message: "Unmatched opening parenthesis."},
		{Code: types.CodeInfinite, Severity: types.SeverityWarning, Filename: "a.regex", Line: 2, Pattern: "a*", Start: 0, End: 2, Message: "empty matches"},
	}

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, printIssues(&out, issues, false, ""))
		s := out.String()
		assert.Contains(t, s, "error: groupopen")
		assert.Contains(t, s, "warning: infinite")
		assert.Less(t, strings.Index(s, "a.regex"), strings.Index(s, "b.regex"))
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, printIssues(&out, issues, true, ""))

		var decoded map[string][]map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		require.Len(t, decoded["b.regex"], 1)
		assert.Equal(t, "groupopen", decoded["b.regex"][0]["Code"])
		assert.Equal(t, "error", decoded["b.regex"][0]["Severity"])
		assert.Equal(t, "warning", decoded["a.regex"][0]["Severity"])
	})

	t.Run("json file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "issues.json")
		var out bytes.Buffer
		require.NoError(t, printIssues(&out, issues, true, path))
		assert.Empty(t, out.String())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Filename":"a.regex"`)
	})
}

func TestRunMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		c        internal.Case
		at       string
		contains []string
		wantErr  bool
	}{
		{
			name: "global with groups",
			c:    internal.Case{Pattern: `(\w)@(\w)`, Flags: "g", Text: "a@b c@d"},
			contains: []string{
				"match #0 [0:3]",
				"group #1: a",
				"match #1 [4:7]",
				"group #2: d",
			},
		},
		{
			name:     "substitution",
			c:        internal.Case{Pattern: `/(\w)@(\w)/g`, Text: "a@b c@d", Substitution: "$2@$1"},
			contains: []string{"substitution: b@a d@c"},
		},
		{
			name:     "no match",
			c:        internal.Case{Pattern: `x`, Text: "abc"},
			contains: []string{"no match"},
		},
		{
			name:     "syntax error",
			c:        internal.Case{Pattern: `(a`, Text: "abc"},
			contains: []string{"error: groupopen", "Unmatched opening parenthesis."},
		},
		{
			name:     "infinite",
			c:        internal.Case{Pattern: `a*`, Flags: "g", Text: "b"},
			contains: []string{"empty matches"},
		},
		{
			name:     "match at position",
			c:        internal.Case{Pattern: `\d+`, Flags: "g", Text: "ab\n12 34"},
			at:       "2:5",
			contains: []string{"match: 34"},
		},
		{
			name:     "nothing at position",
			c:        internal.Case{Pattern: `\d+`, Text: "ab 12"},
			at:       "1:1",
			contains: []string{"no match at 1:1"},
		},
		{
			name:    "bad position",
			c:       internal.Case{Pattern: `a`, Text: "a"},
			at:      "one",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			err := runMatch(context.Background(), &out, testExplainer(), tt.c, tt.at)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunExplain(t *testing.T) {
	t.Parallel()

	t.Run("table", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, runExplain(&out, testExplainer(), `(a)\1`, false, -1))
		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "[0:1]"))
		assert.Contains(t, lines[1], "a")
	})

	t.Run("hover", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, runExplain(&out, testExplainer(), `(a)\1`, false, 3))
		assert.Contains(t, out.String(), "(a)\\1\n^^^^^")
	})

	t.Run("outside", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, runExplain(&out, testExplainer(), `ab`, false, 10))
		assert.Contains(t, out.String(), "no token at offset 10")
	})

	t.Run("substitution", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, runExplain(&out, testExplainer(), `$1-$&`, true, -1))
		assert.Contains(t, out.String(), "$1")
		assert.Contains(t, out.String(), "$&")
	})
}

func TestRunExamples(t *testing.T) {
	t.Parallel()
	examples := docs.Default().Examples()
	require.NotEmpty(t, examples)

	var progress bytes.Buffer
	results, err := runExamples(context.Background(), examples, time.Second, &progress)
	require.NoError(t, err)
	require.Len(t, results, len(examples))

	for i, r := range results {
		assert.Equal(t, examples[i].Pattern, r.Example.Pattern)
		if r.Example.Pattern == "(ha)+" {
			assert.NoError(t, r.Err)
			assert.Equal(t, 3, r.Matches)
			assert.Empty(t, r.Codes)
		}
	}

	var out bytes.Buffer
	printExampleResults(&out, results)
	assert.Len(t, strings.Split(strings.TrimRight(out.String(), "\n"), "\n"), len(results))
	assert.Contains(t, out.String(), "ok")
}

func TestRunExamples_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var progress bytes.Buffer
	_, err := runExamples(ctx, docs.Default().Examples(), time.Second, &progress)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintNode(t *testing.T) {
	t.Parallel()
	tree := docs.Default()

	var out bytes.Buffer
	require.NoError(t, printNode(&out, tree, "dot"))
	assert.Contains(t, out.String(), "Matches any character except line breaks.")
	assert.Contains(t, out.String(), `example: /./g on "glib jocks vex dwarves!"`)

	err := printNode(&out, tree, "nope")
	assert.ErrorIs(t, err, docs.ErrNoNode)
}

func TestPrintOutline(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	printOutline(&out, docs.Default())
	assert.Contains(t, out.String(), "\n      dot (dot)\n")
	assert.Contains(t, out.String(), "match any\n")
}
