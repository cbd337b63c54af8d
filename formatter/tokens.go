package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal/types"
	"github.com/gnoverse/regexr/lexer"
)

// FormatTokens renders one row per token in chain order: the rune span, the
// source text indented by depth, the kind and its description.
func FormatTokens(res *lexer.ParseResult, r *docs.Renderer) (string, error) {
	type row struct {
		tok        *lexer.Token
		span, text string
		desc       string
	}

	var (
		rows                []row
		spanWidth, txtWidth int
		kindWidth           int
	)
	for tok := res.First(); tok != nil; tok = res.Token(tok.Next) {
		desc, err := r.DescribeToken(res, tok)
		if err != nil {
			return "", fmt.Errorf("describe %s: %w", tok, err)
		}
		rw := row{
			tok:  tok,
			span: fmt.Sprintf("[%d:%d]", tok.I, tok.End),
			text: strings.Repeat("  ", tok.Depth) + visible(res.Text(tok)),
			desc: desc,
		}
		spanWidth = max(spanWidth, len(rw.span))
		txtWidth = max(txtWidth, utf8.RuneCountInString(rw.text))
		kindWidth = max(kindWidth, len(tok.Kind.String()))
		rows = append(rows, rw)
	}

	var sb strings.Builder
	for _, rw := range rows {
		sb.WriteString(lineStyle.Sprint(pad(rw.span, spanWidth)))
		sb.WriteString("  ")
		sb.WriteString(noStyle.Sprint(pad(rw.text, txtWidth)))
		sb.WriteString("  ")
		if rw.tok.Err != types.CodeNone {
			sb.WriteString(errorStyle.Sprint(pad(rw.tok.Kind.String(), kindWidth)))
		} else {
			sb.WriteString(ruleStyle.Sprint(pad(rw.tok.Kind.String(), kindWidth)))
		}
		sb.WriteString("  ")
		sb.WriteString(rw.desc)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// FormatMatches renders every record of a match result followed by the
// result's diagnostic, if any.
func FormatMatches(result executor.Result, r *docs.Renderer) (string, error) {
	var sb strings.Builder
	if len(result.Matches) == 0 && result.Code == types.CodeNone {
		sb.WriteString(noStyle.Sprint("no match\n"))
	}
	for i := range result.Matches {
		rec := &result.Matches[i]
		sb.WriteString(matchStyle.Sprintf("match #%d", rec.Num))
		sb.WriteString(lineStyle.Sprintf(" [%d:%d]\n", rec.Start, rec.End))
		for _, line := range strings.Split(r.DescribeMatch(rec), "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	if result.Code != types.CodeNone {
		desc, err := r.DescribeCode(result.Code)
		if err != nil {
			return "", err
		}
		sb.WriteString(errorStyle.Sprintf("%s: ", result.Code))
		sb.WriteString(messageStyle.Sprintf("%s\n", desc))
	}
	return sb.String(), nil
}

// visible escapes control characters so a row stays on one line.
func visible(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch {
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
