package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnoverse/regexr/internal/types"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
	matchStyle   = color.New(color.FgGreen)
	noStyle      = color.New(color.FgWhite)
)

// issueFormatter is the interface that wraps the IssueTemplate method.
// Implementations are responsible for laying out one kind of diagnostic.
type issueFormatter interface {
	IssueTemplate() string
}

// getIssueFormatter returns the formatter for code. Diagnostics produced by
// running a pattern get a formatter that explains the run; everything else
// uses the GeneralIssueFormatter.
func getIssueFormatter(code types.Code) issueFormatter {
	if code.IsMatchTime() {
		return &MatchTimeFormatter{}
	}
	return &GeneralIssueFormatter{}
}

// GenerateFormattedIssue formats a slice of issues into a human-readable string.
func GenerateFormattedIssue(issues []types.Issue) string {
	var builder strings.Builder
	for _, issue := range issues {
		builder.WriteString(buildIssue(issue, getIssueFormatter(issue.Code)))
	}
	return builder.String()
}

/***** Issue Formatter Builder *****/

type IssueData struct {
	Code            string
	Severity        string
	Filename        string
	Line            int
	Column          int
	Start           int
	End             int
	Pattern         string
	Message         string
	Note            string
	Padding         string
	MaxLineNumWidth int
}

var funcMap = template.FuncMap{
	"header":              header,
	"snippet":             patternSnippet,
	"underlineAndMessage": underlineAndMessage,
	"note":                note,
}

func buildIssue(issue types.Issue, formatter issueFormatter) string {
	maxLineNumWidth := calculateMaxLineNumWidth(issue.Line)

	data := IssueData{
		Code:            issue.Code.String(),
		Severity:        issue.Severity.String(),
		Filename:        issue.Filename,
		Line:            issue.Line,
		Column:          issue.Start + 1,
		Start:           issue.Start,
		End:             issue.End,
		Pattern:         issue.Pattern,
		Message:         issue.Message,
		Note:            matchTimeNotes[issue.Code],
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		MaxLineNumWidth: maxLineNumWidth,
	}

	tmpl, err := template.New("issue").Funcs(funcMap).Parse(formatter.IssueTemplate())
	if err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(code, severity string, maxLineNumWidth int, filename string, line, column int) string {
	var endString string
	switch severity {
	case "ERROR":
		endString = errorStyle.Sprint("error: ")
	case "WARNING":
		endString = warningStyle.Sprint("warning: ")
	case "INFO":
		endString = messageStyle.Sprint("info: ")
	}

	endString += ruleStyle.Sprintf("%s\n", code)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d\n", filename, line, column)

	return endString
}

func patternSnippet(pattern string, line, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	lineNum := fmt.Sprintf("%*d", maxLineNumWidth, line)
	endString += lineStyle.Sprintf("%s | ", lineNum)
	endString += noStyle.Sprintf("%s\n", pattern)
	return endString
}

func underlineAndMessage(message, padding, pattern string, start, end int) string {
	endString := lineStyle.Sprintf("%s| ", padding)

	runes := []rune(pattern)
	start = clamp(start, 0, len(runes))
	end = clamp(end, start, len(runes))

	underlineStart := calculateVisualColumn(runes, start)
	underlineLength := calculateVisualColumn(runes, end) - underlineStart
	if underlineLength < 1 {
		underlineLength = 1
	}

	endString += strings.Repeat(" ", underlineStart)
	endString += messageStyle.Sprintf("%s\n", strings.Repeat("~", underlineLength))

	endString += lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprintf("%s\n", message)

	return endString
}

func note(note string) string {
	if note == "" {
		return ""
	}
	endString := noteStyle.Sprint("Note: ")
	endString += lineStyle.Sprintf("%s\n", note)
	return endString
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn returns the display column of rune offset column,
// expanding tabs.
func calculateVisualColumn(line []rune, column int) int {
	visualColumn := 0
	for i, ch := range line {
		if i == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
