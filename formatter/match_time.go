package formatter

import "github.com/gnoverse/regexr/internal/types"

// MatchTimeFormatter lays out diagnostics raised while running a pattern
// against sample text. The whole pattern is underlined and a note explains
// what the run observed.
type MatchTimeFormatter struct{}

func (f *MatchTimeFormatter) IssueTemplate() string {
	return `{{header .Code .Severity .MaxLineNumWidth .Filename .Line .Column -}}
{{snippet .Pattern .Line .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .Pattern .Start .End -}}
{{note .Note}}
`
}

var matchTimeNotes = map[types.Code]string{
	types.CodeInfinite: "a global search stopped at a zero-width match that did not advance; matches found before it are kept",
	types.CodeTimeout:  "the run exceeded its time budget and its matches were discarded; look for nested quantifiers",
}
