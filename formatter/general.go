package formatter

type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{header .Code .Severity .MaxLineNumWidth .Filename .Line .Column -}}
{{snippet .Pattern .Line .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .Pattern .Start .End}}
`
}
