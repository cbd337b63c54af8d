package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/annotate"
	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/formatter"
	"github.com/gnoverse/regexr/internal"
	"github.com/gnoverse/regexr/lexer"
)

var (
	explainAt    int
	explainSubst bool
)

// explainCmd: regexr explain PATTERN
var explainCmd = &cobra.Command{
	Use:   "explain PATTERN",
	Short: "Describe every token of a pattern",
	Long: `Prints one row per token of PATTERN with its description. A pattern
written as /body/flags is read as an expression literal.
Example) regexr explain '/(\d+)-\1/g' --at 5`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExplain(cmd.OutOrStdout(), newExplainer(), args[0], explainSubst, explainAt); err != nil {
			logger.Error("Error explaining pattern", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	explainCmd.Flags().IntVar(&explainAt, "at", -1, "Describe the token at this rune offset and what it selects")
	explainCmd.Flags().BoolVar(&explainSubst, "subst", false, "Read the argument as a substitution string")
}

func newExplainer() *internal.Explainer {
	mode, err := docs.ParseMode(config.DocsMode)
	if err != nil {
		logger.Warn("Unknown docs mode, using production", zap.Error(err))
		mode = docs.ModeProduction
	}
	renderer := docs.NewRenderer(nil, mode, logger)
	session := executor.NewSession(executor.WithTimeout(config.Timeout), executor.WithLogger(logger))
	return internal.NewExplainer(renderer, session)
}

func runExplain(out io.Writer, x *internal.Explainer, source string, subst bool, at int) error {
	// tokens only: the pattern is not executed
	c := internal.Case{Pattern: source}
	rep := &internal.Report{Case: c}
	if subst {
		rep.Parse = lexer.Parse(source, lexer.ModeSubstitution)
	} else {
		rep.Parse = c.Parse()
	}

	table, err := formatter.FormatTokens(rep.Parse, x.Renderer())
	if err != nil {
		return err
	}
	fmt.Fprint(out, table)

	if at < 0 {
		return nil
	}
	hover, err := x.TokenAt(rep, at)
	if err != nil {
		return err
	}
	if hover == nil {
		fmt.Fprintf(out, "\nno token at offset %d\n", at)
		return nil
	}
	fmt.Fprintf(out, "\n%s\n%s\n", hover.Description, markSpans(source, hover.Selection.Spans()))
	return nil
}

// markSpans underlines the selected spans of source with carets.
func markSpans(source string, spans []annotate.Span) string {
	n := len([]rune(source))
	marks := make([]rune, n)
	for i := range marks {
		marks[i] = ' '
	}
	for _, s := range spans {
		for i := s.Start; i < s.End && i < n; i++ {
			marks[i] = '^'
		}
	}
	return source + "\n" + strings.TrimRight(string(marks), " ")
}
