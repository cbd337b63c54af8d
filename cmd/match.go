package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/formatter"
	"github.com/gnoverse/regexr/internal"
	"github.com/gnoverse/regexr/internal/types"
)

var (
	matchFlags string
	matchSubst string
	matchAt    string
)

// matchCmd: regexr match PATTERN TEXT
var matchCmd = &cobra.Command{
	Use:   "match PATTERN TEXT",
	Short: "Run a pattern over sample text",
	Long: `Runs PATTERN over TEXT and lists the matches with their capture groups.
Use - as TEXT to read it from standard input.
Example) regexr match '(\w+)@(\w+)' 'a@b c@d' --flags g --subst '$2@$1'`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		text := args[1]
		if text == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				logger.Fatal("Failed to read text", zap.Error(err))
			}
			text = string(b)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		c := internal.Case{Pattern: args[0], Flags: matchFlags, Text: text, Substitution: matchSubst}
		if err := runMatch(ctx, cmd.OutOrStdout(), newExplainer(), c, matchAt); err != nil {
			logger.Error("Error running pattern", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchFlags, "flags", "", "Flags (g, i, m) for a pattern that is not a /body/flags literal")
	matchCmd.Flags().StringVar(&matchSubst, "subst", "", "Substitution string to apply to the matches")
	matchCmd.Flags().StringVar(&matchAt, "at", "", "Describe the match at LINE:COL of the text")
}

func runMatch(ctx context.Context, out io.Writer, x *internal.Explainer, c internal.Case, at string) error {
	rep, err := x.Explain(ctx, c)
	if err != nil {
		return err
	}

	if rep.Parse.HasErrors() {
		issues := make([]types.Issue, 0, len(rep.Parse.Errors))
		for _, d := range rep.Parse.Errors {
			msg, err := x.Renderer().Message(d.Code)
			if err != nil {
				return err
			}
			issues = append(issues, types.Issue{
				Code:     d.Code,
				Severity: types.SeverityError,
				Filename: "<pattern>",
				Line:     1,
				Pattern:  c.Pattern,
				Start:    d.Start,
				End:      d.End,
				Message:  msg,
			})
		}
		fmt.Fprint(out, formatter.GenerateFormattedIssue(issues))
		return nil
	}

	list, err := formatter.FormatMatches(rep.Result, x.Renderer())
	if err != nil {
		return err
	}
	fmt.Fprint(out, list)

	if rep.Ran && rep.Subst != nil {
		if rep.Subst.HasErrors() {
			fmt.Fprintf(out, "\nsubstitution: %d error(s) in %q\n", len(rep.Subst.Errors), c.Substitution)
		} else {
			fmt.Fprintf(out, "\nsubstitution: %s\n", rep.Replaced)
		}
	}

	if at == "" {
		return nil
	}
	line, col, err := parsePosition(at)
	if err != nil {
		return err
	}
	rec, desc, err := x.MatchAt(rep, line, col)
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintf(out, "\nno match at %s\n", at)
		return nil
	}
	fmt.Fprintf(out, "\n%s\n", desc)
	return nil
}

// parsePosition reads LINE:COL, or a bare COL on the first line.
func parsePosition(s string) (line, col int, err error) {
	lineStr, colStr, found := strings.Cut(s, ":")
	if !found {
		lineStr, colStr = "1", s
	}
	if line, err = strconv.Atoi(lineStr); err != nil {
		return 0, 0, fmt.Errorf("invalid position %q: %w", s, err)
	}
	if col, err = strconv.Atoi(colStr); err != nil {
		return 0, 0, fmt.Errorf("invalid position %q: %w", s, err)
	}
	return line, col, nil
}
