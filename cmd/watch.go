package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/formatter"
	"github.com/gnoverse/regexr/internal"
)

// watchCmd: regexr watch FILE
var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-run the cases of a file every time it is saved",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		x := newExplainer()
		w, err := internal.NewWatcher(x, args[0], logger)
		if err != nil {
			logger.Error("Error watching file", zap.Error(err))
			os.Exit(1)
		}

		out := cmd.OutOrStdout()
		err = w.Run(ctx, func(reports []*internal.Report, err error) {
			if err != nil {
				logger.Error("Error evaluating cases", zap.String("file", args[0]), zap.Error(err))
				return
			}
			if err := printReports(out, x, reports); err != nil {
				logger.Error("Error printing cases", zap.Error(err))
			}
		})
		if err != nil {
			logger.Error("Error watching file", zap.Error(err))
			os.Exit(1)
		}
	},
}

var caseHeader = color.New(color.FgCyan, color.Bold)

func printReports(out io.Writer, x *internal.Explainer, reports []*internal.Report) error {
	for _, rep := range reports {
		fmt.Fprintln(out, caseHeader.Sprintf("line %d: %s", rep.Case.Line, rep.Case.Pattern))

		table, err := formatter.FormatTokens(rep.Parse, x.Renderer())
		if err != nil {
			return err
		}
		fmt.Fprint(out, table)

		if rep.Ran {
			list, err := formatter.FormatMatches(rep.Result, x.Renderer())
			if err != nil {
				return err
			}
			fmt.Fprint(out, list)
			if rep.Subst != nil && !rep.Subst.HasErrors() {
				fmt.Fprintf(out, "substitution: %s\n", rep.Replaced)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
