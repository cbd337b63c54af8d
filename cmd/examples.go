package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal/types"
	"github.com/gnoverse/regexr/lexer"
)

// examplesCmd: regexr examples
var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Run every example of the reference through the lexer and the executor",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		results, err := runExamples(ctx, docs.Default().Examples(), config.Timeout, cmd.ErrOrStderr())
		if err != nil {
			logger.Error("Error running examples", zap.Error(err))
			os.Exit(1)
		}
		printExampleResults(cmd.OutOrStdout(), results)
	},
}

type exampleResult struct {
	Example docs.Example
	Codes   []types.Code
	Matches int
	Err     error
}

// runExamples evaluates the examples concurrently. Results keep the order of
// examples.
func runExamples(ctx context.Context, examples []docs.Example, matchTimeout time.Duration, progress io.Writer) ([]exampleResult, error) {
	results := make([]exampleResult, len(examples))
	bar := progressbar.NewOptions(len(examples),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("examples"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, ex := range examples {
		i, ex := i, ex
		g.Go(func() error {
			defer func() { _ = bar.Add(1) }()

			r := exampleResult{Example: ex}
			res := lexer.Parse(ex.Pattern, lexer.ModePattern)
			for _, d := range res.Errors {
				r.Codes = append(r.Codes, d.Code)
			}
			if !res.HasErrors() {
				session := executor.NewSession(executor.WithTimeout(matchTimeout), executor.WithLogger(logger))
				out, err := session.Match(ctx, ex.Pattern, executor.FlagGlobal, ex.Text)
				if err != nil {
					if ctx.Err() != nil {
						return fmt.Errorf("example %s: %w", ex.Node.Title(), err)
					}
					logger.Warn("example failed", zap.String("example", ex.Node.Title()), zap.Error(err))
					r.Err = err
				}
				r.Matches = len(out.Matches)
				if out.Code != types.CodeNone {
					r.Codes = append(r.Codes, out.Code)
				}
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = bar.Finish()
	return results, nil
}

func printExampleResults(out io.Writer, results []exampleResult) {
	width := 0
	for _, r := range results {
		width = max(width, len(r.Example.Node.Title()))
	}
	for _, r := range results {
		status := "ok"
		switch {
		case r.Err != nil:
			status = "fail"
		case len(r.Codes) > 0:
			codes := make([]string, len(r.Codes))
			for i, c := range r.Codes {
				codes[i] = c.String()
			}
			status = strings.Join(codes, ",")
		}
		fmt.Fprintf(out, "%-*s  %-4s  %3d matches  %s\n", width, r.Example.Node.Title(), status, r.Matches, r.Example.Pattern)
	}
}
