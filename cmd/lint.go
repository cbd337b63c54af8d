package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/formatter"
	"github.com/gnoverse/regexr/internal"
	"github.com/gnoverse/regexr/internal/types"
	"github.com/gnoverse/regexr/lint"
)

var (
	ignoreRules    string
	ignorePaths    string
	lintJsonOutput bool
	outPath        string
	cacheDir       string
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check pattern lists (.regex) and case files (.yaml)",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var opts []internal.EngineOption
		if cacheDir != "" {
			var deps []string
			if _, err := os.Stat(cfgFile); err == nil {
				deps = append(deps, cfgFile)
			}
			cache, err := internal.NewCache(cacheDir, deps...)
			if err != nil {
				logger.Warn("Cache disabled", zap.Error(err))
			} else {
				opts = append(opts, internal.WithCache(cache))
			}
		}

		engine, err := lint.NewWithConfig(config, logger, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize lint engine", zap.Error(err))
		}

		for _, rule := range splitList(ignoreRules) {
			engine.IgnoreRule(rule)
		}
		for _, path := range splitList(ignorePaths) {
			engine.IgnorePath(path)
		}

		os.Exit(runNormalLintProcess(ctx, cmd.OutOrStdout(), logger, engine, args, lintJsonOutput, outPath))
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules (syntax, execution) or codes to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of path globs to ignore")
	lintCmd.Flags().BoolVar(&lintJsonOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory to cache results of unchanged files in")
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// runNormalLintProcess lints paths and prints the issues. It returns the
// process exit code: 1 when an error-severity issue was found or linting
// failed.
func runNormalLintProcess(ctx context.Context, out io.Writer, logger *zap.Logger, engine lint.LintEngine, paths []string, isJson bool, jsonOutput string) int {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		return 1
	}

	if err := printIssues(out, issues, isJson, jsonOutput); err != nil {
		logger.Error("Error printing issues", zap.Error(err))
		return 1
	}

	for _, issue := range issues {
		if issue.Severity == types.SeverityError {
			return 1
		}
	}
	return 0
}

func printIssues(out io.Writer, issues []types.Issue, isJson bool, jsonOutput string) error {
	issuesByFile := make(map[string][]types.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	if !isJson {
		// text output
		for _, filename := range sortedFiles {
			fmt.Fprint(out, formatter.GenerateFormattedIssue(issuesByFile[filename]))
		}
		return nil
	}

	// JSON output
	d, err := json.Marshal(issuesByFile)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}
	if jsonOutput == "" {
		_, err = fmt.Fprintln(out, string(d))
		return err
	}
	return os.WriteFile(jsonOutput, d, 0o644)
}
