package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/lint"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile      string
	timeout      time.Duration
	matchTimeout time.Duration
	verbose      bool

	config lint.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "regexr [paths...]",
	Short:            "regexr - explain, run and lint regular expressions",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger, err = newLogger(verbose); err != nil {
			return err
		}
		if config, err = lint.LoadConfig(cfgFile); err != nil {
			return err
		}
		if matchTimeout > 0 {
			config.Timeout = matchTimeout
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'regexr' is entered
			_ = cmd.Help()
			return
		}
		// Format: regexr [path1 path2 ...] => behaves like the lint subcommand
		lintCmd.Run(lintCmd, args)
	},
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", lint.DefaultConfigPath, "Configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Overall timeout of a command")
	rootCmd.PersistentFlags().DurationVar(&matchTimeout, "match-timeout", 0, "Time budget of a single match run (overrides the configuration)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(docsCmd)
}
