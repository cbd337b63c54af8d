package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnoverse/regexr/docs"
	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/internal"
	"github.com/gnoverse/regexr/internal/types"
)

// DefaultConfigPath is the configuration file looked up when none is given.
const DefaultConfigPath = ".regexr.yaml"

type LintEngine interface {
	Run(filePath string) ([]types.Issue, error)
	RunSource(source []byte) ([]types.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// New builds an engine from the configuration file at configurationPath.
// An empty path, or the default path when the file does not exist, yields
// the default configuration.
func New(configurationPath string, logger *zap.Logger, opts ...internal.EngineOption) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(config, logger, opts...)
}

// NewWithConfig builds an engine from an already decoded configuration.
func NewWithConfig(config Config, logger *zap.Logger, opts ...internal.EngineOption) (*internal.Engine, error) {
	mode, err := docs.ParseMode(config.DocsMode)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := []internal.EngineOption{
		internal.WithLogger(logger),
		internal.WithRenderer(docs.NewRenderer(nil, mode, logger)),
		internal.WithMatchTimeout(config.Timeout),
	}
	engine, err := internal.NewEngine(config.Rules, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	for _, path := range config.Ignore {
		engine.IgnorePath(path)
	}
	return engine, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]types.Issue, error),
) ([]types.Issue, error) {
	var allIssues []types.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]types.Issue, error),
) ([]types.Issue, error) {
	var allIssues []types.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return allIssues, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProgressOutput receives the progress bar of directory walks.
var ProgressOutput io.Writer = os.Stderr

// ProcessPath lints a single file, or every pattern file below a directory
// on a pool of workers. A failing file does not stop the others; the issues
// collected are returned with the joined file errors. When ctx ends, the
// issues collected so far are returned with ctx.Err().
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]types.Issue, error),
) ([]types.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		return processor(engine, path)
	}

	var files []string
	err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasDesiredExtension(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	defer bar.Finish()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		issues = make([]types.Issue, 0)
		errs   []error
		sem    = make(chan struct{}, runtime.NumCPU())
	)

dispatch:
	for _, filePath := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			fileIssues, err := processor(engine, fp)
			mu.Lock()
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				errs = append(errs, fmt.Errorf("%s: %w", fp, err))
			} else {
				issues = append(issues, fileIssues...)
			}
			mu.Unlock()
			_ = bar.Add(1)
		}(filePath)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return issues, err
	}
	return issues, errors.Join(errs...)
}

func ProcessFile(engine LintEngine, filePath string) ([]types.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]types.Issue, error) {
	return engine.RunSource(source)
}

var desiredExtensions = map[string]bool{
	".regex": true,
	".yaml":  true,
	".yml":   true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)] && filepath.Base(path) != DefaultConfigPath
}

// Config is the content of a .regexr.yaml file.
type Config struct {
	Name     string                          `yaml:"name"`
	Timeout  time.Duration                   `yaml:"timeout,omitempty"`
	DocsMode string                          `yaml:"docs_mode,omitempty"`
	Ignore   []string                        `yaml:"ignore,omitempty"`
	Rules    map[types.Code]types.ConfigRule `yaml:"rules"`
}

// DefaultConfig is the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Name:     "regexr",
		Timeout:  executor.DefaultTimeout,
		DocsMode: docs.ModeProduction.String(),
		Rules:    map[types.Code]types.ConfigRule{},
	}
}

// LoadConfig reads the configuration at path over the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}
	for code := range config.Rules {
		if _, err := types.ParseCode(code.String()); err != nil {
			return config, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return config, nil
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
