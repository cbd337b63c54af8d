package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 100 * time.Millisecond

// ReportFunc receives the reports of one evaluation of a watched file, or
// the error that prevented it.
type ReportFunc func(reports []*Report, err error)

// Watcher re-explains the cases of a file each time it is written.
type Watcher struct {
	explainer *Explainer
	logger    *zap.Logger
	path      string
	debounce  time.Duration
}

// NewWatcher returns a watcher for the case file at path.
func NewWatcher(explainer *Explainer, path string, logger *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{explainer: explainer, logger: logger, path: abs, debounce: defaultDebounce}, nil
}

// Run evaluates the file once, then again after every change, until ctx is
// done. Editors that save by renaming are handled by watching the directory.
func (w *Watcher) Run(ctx context.Context, fn ReportFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}

	fn(w.evaluate(ctx))

	// several writes in quick succession are evaluated once
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			fn(w.evaluate(ctx))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) evaluate(ctx context.Context) ([]*Report, error) {
	content, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	cases, err := ParseCases(content)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("evaluating", zap.String("file", w.path), zap.Int("cases", len(cases)))
	reports := make([]*Report, 0, len(cases))
	for _, c := range cases {
		rep, err := w.explainer.Explain(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", c.Line, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
