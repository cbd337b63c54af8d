// Package internal holds the application layer of regexr: checking pattern
// collections and explaining single cases.
//
// Key components:
//
// Case: a pattern with optional sample text and substitution, read from a
// pattern list (one pattern per line) or a YAML case file.
//
// Engine: the linting engine. It applies every LintRule to the cases of a
// file and returns types.Issue values with configured severities. Results
// can be kept in a Cache keyed by file content.
//
// Explainer: scans a case, runs it through an executor.Session and answers
// hover and match queries with descriptions from the docs package.
//
// Watcher: re-explains a case file whenever it changes.
//
// Usage:
//
//	engine, err := internal.NewEngine(cfg.Rules, internal.WithLogger(logger))
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("patterns.regex")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("%s:%d: %s\n", issue.Filename, issue.Line, issue.Message)
//	}
package internal
