package internal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/lexer"
)

// Case is one pattern to check, optionally with sample text to run it
// against and a substitution string.
type Case struct {
	Pattern      string `yaml:"pattern"`
	Flags        string `yaml:"flags,omitempty"`
	Text         string `yaml:"text,omitempty"`
	Substitution string `yaml:"substitution,omitempty"`

	// Line is the 1-based line the case starts on in its file.
	Line int `yaml:"-"`
}

// Mode returns ModeExpression for a slash-delimited pattern and ModePattern
// otherwise.
func (c *Case) Mode() lexer.Mode {
	if strings.HasPrefix(c.Pattern, "/") {
		return lexer.ModeExpression
	}
	return lexer.ModePattern
}

// Parse scans the pattern.
func (c *Case) Parse() *lexer.ParseResult {
	return lexer.Parse(c.Pattern, c.Mode())
}

// Source returns the pattern body and flags to execute. The flags of a
// slash-delimited pattern take precedence over the Flags field.
func (c *Case) Source(res *lexer.ParseResult) (string, executor.Flags, error) {
	body, letters := c.Pattern, c.Flags
	if res.Mode == lexer.ModeExpression {
		body, letters = res.Body(), res.Flags
	}
	flags, err := executor.ParseFlags(letters)
	if err != nil {
		return "", 0, err
	}
	return body, flags, nil
}

var errNoCases = errors.New("no cases")

// ParseCases decodes a YAML case file. The document is either a mapping with
// a "cases" sequence or a single case mapping.
func ParseCases(data []byte) ([]Case, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, errNoCases
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", doc.Line)
	}

	items := []*yaml.Node{doc}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "cases" {
			continue
		}
		seq := doc.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: cases must be a sequence", seq.Line)
		}
		items = seq.Content
	}

	cases := make([]Case, 0, len(items))
	for _, item := range items {
		var c Case
		if err := item.Decode(&c); err != nil {
			return nil, fmt.Errorf("line %d: %w", item.Line, err)
		}
		if c.Pattern == "" {
			return nil, fmt.Errorf("line %d: case has no pattern", item.Line)
		}
		c.Line = item.Line
		cases = append(cases, c)
	}
	if len(cases) == 0 {
		return nil, errNoCases
	}
	return cases, nil
}

// ParsePatternList reads one pattern per line. Blank lines and lines
// starting with "#" are skipped.
func ParsePatternList(data []byte) ([]Case, error) {
	var cases []Case
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cases = append(cases, Case{Pattern: text, Line: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	return cases, nil
}
