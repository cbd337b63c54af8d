package docs

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// ErrNoNode is returned when no content node documents a token or code.
var ErrNoNode = errors.New("no documentation node")

// Node is one entry of the content tree.
type Node struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Desc    string   `yaml:"desc"`
	Ext     string   `yaml:"ext"`
	Tip     string   `yaml:"tip"`
	Example []string `yaml:"example"`
	Token   string   `yaml:"token"`
	Kids    []*Node  `yaml:"kids"`

	parent *Node
	tmpl   *template.Template // parsed Tip, or Desc when there is no tip
}

// Parent returns the enclosing node, nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Title is the label, or the id when the node has none.
func (n *Node) Title() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// HasExample reports whether the node carries a [pattern, text] pair.
func (n *Node) HasExample() bool { return len(n.Example) == 2 }

// Tree is the documentation content. It is read-only once loaded and safe
// for concurrent readers.
type Tree struct {
	Library *Node             `yaml:"library"`
	Misc    *Node             `yaml:"misc"`
	Errors  map[string]string `yaml:"errors"`

	ids map[string]*Node
}

var (
	defaultOnce sync.Once
	defaultTree *Tree
)

// Default returns the process-wide tree built from the embedded content.
func Default() *Tree {
	defaultOnce.Do(func() {
		t, err := Load(defaultContent)
		if err != nil {
			panic(fmt.Sprintf("docs: embedded content: %v", err))
		}
		defaultTree = t
	})
	return defaultTree
}

// Load decodes a content tree, generates the escaped-character reference
// entries and indexes the nodes by id. Misc nodes shadow library nodes with
// the same id.
func Load(data []byte) (*Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if t.Library == nil {
		return nil, errors.New("content has no library section")
	}
	if t.Misc == nil {
		t.Misc = &Node{ID: "misc"}
	}

	t.ids = make(map[string]*Node)
	for _, root := range []*Node{t.Library, t.Misc} {
		if err := t.index(root, nil); err != nil {
			return nil, err
		}
	}
	if err := t.addEscapedChars(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tree) index(n *Node, parent *Node) error {
	n.parent = parent
	if n.ID != "" {
		t.ids[n.ID] = n
	}
	if src := n.template(); src != "" {
		tmpl, err := template.New(n.Title()).Funcs(funcs).Parse(src)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Title(), err)
		}
		n.tmpl = tmpl
	}
	for _, kid := range n.Kids {
		if err := t.index(kid, n); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) template() string {
	if n.Tip != "" {
		return n.Tip
	}
	return n.Desc
}

// escaped characters listed in the reference, with the letter used for the
// non-printing ones
const (
	escapedChars   = "\t\n\v\f\r\x00.\\+*?^$[]{}()|/"
	escapedLetters = "tnvfr0"
)

// addEscapedChars appends a reference entry for every escapable character
// to the escchars section, described with the char template.
func (t *Tree) addEscapedChars() error {
	section, char := t.ids["escchars"], t.ids["char"]
	if section == nil || char == nil || char.tmpl == nil {
		return nil
	}
	for i, c := range escapedChars {
		token := string(c)
		if i < len(escapedLetters) {
			token = string(escapedLetters[i])
		}
		label := string(c)
		if name, ok := nonPrinting[c]; ok {
			label = strings.ToLower(name)
		}

		var buf bytes.Buffer
		if err := char.tmpl.Execute(&buf, &View{Code: int(c)}); err != nil {
			return fmt.Errorf("escaped char %q: %w", c, err)
		}
		section.Kids = append(section.Kids, &Node{
			Label:  label,
			Desc:   buf.String(),
			Token:  `\` + token,
			parent: section,
		})
	}
	return nil
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id string) *Node {
	return t.ids[id]
}

// Walk visits every node depth first, library before misc. Returning false
// from fn skips the node's kids.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var walk func(n *Node)
	walk = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, kid := range n.Kids {
			walk(kid)
		}
	}
	walk(t.Library)
	walk(t.Misc)
}

// Example is a runnable [pattern, text] pair of the content tree.
type Example struct {
	Node    *Node
	Pattern string
	Text    string
}

// Examples lists every node example in tree order.
func (t *Tree) Examples() []Example {
	var out []Example
	t.Walk(func(n *Node) bool {
		if n.HasExample() {
			out = append(out, Example{Node: n, Pattern: n.Example[0], Text: n.Example[1]})
		}
		return true
	})
	return out
}
