package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/docs"
)

// docsCmd: regexr docs [id]
var docsCmd = &cobra.Command{
	Use:   "docs [id]",
	Short: "Browse the reference",
	Long: `Without an id, prints the outline of the reference. With an id, prints
the entry: its description, details and example.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tree := docs.Default()
		if len(args) == 0 {
			printOutline(cmd.OutOrStdout(), tree)
			return
		}
		if err := printNode(cmd.OutOrStdout(), tree, args[0]); err != nil {
			logger.Error("Error reading reference", zap.Error(err))
			os.Exit(1)
		}
	},
}

func printOutline(out io.Writer, tree *docs.Tree) {
	depth := func(n *docs.Node) int {
		d := 0
		for p := n.Parent(); p != nil; p = p.Parent() {
			d++
		}
		return d
	}
	tree.Walk(func(n *docs.Node) bool {
		id := ""
		if n.ID != "" {
			id = " (" + n.ID + ")"
		}
		fmt.Fprintf(out, "%s%s%s\n", strings.Repeat("  ", depth(n)), n.Title(), id)
		return true
	})
}

func printNode(out io.Writer, tree *docs.Tree, id string) error {
	n := tree.Node(id)
	if n == nil {
		return fmt.Errorf("%w: %s", docs.ErrNoNode, id)
	}
	fmt.Fprintln(out, n.Title())
	if n.Desc != "" {
		fmt.Fprintf(out, "\n%s\n", n.Desc)
	}
	if n.Ext != "" {
		fmt.Fprintf(out, "\n%s\n", n.Ext)
	}
	if n.HasExample() {
		fmt.Fprintf(out, "\nexample: /%s/g on %q\n", n.Example[0], n.Example[1])
	}
	return nil
}
