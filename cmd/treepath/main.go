// Command treepath is a command-line driver for the path-expression
// engine: it loads a tree from the indented label=value format
// internal/memtree parses, then evaluates path expressions against it
// in one of three modes.
//
// The CLI supports three modes of operation, mirroring the shape
// common to small Go language-tool REPLs:
//   - Interactive REPL mode (-i flag)
//   - Single expression mode (-e flag)
//   - Batch mode (positional argument: a file of one expression per
//     line, each evaluated against the same tree)
//
// Examples:
//
//	treepath -t tree.txt -e '/a/b[1]'
//	treepath -t tree.txt -i
//	treepath -t tree.txt queries.txt
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sandrolain/treepath"
	"github.com/sandrolain/treepath/internal/memtree"
	"github.com/sandrolain/treepath/pkg/tree"
)

func main() {
	var (
		treeFile    = flag.String("t", "", "tree file in indented label=value format")
		expression  = flag.String("e", "", "evaluate a single expression")
		interactive = flag.Bool("i", false, "interactive REPL mode")
		help        = flag.Bool("h", false, "show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	if *treeFile == "" {
		fmt.Fprintln(os.Stderr, "treepath: -t TREEFILE is required")
		os.Exit(1)
	}
	root, err := loadTree(*treeFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "treepath: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *expression != "":
		evalOnce(root, *expression)
	case *interactive:
		startREPL(root)
	case flag.NArg() > 0:
		evalFile(root, flag.Arg(0))
	default:
		showHelp()
	}
}

func showHelp() {
	fmt.Println("treepath - evaluate path expressions over a labelled tree")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  treepath -t TREEFILE [options] [queryfile]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -t TREEFILE   tree in indented label=value format (required)")
	fmt.Println("  -e EXPR       evaluate a single expression")
	fmt.Println("  -i            interactive REPL mode")
	fmt.Println("  -h            show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  treepath -t tree.txt -e '/a/b[1]'")
	fmt.Println("  treepath -t tree.txt -i")
	fmt.Println("  treepath -t tree.txt queries.txt")
}

func loadTree(path string) (*memtree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree file: %w", err)
	}
	defer f.Close()
	root, err := memtree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing tree file: %w", err)
	}
	return root, nil
}

// evalOnce compiles expr against root and prints every matching node,
// one per line, or the parse/type/evaluation error.
func evalOnce(root tree.Node, expr string) {
	ctx := context.Background()
	path, err := treepath.Parse(root, expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	n, ok := path.First(ctx)
	if !ok {
		if msg, _, offset := path.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "error at offset %d: %s\n", offset, msg)
			os.Exit(1)
		}
		fmt.Println("(no match)")
		return
	}
	for ok {
		fmt.Println(formatNode(n))
		n, ok = path.Next(ctx)
	}
}

func evalFile(root tree.Node, filename string) {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "treepath: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Printf("> %s\n", line)
		evalOnce(root, line)
	}
}

// startREPL reads path expressions from stdin, one per line, and
// evaluates each against the same tree. The REPL continues until EOF
// or ":quit"/":q".
func startREPL(root tree.Node) {
	fmt.Println("treepath repl - type :quit to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("treepath> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			break
		}
		if strings.HasPrefix(line, ":") {
			handleReplCommand(line)
			continue
		}

		path, err := treepath.Parse(root, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		n, ok := path.First(ctx)
		if !ok {
			fmt.Println("(no match)")
			continue
		}
		for ok {
			fmt.Println(formatNode(n))
			n, ok = path.Next(ctx)
		}
	}
}

func handleReplCommand(cmd string) {
	switch cmd {
	case ":help", ":h":
		fmt.Println("Available commands:")
		fmt.Println("  :help, :h    show this help")
		fmt.Println("  :quit, :q    exit the REPL")
	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
}

func formatNode(n tree.Node) string {
	label, hasLabel := n.Label()
	if !hasLabel {
		label = "(unlabelled)"
	}
	if v, ok := n.Value(); ok {
		return fmt.Sprintf("%s = %s", label, v)
	}
	return label
}
