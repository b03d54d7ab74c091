package evaluator_test

import (
	"context"
	"testing"

	"github.com/sandrolain/treepath/internal/memtree"
	"github.com/sandrolain/treepath/pkg/checker"
	"github.com/sandrolain/treepath/pkg/evaluator"
	"github.com/sandrolain/treepath/pkg/parser"
	"github.com/sandrolain/treepath/pkg/tree"
)

// scenarioTree builds spec.md §8's concrete fixture: root r with
// children a (value "1"), b (value "2"), a (value "1"); the second a
// has a child c.
func scenarioTree(t *testing.T) (root *memtree.Node, a1, b, a2, c *memtree.Node) {
	t.Helper()
	root = memtree.NewRoot()
	a1 = root.MakeChild("a").(*memtree.Node)
	a1.SetValue("1")
	b = root.MakeChild("b").(*memtree.Node)
	b.SetValue("2")
	a2 = root.MakeChild("a").(*memtree.Node)
	a2.SetValue("1")
	c = a2.MakeChild("c").(*memtree.Node)
	return root, a1, b, a2, c
}

func evalPath(t *testing.T, origin tree.Node, expr string) []tree.Node {
	t.Helper()
	compiled, err := parser.Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", expr, err)
	}
	if err := checker.Check(compiled.Pool, compiled.AST); err != nil {
		t.Fatalf("Check(%q) error: %v", expr, err)
	}
	compiled.Checked = true

	ev := evaluator.New()
	nodes, err := ev.Evaluate(context.Background(), compiled, origin)
	if err != nil {
		t.Fatalf("Evaluate(%q) error: %v", expr, err)
	}
	return nodes
}

func TestEvaluate_ConcreteScenarios(t *testing.T) {
	root, a1, b, a2, c := scenarioTree(t)
	_ = b

	t.Run("/a matches both a children in order", func(t *testing.T) {
		got := evalPath(t, root, "/a")
		want := []tree.Node{a1, a2}
		assertNodes(t, got, want)
	})

	t.Run("/a[2] matches only the second a child", func(t *testing.T) {
		got := evalPath(t, root, "/a[2]")
		assertNodes(t, got, []tree.Node{a2})
	})

	t.Run("/a[. = \"1\"] matches both a children", func(t *testing.T) {
		got := evalPath(t, root, `/a[. = "1"]`)
		assertNodes(t, got, []tree.Node{a1, a2})
	})

	t.Run("/a[b] matches none", func(t *testing.T) {
		got := evalPath(t, root, "/a[b]")
		assertNodes(t, got, nil)
	})

	t.Run("//c finds the single descendant", func(t *testing.T) {
		got := evalPath(t, root, "//c")
		assertNodes(t, got, []tree.Node{c})
	})

	t.Run("/a[position() = last()] matches the second a", func(t *testing.T) {
		got := evalPath(t, root, "/a[position() = last()]")
		assertNodes(t, got, []tree.Node{a2})
	})
}

func TestEvaluate_BoundaryCases(t *testing.T) {
	root, _, _, _, _ := scenarioTree(t)

	t.Run("/ alone matches exactly the root", func(t *testing.T) {
		got := evalPath(t, root, "/")
		assertNodes(t, got, []tree.Node{root})
	})

	t.Run("empty string literal equals an absent value", func(t *testing.T) {
		named := memtree.NewRoot()
		named.MakeChild("novalue")
		got := evalPath(t, named, `/novalue[. = ""]`)
		if len(got) != 1 {
			t.Fatalf("expected 1 match, got %d", len(got))
		}
	})
}

func TestEvaluate_Arithmetic(t *testing.T) {
	// Arithmetic only ever appears inside a predicate (the root
	// expression must itself be a LocPath per spec.md §8's invariant),
	// so exercise it there: "a + b - c" parses as "(a+b)-c" and
	// "a * b + c" as "(a*b)+c" (spec.md §8's laws), verified by
	// checking which predicates fire.
	root := memtree.NewRoot()
	root.MakeChild("x")

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"additive left-associativity", "/x[1 + 2 - 3 = 0]", true},
		{"multiplication binds inside additive", "/x[2 * 3 + 4 = 10]", true},
		{"multiplication binds before subtraction", "/x[10 - 2 * 3 = 4]", true},
		{"wrong grouping would fail", "/x[10 - 2 * 3 = 24]", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalPath(t, root, tt.expr)
			if (len(got) == 1) != tt.want {
				t.Errorf("evalPath(%q) matched=%v, want matched=%v", tt.expr, len(got) == 1, tt.want)
			}
		})
	}
}

func TestEvaluate_NodeSetInequalityIsIndependentOfEquality(t *testing.T) {
	// a="1", a="2", c="1": //a = /c and //a != /c must both hold, since
	// '=' and '!=' over node-sets are independent existential tests,
	// not negations of each other ((1,1) matches '=', (2,1) matches
	// '!=').
	root := memtree.NewRoot()
	a1 := root.MakeChild("a").(*memtree.Node)
	a1.SetValue("1")
	a2 := root.MakeChild("a").(*memtree.Node)
	a2.SetValue("2")
	c := root.MakeChild("c").(*memtree.Node)
	c.SetValue("1")
	_ = c

	if got := evalPath(t, root, "/a[//a = /c]"); len(got) == 0 {
		t.Error("expected //a = /c to hold (the (1,1) pair matches)")
	}
	if got := evalPath(t, root, "/a[//a != /c]"); len(got) == 0 {
		t.Error("expected //a != /c to hold (the (2,1) pair is unequal)")
	}
}

func assertNodes(t *testing.T, got []tree.Node, want []tree.Node) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d (got=%v want=%v)", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("node[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
