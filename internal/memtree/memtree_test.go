package memtree_test

import (
	"strings"
	"testing"

	"github.com/sandrolain/treepath/internal/memtree"
	"github.com/sandrolain/treepath/pkg/tree"
)

func TestParse_NestedIndentation(t *testing.T) {
	root, err := memtree.Parse(strings.NewReader("a=1\n  b=2\n  c\n    d=4\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	a := root.FirstChild()
	if a == nil {
		t.Fatal("expected root to have a first child")
	}
	label, _ := a.Label()
	value, hasValue := a.Value()
	if label != "a" || !hasValue || value != "1" {
		t.Fatalf("got label=%q value=%q hasValue=%v, want a=1", label, value, hasValue)
	}

	b := a.FirstChild()
	bLabel, _ := b.Label()
	bValue, _ := b.Value()
	if bLabel != "b" || bValue != "2" {
		t.Fatalf("got b child %q=%q, want b=2", bLabel, bValue)
	}

	c := b.NextSibling()
	if c == nil {
		t.Fatal("expected b to have a following sibling c")
	}
	cLabel, _ := c.Label()
	_, cHasValue := c.Value()
	if cLabel != "c" || cHasValue {
		t.Fatalf("got c label=%q hasValue=%v, want c with no value", cLabel, cHasValue)
	}

	d := c.FirstChild()
	dLabel, _ := d.Label()
	dValue, _ := d.Value()
	if dLabel != "d" || dValue != "4" {
		t.Fatalf("got d child %q=%q, want d=4", dLabel, dValue)
	}
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	root, err := memtree.Parse(strings.NewReader("a\n\n  b\n\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	a := root.FirstChild()
	if a == nil {
		t.Fatal("expected a child a")
	}
	b := a.FirstChild()
	if b == nil {
		t.Fatal("expected a to have child b")
	}
}

func TestParse_RejectsOddIndentation(t *testing.T) {
	_, err := memtree.Parse(strings.NewReader("a\n b\n"))
	if err == nil {
		t.Fatal("expected an error for odd indentation")
	}
}

func TestParse_RejectsOverIndentedLine(t *testing.T) {
	_, err := memtree.Parse(strings.NewReader("a\n      b\n"))
	if err == nil {
		t.Fatal("expected an error for a line indented further than its parent allows")
	}
}

func TestParse_RejectsEmptyLabel(t *testing.T) {
	_, err := memtree.Parse(strings.NewReader("=1\n"))
	if err == nil {
		t.Fatal("expected an error for an empty label")
	}
}

func TestNode_RootIsOwnParent(t *testing.T) {
	root := memtree.NewRoot()
	if root.Parent() != tree.Node(root) {
		t.Fatal("expected the root to be its own parent (self-loop sentinel)")
	}
}

func TestNode_MakeChildAppendsInOrder(t *testing.T) {
	root := memtree.NewRoot()
	root.MakeChild("a")
	root.MakeChild("b")
	root.MakeChild("c")

	var labels []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		l, _ := n.Label()
		labels = append(labels, l)
	}
	want := []string{"a", "b", "c"}
	if len(labels) != len(want) {
		t.Fatalf("got %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("got %v, want %v", labels, want)
		}
	}
}

func TestNode_RemoveChildMiddle(t *testing.T) {
	root := memtree.NewRoot()
	root.MakeChild("a")
	b := root.MakeChild("b")
	c := root.MakeChild("c")

	root.RemoveChild(b)

	var labels []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		l, _ := n.Label()
		labels = append(labels, l)
	}
	if len(labels) != 2 || labels[0] != "a" || labels[1] != "c" {
		t.Fatalf("got %v, want [a c]", labels)
	}

	// Removing the last child must also update lastChild bookkeeping:
	// appending afterwards should still land after c.
	root.RemoveChild(c)
	d := root.MakeChild("d")
	if root.FirstChild().NextSibling() != tree.Node(d) {
		t.Fatal("expected d to be appended as the new last child after removals")
	}
}

func TestNode_FreeSubtreeClearsChildrenAndValue(t *testing.T) {
	root := memtree.NewRoot()
	parent := root.MakeChild("p").(*memtree.Node)
	parent.SetValue("x")
	parent.MakeChild("child")

	parent.FreeSubtree()

	if parent.FirstChild() != nil {
		t.Error("expected no children after FreeSubtree")
	}
	if _, hasValue := parent.Value(); hasValue {
		t.Error("expected no value after FreeSubtree")
	}
}
