// Package tree defines the external tree contract that the path
// engine evaluates against. Callers supply their own Node
// implementation; the engine never constructs nodes itself except
// through a Mutator, and only when expanding a path.
package tree

// Node is a read-only view onto one node of a labelled tree.
//
// The root of a tree is its own parent: Parent() on the root returns
// the root itself, never nil. FirstChild and NextSibling return nil to
// mean "does not exist" (no children, no further siblings); Label and
// Value report absence through their boolean result.
type Node interface {
	// Label returns the node's name and whether it has one. A node
	// without a label cannot be matched by any name test other than
	// the wildcard.
	Label() (string, bool)

	// Value returns the node's scalar value and whether it has one.
	Value() (string, bool)

	// Parent returns the node's parent. The root is its own parent.
	Parent() Node

	// FirstChild returns the first child in document order, or nil.
	FirstChild() Node

	// NextSibling returns the next sibling in document order, or nil.
	NextSibling() Node
}

// Mutator is implemented by trees that support the expand operation
// (spec.md §4.8): creating missing children along a path and pruning
// subtrees.
type Mutator interface {
	Node

	// MakeChild creates and returns a new child of this node with the
	// given label. Implementations decide ordering (e.g. append).
	MakeChild(label string) Mutator

	// RemoveChild detaches child from this node's child list. It is a
	// no-op if child is not a direct child of this node.
	RemoveChild(child Mutator)

	// FreeSubtree releases any resources held by this node and its
	// descendants. Called after RemoveChild when a subtree is being
	// discarded permanently.
	FreeSubtree()
}

// Root reports whether n is the root of its tree, per the root-as-
// self-loop convention: n is root iff n.Parent() == n.
func Root(n Node) bool {
	if n == nil {
		return false
	}
	p := n.Parent()
	return p == n
}
