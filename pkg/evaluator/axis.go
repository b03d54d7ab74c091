package evaluator

import (
	"github.com/sandrolain/treepath/pkg/tree"
	"github.com/sandrolain/treepath/pkg/types"
)

// axisIterator yields the raw (unfiltered by name test) sequence of
// candidate nodes an axis produces from a context node, realising
// spec.md §4.5's step_first/step_next table. Each call returns the
// next candidate, or nil when the axis is exhausted.
type axisIterator func() tree.Node

// newAxisIterator returns the step_first/step_next generator for
// axis rooted at ctx.
func newAxisIterator(axis types.Axis, ctx tree.Node) axisIterator {
	switch axis {
	case types.AxisSelf:
		return onceIterator(ctx)

	case types.AxisChild:
		next := ctx.FirstChild()
		return func() tree.Node {
			n := next
			if n != nil {
				next = n.NextSibling()
			}
			return n
		}

	case types.AxisDescendant:
		next := ctx.FirstChild()
		return func() tree.Node {
			n := next
			if n != nil {
				next = preOrderNext(n, ctx)
			}
			return n
		}

	case types.AxisDescendantOrSelf:
		next := ctx
		return func() tree.Node {
			n := next
			if n != nil {
				next = preOrderNext(n, ctx)
			}
			return n
		}

	case types.AxisParent:
		if tree.Root(ctx) {
			return emptyIterator
		}
		return onceIterator(ctx.Parent())

	case types.AxisAncestor:
		next := ctx
		exhausted := tree.Root(ctx)
		return func() tree.Node {
			if exhausted {
				return nil
			}
			n := next.Parent()
			next = n
			if tree.Root(n) {
				exhausted = true
			}
			return n
		}

	case types.AxisRoot:
		node := ctx
		for !tree.Root(node) {
			node = node.Parent()
		}
		return onceIterator(node)

	default:
		return emptyIterator
	}
}

// onceIterator returns an axisIterator that yields n exactly once.
func onceIterator(n tree.Node) axisIterator {
	done := false
	return func() tree.Node {
		if done || n == nil {
			return nil
		}
		done = true
		return n
	}
}

func emptyIterator() tree.Node { return nil }

// preOrderNext returns the next node in pre-order traversal after
// node, confined to the subtree rooted at subtreeRoot (spec.md §4.5's
// "pre-order within subtree rooted at ctx" for descendant and
// descendant-or-self).
func preOrderNext(node, subtreeRoot tree.Node) tree.Node {
	if c := node.FirstChild(); c != nil {
		return c
	}
	cur := node
	for cur != subtreeRoot {
		if s := cur.NextSibling(); s != nil {
			return s
		}
		cur = cur.Parent()
	}
	return nil
}
