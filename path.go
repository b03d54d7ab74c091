package treepath

import (
	"context"

	"github.com/sandrolain/treepath/pkg/evaluator"
	"github.com/sandrolain/treepath/pkg/tree"
	"github.com/sandrolain/treepath/pkg/types"
)

// Path is a compiled path expression bound to one origin node. It
// owns a lazily-populated result node-set and a cursor into it
// (spec.md §3's "compiled path"); evaluation runs at most once, on
// the first call to First, Next or FindOne. ExpandTree does not use
// that result set: it walks the path again on every call.
//
// A Path is not safe for concurrent use from multiple goroutines; the
// Evaluator it was built with may be shared across many Paths, and is
// itself safe for concurrent use.
type Path struct {
	compiled *types.CompiledPath
	eval     *evaluator.Evaluator
	origin   tree.Node

	evaluated bool
	nodes     []tree.Node
	cursor    int

	err *types.Error
}

func (p *Path) ensureEvaluated(ctx context.Context) *types.Error {
	if p.err != nil {
		return p.err
	}
	if p.evaluated {
		return nil
	}
	nodes, err := p.eval.Evaluate(ctx, p.compiled, p.origin)
	if err != nil {
		if te, ok := err.(*types.Error); ok {
			p.err = te
		} else {
			p.err = types.NewError(types.EINTERNAL, err.Error(), 0)
		}
		return p.err
	}
	p.nodes = nodes
	p.evaluated = true
	return nil
}

// First triggers evaluation against the origin bound at Parse time,
// positions the cursor at index 0, and returns the first result
// (spec.md §4.7). ok is false when the result node-set is empty or
// evaluation failed — callers distinguish the two via Error.
func (p *Path) First(ctx context.Context) (node tree.Node, ok bool) {
	if err := p.ensureEvaluated(ctx); err != nil {
		return nil, false
	}
	p.cursor = 0
	if len(p.nodes) == 0 {
		return nil, false
	}
	return p.nodes[0], true
}

// Next advances the cursor and returns the node at its new position,
// or ok=false once the node-set is exhausted.
func (p *Path) Next(ctx context.Context) (node tree.Node, ok bool) {
	if err := p.ensureEvaluated(ctx); err != nil {
		return nil, false
	}
	p.cursor++
	if p.cursor >= len(p.nodes) {
		return nil, false
	}
	return p.nodes[p.cursor], true
}

// FindOne reports whether exactly one node matches: 1 with that node,
// 0 with none matching, -1 when more than one matches (spec.md
// §4.7). A -1 here is a cardinality result, not an error; check Error
// separately to distinguish "ambiguous" from "evaluation failed".
func (p *Path) FindOne(ctx context.Context) (found int, node tree.Node) {
	if err := p.ensureEvaluated(ctx); err != nil {
		return 0, nil
	}
	switch len(p.nodes) {
	case 0:
		return 0, nil
	case 1:
		return 1, p.nodes[0]
	default:
		return -1, nil
	}
}

// ExpandTree implements spec.md §4.8's create-if-missing expansion:
// it walks as far as the existing tree already matches, then creates
// the remaining steps as children, provided every remaining step is a
// plain child::name test. It returns 0 and the deepest node (existing
// or newly created) on success, or -1 on any ambiguity or creation
// failure — in which case any nodes created during this call have
// already been removed and freed.
//
// When steps remain to be created, the deepest matched node (the
// anchor) must implement tree.Mutator; if it does not, ExpandTree
// returns -1 without creating anything.
func (p *Path) ExpandTree(ctx context.Context) (result int, node tree.Node) {
	matched, lastSet, err := p.eval.ExpandPrefix(ctx, p.compiled, p.origin)
	if err != nil {
		if te, ok := err.(*types.Error); ok {
			p.err = te
		}
		return -1, nil
	}
	if len(lastSet) != 1 {
		return -1, nil
	}

	anchor := lastSet[0]
	tail := p.compiled.AST.Steps[matched:]
	if len(tail) == 0 {
		return 0, anchor
	}

	anchorMut, ok := anchor.(tree.Mutator)
	if !ok {
		return -1, nil
	}

	var firstCreated tree.Mutator
	cur := anchorMut
	for _, step := range tail {
		if step.Wildcard || step.Name == "" || step.Axis != types.AxisChild {
			abortExpansion(anchorMut, firstCreated)
			return -1, nil
		}
		child := cur.MakeChild(step.Name)
		if child == nil {
			abortExpansion(anchorMut, firstCreated)
			return -1, nil
		}
		if firstCreated == nil {
			firstCreated = child
		}
		cur = child
	}
	return 0, cur
}

// abortExpansion undoes a partially-created chain of children: since
// each created node is the sole child of the one before it, removing
// and freeing the first one takes every descendant with it.
func abortExpansion(anchor tree.Mutator, firstCreated tree.Mutator) {
	if firstCreated == nil {
		return
	}
	anchor.RemoveChild(firstCreated)
	firstCreated.FreeSubtree()
}

// Error returns the message, original source text, and zero-based
// byte offset of the failure that set this Path's error state, or
// ("", source, 0) if no error has occurred (spec.md §4.7's
// error(path) → (message, text, offset)).
func (p *Path) Error() (message, text string, offset int) {
	text = p.compiled.Source
	if p.err == nil {
		return "", text, 0
	}
	return p.err.Message, text, p.err.Position
}

// Code returns the stable error code of this Path's failure, or
// types.NOERROR if none occurred.
func (p *Path) Code() types.ErrorCode {
	if p.err == nil {
		return types.NOERROR
	}
	return p.err.Code
}
