package evaluator

import (
	"context"

	"github.com/sandrolain/treepath/pkg/tree"
	"github.com/sandrolain/treepath/pkg/types"
)

// evalLocPath is spec.md §4.5's central algorithm: seed N[0] with the
// current context node, then for each step expand candidates via the
// step's axis and filter them by name test and, in order, by each of
// the step's predicates. The final N[k] becomes the result node-set.
func (e *Evaluator) evalLocPath(ctx context.Context, st *types.EvalState, expr *types.Expr) types.Handle {
	savedCtx, savedPos, savedLen := st.Context, st.ContextPos, st.ContextLen
	defer func() { st.Context, st.ContextPos, st.ContextLen = savedCtx, savedPos, savedLen }()

	working := []tree.Node{savedCtx}

	for _, step := range expr.Steps {
		select {
		case <-ctx.Done():
			st.Fail(types.EINTERNAL, expr.Position, "evaluation cancelled")
			return 0
		default:
		}

		working = expandStep(step, working)
		working = e.filterPredicates(ctx, st, step, working)
		if st.Failed() {
			return 0
		}
	}

	return st.Pool.Put(types.Value{Type: types.TypeNodeSet, Nodes: working})
}

// expandStep realises spec.md §4.5 step 1: enumerate every axis
// candidate for every node in prev, keeping only those whose label
// satisfies the step's name test, in the order produced.
func expandStep(step *types.Step, prev []tree.Node) []tree.Node {
	var next []tree.Node
	for _, w := range prev {
		it := newAxisIterator(step.Axis, w)
		for n := it(); n != nil; n = it() {
			label, hasLabel := n.Label()
			if step.Matches(label, hasLabel) {
				next = append(next, n)
			}
		}
	}
	return next
}

// filterPredicates applies each of step's predicates in order,
// realising spec.md §4.5 step 2: ctx_pos numbers the pre-filter set,
// so positions are computed from working's index, not from the
// shrinking retained slice. Predicates run under a context that
// cannot be cancelled, so a location path nested inside a predicate
// never stops part-way through.
func (e *Evaluator) filterPredicates(ctx context.Context, st *types.EvalState, step *types.Step, working []tree.Node) []tree.Node {
	ctx = context.WithoutCancel(ctx)
	for _, pred := range step.Predicates {
		ctxLen := len(working)
		var kept []tree.Node
		for i, cand := range working {
			st.Context = cand
			st.ContextPos = i + 1
			st.ContextLen = ctxLen

			h := e.evalExpr(ctx, st, pred.Expr)
			if st.Failed() {
				return nil
			}
			if predicateKeeps(st.Pool.Get(h), i+1) {
				kept = append(kept, cand)
			}
		}
		working = kept
	}
	return working
}

// predicateKeeps implements spec.md §4.3/§4.5's predicate semantics:
// boolean keeps iff true, number n keeps iff ctx_pos == n, nodeset
// keeps iff non-empty.
func predicateKeeps(v types.Value, ctxPos int) bool {
	switch v.Type {
	case types.TypeBoolean:
		return v.Boolean
	case types.TypeNumber:
		return int(v.Number) == ctxPos
	case types.TypeNodeSet:
		return len(v.Nodes) > 0
	default:
		return false
	}
}
