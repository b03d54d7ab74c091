package evaluator

import (
	"context"

	"github.com/sandrolain/treepath/pkg/tree"
	"github.com/sandrolain/treepath/pkg/types"
)

// ExpandPrefix runs the same per-step axis and predicate expansion as
// Evaluate, but stops at the first step whose working set comes back
// empty — once a working set is empty every later step is empty too,
// since each step only ever grows candidates out of the previous
// set's members. It returns how many leading steps matched
// successfully and the (non-empty) working set produced by the last
// of them, which is path.AST.Steps[0:0] → {origin} when even the
// first step fails to match anything.
//
// This is spec.md §4.8's "record the deepest working set N[last] that
// is non-empty" — the root treepath package uses it to implement
// create-if-missing expansion without duplicating the axis/predicate
// walk.
func (e *Evaluator) ExpandPrefix(ctx context.Context, path *types.CompiledPath, origin tree.Node) (matched int, lastSet []tree.Node, err error) {
	if !path.Checked {
		return 0, nil, types.NewError(types.EINTERNAL, "expanding an unchecked path", 0)
	}
	if path.AST.Kind != types.ExprLocPath {
		return 0, nil, types.NewError(types.EINTERNAL, "prefix expansion requires a location path", path.AST.Position)
	}

	st := types.NewEvalState(path.Pool)
	working := []tree.Node{origin}
	last := working

	for i, step := range path.AST.Steps {
		select {
		case <-ctx.Done():
			return matched, last, types.NewError(types.EINTERNAL, "expansion cancelled", path.AST.Position)
		default:
		}

		next := expandStep(step, working)
		next = e.filterPredicates(ctx, st, step, next)
		if st.Failed() {
			return matched, last, types.NewError(st.Code, st.ErrMsg, st.ErrPos)
		}
		if len(next) == 0 {
			break
		}
		working = next
		last = working
		matched = i + 1
	}

	return matched, last, nil
}
