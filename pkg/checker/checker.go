// Package checker implements the static type checker of spec.md
// §4.3: a bottom-up walk over the AST that assigns a Type to every
// expression and rejects ill-typed programs before evaluation ever
// runs. There is no implicit coercion between the four types.
package checker

import (
	"github.com/sandrolain/treepath/pkg/types"
)

// Check type-checks every expression reachable from root, assigning
// expr.Type as it goes. It returns the first type error encountered
// (spec.md §7's first-failure-wins discipline applies here too: the
// walk still completes, but only the first violation is reported).
func Check(pool *types.ValuePool, root *types.Expr) error {
	c := &checker{pool: pool}
	c.check(root)
	if c.err != nil {
		return c.err
	}
	return nil
}

type checker struct {
	pool *types.ValuePool
	err  *types.Error
}

func (c *checker) fail(pos int, msg string) {
	if c.err != nil {
		return
	}
	c.err = types.NewError(types.ETYPE, msg, pos)
}

// check assigns expr.Type and returns it. On a type violation it
// records the first error and still returns a best-effort type so
// that the walk can finish without panicking on nil dereferences.
func (c *checker) check(expr *types.Expr) types.Type {
	if expr == nil {
		return types.TypeBoolean
	}

	switch expr.Kind {
	case types.ExprLocPath:
		c.checkLocPath(expr)
		expr.Type = types.TypeNodeSet

	case types.ExprValue:
		expr.Type = c.pool.Get(expr.Handle).Type

	case types.ExprApp:
		for i, arg := range expr.Args {
			_ = i
			c.check(arg)
		}
		if got, want := len(expr.Args), expr.Func.Arity(); got != want {
			c.fail(expr.Position, "wrong argument count for "+expr.Func.String())
		}
		expr.Type = expr.Func.ReturnType()

	case types.ExprBinary:
		lt := c.check(expr.Left)
		rt := c.check(expr.Right)
		switch expr.Op {
		case types.OpEQ, types.OpNEQ:
			if !equalityOperandsOK(lt, rt) {
				c.fail(expr.Position, "operands of "+expr.Op.String()+" must both be nodeset/string, or both number")
			}
			expr.Type = types.TypeBoolean
		case types.OpPlus, types.OpMinus, types.OpStar:
			if lt != types.TypeNumber || rt != types.TypeNumber {
				c.fail(expr.Position, "operands of "+expr.Op.String()+" must be number")
			}
			expr.Type = types.TypeNumber
		default:
			c.fail(expr.Position, "unknown binary operator")
			expr.Type = types.TypeBoolean
		}
	}

	return expr.Type
}

// equalityOperandsOK implements spec.md §4.3's equality row:
// (nodeset ∪ string)² or (number, number).
func equalityOperandsOK(l, r types.Type) bool {
	if l == types.TypeNumber || r == types.TypeNumber {
		return l == types.TypeNumber && r == types.TypeNumber
	}
	isStringy := func(t types.Type) bool {
		return t == types.TypeNodeSet || t == types.TypeString
	}
	return isStringy(l) && isStringy(r)
}

func (c *checker) checkLocPath(expr *types.Expr) {
	for _, step := range expr.Steps {
		for _, pred := range step.Predicates {
			t := c.check(pred.Expr)
			switch t {
			case types.TypeNodeSet, types.TypeNumber, types.TypeBoolean:
				// ok: spec.md §4.3 predicate semantics
			default:
				c.fail(pred.Expr.Position, "predicate must be nodeset, number or boolean")
			}
		}
	}
}
