package evaluator

import "github.com/sandrolain/treepath/pkg/types"

// evalBinary implements spec.md §4.4's Binary cases and §4.6's
// string/equality semantics.
func (e *Evaluator) evalBinary(st *types.EvalState, expr *types.Expr, lh, rh types.Handle) types.Handle {
	l := st.Pool.Get(lh)
	r := st.Pool.Get(rh)

	switch expr.Op {
	case types.OpEQ:
		return boolHandle(equal(l, r))
	case types.OpNEQ:
		return boolHandle(notEqual(l, r))

	case types.OpPlus:
		return st.Pool.Put(types.Value{Type: types.TypeNumber, Number: l.Number + r.Number})
	case types.OpMinus:
		return st.Pool.Put(types.Value{Type: types.TypeNumber, Number: l.Number - r.Number})
	case types.OpStar:
		return st.Pool.Put(types.Value{Type: types.TypeNumber, Number: l.Number * r.Number})

	default:
		st.Fail(types.EINTERNAL, expr.Position, "unknown binary operator")
		return 0
	}
}

func boolHandle(b bool) types.Handle {
	if b {
		return types.HandleTrue
	}
	return types.HandleFalse
}

// streq treats an absent and an empty string as equal (spec.md §4.6,
// §8 invariant "streq(absent, \"\") == true").
func streq(a string, aPresent bool, b string, bPresent bool) bool {
	if !aPresent {
		a = ""
	}
	if !bPresent {
		b = ""
	}
	return a == b
}

// notEqual implements spec.md §4.6's '!=' table directly rather than
// negating equal: for number/number and string/string it really is a
// negation, but for any pairing that involves a node-set, '=' and '!='
// are independent existential tests (exists a pair that streq's, vs.
// exists a pair that doesn't) and can both be true at once — e.g. a
// node-set {"1","2"} compared against {"1"} matches both "=" (the
// "1"/"1" pair) and "!=" (the "2"/"1" pair).
func notEqual(l, r types.Value) bool {
	switch {
	case l.Type == types.TypeNumber && r.Type == types.TypeNumber:
		return l.Number != r.Number

	case l.Type == types.TypeString && r.Type == types.TypeString:
		return !streq(l.Str, true, r.Str, true)

	case l.Type == types.TypeNodeSet && r.Type == types.TypeNodeSet:
		for _, a := range l.Nodes {
			av, aok := a.Value()
			for _, b := range r.Nodes {
				bv, bok := b.Value()
				if !streq(av, aok, bv, bok) {
					return true
				}
			}
		}
		return false

	case l.Type == types.TypeNodeSet && r.Type == types.TypeString:
		return nodesetUnequalsString(l, r.Str)
	case l.Type == types.TypeString && r.Type == types.TypeNodeSet:
		return nodesetUnequalsString(r, l.Str)

	default:
		return !equal(l, r)
	}
}

// equal implements spec.md §4.6's equality table for '='.
func equal(l, r types.Value) bool {
	switch {
	case l.Type == types.TypeNumber && r.Type == types.TypeNumber:
		return l.Number == r.Number

	case l.Type == types.TypeString && r.Type == types.TypeString:
		return streq(l.Str, true, r.Str, true)

	case l.Type == types.TypeNodeSet && r.Type == types.TypeNodeSet:
		for _, a := range l.Nodes {
			av, aok := a.Value()
			for _, b := range r.Nodes {
				bv, bok := b.Value()
				if streq(av, aok, bv, bok) {
					return true
				}
			}
		}
		return false

	case l.Type == types.TypeNodeSet && r.Type == types.TypeString:
		return nodesetMatchesString(l, r.Str)
	case l.Type == types.TypeString && r.Type == types.TypeNodeSet:
		return nodesetMatchesString(r, l.Str)

	default:
		return false
	}
}

func nodesetMatchesString(ns types.Value, s string) bool {
	for _, n := range ns.Nodes {
		v, ok := n.Value()
		if streq(v, ok, s, true) {
			return true
		}
	}
	return false
}

func nodesetUnequalsString(ns types.Value, s string) bool {
	for _, n := range ns.Nodes {
		v, ok := n.Value()
		if !streq(v, ok, s, true) {
			return true
		}
	}
	return false
}
