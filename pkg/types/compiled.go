package types

import "github.com/sandrolain/treepath/pkg/tree"

// CompiledPath is the artifact produced by parsing (and, once
// checked, type-checking) a path expression: the AST root, the value
// pool backing it, the arena owning the AST's node memory, and the
// original source text for error reporting.
//
// CompiledPath corresponds to spec.md §3's "Compiled path", minus the
// evaluation-time fields (origin node, lazily-evaluated node-set,
// cursor) which the root treepath package layers on top since they
// belong to one particular use of the compiled expression against one
// particular tree.
type CompiledPath struct {
	AST    *Expr
	Pool   *ValuePool
	Arena  *NodeArena
	Source string

	// Checked is set once the checker has assigned a Type to every
	// Expr reachable from AST. It guards against evaluating an
	// unchecked AST (EINTERNAL if attempted).
	Checked bool
}

// EvalState carries the mutable state of one location-path
// evaluation (spec.md §3's "Evaluation state", evaluation-time
// portion — the parse-time portion, the expression stack, lives in
// pkg/parser instead).
type EvalState struct {
	Pool *ValuePool

	// Context is the current context node, with its 1-based position
	// and the length of the node-set it was drawn from. These back
	// the last()/position() builtins and predicate filtering.
	Context    tree.Node
	ContextPos int
	ContextLen int

	// Stack holds intermediate value handles produced during the
	// post-order walk of spec.md §4.4.
	Stack []Handle

	Code     ErrorCode
	ErrPos   int
	ErrMsg   string
}

func NewEvalState(pool *ValuePool) *EvalState {
	return &EvalState{Pool: pool, Code: NOERROR}
}

func (s *EvalState) Fail(code ErrorCode, pos int, msg string) {
	if s.Code != NOERROR {
		return
	}
	s.Code = code
	s.ErrPos = pos
	s.ErrMsg = msg
}

func (s *EvalState) Failed() bool { return s.Code != NOERROR }

func (s *EvalState) Push(h Handle) { s.Stack = append(s.Stack, h) }

func (s *EvalState) Pop() Handle {
	n := len(s.Stack) - 1
	h := s.Stack[n]
	s.Stack = s.Stack[:n]
	return h
}
