// Package evaluator implements the stack-based post-order evaluator
// of spec.md §4.4: it walks a checked AST, pushing intermediate
// results as value-pool handles, and realises location-path
// evaluation (§4.5) and predicate filtering over a caller-supplied
// tree.Node implementation.
package evaluator

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandrolain/treepath/pkg/cache"
	"github.com/sandrolain/treepath/pkg/tree"
	"github.com/sandrolain/treepath/pkg/types"
)

// Evaluator evaluates a checked CompiledPath against a tree.Node
// origin. A single Evaluator may be reused across many Evaluate
// calls; it holds no per-evaluation state itself.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when caching is enabled
}

// EvalOptions configures evaluator behaviour. Grounded on the
// teacher's EvalOptions — Caching/Cache/Logger/Debug/Timeout keep the
// same names and defaults; Concurrency and MaxDepth are dropped since
// this evaluator has no concurrent internal fan-out and no unbounded
// recursion of the kind the teacher's lambda/TCO evaluator had to
// guard against (a location path's recursion depth is bounded by the
// number of steps, which the parser already bounds via WithMaxDepth).
type EvalOptions struct {
	Caching   bool
	CacheSize int
	Cache     *cache.Cache
	Timeout   time.Duration
	Debug     bool
	Logger    *slog.Logger
}

type EvalOption func(*EvalOptions)

func WithCaching(enabled bool) EvalOption   { return func(o *EvalOptions) { o.Caching = enabled } }
func WithCacheSize(n int) EvalOption        { return func(o *EvalOptions) { o.CacheSize = n } }
func WithCache(c *cache.Cache) EvalOption   { return func(o *EvalOptions) { o.Cache = c } }
func WithTimeout(d time.Duration) EvalOption {
	return func(o *EvalOptions) { o.Timeout = d }
}
func WithDebug(enabled bool) EvalOption        { return func(o *EvalOptions) { o.Debug = enabled } }
func WithLogger(logger *slog.Logger) EvalOption {
	return func(o *EvalOptions) { o.Logger = logger }
}

// New creates an Evaluator with default options: no caching, no
// timeout, the default slog logger.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{}
	for _, o := range opts {
		o(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = cache.New(size)
	}

	return &Evaluator{opts: options, logger: options.Logger, cache: c}
}

// Cache returns the evaluator's expression cache, or nil.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Evaluate runs path's AST against origin and returns the resulting
// node-set in insertion order (spec.md §4.5; duplicates are not
// eliminated — see DESIGN.md's Open Question #2, a known, documented
// limitation carried over from the source this spec distils).
//
// ctx is checked for cancellation between the top-level steps of a
// location path, not within a single step's axis expansion or
// predicate evaluation — spec.md §5 states that no single operation
// is cancellable mid-flight, so a step always runs to completion once
// started.
func (e *Evaluator) Evaluate(ctx context.Context, path *types.CompiledPath, origin tree.Node) ([]tree.Node, error) {
	if !path.Checked {
		return nil, types.NewError(types.EINTERNAL, "evaluating an unchecked path", 0)
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	st := types.NewEvalState(path.Pool)
	st.Context = origin
	st.ContextPos = 1
	st.ContextLen = 1

	h := e.evalExpr(ctx, st, path.AST)
	if st.Failed() {
		return nil, types.NewError(st.Code, st.ErrMsg, st.ErrPos)
	}

	v := st.Pool.Get(h)
	if v.Type != types.TypeNodeSet {
		return nil, types.NewError(types.EINTERNAL, "evaluation did not produce a nodeset", path.AST.Position)
	}
	return v.Nodes, nil
}

// evalExpr is the post-order walk of spec.md §4.4. It always leaves
// exactly one handle as its return value: each case pushes its result
// onto st.Stack and the function pops it back out before returning.
// Binary and App operands are evaluated left to right and taken from
// the return values of the recursive calls, not popped off the stack.
func (e *Evaluator) evalExpr(ctx context.Context, st *types.EvalState, expr *types.Expr) types.Handle {
	if st.Failed() {
		return 0
	}

	switch expr.Kind {
	case types.ExprValue:
		st.Push(expr.Handle)

	case types.ExprApp:
		// Built-ins are currently all zero-arity (last, position), so
		// this loop only matters for a future builtin with arguments;
		// evaluation order (left-to-right, then invoke) is spec.md
		// §4.4's contract regardless of arity.
		for _, arg := range expr.Args {
			e.evalExpr(ctx, st, arg)
		}
		if st.Failed() {
			return 0
		}
		st.Push(e.evalBuiltin(st, expr.Func))

	case types.ExprBinary:
		lh := e.evalExpr(ctx, st, expr.Left)
		rh := e.evalExpr(ctx, st, expr.Right)
		if st.Failed() {
			return 0
		}
		st.Push(e.evalBinary(st, expr, lh, rh))

	case types.ExprLocPath:
		if e.logger != nil && e.opts.Debug {
			e.logger.Debug("eval locpath", "steps", len(expr.Steps))
		}
		st.Push(e.evalLocPath(ctx, st, expr))

	default:
		st.Fail(types.EINTERNAL, expr.Position, "unknown expression kind")
		return 0
	}

	if st.Failed() {
		return 0
	}
	return st.Pop()
}

func (e *Evaluator) evalBuiltin(st *types.EvalState, b types.Builtin) types.Handle {
	switch b {
	case types.BuiltinLast:
		return st.Pool.Put(types.Value{Type: types.TypeNumber, Number: int32(st.ContextLen)})
	case types.BuiltinPosition:
		return st.Pool.Put(types.Value{Type: types.TypeNumber, Number: int32(st.ContextPos)})
	default:
		st.Fail(types.EINTERNAL, 0, "unknown builtin")
		return 0
	}
}
