// Package treepath is the public entry point of the path-expression
// engine: compile a path expression once with Parse, then drive it
// against one or more origin nodes of a caller-supplied tree via
// First/Next/FindOne/ExpandTree.
//
// The shape of this file mirrors the teacher's own root-package
// convenience layer: a handful of top-level functions that do nothing
// but parse options and delegate into the internal packages, so that
// pkg/parser, pkg/checker and pkg/evaluator stay usable standalone.
package treepath

import (
	"github.com/sandrolain/treepath/pkg/checker"
	"github.com/sandrolain/treepath/pkg/evaluator"
	"github.com/sandrolain/treepath/pkg/parser"
	"github.com/sandrolain/treepath/pkg/tree"
)

// Option configures a Parse call.
type Option func(*options)

type options struct {
	maxDepth int
	eval     *evaluator.Evaluator
}

// WithMaxDepth bounds the parser's recursive-descent nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithEvaluator supplies a pre-configured Evaluator (caching, timeout,
// logging) instead of the package default. Parse does not look paths
// up in, or store them into, the Evaluator's cache.
func WithEvaluator(e *evaluator.Evaluator) Option {
	return func(o *options) { o.eval = e }
}

// defaultEvaluator is used by every Path that doesn't supply its own
// via WithEvaluator, matching the teacher's pattern of a package-level
// zero-value default so that the common case needs no configuration.
var defaultEvaluator = evaluator.New()

// Parse compiles and type-checks text and binds the result to origin,
// ready for First/Next/FindOne/ExpandTree. A non-nil error is always a
// *types.Error carrying a code and byte offset into text (spec.md
// §4.7's "errors carry a code and character offset").
//
// origin is not read during Parse; it is stored in the returned Path
// and every evaluation of that Path starts from it.
func Parse(origin tree.Node, text string, opts ...Option) (*Path, error) {
	cfg := options{maxDepth: 0}
	for _, o := range opts {
		o(&cfg)
	}

	var compileOpts []parser.CompileOption
	if cfg.maxDepth > 0 {
		compileOpts = append(compileOpts, parser.WithMaxDepth(cfg.maxDepth))
	}

	compiled, err := parser.Compile(text, compileOpts...)
	if err != nil {
		return nil, err
	}

	if err := checker.Check(compiled.Pool, compiled.AST); err != nil {
		return nil, err
	}
	compiled.Checked = true

	eval := cfg.eval
	if eval == nil {
		eval = defaultEvaluator
	}

	return &Path{compiled: compiled, eval: eval, origin: origin}, nil
}
