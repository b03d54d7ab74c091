// Package parser implements the recursive-descent parser for the
// path-expression grammar: tokenising, building the tagged AST, and
// running the explicit-stack discipline used for predicate lists.
package parser

import (
	"strconv"

	"github.com/sandrolain/treepath/pkg/functions"
	"github.com/sandrolain/treepath/pkg/types"
)

var builtinRegistry = functions.DefaultRegistry()

// Parse compiles text into a CompiledPath using default options.
func Parse(text string) (*types.CompiledPath, error) {
	return Compile(text)
}

// CompileOption configures a Compile call.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth bounds recursive-descent nesting (predicates inside
	// predicates, expressions inside function arguments) to guard against stack
	// exhaustion from pathological input. 0 means use the default.
	MaxDepth int
}

// WithMaxDepth overrides the maximum parse recursion depth.
func WithMaxDepth(depth int) CompileOption {
	return func(o *CompileOptions) { o.MaxDepth = depth }
}

const defaultMaxDepth = 256

// Compile parses text and returns a CompiledPath on success, or an
// error (always a *types.Error) describing the first failure
// encountered — spec.md §7's first-failure-wins discipline.
func Compile(text string, opts ...CompileOption) (*types.CompiledPath, error) {
	cfg := CompileOptions{MaxDepth: defaultMaxDepth}
	for _, o := range opts {
		o(&cfg)
	}

	p := newParser(text, cfg)
	root := p.parseExpr()

	if p.code == types.NOERROR && p.cur.Type != TokenEOF {
		p.fail(types.EDELIM, p.cur.Position, "unexpected trailing input")
	}

	if p.code != types.NOERROR {
		return nil, types.NewError(p.code, p.errMsg, p.errPos)
	}

	if len(p.stack) != 1 {
		return nil, types.NewError(types.EINTERNAL, "expression stack does not hold exactly one expression after parse", 0)
	}

	return &types.CompiledPath{
		AST:    root,
		Pool:   p.pool,
		Arena:  p.arena,
		Source: text,
	}, nil
}

// parser holds the two explicit stacks spec.md §4.2 describes: the
// expression stack (here, a plain slice used as a stack by the
// recursive-descent productions) and the value pool. state tracks
// the first-failure-wins error discipline of spec.md §7.
type parser struct {
	lexer *Lexer
	cur   Token
	peek  Token

	arena *types.NodeArena
	pool  *types.ValuePool
	stack []*types.Expr

	depth  int
	maxDep int

	code   types.ErrorCode
	errMsg string
	errPos int
}

func newParser(text string, cfg CompileOptions) *parser {
	p := &parser{
		lexer:  NewLexer(text),
		arena:  types.NewNodeArena(len(text)),
		pool:   types.NewValuePool(),
		code:   types.NOERROR,
		maxDep: cfg.MaxDepth,
	}
	p.cur = p.lexer.Next()
	p.peek = p.lexer.Next()
	p.syncLexError()
	return p
}

func (p *parser) syncLexError() {
	if p.code == types.NOERROR && p.cur.Type == TokenError {
		if e := p.lexer.Error(); e != nil {
			p.fail(e.Code, e.Position, e.Message)
		}
	}
}

func (p *parser) fail(code types.ErrorCode, pos int, msg string) {
	if p.code != types.NOERROR {
		return
	}
	p.code = code
	p.errPos = pos
	p.errMsg = msg
}

func (p *parser) failed() bool { return p.code != types.NOERROR }

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lexer.Next()
	p.syncLexError()
}

func (p *parser) expect(tt TokenType, code types.ErrorCode, msg string) bool {
	if p.cur.Type == tt {
		p.advance()
		return true
	}
	p.fail(code, p.cur.Position, msg)
	return false
}

func (p *parser) push(e *types.Expr) { p.stack = append(p.stack, e) }

func (p *parser) pop() *types.Expr {
	n := len(p.stack) - 1
	e := p.stack[n]
	p.stack = p.stack[:n]
	return e
}

func (p *parser) enter() bool {
	p.depth++
	if p.depth > p.maxDep {
		p.fail(types.ENOMEM, p.cur.Position, "expression nesting too deep")
		return false
	}
	return true
}

func (p *parser) leave() { p.depth-- }

// ── Expr := EqualityExpr ─────────────────────────────────────────────

func (p *parser) parseExpr() *types.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	return p.parseEquality()
}

// EqualityExpr := AdditiveExpr (('=' | '!=') AdditiveExpr)?
func (p *parser) parseEquality() *types.Expr {
	pos := p.cur.Position
	p.parseAdditive()
	if p.failed() {
		return p.stackTop()
	}

	var op types.BinaryOp
	switch p.cur.Type {
	case TokenEqual:
		op = types.OpEQ
	case TokenNotEqual:
		op = types.OpNEQ
	default:
		return p.stackTop()
	}
	p.advance()
	p.parseAdditive()
	if p.failed() {
		return p.stackTop()
	}
	r := p.pop()
	l := p.pop()
	e := p.arena.Alloc(types.ExprBinary, pos)
	e.Op, e.Left, e.Right = op, l, r
	p.push(e)
	return e
}

// AdditiveExpr := MultExpr (('+' | '-') MultExpr)*
func (p *parser) parseAdditive() {
	pos := p.cur.Position
	p.parseMult()
	for !p.failed() {
		var op types.BinaryOp
		switch p.cur.Type {
		case TokenPlus:
			op = types.OpPlus
		case TokenMinus:
			op = types.OpMinus
		default:
			return
		}
		p.advance()
		p.parseMult()
		if p.failed() {
			return
		}
		r := p.pop()
		l := p.pop()
		e := p.arena.Alloc(types.ExprBinary, pos)
		e.Op, e.Left, e.Right = op, l, r
		p.push(e)
	}
}

// MultExpr := PathExpr ('*' PathExpr)*
func (p *parser) parseMult() {
	pos := p.cur.Position
	p.parsePath()
	for !p.failed() && p.cur.Type == TokenStar {
		p.advance()
		p.parsePath()
		if p.failed() {
			return
		}
		r := p.pop()
		l := p.pop()
		e := p.arena.Alloc(types.ExprBinary, pos)
		e.Op, e.Left, e.Right = types.OpStar, l, r
		p.push(e)
	}
}

// PathExpr := LocationPath | PrimaryExpr
//
// Lookahead rule (spec.md §4.1): a PathExpr is a PrimaryExpr iff the
// current position begins with a quote, a digit, or a name followed
// (after optional whitespace, already consumed by the lexer) by '('.
func (p *parser) parsePath() {
	if p.isPrimaryStart() {
		p.parsePrimary()
		return
	}
	p.parseLocationPath()
}

func (p *parser) isPrimaryStart() bool {
	switch p.cur.Type {
	case TokenString, TokenNumber:
		return true
	case TokenName:
		return p.peek.Type == TokenParenOpen
	default:
		return false
	}
}

// PrimaryExpr := Literal | Number | FunctionCall
func (p *parser) parsePrimary() {
	pos := p.cur.Position
	switch p.cur.Type {
	case TokenString:
		val := p.cur.Value
		p.advance()
		h := p.pool.Put(types.Value{Type: types.TypeString, Str: val})
		p.push(valueExpr(p.arena, h, pos))

	case TokenNumber:
		n, err := strconv.ParseInt(p.cur.Value, 10, 32)
		if err != nil {
			p.fail(types.ENUMBER, pos, "integer literal out of range")
			return
		}
		p.advance()
		h := p.pool.Put(types.Value{Type: types.TypeNumber, Number: int32(n)})
		p.push(valueExpr(p.arena, h, pos))

	case TokenName:
		p.parseFunctionCall()

	default:
		p.fail(types.EDELIM, pos, "expected a literal, number or function call")
	}
}

func (p *parser) parseFunctionCall() {
	pos := p.cur.Position
	name := p.cur.Value
	p.advance()
	if !p.expect(TokenParenOpen, types.EDELIM, "expected '(' after function name") {
		return
	}

	var args []*types.Expr
	if p.cur.Type != TokenParenClose {
		base := len(p.stack)
		p.parseExpr()
		for !p.failed() && p.cur.Type == TokenComma {
			p.advance()
			p.parseExpr()
		}
		if p.failed() {
			p.stack = p.stack[:base]
			return
		}
		args = append(args, p.stack[base:]...)
		p.stack = p.stack[:base]
	}
	if !p.expect(TokenParenClose, types.EDELIM, "expected ')' or ',' in argument list") {
		return
	}

	builtin, ok := builtinRegistry.Lookup(name)
	if !ok {
		p.fail(types.ENAME, pos, "unknown function "+name)
		return
	}
	e := p.arena.Alloc(types.ExprApp, pos)
	e.Func = builtin
	e.Args = args
	p.push(e)
}

func valueExpr(arena *types.NodeArena, h types.Handle, pos int) *types.Expr {
	e := arena.Alloc(types.ExprValue, pos)
	e.Handle = h
	return e
}

// LocationPath := '/' '/' RelLocPath
//
//	| '/' RelLocPath?
//	| RelLocPath
func (p *parser) parseLocationPath() {
	pos := p.cur.Position
	var steps []*types.Step

	switch p.cur.Type {
	case TokenSlashSlash:
		p.advance()
		steps = append(steps, p.rootStep(), p.descendantOrSelfWildcardStep())
		steps = append(steps, p.parseRelLocPath()...)
	case TokenSlash:
		p.advance()
		steps = append(steps, p.rootStep())
		if p.relLocPathStart() {
			steps = append(steps, p.parseRelLocPath()...)
		}
	default:
		steps = p.parseRelLocPath()
	}

	if p.failed() {
		return
	}
	e := p.arena.Alloc(types.ExprLocPath, pos)
	e.Steps = steps
	p.push(e)
}

func (p *parser) relLocPathStart() bool {
	switch p.cur.Type {
	case TokenDot, TokenDotDot, TokenStar, TokenName:
		return true
	default:
		return false
	}
}

// RelLocPath := Step (('/' | '//') Step)*
func (p *parser) parseRelLocPath() []*types.Step {
	steps := []*types.Step{p.parseStep()}
	for !p.failed() && (p.cur.Type == TokenSlash || p.cur.Type == TokenSlashSlash) {
		double := p.cur.Type == TokenSlashSlash
		p.advance()
		if double {
			steps = append(steps, p.descendantOrSelfWildcardStep())
		}
		steps = append(steps, p.parseStep())
	}
	return steps
}

func (p *parser) rootStep() *types.Step {
	s := p.arena.AllocStep(types.AxisRoot)
	s.Wildcard = true
	return s
}

func (p *parser) descendantOrSelfWildcardStep() *types.Step {
	s := p.arena.AllocStep(types.AxisDescendantOrSelf)
	s.Wildcard = true
	return s
}

// Step := '.' | '..' | (Axis '::')? (Name | '*') Predicate*
//
// An omitted axis defaults to child, the conventional XPath default
// for an un-prefixed step.
func (p *parser) parseStep() *types.Step {
	switch p.cur.Type {
	case TokenDot:
		p.advance()
		s := p.arena.AllocStep(types.AxisSelf)
		s.Wildcard = true
		return s
	case TokenDotDot:
		p.advance()
		s := p.arena.AllocStep(types.AxisParent)
		s.Wildcard = true
		return s
	}

	axis := types.AxisChild
	if p.cur.Type == TokenName && p.peek.Type == TokenColonColon && axisNames[p.cur.Value] {
		axis = axisFromName(p.cur.Value)
		p.advance()
		p.advance()
	}

	step := p.arena.AllocStep(axis)
	switch p.cur.Type {
	case TokenStar:
		step.Wildcard = true
		p.advance()
	case TokenName:
		step.Name = p.cur.Value
		p.advance()
	default:
		p.fail(types.ENAME, p.cur.Position, "expected a name or '*'")
		return step
	}

	base := len(p.stack)
	for p.cur.Type == TokenBracketOpen {
		p.advance()
		p.parseExpr()
		if !p.expect(TokenBracketClose, types.EPRED, "expected ']'") {
			p.stack = p.stack[:base]
			return step
		}
	}
	if n := len(p.stack) - base; n > 0 {
		preds := make([]*types.Predicate, n)
		for i, e := range p.stack[base:] {
			preds[i] = p.arena.AllocPredicate(e)
		}
		p.stack = p.stack[:base]
		step.Predicates = preds
	}
	return step
}

func axisFromName(name string) types.Axis {
	switch name {
	case "self":
		return types.AxisSelf
	case "child":
		return types.AxisChild
	case "descendant":
		return types.AxisDescendant
	case "descendant-or-self":
		return types.AxisDescendantOrSelf
	case "parent":
		return types.AxisParent
	case "ancestor":
		return types.AxisAncestor
	case "root":
		return types.AxisRoot
	default:
		return types.AxisChild
	}
}

// stackTop returns the current top stack entry without popping it,
// used by productions that may return early on failure.
func (p *parser) stackTop() *types.Expr {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}
