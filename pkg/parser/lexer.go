package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/treepath/pkg/types"
)

const eof = -1

// nameTerminators are the unescaped runes that end a Name token
// (spec.md §4.1's Name production, extended per DESIGN.md's Open
// Question #4 to also cover the grammar's other structural
// delimiters: '(', ')', ',', ':' and '*').
func isNameTerminator(r rune) bool {
	switch r {
	case '/', '[', ']', '=', '(', ')', ',', ':', '*':
		return true
	default:
		return isWhitespace(r)
	}
}

// Lexer converts path-expression text into a sequence of tokens.
// Modelled on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string
	length  int
	start   int
	current int
	width   int
	err     *types.Error
}

// NewLexer creates a lexer over input. Tokens are produced by
// successive calls to Next.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, length: len(input)}
}

// Error returns the first lexical error encountered, if any.
func (l *Lexer) Error() *types.Error {
	return l.err
}

// Next returns the next token. Once an error or EOF token has been
// returned, subsequent calls keep returning the same terminal token.
func (l *Lexer) Next() Token {
	if l.err != nil {
		return l.newToken(TokenError)
	}

	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	switch ch {
	case '/':
		if l.acceptRune('/') {
			return l.newToken(TokenSlashSlash)
		}
		return l.newToken(TokenSlash)
	case '.':
		if l.acceptRune('.') {
			return l.newToken(TokenDotDot)
		}
		return l.newToken(TokenDot)
	case ':':
		if l.acceptRune(':') {
			return l.newToken(TokenColonColon)
		}
		l.backup()
		return l.error(types.EDELIM, "unexpected ':'")
	case '!':
		if l.acceptRune('=') {
			return l.newToken(TokenNotEqual)
		}
		l.backup()
		return l.error(types.EDELIM, "expected '=' after '!'")
	case '"', '\'':
		l.ignore()
		return l.scanString(ch)
	}

	if tt, ok := symbols1[ch]; ok {
		return l.newToken(tt)
	}

	if ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	l.backup()
	return l.scanName()
}

func (l *Lexer) scanString(quote rune) Token {
	for {
		r := l.nextRune()
		switch r {
		case quote:
			l.backup()
			t := l.newToken(TokenString)
			l.acceptRune(quote)
			l.ignore()
			return t
		case eof, '\n':
			return l.error(types.ESTRING, "unterminated string literal")
		}
	}
}

func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)
	return l.newToken(TokenNumber)
}

// scanName reads a Name token (spec.md §4.1), unescaping `\x` to the
// literal `x` as it goes, per spec.md §6's "the escape \x yields
// literal x in the name".
func (l *Lexer) scanName() Token {
	var b strings.Builder
	start := l.current
	sawAny := false

	for {
		r := l.nextRune()
		if r == eof {
			break
		}
		if r == '\\' {
			esc := l.nextRune()
			if esc == eof {
				return l.error(types.ENAME, "trailing escape in name")
			}
			b.WriteRune(esc)
			sawAny = true
			continue
		}
		if isNameTerminator(r) {
			l.backup()
			break
		}
		b.WriteRune(r)
		sawAny = true
	}

	if !sawAny {
		return l.error(types.ENAME, "expected a name")
	}

	return Token{Type: TokenName, Value: b.String(), Position: start}
}

// Helper methods, grounded on the teacher's Lexer.

func (l *Lexer) eof() Token {
	return Token{Type: TokenEOF, Position: l.current}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = types.NewError(code, message, t.Position)
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{Type: tt, Value: l.input[l.start:l.current], Position: l.start}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool { return c == r })
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
