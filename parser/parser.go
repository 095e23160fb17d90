// Package parser reads logic terms from text.
//
// The accepted syntax is the term subset of Prolog:
//
//	term  := var | atom | atom '(' [term {',' term} [',']] ')'
//	var   := ('_' | uppercase) ident*
//	atom  := (lowercase | digit) ident* | quoted
//
// Quoted atoms are enclosed in single or double quotes, and accept the escapes
// \n, \t, \r, \\ and an escaped delimiter. Whitespace and '%' line comments
// may appear between tokens.
//
// Every occurrence of the anonymous var '_' is replaced by a distinct var named
// '_1', '_2', and so on, in order of appearance.
package parser

import (
	"fmt"
	"strings"

	"github.com/brunokim/l0/errors"
	"github.com/brunokim/l0/logic"
	"github.com/brunokim/l0/runes"
)

// ParseTerm parses a single term, optionally terminated by a period.
func ParseTerm(text string) (term logic.Term, err error) {
	p := newParser(text)
	defer p.recover(&err)
	term = p.term()
	p.end()
	return term, nil
}

// ParseUnification parses a pair of terms separated by '=', optionally
// terminated by a period, as in "f(X, g(X, a)) = f(b, Y).".
func ParseUnification(text string) (left, right logic.Term, err error) {
	p := newParser(text)
	defer p.recover(&err)
	left = p.term()
	p.expect('=')
	right = p.term()
	p.end()
	return left, right, nil
}

// ParseTerms parses a sequence of terms, each one terminated by a period.
func ParseTerms(text string) (terms []logic.Term, err error) {
	p := newParser(text)
	defer p.recover(&err)
	for {
		p.ws()
		if p.eof() {
			return terms, nil
		}
		terms = append(terms, p.term())
		p.expect('.')
	}
}

// ---- parser state

type parser struct {
	text []rune
	pos  int
	anon int
}

type parseError struct {
	line, col int
	msg       string
}

func newParser(text string) *parser {
	return &parser{text: []rune(text)}
}

func (p *parser) recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	perr, ok := r.(*parseError)
	if !ok {
		panic(r)
	}
	*err = errors.New("%d:%d: %s", perr.line, perr.col, perr.msg)
}

func (p *parser) fail(msg string, args ...interface{}) {
	line, col := 1, 1
	for _, ch := range p.text[:p.pos] {
		if ch == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	panic(&parseError{line, col, fmt.Sprintf(msg, args...)})
}

func (p *parser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.text[p.pos]
}

func (p *parser) describe() string {
	if p.eof() {
		return "end of input"
	}
	return fmt.Sprintf("%q", p.peek())
}

// ws skips whitespace and comments.
func (p *parser) ws() {
	for !p.eof() {
		ch := p.peek()
		switch {
		case runes.IsSpace(ch):
			p.pos++
		case ch == '%':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) expect(ch rune) {
	p.ws()
	if p.peek() != ch || p.eof() {
		p.fail("expected %q, got %s", ch, p.describe())
	}
	p.pos++
}

// end accepts an optional final period followed by end of input.
func (p *parser) end() {
	p.ws()
	if p.peek() == '.' && !p.eof() {
		p.pos++
		p.ws()
	}
	if !p.eof() {
		p.fail("expected end of input, got %s", p.describe())
	}
}

// ---- grammar

func (p *parser) term() logic.Term {
	p.ws()
	if p.eof() {
		p.fail("expected term, got end of input")
	}
	ch := p.peek()
	switch {
	case logic.IsVarFirst(ch):
		return p.var_()
	case ch == '\'' || ch == '"':
		return p.comp(p.quoted(ch))
	case logic.IsIdent(ch):
		return p.comp(p.ident())
	default:
		p.fail("expected term, got %s", p.describe())
		return nil
	}
}

func (p *parser) var_() logic.Var {
	name := p.ident()
	if name == "_" {
		p.anon++
		name = fmt.Sprintf("_%d", p.anon)
	}
	return logic.NewVar(name)
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() && logic.IsIdent(p.peek()) {
		p.pos++
	}
	return string(p.text[start:p.pos])
}

var unescape = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

func (p *parser) quoted(delim rune) string {
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			p.fail("unterminated quoted atom")
		}
		ch := p.peek()
		p.pos++
		switch ch {
		case delim:
			return b.String()
		case '\n':
			p.fail("newline in quoted atom")
		case '\\':
			esc, ok := unescape[p.peek()]
			if !ok || p.eof() {
				p.fail("invalid escape sequence \\%c", p.peek())
			}
			p.pos++
			b.WriteRune(esc)
		default:
			b.WriteRune(ch)
		}
	}
}

// comp parses the optional argument list after a functor name.
func (p *parser) comp(functor string) *logic.Comp {
	if p.peek() != '(' || p.eof() {
		return logic.NewAtom(functor)
	}
	p.pos++
	var args []logic.Term
	for {
		p.ws()
		if p.peek() == ')' && !p.eof() {
			p.pos++
			return logic.NewComp(functor, args...)
		}
		args = append(args, p.term())
		p.ws()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
		default:
			p.fail("expected ',' or ')' in args of %s, got %s", logic.FormatAtom(functor), p.describe())
		}
	}
}
