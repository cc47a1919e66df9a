package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-intake/pkg/visibility"
)

// Evaluator interprets visibility rules such as `tiene_hijos == true`.
//
// Grammar:
//
//	rule    = or
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | ident [ ("==" | "!=") literal ]
//
// Identifiers read from Context.Values using dotted paths; the `extras.`
// prefix reads Context.Extras instead. Parsed rules are cached.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]node
}

// New returns an Evaluator with an empty rule cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]node)}
}

// Eval implements visibility.Evaluator. An empty rule is always visible.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	compiled, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	return compiled.eval(ctx), nil
}

// Check parses rule without evaluating it.
func (e *Evaluator) Check(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.compile(strings.TrimSpace(rule))
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	e.mu.RLock()
	cached, ok := e.cache[rule]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	tokens, err := scan(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("visibility/expr: unexpected %q", p.peek().text)
	}

	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string]node)
	}
	e.cache[rule] = root
	e.mu.Unlock()
	return root, nil
}

type kind int

const (
	kIdent kind = iota
	kString
	kNumber
	kBool
	kNull
	kEq
	kNeq
	kAnd
	kOr
	kNot
	kOpen
	kClose
)

type tok struct {
	kind kind
	text string
}

type operator struct {
	text string
	kind kind
}

var operators = []operator{
	{"==", kEq},
	{"!=", kNeq},
	{"&&", kAnd},
	{"||", kOr},
	{"!", kNot},
	{"(", kOpen},
	{")", kClose},
}

func scan(input string) ([]tok, error) {
	var out []tok
	rest := input
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			return out, nil
		}

		if matched, ok := scanOperator(rest); ok {
			out = append(out, tok{kind: matched.kind, text: matched.text})
			rest = rest[len(matched.text):]
			continue
		}

		switch rest[0] {
		case '=', '&', '|':
			return nil, fmt.Errorf("visibility/expr: stray %q", rest[:1])
		case '"', '\'':
			end := closingQuote(rest)
			if end < 0 {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			literal := rest[:end+1]
			if literal[0] == '\'' {
				literal = `"` + strings.ReplaceAll(literal[1:end], `"`, `\"`) + `"`
			}
			value, err := strconv.Unquote(literal)
			if err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			out = append(out, tok{kind: kString, text: value})
			rest = rest[end+1:]
			continue
		}

		end := strings.IndexAny(rest, " \t\r\n()!=&|")
		if end < 0 {
			end = len(rest)
		}
		word := rest[:end]
		rest = rest[end:]
		out = append(out, classify(word))
	}
}

func scanOperator(rest string) (operator, bool) {
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			return op, true
		}
	}
	return operator{}, false
}

func closingQuote(s string) int {
	quote := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}

func classify(word string) tok {
	switch strings.ToLower(word) {
	case "true", "false":
		return tok{kind: kBool, text: strings.ToLower(word)}
	case "null", "nil":
		return tok{kind: kNull, text: "null"}
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return tok{kind: kNumber, text: word}
	}
	return tok{kind: kIdent, text: word}
}

type parser struct {
	tokens []tok
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() tok {
	if p.done() {
		return tok{}
	}
	return p.tokens[p.pos]
}

func (p *parser) accept(k kind) (tok, bool) {
	if p.done() || p.tokens[p.pos].kind != k {
		return tok{}, false
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(kOr); !ok {
			return left, nil
		}
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = anyOf{left, right}
	}
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(kAnd); !ok {
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = allOf{left, right}
	}
}

func (p *parser) unary() (node, error) {
	if _, ok := p.accept(kNot); ok {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negate{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if _, ok := p.accept(kOpen); ok {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(kClose); !ok {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := p.accept(kIdent)
	if !ok {
		if p.done() {
			return nil, errors.New("visibility/expr: empty expression")
		}
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", p.peek().text)
	}

	for _, op := range []kind{kEq, kNeq} {
		if _, ok := p.accept(op); ok {
			if p.done() {
				return nil, errors.New("visibility/expr: missing literal")
			}
			lit := p.tokens[p.pos]
			p.pos++
			if lit.kind != kString && lit.kind != kNumber && lit.kind != kBool && lit.kind != kNull && lit.kind != kIdent {
				return nil, fmt.Errorf("visibility/expr: expected literal, got %q", lit.text)
			}
			return compare{path: ident.text, negated: op == kNeq, want: lit}, nil
		}
	}
	return truthy{path: ident.text}, nil
}
