// Package formula evaluates user-defined arithmetic over named grade columns.
//
// Column names are free variables matched as literal substrings of the
// expression, longest name first. Only numbers, column references, + - * /,
// parentheses and whitespace are meaningful; every other character is ignored.
package formula

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports an expression that does not parse.
	ErrSyntax = errors.New("formula: syntax error")
	// ErrNotFinite reports a result such as a division by zero.
	ErrNotFinite = errors.New("formula: result is not a finite number")
)

// Result is the outcome of applying a formula to one row.
type Result struct {
	// Value is nil when every referenced column was empty.
	Value *float64
	// Partial is set when some, but not all, referenced columns were empty.
	Partial bool
	// Used lists the referenced columns in column order.
	Used []string
}

// UsedColumns returns the columns whose names occur in expr, in column order.
func UsedColumns(expr string, columns []string) []string {
	used := make([]string, 0, len(columns))
	for _, col := range columns {
		if col != "" && strings.Contains(expr, col) {
			used = append(used, col)
		}
	}
	return used
}

// Evaluate applies expr to one row. values maps column name to its score; a
// missing entry or nil pointer is an empty cell.
func Evaluate(expr string, columns []string, values map[string]*float64) (Result, error) {
	used := UsedColumns(expr, columns)
	res := Result{Used: used}

	empty, valued := 0, 0
	for _, col := range used {
		if v := values[col]; v != nil {
			valued++
		} else {
			empty++
		}
	}
	if len(used) > 0 && valued == 0 {
		return res, nil
	}

	node, err := Parse(expr, columns)
	if err != nil {
		return res, err
	}
	v, err := node.eval(func(name string) float64 {
		if p := values[name]; p != nil {
			return *p
		}
		return 0
	})
	if err != nil {
		return res, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return res, ErrNotFinite
	}
	rounded := Round1(v)
	res.Value = &rounded
	res.Partial = empty > 0 && valued > 0
	return res, nil
}

// Validate checks that expr parses against the given columns.
func Validate(expr string, columns []string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	_, err := Parse(expr, columns)
	return err
}

// Round1 rounds half up to one decimal place.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// Node is a parsed expression.
type Node interface {
	eval(lookup func(string) float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(func(string) float64) (float64, error) { return float64(n), nil }

type columnNode string

func (n columnNode) eval(lookup func(string) float64) (float64, error) { return lookup(string(n)), nil }

type unaryNode struct {
	op      byte
	operand Node
}

func (n unaryNode) eval(lookup func(string) float64) (float64, error) {
	v, err := n.operand.eval(lookup)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -v, nil
	}
	return v, nil
}

type binaryNode struct {
	op          byte
	left, right Node
}

func (n binaryNode) eval(lookup func(string) float64) (float64, error) {
	l, err := n.left.eval(lookup)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(lookup)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		return l / r, nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrSyntax, n.op)
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokColumn
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
}

// tokenize scans expr, preferring the longest column name at each position.
func tokenize(expr string, columns []string) ([]token, error) {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != "" {
			names = append(names, c)
		}
	}
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	var tokens []token
	for i := 0; i < len(expr); {
		if name := matchColumn(expr[i:], names); name != "" {
			tokens = append(tokens, token{kind: tokColumn, text: name})
			i += len(name)
			continue
		}
		ch := expr[i]
		switch {
		case ch == '.' || (ch >= '0' && ch <= '9'):
			j := i
			for j < len(expr) && (expr[j] == '.' || (expr[j] >= '0' && expr[j] <= '9')) {
				j++
			}
			v, err := strconv.ParseFloat(expr[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, expr[i:j])
			}
			tokens = append(tokens, token{kind: tokNumber, text: expr[i:j], value: v})
			i = j
		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(ch)})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		default:
			i++
		}
	}
	return tokens, nil
}

func matchColumn(rest string, names []string) string {
	for _, name := range names {
		if strings.HasPrefix(rest, name) {
			return name
		}
	}
	return ""
}

type parser struct {
	tokens []token
	pos    int
}

// Parse builds an expression tree for expr over the given columns.
func Parse(expr string, columns []string) (Node, error) {
	tokens, err := tokenize(expr, columns)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	p := &parser{tokens: tokens}
	node, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.tokens[p.pos].text)
	}
	return node, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) expression() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) unary() (Node, error) {
	tok, ok := p.peek()
	if ok && tok.kind == tokOp && (tok.text == "-" || tok.text == "+") {
		p.pos++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: tok.text[0], operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	switch tok.kind {
	case tokNumber:
		p.pos++
		return numberNode(tok.value), nil
	case tokColumn:
		p.pos++
		return columnNode(tok.text), nil
	case tokLParen:
		p.pos++
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
		}
		p.pos++
		return inner, nil
	}
	return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.text)
}
