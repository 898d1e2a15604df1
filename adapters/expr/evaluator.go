// Package expr implements the column-transform expression language: float
// arithmetic over column identifiers with a closed set of math functions.
// Expressions compile to postfix form once and then run element-wise, which
// also lets Validate reject bad input without touching any data.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"tabkit/domain/core"
)

// Evaluator compiles and runs column expressions
type Evaluator struct{}

// New creates an expression evaluator
func New() *Evaluator {
	return &Evaluator{}
}

// functions is the closed set of callable names. Anything else is rejected
// at validation time.
var functions = map[string]func(float64) float64{
	"abs":   math.Abs,
	"sqrt":  math.Sqrt,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokFunc
	tokOperator
	tokLeftParen
	tokRightParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
}

type operator struct {
	precedence int
	rightAssoc bool
	unary      bool
}

var operators = map[string]operator{
	"+":   {precedence: 1},
	"-":   {precedence: 1},
	"*":   {precedence: 2},
	"/":   {precedence: 2},
	"^":   {precedence: 3, rightAssoc: true},
	"neg": {precedence: 4, rightAssoc: true, unary: true},
}

// Validate compiles the expression and reports the first syntax error
func (e *Evaluator) Validate(expression string) error {
	_, err := compile(expression)
	return err
}

// Evaluate runs the expression element-wise over the bound series. Every
// series must have length n; constant expressions broadcast to length n.
func (e *Evaluator) Evaluate(expression string, bindings map[string][]float64, n int) ([]float64, error) {
	program, err := compile(expression)
	if err != nil {
		return nil, err
	}

	for name, series := range bindings {
		if len(series) != n {
			return nil, fmt.Errorf("%w: column %q has %d values, expected %d",
				core.ErrLengthMismatch, name, len(series), n)
		}
	}

	out := make([]float64, n)
	stack := make([]float64, 0, len(program))
	for i := 0; i < n; i++ {
		stack = stack[:0]
		for _, tok := range program {
			switch tok.kind {
			case tokNumber:
				stack = append(stack, tok.value)
			case tokIdent:
				series, ok := bindings[tok.text]
				if !ok {
					return nil, core.NewNotFoundError("column", tok.text)
				}
				stack = append(stack, series[i])
			case tokFunc:
				stack[len(stack)-1] = functions[tok.text](stack[len(stack)-1])
			case tokOperator:
				if operators[tok.text].unary {
					stack[len(stack)-1] = -stack[len(stack)-1]
					continue
				}
				b := stack[len(stack)-1]
				a := stack[len(stack)-2]
				stack = stack[:len(stack)-1]
				stack[len(stack)-1] = apply(tok.text, a, b)
			}
		}
		out[i] = stack[0]
	}
	return out, nil
}

func apply(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "^":
		return math.Pow(a, b)
	}
	return math.NaN()
}

// compile tokenizes and converts to postfix via the shunting-yard algorithm,
// checking arity along the way so a compiled program never underflows.
func compile(expression string) ([]token, error) {
	tokens, err := tokenize(expression)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, core.NewInvalidInputError("empty expression")
	}

	var output []token
	var stack []token

	for _, tok := range tokens {
		switch tok.kind {
		case tokNumber, tokIdent:
			output = append(output, tok)
		case tokFunc, tokLeftParen:
			stack = append(stack, tok)
		case tokOperator:
			op := operators[tok.text]
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind != tokOperator {
					break
				}
				topOp := operators[top.text]
				if topOp.precedence > op.precedence ||
					(topOp.precedence == op.precedence && !op.rightAssoc) {
					output = append(output, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, tok)
		case tokRightParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokLeftParen {
					matched = true
					break
				}
				output = append(output, top)
			}
			if !matched {
				return nil, core.NewInvalidInputError("unbalanced parentheses")
			}
			if len(stack) > 0 && stack[len(stack)-1].kind == tokFunc {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokLeftParen || top.kind == tokFunc {
			return nil, core.NewInvalidInputError("unbalanced parentheses")
		}
		output = append(output, top)
	}

	if err := checkArity(output); err != nil {
		return nil, err
	}
	return output, nil
}

func checkArity(program []token) error {
	depth := 0
	for _, tok := range program {
		switch tok.kind {
		case tokNumber, tokIdent:
			depth++
		case tokFunc:
			if depth < 1 {
				return core.NewInvalidInputError("function is missing its argument")
			}
		case tokOperator:
			need := 2
			if operators[tok.text].unary {
				need = 1
			}
			if depth < need {
				return core.NewInvalidInputError("operator is missing an operand")
			}
			depth -= need - 1
		}
	}
	if depth != 1 {
		return core.NewInvalidInputError("malformed expression")
	}
	return nil
}

func tokenize(expression string) ([]token, error) {
	var tokens []token
	runes := []rune(expression)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// Exponent suffix like 1e-3.
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					for j < len(runes) && unicode.IsDigit(runes[j]) {
						j++
					}
					i = j
				}
			}
			text := string(runes[start:i])
			value, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", core.ErrInvalidInput, text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: value})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			name := string(runes[start:i])
			if j := skipSpaces(runes, i); j < len(runes) && runes[j] == '(' {
				if _, ok := functions[strings.ToLower(name)]; !ok {
					return nil, fmt.Errorf("%w: unknown function %q", core.ErrInvalidInput, name)
				}
				tokens = append(tokens, token{kind: tokFunc, text: strings.ToLower(name)})
			} else {
				tokens = append(tokens, token{kind: tokIdent, text: name})
			}
		case r == '(':
			tokens = append(tokens, token{kind: tokLeftParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRightParen, text: ")"})
			i++
		case strings.ContainsRune("+-*/^", r):
			text := string(r)
			// A minus in prefix position negates.
			if r == '-' && prefixPosition(tokens) {
				text = "neg"
			}
			if r == '+' && prefixPosition(tokens) {
				i++
				continue
			}
			tokens = append(tokens, token{kind: tokOperator, text: text})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", core.ErrInvalidInput, string(r))
		}
	}
	return tokens, nil
}

func skipSpaces(runes []rune, i int) int {
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

func prefixPosition(tokens []token) bool {
	if len(tokens) == 0 {
		return true
	}
	switch tokens[len(tokens)-1].kind {
	case tokNumber, tokIdent, tokRightParen:
		return false
	}
	return true
}
