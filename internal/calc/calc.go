// Package calc recognizes arithmetic queries and evaluates them.
//
// A launcher query is either text to fuzzy-match or an inline calculation;
// Evaluate decides which. Anything that does not evaluate cleanly to a
// finite number is classified ErrNotExpression and falls through to text
// matching.
package calc

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/knetic/govaluate"
)

// ErrNotExpression reports that a query is not a usable arithmetic
// expression. Garbage, partial input and division by zero all map here.
var ErrNotExpression = errors.New("not an arithmetic expression")

// Result is the evaluated form of an arithmetic query.
type Result struct {
	Expr  string
	Value float64
}

// expressionPattern admits digits, the four binary operators, parentheses,
// decimal points and inline whitespace. Nothing else is part of the grammar.
var expressionPattern = regexp.MustCompile(`^[0-9+\-*/(). \t]+$`)

// Evaluate parses text as a signed, nested arithmetic expression with
// + - * / and parentheses. Partial input never yields a partial result:
// the whole query evaluates or the whole query is ErrNotExpression.
func Evaluate(text string) (Result, error) {
	trimmed := strings.TrimSpace(text)
	if !looksLikeExpression(trimmed) {
		return Result{}, ErrNotExpression
	}

	expr, err := govaluate.NewEvaluableExpression(trimmed)
	if err != nil {
		return Result{}, ErrNotExpression
	}
	raw, err := expr.Evaluate(nil)
	if err != nil {
		return Result{}, ErrNotExpression
	}
	value, ok := raw.(float64)
	if !ok || math.IsInf(value, 0) || math.IsNaN(value) {
		return Result{}, ErrNotExpression
	}
	return Result{Expr: trimmed, Value: value}, nil
}

// looksLikeExpression is the cheap pre-parse gate: grammar characters only,
// at least one digit, and no ** (the grammar has no exponent operator).
func looksLikeExpression(text string) bool {
	if text == "" || !expressionPattern.MatchString(text) {
		return false
	}
	if strings.Contains(text, "**") {
		return false
	}
	return strings.ContainsAny(text, "0123456789")
}

// FormatValue renders v for display: integral values without a decimal
// point, magnitudes at or above 1e15 in scientific notation, everything
// else as the shortest decimal string that round-trips a float64.
func FormatValue(v float64) string {
	if math.Abs(v) >= 1e15 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
