package tool

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// Accepts identifiers, digits, whitespace, decimal points, operators,
// parentheses and a single equals sign.
var mathExpressionPattern = regexp.MustCompile(`^[\w\s\+\-\*/%\^\(\)\.=]+$`)

var mathFuncs = map[string]func(float64) (float64, error){
	"sqrt": func(x float64) (float64, error) {
		if x < 0 {
			return 0, fmt.Errorf("square root of negative number")
		}
		return math.Sqrt(x), nil
	},
	"abs":   wrap(math.Abs),
	"sin":   wrap(math.Sin),
	"cos":   wrap(math.Cos),
	"tan":   wrap(math.Tan),
	"asin":  wrap(math.Asin),
	"acos":  wrap(math.Acos),
	"atan":  wrap(math.Atan),
	"exp":   wrap(math.Exp),
	"floor": wrap(math.Floor),
	"ceil":  wrap(math.Ceil),
	"round": wrap(math.Round),
	"ln":    logFunc(math.Log),
	"log":   logFunc(math.Log10),
	"log2":  logFunc(math.Log2),
}

var mathConsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func wrap(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) { return fn(x), nil }
}

func logFunc(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("logarithm of non-positive number")
		}
		return fn(x), nil
	}
}

type calculatorArgs struct {
	Input string `json:"input_string"`
}

type Calculation struct {
	Task   string `json:"task"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type CalculatorOutput struct {
	Results []Calculation `json:"results"`
	Summary string        `json:"summary"`
}

func executeCalculator(_ context.Context, args calculatorArgs) (contractx.ToolResult, error) {
	input := strings.TrimSpace(args.Input)
	if input == "" {
		return contractx.Failure("input_string is empty"), nil
	}

	out := CalculatorOutput{}
	var lines []string
	failed := 0
	for _, task := range strings.Split(input, ",") {
		task = strings.TrimSpace(task)
		if task == "" {
			continue
		}
		calc := Calculation{Task: task}
		result, err := calculate(task)
		if err != nil {
			calc.Error = err.Error()
			lines = append(lines, fmt.Sprintf("Error in '%s': %s.", task, err))
			failed++
		} else {
			calc.Result = result
			if strings.Contains(task, "=") {
				lines = append(lines, fmt.Sprintf("Solution of '%s' is %s.", task, result))
			} else {
				lines = append(lines, fmt.Sprintf("Result of '%s' is %s.", task, result))
			}
		}
		out.Results = append(out.Results, calc)
	}
	out.Summary = strings.Join(lines, " ")

	if failed == len(out.Results) {
		r := contractx.Failure(out.Summary)
		r.Payload = out
		return r, nil
	}
	return contractx.Success(out), nil
}

// calculate evaluates an expression, or solves it when it has an equals
// sign.
func calculate(task string) (string, error) {
	task = strings.ReplaceAll(task, "**", "^")
	if err := validateMathExpression(task); err != nil {
		return "", err
	}

	lhs, rhs, isEquation := strings.Cut(task, "=")
	if !isEquation {
		v, err := evaluateMathExpression(task, nil)
		if err != nil {
			return "", err
		}
		return formatNumber(v), nil
	}
	if strings.TrimSpace(lhs) == "" || strings.TrimSpace(rhs) == "" {
		return "", fmt.Errorf("equation needs both sides")
	}
	return solveEquation(lhs, rhs)
}

func validateMathExpression(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return fmt.Errorf("expression is empty")
	}
	if !mathExpressionPattern.MatchString(expression) {
		return fmt.Errorf("expression contains invalid characters")
	}
	if strings.Count(expression, "=") > 1 {
		return fmt.Errorf("expression has more than one equals sign")
	}

	balance := 0
	for _, ch := range expression {
		switch ch {
		case '(':
			balance++
		case ')':
			balance--
			if balance < 0 {
				return fmt.Errorf("expression has unbalanced parentheses")
			}
		}
	}
	if balance != 0 {
		return fmt.Errorf("expression has unbalanced parentheses")
	}
	return nil
}

func evaluateMathExpression(expression string, vars map[string]float64) (float64, error) {
	p := &mathParser{input: expression, vars: vars}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.hasNext() {
		return 0, fmt.Errorf("unexpected token at position %d", p.pos)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return value, nil
}

func solveEquation(lhs, rhs string) (string, error) {
	names := freeVariables(lhs + " " + rhs)
	switch len(names) {
	case 0:
		l, err := evaluateMathExpression(lhs, nil)
		if err != nil {
			return "", err
		}
		r, err := evaluateMathExpression(rhs, nil)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(math.Abs(l-r) < 1e-9), nil
	case 1:
	default:
		return "", fmt.Errorf("only single-variable equations are supported, found %s", strings.Join(names, ", "))
	}

	name := names[0]
	f := func(x float64) (float64, error) {
		vars := map[string]float64{name: x}
		l, err := evaluateMathExpression(lhs, vars)
		if err != nil {
			return 0, err
		}
		r, err := evaluateMathExpression(rhs, vars)
		if err != nil {
			return 0, err
		}
		return l - r, nil
	}

	roots := findRoots(f)
	if len(roots) == 0 {
		return "", fmt.Errorf("no real solution found")
	}
	parts := make([]string, len(roots))
	for i, root := range roots {
		parts[i] = name + " = " + formatNumber(root)
	}
	return strings.Join(parts, ", "), nil
}

// findRoots combines a sign-change scan with Newton iterations from fixed
// seeds, then deduplicates.
func findRoots(f func(float64) (float64, error)) []float64 {
	var candidates []float64

	const lo, hi, step = -1000.0, 1000.0, 0.25
	prevX := lo
	prevY, prevErr := f(prevX)
	for x := lo + step; x <= hi; x += step {
		y, err := f(x)
		if err == nil && prevErr == nil {
			switch {
			case y == 0:
				candidates = append(candidates, x)
			case prevY*y < 0:
				if root, ok := bisect(f, prevX, x); ok {
					candidates = append(candidates, root)
				}
			}
		}
		prevX, prevY, prevErr = x, y, err
	}

	for _, seed := range []float64{0, 1, -1, 10, -10, 1e4, -1e4, 1e6, -1e6} {
		if root, ok := newton(f, seed); ok {
			candidates = append(candidates, root)
		}
	}

	slices.Sort(candidates)
	var roots []float64
	for _, c := range candidates {
		c = cleanFloat(c)
		if y, err := f(c); err != nil || math.Abs(y) > 1e-7 {
			continue
		}
		if len(roots) > 0 && math.Abs(roots[len(roots)-1]-c) < 1e-6 {
			continue
		}
		roots = append(roots, c)
	}
	return roots
}

func bisect(f func(float64) (float64, error), a, b float64) (float64, bool) {
	fa, err := f(a)
	if err != nil {
		return 0, false
	}
	for i := 0; i < 200; i++ {
		mid := (a + b) / 2
		fm, err := f(mid)
		if err != nil {
			return 0, false
		}
		if fm == 0 || (b-a)/2 < 1e-12 {
			return mid, true
		}
		if fa*fm < 0 {
			b = mid
		} else {
			a, fa = mid, fm
		}
	}
	return (a + b) / 2, true
}

func newton(f func(float64) (float64, error), x float64) (float64, bool) {
	for i := 0; i < 100; i++ {
		y, err := f(x)
		if err != nil {
			return 0, false
		}
		if math.Abs(y) < 1e-12 {
			return x, true
		}
		h := 1e-6 * math.Max(1, math.Abs(x))
		y2, err := f(x + h)
		if err != nil {
			return 0, false
		}
		d := (y2 - y) / h
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, false
		}
		next := x - y/d
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if math.Abs(next-x) < 1e-12*math.Max(1, math.Abs(x)) {
			return next, true
		}
		x = next
	}
	y, err := f(x)
	return x, err == nil && math.Abs(y) < 1e-9
}

func cleanFloat(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		v = r
	} else {
		v = math.Round(v*1e10) / 1e10
	}
	if v == 0 {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(cleanFloat(v), 'g', 12, 64)
}

// freeVariables lists identifiers that are neither constants nor function
// names, sorted.
func freeVariables(expression string) []string {
	var names []string
	for i := 0; i < len(expression); {
		ch := expression[i]
		if !isIdentStart(ch) {
			i++
			continue
		}
		start := i
		for i < len(expression) && isIdentPart(expression[i]) {
			i++
		}
		name := strings.ToLower(expression[start:i])
		if _, ok := mathConsts[name]; ok {
			continue
		}
		if _, ok := mathFuncs[name]; ok && nextNonSpace(expression, i) == '(' {
			continue
		}
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func nextNonSpace(s string, i int) byte {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	if i < len(s) {
		return s[i]
	}
	return 0
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

type mathParser struct {
	input string
	pos   int
	vars  map[string]float64
}

func (p *mathParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('+'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.match('-'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *mathParser) parseTerm() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('*'):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.match('/'):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case p.match('%'):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		case p.hasNext() && (p.peek() == '(' || isIdentStart(p.peek())):
			// implicit multiplication: 2x, 3(x+1)
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		default:
			return left, nil
		}
	}
}

func (p *mathParser) parsePower() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if p.match('^') {
		right, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(left, right), nil
	}
	return left, nil
}

func (p *mathParser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.match('+') {
		return p.parseUnary()
	}
	if p.match('-') {
		value, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *mathParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.match('(') {
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.match(')') {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return value, nil
	}
	if p.hasNext() && isIdentStart(p.peek()) {
		return p.parseIdentifier()
	}
	return p.parseNumber()
}

func (p *mathParser) parseIdentifier() (float64, error) {
	start := p.pos
	for p.hasNext() && isIdentPart(p.peek()) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	if fn, ok := mathFuncs[name]; ok {
		p.skipSpaces()
		if p.match('(') {
			arg, err := p.parseExpr()
			if err != nil {
				return 0, err
			}
			p.skipSpaces()
			if !p.match(')') {
				return 0, fmt.Errorf("missing closing parenthesis for %s", name)
			}
			return fn(arg)
		}
	}
	if v, ok := mathConsts[name]; ok {
		return v, nil
	}
	if v, ok := p.vars[name]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown symbol %q", name)
}

func (p *mathParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	hasDigit := false
	hasDot := false

	for p.hasNext() {
		ch := p.peek()
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
			p.pos++
		case ch == '.':
			if hasDot {
				return 0, fmt.Errorf("invalid number format at position %d", p.pos)
			}
			hasDot = true
			p.pos++
		default:
			goto done
		}
	}

done:
	if !hasDigit {
		return 0, fmt.Errorf("expected number at position %d", start)
	}

	raw := p.input[start:p.pos]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

func (p *mathParser) skipSpaces() {
	for p.hasNext() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *mathParser) hasNext() bool {
	return p.pos < len(p.input)
}

func (p *mathParser) peek() byte {
	return p.input[p.pos]
}

func (p *mathParser) match(expected byte) bool {
	if p.hasNext() && p.peek() == expected {
		p.pos++
		return true
	}
	return false
}
