// internal/pkg/rules/evaluator.go
package rules

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// StockInput 是规则表达式可见的变量
type StockInput struct {
	ProductID string
	Available int64
	Reserved  int64
	Total     int64
}

// Evaluator 编译一次 CEL 表达式，之后可并发求值。
// 例如: available < 10 || (total > 0 && double(available) / double(total) < 0.1)
type Evaluator struct {
	expr    string
	program cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("product_id", cel.StringType),
		cel.Variable("available", cel.IntType),
		cel.Variable("reserved", cel.IntType),
		cel.Variable("total", cel.IntType),
	)
}

// NewEvaluator 编译表达式。表达式为空时返回 nil，表示规则未启用。
func NewEvaluator(expr string) (*Evaluator, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := newEnv()
	if err != nil {
		return nil, errors.Wrap(err, "create cel env")
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "compile rule %q", expr)
	}
	if ast.OutputType().String() != cel.BoolType.String() {
		return nil, errors.Errorf("rule %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "build program for rule %q", expr)
	}
	return &Evaluator{expr: expr, program: prg}, nil
}

func (e *Evaluator) Expression() string {
	if e == nil {
		return ""
	}
	return e.expr
}

// Matches 对输入求值；nil Evaluator 永远不匹配
func (e *Evaluator) Matches(in StockInput) (bool, error) {
	if e == nil {
		return false, nil
	}
	out, _, err := e.program.Eval(map[string]any{
		"product_id": in.ProductID,
		"available":  in.Available,
		"reserved":   in.Reserved,
		"total":      in.Total,
	})
	if err != nil {
		return false, errors.Wrapf(err, "evaluate rule %q", e.expr)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("rule %q returned %T", e.expr, out.Value())
	}
	return matched, nil
}
