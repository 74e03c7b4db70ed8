// internal/service/order/application/rules/rules.go
package rules

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// Engine evaluates a configurable CEL expression against order creation
// facts, e.g. `total <= 10000.0 && total_quantity <= 100`. It adapts the
// rule library to a tiny domain surface so callers never see CEL types.
type Engine struct {
	program cel.Program
}

// Fact is the flattened view of an order a rule can inspect.
type Fact struct {
	UserID        int64
	Total         float64
	Status        string
	ItemCount     int
	TotalQuantity int
}

// NewEngine compiles the rule once at startup. An empty expression yields an
// engine that allows everything.
func NewEngine(expression string) (*Engine, error) {
	if expression == "" {
		return &Engine{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("user_id", cel.IntType),
		cel.Variable("total", cel.DoubleType),
		cel.Variable("status", cel.StringType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("total_quantity", cel.IntType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create rule environment")
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "compile order rule %q", expression)
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "build rule program")
	}
	return &Engine{program: program}, nil
}

// Allow reports whether the fact passes the rule.
func (e *Engine) Allow(fact Fact) (bool, error) {
	if e.program == nil {
		return true, nil
	}
	out, _, err := e.program.Eval(map[string]interface{}{
		"user_id":        fact.UserID,
		"total":          fact.Total,
		"status":         fact.Status,
		"item_count":     fact.ItemCount,
		"total_quantity": fact.TotalQuantity,
	})
	if err != nil {
		return false, errors.Wrap(err, "evaluate order rule")
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("order rule evaluated to %T, want bool", out.Value())
	}
	return allowed, nil
}
