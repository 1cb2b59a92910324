package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"backendrouter/pkg/backend"
	"backendrouter/pkg/logger"
)

// Acceptor is a boolean expression over a backend's name and configuration,
// compiled once and evaluated per backend.
//
// Configuration attributes are exposed as top-level variables, alongside
// `name` and `configuration`:
//
//	simulator == false && n_qubits >= 5
//	name startsWith "ibmq_" && configuration["local"] != true
type Acceptor struct {
	expression string
	program    *vm.Program
	log        *slog.Logger
}

// NewAcceptor compiles expression. Undefined variables evaluate to nil, so a
// backend lacking an attribute simply fails comparisons against it.
func NewAcceptor(expression string, log *slog.Logger) (*Acceptor, error) {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile accept expression %q: %w", expression, err)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Acceptor{expression: expression, program: program, log: log}, nil
}

func (a *Acceptor) String() string { return a.expression }

// Accept reports whether b satisfies the expression. Evaluation errors reject
// the backend.
func (a *Acceptor) Accept(b backend.Backend) bool {
	cfg := b.Configuration()
	env := make(map[string]interface{}, len(cfg)+2)
	for k, v := range cfg {
		env[k] = v
	}
	env["name"] = b.Name()
	env["configuration"] = map[string]interface{}(cfg)

	out, err := expr.Run(a.program, env)
	if err != nil {
		a.log.Warn("accept expression failed, rejecting backend",
			"backend", b.Name(), "expression", a.expression, "error", err)
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Predicate adapts the acceptor for backend.Filter.
func (a *Acceptor) Predicate() backend.Predicate {
	return a.Accept
}

// All combines predicates with a logical AND. Nil entries are skipped and an
// empty combination is nil, i.e. accepts everything.
func All(preds ...backend.Predicate) backend.Predicate {
	var set []backend.Predicate
	for _, p := range preds {
		if p != nil {
			set = append(set, p)
		}
	}
	switch len(set) {
	case 0:
		return nil
	case 1:
		return set[0]
	}
	return func(b backend.Backend) bool {
		for _, p := range set {
			if !p(b) {
				return false
			}
		}
		return true
	}
}

// CompileAll compiles a named set of expressions, as loaded from config.
// Every failing entry is reported, in name order.
func CompileAll(expressions map[string]string, log *slog.Logger) (map[string]*Acceptor, error) {
	names := make([]string, 0, len(expressions))
	for name := range expressions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]*Acceptor, len(expressions))
	var errs []error
	for _, name := range names {
		a, err := NewAcceptor(expressions[name], log)
		if err != nil {
			errs = append(errs, fmt.Errorf("acceptor %s: %w", name, err))
			continue
		}
		out[name] = a
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
