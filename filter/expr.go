package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/deskctl/desk"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.extra, funcs)
	}
}

// WithClock sets the time source used by the date helpers
func WithClock(now func() time.Time) ExprCompilerOption {
	return func(c *exprCompiler) {
		if now != nil {
			c.now = now
		}
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		now:   time.Now,
		extra: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.helpers = helperFunctions(c.now)
	maps.Copy(c.helpers, c.extra)

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	now     func() time.Time
	extra   map[string]any
	helpers map[string]any
	cache   *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Case fields are only known at run time
	program, err := expr.Compile(expression,
		expr.Env(c.helpers),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helpers,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Evaluate evaluates the filter against a case
func (f *exprFilter) Evaluate(c *desk.Case) (bool, error) {
	if c == nil {
		return false, nil
	}

	result, err := expr.Run(f.program, runtimeEnvironment(f.helpers, c))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, CaseID: c.ID, Err: err}
	}

	matched, _ := result.(bool)
	return matched, nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// helperFunctions creates the helpers that do not depend on the case
func helperFunctions(now func() time.Time) map[string]any {
	return map[string]any{
		// Date helpers
		"daysSince": func(t time.Time) int {
			return int(now().Sub(t).Hours() / 24)
		},
		"hoursSince": func(t time.Time) int {
			return int(now().Sub(t).Hours())
		},
		"daysAgo": func(days int) time.Time {
			return now().AddDate(0, 0, -days)
		},
		"parseDate": func(s string) (time.Time, error) {
			if t, err := desk.ParseAPIDate(s); err == nil {
				return t, nil
			}
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return time.Time{}, fmt.Errorf("parseDate: unrecognised date %q", s)
			}
			return t, nil
		},
		// Case-insensitive string helpers; contains, startsWith and endsWith
		// are expr operators and stay case-sensitive
		"icontains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"istartsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"iendsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"now":   now,
	}
}

// runtimeEnvironment exposes the case fields next to the helpers
func runtimeEnvironment(helpers map[string]any, c *desk.Case) map[string]any {
	env := make(map[string]any, len(helpers)+16)
	maps.Copy(env, helpers)

	env["Case"] = c
	env["hasLabel"] = c.HasLabel
	env["hasAnyLabel"] = func(labels ...string) bool {
		return slices.ContainsFunc(labels, c.HasLabel)
	}
	env["field"] = func(name string) string {
		return c.CustomFields[name]
	}

	env["ID"] = c.ID
	env["Subject"] = c.Subject
	env["Status"] = c.Status
	env["Type"] = c.Type
	env["Priority"] = c.Priority
	env["Description"] = c.Description
	env["Labels"] = c.Labels
	env["CreatedAt"] = timeOrZero(c.CreatedAt)
	env["UpdatedAt"] = timeOrZero(c.UpdatedAt)
	env["ChangedAt"] = timeOrZero(c.ChangedAt)

	customer := ""
	if c.Customer != nil {
		customer = c.Customer.DisplayName()
	}
	env["Customer"] = customer

	return env
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
