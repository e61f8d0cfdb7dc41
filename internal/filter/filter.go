package filter

import (
	"strings"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program deciding whether a completed job is
// audited. When disabled (empty expression), Match always returns true.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// New compiles an audit filter expression. The expression sees the string
// variables job_id, owner, state, workflow, and host, and must evaluate to
// a bool, e.g.:
//
//	state == "EXECUTED" && !workflow.startsWith("sandbox/")
func New(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("job_id", cel.StringType),
		cel.Variable("owner", cel.StringType),
		cel.Variable("state", cel.StringType),
		cel.Variable("workflow", cel.StringType),
		cel.Variable("host", cel.StringType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match evaluates the expression against one job. When disabled, returns
// true. Evaluation errors reject the job from auditing.
func (f Filter) Match(jobID, owner, state, workflow, host string) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"job_id":   jobID,
		"owner":    owner,
		"state":    state,
		"workflow": workflow,
		"host":     host,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
