package buildfile

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// newEvalContext returns the context expressions of a build file are evaluated in.
//
// Variables: os, arch, ci, provider. Functions: get_env and a subset of the cty standard library.
func newEvalContext(facts *envfacts.Facts) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"os":       cty.StringVal(facts.OS()),
			"arch":     cty.StringVal(facts.Arch()),
			"ci":       cty.BoolVal(facts.IsCI()),
			"provider": cty.StringVal(facts.Provider().String()),
		},
		Functions: map[string]function.Function{
			"get_env":  getEnvFunc(facts),
			"upper":    stdlib.UpperFunc,
			"lower":    stdlib.LowerFunc,
			"join":     stdlib.JoinFunc,
			"split":    stdlib.SplitFunc,
			"format":   stdlib.FormatFunc,
			"concat":   stdlib.ConcatFunc,
			"contains": stdlib.ContainsFunc,
			"coalesce": stdlib.CoalesceFunc,
		},
	}
}

// getEnvFunc implements `get_env(name, default)`: the value of an environment variable or the
// default when it is not set.
func getEnvFunc(facts *envfacts.Facts) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "default", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if len(args) > 2 { //nolint:mnd
				return cty.NilVal, function.NewArgErrorf(2, "get_env takes at most 2 arguments, got %d", len(args)) //nolint:mnd
			}

			if val, ok := facts.Env(args[0].AsString()); ok {
				return cty.StringVal(val), nil
			}

			if len(args) == 2 { //nolint:mnd
				return args[1], nil
			}

			return cty.StringVal(""), nil
		},
	})
}
