package filter

import (
	"github.com/s0up4200/deskctl/desk"
)

// Apply returns the cases matching f, keeping their order.
// Evaluation stops at the first error.
func Apply(f Filter, cases []desk.Case) ([]desk.Case, error) {
	matches := make([]desk.Case, 0, len(cases))
	for i := range cases {
		ok, err := f.Evaluate(&cases[i])
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, cases[i])
		}
	}
	return matches, nil
}

// Resolve picks the expression to use: an explicit expression wins over a
// named preset, which wins over the fallback. The boolean is false when a
// preset was requested but does not exist.
func Resolve(expression, preset string, presets map[string]string, fallback string) (string, bool) {
	switch {
	case expression != "":
		return expression, true
	case preset != "":
		e, ok := presets[preset]
		return e, ok
	default:
		return fallback, true
	}
}
