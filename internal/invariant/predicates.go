// Package invariant implements SchemA's runtime predicate library, the
// turnstile (`subject |- @predicate(args)`) evaluation primitive, and the
// per-loop invariant tracker/synthesizer (spec §4.3). It works entirely
// over native Go values (int64, float64, string, []any, ...); package eval
// converts its tagged Value representation to and from these before and
// after calling in, so this package stays free of any dependency on eval.
package invariant

import (
	"fmt"
	"reflect"
)

// PredicateFunc evaluates one named predicate against a subject and its
// curried arguments, e.g. `xs |- @greater_than(0)` calls
// PredicateFunc(xs, []any{int64(0)}).
type PredicateFunc func(subject any, args []any) (bool, error)

// Predicates is the fixed minimal predicate library from spec §4.3.
var Predicates = map[string]PredicateFunc{
	"sorted":       sortedPredicate,
	"positive":     positivePredicate,
	"negative":     negativePredicate,
	"non_negative": nonNegativePredicate,
	"non_empty":    nonEmptyPredicate,
	"unique":       uniquePredicate,
	"greater_than": greaterThanPredicate,
	"less_than":    lessThanPredicate,
	"equals":       equalsPredicate,
}

// Eval looks up name in Predicates and applies it, reporting an unknown
// predicate name as an error rather than panicking on a nil map entry.
func Eval(name string, subject any, args []any) (bool, error) {
	fn, ok := Predicates[name]
	if !ok {
		return false, fmt.Errorf("unknown predicate %q", name)
	}
	return fn(subject, args)
}

func asSlice(subject any) ([]any, bool) {
	s, ok := subject.([]any)
	return s, ok
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func compareNumbers(a, b any) (int, bool) {
	af, aok := asNumber(a)
	bf, bok := asNumber(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func sortedPredicate(subject any, _ []any) (bool, error) {
	xs, ok := asSlice(subject)
	if !ok {
		return false, fmt.Errorf("sorted requires an array subject")
	}
	for i := 1; i < len(xs); i++ {
		cmp, ok := compareNumbers(xs[i-1], xs[i])
		if !ok {
			return false, fmt.Errorf("sorted requires comparable elements")
		}
		if cmp > 0 {
			return false, nil
		}
	}
	return true, nil
}

func positivePredicate(subject any, _ []any) (bool, error) {
	n, ok := asNumber(subject)
	if !ok {
		return false, fmt.Errorf("positive requires a numeric subject")
	}
	return n > 0, nil
}

func negativePredicate(subject any, _ []any) (bool, error) {
	n, ok := asNumber(subject)
	if !ok {
		return false, fmt.Errorf("negative requires a numeric subject")
	}
	return n < 0, nil
}

func nonNegativePredicate(subject any, _ []any) (bool, error) {
	n, ok := asNumber(subject)
	if !ok {
		return false, fmt.Errorf("non_negative requires a numeric subject")
	}
	return n >= 0, nil
}

func nonEmptyPredicate(subject any, _ []any) (bool, error) {
	switch v := subject.(type) {
	case []any:
		return len(v) > 0, nil
	case string:
		return len(v) > 0, nil
	case map[string]any:
		return len(v) > 0, nil
	default:
		return false, fmt.Errorf("non_empty requires a container or string subject")
	}
}

func uniquePredicate(subject any, _ []any) (bool, error) {
	xs, ok := asSlice(subject)
	if !ok {
		return false, fmt.Errorf("unique requires an array subject")
	}
	seen := make(map[any]struct{}, len(xs))
	for _, v := range xs {
		if _, ok := seen[v]; ok {
			return false, nil
		}
		seen[v] = struct{}{}
	}
	return true, nil
}

func greaterThanPredicate(subject any, args []any) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("greater_than requires exactly one argument")
	}
	cmp, ok := compareNumbers(subject, args[0])
	if !ok {
		return false, fmt.Errorf("greater_than requires comparable operands")
	}
	return cmp > 0, nil
}

func lessThanPredicate(subject any, args []any) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("less_than requires exactly one argument")
	}
	cmp, ok := compareNumbers(subject, args[0])
	if !ok {
		return false, fmt.Errorf("less_than requires comparable operands")
	}
	return cmp < 0, nil
}

func equalsPredicate(subject any, args []any) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("equals requires exactly one argument")
	}
	if cmp, ok := compareNumbers(subject, args[0]); ok {
		return cmp == 0, nil
	}
	return reflect.DeepEqual(subject, args[0]), nil
}
