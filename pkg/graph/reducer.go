package graph

// Reducer combines the previous value of a field with a newly written one.
//
// Reducers must be pure. Fields written concurrently by fanned-out tasks
// should use commutative reducers (Or, Sum, Consume); for non-commutative
// ones the executor applies task outputs in ascending task index, so the
// outcome is still deterministic.
type Reducer func(prev, next any) any

// Reducers maps a State field name to the reducer used when merging writes
// to that field. Fields without a reducer are last-value-wins.
type Reducers map[string]Reducer

// Apply folds a partial update into the state, one field at a time.
// A nil previous value (field not yet present) is passed to the reducer as-is.
func (r Reducers) Apply(s State, p Partial) {
	for k, v := range p {
		if red, ok := r[k]; ok {
			s[k] = red(s[k], v)
			continue
		}
		s[k] = v
	}
}

// FirstNonNil keeps the first non-nil value written to a field. Later
// writers, including nil ones, do not overwrite it.
func FirstNonNil(prev, next any) any {
	if prev != nil {
		return prev
	}
	return next
}

// Or reduces boolean writes with a logical OR. Once a field is true it stays
// true for the rest of the run. Non-bool values count as false.
func Or(prev, next any) any {
	p, _ := prev.(bool)
	n, _ := next.(bool)
	return p || n
}

// Sum adds integer writes to the previous value. Tasks report deltas, not
// absolute values, so concurrent contributions accumulate in any order.
func Sum(prev, next any) any {
	p, _ := prev.(int)
	n, _ := next.(int)
	return p + n
}

// Consume reduces a shrinking work queue. Each writer proposes the queue as
// it sees it after removing its own item; the merge keeps only entries every
// writer still agrees on, preserving the previous order. The intersection is
// commutative, so a full fan-out batch drains the queue deterministically.
func Consume(prev, next any) any {
	if prev == nil {
		return next
	}
	p := toStrings(prev)
	n := toStrings(next)
	keep := make(map[string]bool, len(n))
	for _, e := range n {
		keep[e] = true
	}
	out := make([]string, 0, len(p))
	for _, e := range p {
		if keep[e] {
			out = append(out, e)
		}
	}
	return out
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
