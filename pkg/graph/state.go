package graph

// State is the merged snapshot threaded through every node.
//
// Nodes never mutate a State in place: the executor hands each node its own
// clone and folds the returned Partial back into the canonical snapshot.
type State map[string]any

// Partial holds only the fields a node changed. The executor merges it into
// the State via the registered reducers.
type Partial map[string]any

// Clone returns a shallow copy of the state. Values are not deep-copied;
// nodes must treat slice and map values as read-only.
func (s State) Clone() State {
	next := make(State, len(s))
	for k, v := range s {
		next[k] = v
	}
	return next
}

// Value returns the raw value for key and whether it is present.
func (s State) Value(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// String returns the string value for key, or "" when absent or not a string.
func (s State) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Int returns the int value for key, or 0 when absent or not an int.
func (s State) Int(key string) int {
	v, _ := s[key].(int)
	return v
}

// Bool returns the bool value for key, or false when absent or not a bool.
func (s State) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Strings returns the []string value for key. A bare string is promoted to a
// single-element slice; a []any of strings is converted element-wise.
func (s State) Strings(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			str, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, str)
		}
		return out
	default:
		return nil
	}
}
