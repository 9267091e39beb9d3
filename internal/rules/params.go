package rules

import "fmt"

// ParamError is raised by ParamReader when a rule's declared params
// are missing, mistyped, or out of range. The engine catches this
// specifically and records it as a RuleParamError, distinct from a
// rule's own runtime failure.
type ParamError struct {
	RuleID string
	Key    string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("rule %s: param %q: %s", e.RuleID, e.Key, e.Reason)
}

// ParamReader validates and reads one rule instance's opaque params
// map, so individual Rule implementations never touch map[string]any
// directly.
type ParamReader struct {
	ruleID string
	raw    map[string]any
}

// NewParamReader wraps one rule instance's raw params for typed reads.
func NewParamReader(ruleID string, raw map[string]any) ParamReader {
	return ParamReader{ruleID: ruleID, raw: raw}
}

// Raw returns a param's unvalidated value, for rules that need nested
// structures ParamReader has no typed accessor for (e.g.
// packages.rolePlacement's `expected` map).
func (p ParamReader) Raw(key string) (any, bool) {
	v, ok := p.raw[key]
	return v, ok
}

// StringSlice reads a []string param, accepting either a YAML/JSON
// []any of strings or an already-typed []string.
func (p ParamReader) StringSlice(key string, required bool) ([]string, error) {
	v, ok := p.raw[key]
	if !ok {
		if required {
			return nil, &ParamError{RuleID: p.ruleID, Key: key, Reason: "required"}
		}
		return nil, nil
	}
	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, &ParamError{RuleID: p.ruleID, Key: key, Reason: "expected a list of strings"}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &ParamError{RuleID: p.ruleID, Key: key, Reason: "expected a list of strings"}
	}
}

// Int reads an int param, returning def if the key is absent.
func (p ParamReader) Int(key string, def int) (int, error) {
	v, ok := p.raw[key]
	if !ok {
		return def, nil
	}
	switch vv := v.(type) {
	case int:
		return vv, nil
	case int64:
		return int(vv), nil
	case float64:
		return int(vv), nil
	default:
		return 0, &ParamError{RuleID: p.ruleID, Key: key, Reason: "expected an integer"}
	}
}

// IntMin reads an int param and rejects a value below min.
func (p ParamReader) IntMin(key string, def, min int) (int, error) {
	n, err := p.Int(key, def)
	if err != nil {
		return 0, err
	}
	if n < min {
		return 0, &ParamError{RuleID: p.ruleID, Key: key, Reason: fmt.Sprintf("must be >= %d", min)}
	}
	return n, nil
}

// Bool reads a bool param, returning def if the key is absent.
func (p ParamReader) Bool(key string, def bool) bool {
	v, ok := p.raw[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// String reads a string param, returning def if the key is absent or
// mistyped.
func (p ParamReader) String(key string, def string) string {
	v, ok := p.raw[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// StringMapOfStringMap reads a `map[string]map[string]string` shaped
// param, as packages.rolePlacement's `expected: { roleId: { packageRegex: … } }` needs.
func (p ParamReader) StringMapOfStringMap(key string) (map[string]map[string]string, error) {
	v, ok := p.raw[key]
	if !ok {
		return nil, nil
	}
	outer, ok := v.(map[string]any)
	if !ok {
		return nil, &ParamError{RuleID: p.ruleID, Key: key, Reason: "expected a mapping"}
	}
	out := make(map[string]map[string]string, len(outer))
	for k, iv := range outer {
		inner, ok := iv.(map[string]any)
		if !ok {
			return nil, &ParamError{RuleID: p.ruleID, Key: key, Reason: fmt.Sprintf("value for %q must be a mapping", k)}
		}
		innerOut := make(map[string]string, len(inner))
		for ik, iv2 := range inner {
			s, ok := iv2.(string)
			if !ok {
				return nil, &ParamError{RuleID: p.ruleID, Key: key, Reason: fmt.Sprintf("%s.%s must be a string", k, ik)}
			}
			innerOut[ik] = s
		}
		out[k] = innerOut
	}
	return out, nil
}
