package schema

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"
)

// GlobalAttributes are accepted on every rune without declaration.
var GlobalAttributes = map[string]bool{"id": true, "class": true}

// Resolved holds attribute values after defaults and coercion.
type Resolved map[string]any

// String returns the attribute as a string, or "".
func (r Resolved) String(name string) string {
	return cast.ToString(r[name])
}

// Bool returns the attribute as a bool.
func (r Resolved) Bool(name string) bool {
	return cast.ToBool(r[name])
}

// Number returns the attribute as a float64.
func (r Resolved) Number(name string) float64 {
	return cast.ToFloat64(r[name])
}

// Has reports whether the attribute has a value.
func (r Resolved) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Validate resolves raw attribute values against the model. It never
// fails: problems are returned as diagnostics and the offending attribute
// is left out of the result.
func (m *Model) Validate(tag string, raw map[string]any) (Resolved, []Diagnostic) {
	resolved := make(Resolved, len(m.attrs))
	var diags []Diagnostic

	for _, a := range m.attrs {
		v, present := raw[a.Name]
		if !present || v == nil {
			if a.Required {
				diags = append(diags, Diagnostic{
					ID:        DiagMissingRequired,
					Level:     levelOr(a.ErrorLevel, SeverityError),
					Message:   fmt.Sprintf("missing required attribute %q", a.Name),
					Tag:       tag,
					Attribute: a.Name,
				})
			} else if a.Default != nil {
				resolved[a.Name] = a.Default
			}
			continue
		}

		coerced, err := coerce(a.Type, v)
		if err != nil {
			diags = append(diags, Diagnostic{
				ID:        DiagInvalidType,
				Level:     levelOr(a.ErrorLevel, SeverityError),
				Message:   fmt.Sprintf("attribute %q must be type of %s: %v", a.Name, a.Type, err),
				Tag:       tag,
				Attribute: a.Name,
			})
			continue
		}

		if len(a.Matches) > 0 && !matchesAny(coerced, a.Matches) {
			diags = append(diags, Diagnostic{
				ID:        DiagInvalidValue,
				Level:     levelOr(a.ErrorLevel, SeverityCritical),
				Message:   fmt.Sprintf("attribute %q must match one of %v, got %v", a.Name, a.Matches, v),
				Tag:       tag,
				Attribute: a.Name,
			})
			continue
		}
		resolved[a.Name] = coerced
	}

	// Undeclared attributes, in a stable order.
	var extra []string
	for name := range raw {
		if _, declared := m.attrIndex[name]; declared {
			continue
		}
		if GlobalAttributes[name] {
			resolved[name] = raw[name]
			continue
		}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		diags = append(diags, Diagnostic{
			ID:        DiagUndefinedAttr,
			Level:     SeverityWarning,
			Message:   fmt.Sprintf("invalid attribute %q", name),
			Tag:       tag,
			Attribute: name,
		})
	}

	return resolved, diags
}

func levelOr(level, fallback Severity) Severity {
	if level == "" {
		return fallback
	}
	return level
}

func coerce(t Type, v any) (any, error) {
	switch t {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("got %T", v)
		}
		return s, nil
	case TypeNumber:
		if _, isBool := v.(bool); isBool {
			return nil, fmt.Errorf("got %T", v)
		}
		return cast.ToFloat64E(v)
	case TypeBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return cast.ToBoolE(b)
		}
		return nil, fmt.Errorf("got %T", v)
	case TypeArray:
		return cast.ToSliceE(v)
	case TypeObject:
		return cast.ToStringMapE(v)
	default:
		return v, nil
	}
}

func matchesAny(v any, allowed []any) bool {
	s := cast.ToString(v)
	for _, a := range allowed {
		if cast.ToString(a) == s {
			return true
		}
	}
	return false
}
