// Package schema declares what a rune accepts: typed attributes and named
// groups that partition its children. Declarations are plain data built at
// load time; nothing here runs during a transform except validation.
package schema

import (
	"errors"
	"fmt"

	"github.com/agentic-research/runekit/api"
)

var (
	ErrDuplicateAttribute = errors.New("duplicate attribute")
	ErrDuplicateGroup     = errors.New("duplicate group")
	ErrUnknownType        = errors.New("unknown attribute type")
)

// Type is the declared value type of an attribute.
type Type string

const (
	TypeString  Type = "String"
	TypeNumber  Type = "Number"
	TypeBoolean Type = "Boolean"
	TypeArray   Type = "Array"
	TypeObject  Type = "Object"
	TypeAny     Type = "Any"
)

// IsValid reports whether t is one of the supported types.
func (t Type) IsValid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeAny:
		return true
	}
	return false
}

// Attribute declares a single rune attribute.
type Attribute struct {
	Name        string
	Type        Type
	Required    bool
	Default     any
	Matches     []any    // allowed values; empty means unrestricted
	ErrorLevel  Severity // overrides the default severity of a failed check
	Description string
}

// Filter selects nodes for a group.
// Zero-valued fields do not constrain; the zero Filter matches every node.
type Filter struct {
	Kind      api.NodeKind
	Tag       string
	Predicate func(n *api.Node) bool
	// Deep also matches a node when one of its descendants matches.
	Deep bool
	// Depth bounds the descent of a deep filter; 0 is unbounded.
	Depth int
}

// Match reports whether n satisfies the filter.
func (f Filter) Match(n *api.Node) bool {
	if n == nil {
		return false
	}
	if !f.Deep {
		return f.matchSelf(n)
	}
	found := false
	n.Walk(func(c *api.Node, depth int) bool {
		if found || (f.Depth > 0 && depth > f.Depth) {
			return false
		}
		if f.matchSelf(c) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (f Filter) matchSelf(n *api.Node) bool {
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	if f.Tag != "" && (n.Kind != api.KindTag || n.Tag != f.Tag) {
		return false
	}
	if f.Predicate != nil && !f.Predicate(n) {
		return false
	}
	return true
}

// Group declares a named partition of a rune's children.
type Group struct {
	Name    string
	Section int
	Include []Filter // any filter matching claims the child; empty matches all
	Limit   int      // maximum children claimed; 0 is unlimited
}

// Match reports whether n may be claimed by the group.
func (g Group) Match(n *api.Node) bool {
	if len(g.Include) == 0 {
		return true
	}
	for _, f := range g.Include {
		if f.Match(n) {
			return true
		}
	}
	return false
}

// Model is the attribute and group declaration set of one rune.
type Model struct {
	name       string
	attrs      []Attribute
	attrIndex  map[string]int
	groups     []Group
	groupIndex map[string]int
	errs       []error
}

// NewModel starts an empty declaration set for the named rune.
func NewModel(name string) *Model {
	return &Model{
		name:       name,
		attrIndex:  make(map[string]int),
		groupIndex: make(map[string]int),
	}
}

// Name returns the rune name the model was declared for.
func (m *Model) Name() string { return m.name }

// DeclareAttribute registers an attribute. Declaration errors are collected
// and reported by Err.
func (m *Model) DeclareAttribute(name string, a Attribute) *Model {
	a.Name = name
	if a.Type == "" {
		a.Type = TypeString
	}
	if !a.Type.IsValid() {
		m.errs = append(m.errs, fmt.Errorf("%s.%s: %w %q", m.name, name, ErrUnknownType, a.Type))
		return m
	}
	if _, exists := m.attrIndex[name]; exists {
		m.errs = append(m.errs, fmt.Errorf("%s.%s: %w", m.name, name, ErrDuplicateAttribute))
		return m
	}
	m.attrIndex[name] = len(m.attrs)
	m.attrs = append(m.attrs, a)
	return m
}

// DeclareGroup registers a child group.
func (m *Model) DeclareGroup(name string, g Group) *Model {
	g.Name = name
	if _, exists := m.groupIndex[name]; exists {
		m.errs = append(m.errs, fmt.Errorf("%s.%s: %w", m.name, name, ErrDuplicateGroup))
		return m
	}
	m.groupIndex[name] = len(m.groups)
	m.groups = append(m.groups, g)
	return m
}

// Attribute looks up a declared attribute.
func (m *Model) Attribute(name string) (Attribute, bool) {
	i, ok := m.attrIndex[name]
	if !ok {
		return Attribute{}, false
	}
	return m.attrs[i], true
}

// Attributes returns the declared attributes in declaration order.
func (m *Model) Attributes() []Attribute {
	out := make([]Attribute, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// Groups returns the declared groups in declaration order.
func (m *Model) Groups() []Group {
	out := make([]Group, len(m.groups))
	copy(out, m.groups)
	return out
}

// Err reports every declaration error, or nil.
func (m *Model) Err() error {
	return errors.Join(m.errs...)
}
