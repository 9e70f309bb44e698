package transform

import (
	"sort"

	"github.com/agentic-research/runekit/api"
)

// Marker attributes written by CreateComponent.
const (
	AttrTypeof   = "typeof"
	AttrProperty = "property"
	AttrRef      = "data-name"
	AttrContent  = "content"
)

// Component declares the output of a rune.
type Component struct {
	// Tag is the element name of the root.
	Tag string
	// Typeof names the component type, for renderers to dispatch on.
	Typeof string
	// Property names the property this component fills in its parent.
	Property string
	// Attributes are copied onto the root.
	Attributes map[string]any
	// Properties are typed fields. Primitives become meta children; tags
	// (which must also appear in Children) are marked in place.
	Properties map[string]any
	// Refs name sub-trees (which must also appear in Children) so a
	// renderer can address them directly.
	Refs map[string]any
	// Children in output order.
	Children []api.Renderable
}

// CreateComponent assembles the root tag of a component.
func CreateComponent(c Component) *api.Tag {
	attrs := make(map[string]any, len(c.Attributes)+2)
	for k, v := range c.Attributes {
		attrs[k] = v
	}
	if c.Typeof != "" {
		attrs[AttrTypeof] = c.Typeof
	}
	if c.Property != "" {
		attrs[AttrProperty] = c.Property
	}

	var metas []api.Renderable
	for _, name := range sortedKeys(c.Properties) {
		switch v := c.Properties[name].(type) {
		case *api.Tag:
			mark(v, AttrProperty, name)
		case []api.Renderable:
			for _, r := range v {
				if t, ok := r.(*api.Tag); ok {
					mark(t, AttrProperty, name)
				}
			}
		case nil:
		default:
			metas = append(metas, api.NewTag("meta", map[string]any{
				AttrProperty: name,
				AttrContent:  v,
			}))
		}
	}

	for _, name := range sortedKeys(c.Refs) {
		switch v := c.Refs[name].(type) {
		case *api.Tag:
			mark(v, AttrRef, name)
		case []api.Renderable:
			for _, r := range v {
				if t, ok := r.(*api.Tag); ok {
					mark(t, AttrRef, name)
				}
			}
		}
	}

	children := make([]api.Renderable, 0, len(metas)+len(c.Children))
	children = append(children, metas...)
	children = append(children, c.Children...)
	return &api.Tag{Name: c.Tag, Attributes: attrs, Children: children}
}

func mark(t *api.Tag, key, value string) {
	if t == nil {
		return
	}
	if t.Attributes == nil {
		t.Attributes = make(map[string]any)
	}
	t.Attributes[key] = value
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PropertyValue finds property name of the component rooted at t. Meta
// properties yield their content, tag properties the tag itself. Nested
// components are not searched.
func PropertyValue(t *api.Tag, name string) (any, bool) {
	found := findOwn(t, func(c *api.Tag) bool { return c.Attr(AttrProperty) == name })
	if found == nil {
		return nil, false
	}
	if found.Name == "meta" {
		return found.Attributes[AttrContent], true
	}
	return found, true
}

// Ref finds the sub-tree of t marked with ref name.
func Ref(t *api.Tag, name string) (*api.Tag, bool) {
	found := findOwn(t, func(c *api.Tag) bool { return c.Attr(AttrRef) == name })
	return found, found != nil
}

// findOwn searches below t without entering nested components.
func findOwn(t *api.Tag, match func(*api.Tag) bool) *api.Tag {
	if t == nil {
		return nil
	}
	for _, child := range t.Children {
		c, ok := child.(*api.Tag)
		if !ok || c == nil {
			continue
		}
		if match(c) {
			return c
		}
		if c.Attr(AttrTypeof) != "" {
			continue
		}
		if found := findOwn(c, match); found != nil {
			return found
		}
	}
	return nil
}
