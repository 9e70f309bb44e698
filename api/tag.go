package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Renderable is a node of the output tree: *Tag, string, a number, bool or nil.
type Renderable = any

// Tag is a serialized component node as consumed by theme renderers.
type Tag struct {
	Name       string
	Attributes map[string]any
	Children   []Renderable
}

// NewTag builds a tag with the given attributes and children.
func NewTag(name string, attrs map[string]any, children ...Renderable) *Tag {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	return &Tag{Name: name, Attributes: attrs, Children: children}
}

// IsTag reports whether r is a *Tag.
func IsTag(r Renderable) bool {
	t, ok := r.(*Tag)
	return ok && t != nil
}

// Attr returns the string form of attribute name, or "".
func (t *Tag) Attr(name string) string {
	if t == nil {
		return ""
	}
	v, ok := t.Attributes[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Text concatenates every primitive below t, depth-first.
func (t *Tag) Text() string {
	var sb strings.Builder
	writeText(&sb, t)
	return sb.String()
}

func writeText(sb *strings.Builder, r Renderable) {
	switch v := r.(type) {
	case nil:
	case *Tag:
		if v == nil {
			return
		}
		for _, c := range v.Children {
			writeText(sb, c)
		}
	case string:
		sb.WriteString(v)
	default:
		fmt.Fprint(sb, v)
	}
}

// Walk visits every tag of r depth-first. Returning false skips the
// children of the visited tag.
func Walk(r Renderable, fn func(t *Tag) bool) {
	t, ok := r.(*Tag)
	if !ok || t == nil {
		return
	}
	if !fn(t) {
		return
	}
	for _, c := range t.Children {
		Walk(c, fn)
	}
}

// ToData converts a renderable into plain maps and slices following the
// serialized shape, so it can be queried with JSONPath.
func ToData(r Renderable) any {
	t, ok := r.(*Tag)
	if !ok {
		return r
	}
	if t == nil {
		return nil
	}
	attrs := make(map[string]any, len(t.Attributes))
	for k, v := range t.Attributes {
		attrs[k] = v
	}
	children := make([]any, len(t.Children))
	for i, c := range t.Children {
		children[i] = ToData(c)
	}
	return map[string]any{
		"$$type":     "Tag",
		"name":       t.Name,
		"attributes": attrs,
		"children":   children,
	}
}

type wireTag struct {
	Type       string            `json:"$$type"`
	Name       string            `json:"name"`
	Attributes map[string]any    `json:"attributes"`
	Children   []json.RawMessage `json:"children"`
}

// MarshalJSON writes the {"$$type":"Tag",...} wire shape.
func (t *Tag) MarshalJSON() ([]byte, error) {
	attrs := t.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	children := t.Children
	if children == nil {
		children = []Renderable{}
	}
	return json.Marshal(struct {
		Type       string         `json:"$$type"`
		Name       string         `json:"name"`
		Attributes map[string]any `json:"attributes"`
		Children   []Renderable   `json:"children"`
	}{"Tag", t.Name, attrs, children})
}

// UnmarshalJSON reads the wire shape back, restoring nested tags.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var w wireTag
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != "Tag" {
		return fmt.Errorf("unexpected $$type %q", w.Type)
	}
	t.Name = w.Name
	t.Attributes = w.Attributes
	if t.Attributes == nil {
		t.Attributes = map[string]any{}
	}
	t.Children = make([]Renderable, 0, len(w.Children))
	for _, raw := range w.Children {
		child, err := DecodeRenderable(raw)
		if err != nil {
			return err
		}
		t.Children = append(t.Children, child)
	}
	return nil
}

// DecodeRenderable decodes a single serialized renderable.
func DecodeRenderable(raw []byte) (Renderable, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		child := &Tag{}
		if err := json.Unmarshal(trimmed, child); err != nil {
			return nil, err
		}
		return child, nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	return v, nil
}
