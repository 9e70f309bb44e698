package transform

import (
	"fmt"

	"github.com/agentic-research/runekit/api"
	"github.com/ohler55/ojg/jp"
)

const refKey = "$$ref"

// QueryTags evaluates a JSONPath expression against the serialized shape of
// r and returns the tags it selects.
//
//	QueryTags(nav, "$.children[?(@.attributes.typeof == 'NavGroup')]")
func QueryTags(r api.Renderable, path string) ([]*api.Tag, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
	}
	var index []*api.Tag
	data := indexed(r, &index)

	var out []*api.Tag
	for _, res := range x.Get(data) {
		m, ok := res.(map[string]any)
		if !ok {
			continue
		}
		i, ok := m[refKey].(int64)
		if !ok || int(i) >= len(index) {
			continue
		}
		out = append(out, index[i])
	}
	return out, nil
}

// Query evaluates a JSONPath expression and returns raw values, e.g.
// attribute strings.
func Query(r api.Renderable, path string) ([]any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
	}
	return x.Get(api.ToData(r)), nil
}

// indexed mirrors api.ToData but records each tag so results can be mapped
// back to the original pointers.
func indexed(r api.Renderable, index *[]*api.Tag) any {
	t, ok := r.(*api.Tag)
	if !ok {
		return r
	}
	if t == nil {
		return nil
	}
	id := int64(len(*index))
	*index = append(*index, t)
	attrs := make(map[string]any, len(t.Attributes))
	for k, v := range t.Attributes {
		attrs[k] = v
	}
	children := make([]any, len(t.Children))
	for i, c := range t.Children {
		children[i] = indexed(c, index)
	}
	return map[string]any{
		refKey:       id,
		"$$type":     "Tag",
		"name":       t.Name,
		"attributes": attrs,
		"children":   children,
	}
}
