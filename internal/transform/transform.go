package transform

import (
	"fmt"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/stream"
)

// Fragment is returned by transforms that contribute several siblings
// instead of one node. TransformChildren splices it into the parent.
type Fragment []api.Renderable

// Model is the capability every rune transform is handed.
type Model interface {
	Children() []*api.Node
	TransformChildren(cfg *Config) []api.Renderable
}

// Base is the Model passed to a TransformFunc: the node, its resolved
// attributes and the document configuration.
type Base struct {
	Node   *api.Node
	Attrs  schema.Resolved
	Config *Config
	schema *Schema
}

var _ Model = (*Base)(nil)

// Children returns the node's AST children.
func (b *Base) Children() []*api.Node { return b.Node.Children }

// TransformChildren transforms every child with cfg.
func (b *Base) TransformChildren(cfg *Config) []api.Renderable {
	return TransformChildren(b.Node.Children, cfg)
}

// Render transforms nodes with the document configuration.
func (b *Base) Render(nodes ...*api.Node) []api.Renderable {
	return TransformChildren(nodes, b.Config)
}

// RenderStream materializes s and transforms it.
func (b *Base) RenderStream(s stream.Stream) []api.Renderable {
	return b.Render(s.ToArray()...)
}

// Stream returns a stream over the node's children.
func (b *Base) Stream() stream.Stream { return stream.Of(b.Node.Children) }

// Partition splits the children into the groups declared on the schema.
func (b *Base) Partition() Groups {
	var groups []schema.Group
	if b.schema != nil {
		groups = b.schema.model.Groups()
	}
	return Partition(b.Node.Children, groups)
}

// AttrMap returns the resolved attributes as a plain map.
func (b *Base) AttrMap() map[string]any {
	out := make(map[string]any, len(b.Attrs))
	for k, v := range b.Attrs {
		out[k] = v
	}
	return out
}

// Transform turns a single AST node into a renderable. Nodes with neither a
// schema nor a tag name are rendered as a fragment of their children.
func Transform(n *api.Node, cfg *Config) api.Renderable {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case api.KindElement:
		return api.NewTag(n.Tag, copyAttrs(n.Attributes), TransformChildren(n.Children, cfg)...)
	case api.KindTag:
		s, ok := cfg.Tags[n.Tag]
		if !ok {
			d := schema.Diagnostic{
				ID:      schema.DiagUndefinedTag,
				Level:   schema.SeverityError,
				Message: fmt.Sprintf("undefined tag %q", n.Tag),
				Tag:     n.Tag,
			}
			cfg.Variables.Report(d)
			return ErrorNode([]schema.Diagnostic{d})
		}
		return s.apply(n, cfg)
	}
	if s, ok := cfg.Nodes[n.Kind]; ok {
		return s.apply(n, cfg)
	}
	return Fragment(TransformChildren(n.Children, cfg))
}

// TransformChildren transforms nodes in order, dropping nil results and
// splicing fragments.
func TransformChildren(nodes []*api.Node, cfg *Config) []api.Renderable {
	out := make([]api.Renderable, 0, len(nodes))
	for _, n := range nodes {
		out = appendRenderable(out, Transform(n, cfg))
	}
	return out
}

func appendRenderable(out []api.Renderable, r api.Renderable) []api.Renderable {
	switch v := r.(type) {
	case nil:
		return out
	case *api.Tag:
		if v == nil {
			return out
		}
		return append(out, v)
	case Fragment:
		for _, c := range v {
			out = appendRenderable(out, c)
		}
		return out
	case []api.Renderable:
		for _, c := range v {
			out = appendRenderable(out, c)
		}
		return out
	default:
		return append(out, v)
	}
}

func (s *Schema) apply(n *api.Node, cfg *Config) api.Renderable {
	attrs, diags := s.model.Validate(s.name, n.Attributes)
	cfg.Variables.Report(diags...)
	if schema.Blocking(diags) {
		return ErrorNode(diags)
	}
	b := &Base{Node: n, Attrs: attrs, Config: cfg, schema: s}
	if s.transform != nil {
		return s.transform(b)
	}
	name := s.render
	if name == "" {
		name = s.name
	}
	return api.NewTag(name, b.AttrMap(), b.TransformChildren(cfg)...)
}

// ErrorNode renders diagnostics as a visible error component carrying the
// worst severity and the offending tag and attribute.
func ErrorNode(diags []schema.Diagnostic) *api.Tag {
	worst, ok := schema.Worst(diags)
	if !ok {
		return nil
	}
	attrs := map[string]any{
		"typeof":        "Error",
		"data-severity": string(worst.Level),
		"data-id":       worst.ID,
		"data-tag":      worst.Tag,
	}
	if worst.Attribute != "" {
		attrs["data-attribute"] = worst.Attribute
	}
	return api.NewTag("div", attrs, worst.Message)
}

// IsErrorNode reports whether r was produced by ErrorNode.
func IsErrorNode(r api.Renderable) bool {
	t, ok := r.(*api.Tag)
	return ok && t != nil && t.Attr("typeof") == "Error"
}

func copyAttrs(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
