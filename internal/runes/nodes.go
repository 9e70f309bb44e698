package runes

import (
	"fmt"
	"strconv"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/transform"
)

func registerNodes(r *transform.Registry) {
	r.MustRegister(transform.Definition{Kind: api.KindDocument, Render: "article"})
	r.MustRegister(transform.Definition{Kind: api.KindParagraph, Render: "p"})
	r.MustRegister(transform.Definition{Kind: api.KindItem, Render: "li"})
	r.MustRegister(transform.Definition{Kind: api.KindStrong, Render: "strong"})
	r.MustRegister(transform.Definition{Kind: api.KindEm, Render: "em"})
	r.MustRegister(transform.Definition{Kind: api.KindHr, Render: "hr"})
	r.MustRegister(transform.Definition{Kind: api.KindHardbreak, Render: "br"})

	r.MustRegister(transform.Definition{
		Kind:  api.KindText,
		Model: schema.NewModel("text").DeclareAttribute("content", schema.Attribute{Type: schema.TypeString}),
		Transform: func(m *transform.Base) api.Renderable {
			return m.Attrs.String("content")
		},
	})

	r.MustRegister(transform.Definition{
		Kind: api.KindSoftbreak,
		Transform: func(*transform.Base) api.Renderable {
			return " "
		},
	})

	r.MustRegister(transform.Definition{
		Kind: api.KindHeading,
		Model: schema.NewModel("heading").
			DeclareAttribute("level", schema.Attribute{Type: schema.TypeNumber, Default: 1.0}),
		Transform: transformHeading,
	})

	r.MustRegister(transform.Definition{
		Kind:  api.KindCode,
		Model: schema.NewModel("code").DeclareAttribute("content", schema.Attribute{Type: schema.TypeString}),
		Transform: func(m *transform.Base) api.Renderable {
			return api.NewTag("code", nil, m.Attrs.String("content"))
		},
	})

	r.MustRegister(transform.Definition{
		Kind: api.KindFence,
		Model: schema.NewModel("fence").
			DeclareAttribute("content", schema.Attribute{Type: schema.TypeString}).
			DeclareAttribute("language", schema.Attribute{Type: schema.TypeString}),
		Transform: func(m *transform.Base) api.Renderable {
			attrs := map[string]any{}
			if lang := m.Attrs.String("language"); lang != "" {
				attrs["data-language"] = lang
			}
			return api.NewTag("pre", attrs, api.NewTag("code", nil, m.Attrs.String("content")))
		},
	})

	r.MustRegister(transform.Definition{
		Kind: api.KindLink,
		Model: schema.NewModel("link").
			DeclareAttribute("href", schema.Attribute{Type: schema.TypeString, Required: true}).
			DeclareAttribute("title", schema.Attribute{Type: schema.TypeString}),
		Render: "a",
	})

	r.MustRegister(transform.Definition{
		Kind:  api.KindList,
		Model: schema.NewModel("list").DeclareAttribute("ordered", schema.Attribute{Type: schema.TypeBoolean, Default: false}),
		Transform: func(m *transform.Base) api.Renderable {
			name := "ul"
			if m.Attrs.Bool("ordered") {
				name = "ol"
			}
			return api.NewTag(name, nil, m.TransformChildren(m.Config)...)
		},
	})
}

func transformHeading(m *transform.Base) api.Renderable {
	level := int(m.Attrs.Number("level"))
	if level < 1 || level > 6 {
		level = 1
	}
	id := m.Attrs.String("id")
	if id == "" {
		id = m.Config.Variables.UniqueID(m.Node.TextContent())
	} else if reserved, ok := m.Config.Variables.ReserveID(id); !ok {
		m.Config.Variables.Report(schema.Diagnostic{
			ID:        schema.DiagDuplicateID,
			Level:     schema.SeverityWarning,
			Message:   fmt.Sprintf("id %q is already used in this document; renamed to %q", id, reserved),
			Tag:       string(api.KindHeading),
			Attribute: "id",
		})
		id = reserved
	}
	return api.NewTag("h"+strconv.Itoa(level), map[string]any{"id": id}, m.TransformChildren(m.Config)...)
}
