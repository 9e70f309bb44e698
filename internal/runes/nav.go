package runes

import (
	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/stream"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/agentic-research/runekit/internal/typed"
)

// Component type names of the navigation runes.
const (
	TypeNav      = "Nav"
	TypeNavGroup = "NavGroup"
	TypeNavItem  = "NavItem"
)

func navModel() *schema.Model {
	return schema.NewModel("nav").
		DeclareAttribute("ordered", schema.Attribute{Type: schema.TypeBoolean, Default: false})
}

func navGroupModel() *schema.Model {
	return schema.NewModel("nav-group").
		DeclareAttribute("title", schema.Attribute{Type: schema.TypeString, Required: true})
}

func navItemModel() *schema.Model {
	return schema.NewModel("nav-item").
		DeclareAttribute("href", schema.Attribute{Type: schema.TypeString, Required: true}).
		DeclareAttribute("title", schema.Attribute{Type: schema.TypeString})
}

// transformNav turns headings into groups and list items into links:
//
//	{% nav %}
//	- [Home](/)
//	## Guides
//	- [Install](/guides/install)
//	{% /nav %}
//
// Items before the first heading stay ungrouped.
func transformNav(m *transform.Base) api.Renderable {
	var children []api.Renderable
	var group *api.Tag

	add := func(r api.Renderable) {
		if group != nil {
			group.Children = append(group.Children, r)
			return
		}
		children = append(children, r)
	}

	for n := range m.Stream().All() {
		switch {
		case typed.Is[typed.Heading](n):
			group = navGroup(n.TextContent(), nil)
			children = append(children, group)
		case typed.Is[typed.List](n):
			for _, item := range stream.Of(n.Children).Filter(stream.Typed[typed.Item]()).ToArray() {
				if link := navItemFromListItem(item); link != nil {
					add(link)
				}
			}
		default:
			for _, r := range m.Render(n) {
				add(r)
			}
		}
	}

	return transform.CreateComponent(transform.Component{
		Tag:        "nav",
		Typeof:     TypeNav,
		Properties: map[string]any{"ordered": m.Attrs.Bool("ordered")},
		Children:   children,
	})
}

func navItemFromListItem(item *api.Node) *api.Tag {
	link, ok := stream.Of(item.Children).FilterDeep(stream.Kind(api.KindLink)).Next()
	if !ok {
		return nil
	}
	href, _ := link.Attr("href")
	hrefStr, _ := href.(string)
	if hrefStr == "" {
		return nil
	}
	return navItem(hrefStr, link.TextContent())
}

func navGroup(title string, items []api.Renderable) *api.Tag {
	return transform.CreateComponent(transform.Component{
		Tag:        "div",
		Typeof:     TypeNavGroup,
		Properties: map[string]any{"title": title},
		Children:   items,
	})
}

func navItem(href, title string) *api.Tag {
	if title == "" {
		title = href
	}
	return transform.CreateComponent(transform.Component{
		Tag:        "a",
		Typeof:     TypeNavItem,
		Attributes: map[string]any{"href": href},
		Properties: map[string]any{"href": href, "title": title},
		Children:   []api.Renderable{title},
	})
}

func transformNavGroup(m *transform.Base) api.Renderable {
	return navGroup(m.Attrs.String("title"), m.TransformChildren(m.Config))
}

func transformNavItem(m *transform.Base) api.Renderable {
	title := m.Attrs.String("title")
	if title == "" {
		title = m.Node.TextContent()
	}
	return navItem(m.Attrs.String("href"), title)
}
