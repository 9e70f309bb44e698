package runes

import (
	"fmt"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/stream"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/agentic-research/runekit/internal/typed"
)

// ExtendsParent inherits from the nearest ancestor directory's layout.
const ExtendsParent = "parent"

// ExtendsNone stops the chain at the built-in root layout.
const ExtendsNone = "none"

// Region merge modes.
const (
	ModeReplace = "replace"
	ModePrepend = "prepend"
	ModeAppend  = "append"
)

// Component type names of the structural runes.
const (
	TypeLayout = "Layout"
	TypeRegion = "Region"
)

type (
	layoutComponent struct{}
	regionComponent struct{}
)

func layoutModel() *schema.Model {
	return schema.NewModel(typed.LayoutTag).
		DeclareAttribute("extends", schema.Attribute{Type: schema.TypeString, Default: ExtendsParent}).
		DeclareAttribute("block", schema.Attribute{Type: schema.TypeString}).
		DeclareGroup("regions", schema.Group{
			Include: []schema.Filter{{Tag: typed.RegionTag}},
		})
}

func regionModel() *schema.Model {
	return schema.NewModel(typed.RegionTag).
		DeclareAttribute("name", schema.Attribute{
			Type:       schema.TypeString,
			Required:   true,
			ErrorLevel: schema.SeverityCritical,
		}).
		DeclareAttribute("mode", schema.Attribute{
			Type:    schema.TypeString,
			Default: ModeReplace,
			Matches: []any{ModeReplace, ModePrepend, ModeAppend},
		})
}

// transformLayout keeps only region children; anything else in a layout
// document has no slot to land in and is reported.
func transformLayout(m *transform.Base) api.Renderable {
	node := typed.MustWrap[typed.Layout, layoutComponent](m.Node)
	groups := m.Partition()

	if stray := len(groups.Rest()); stray > 0 {
		m.Config.Variables.Report(schema.Diagnostic{
			ID:      "layout-content-outside-region",
			Level:   schema.SeverityWarning,
			Message: fmt.Sprintf("%d nodes outside a region are ignored in layout documents", stray),
			Tag:     node.KindName(),
		})
	}

	props := map[string]any{"extends": m.Attrs.String("extends")}
	if block := m.Attrs.String("block"); block != "" {
		props["block"] = block
	}
	return transform.CreateComponent(transform.Component{
		Tag:        "layout",
		Typeof:     TypeLayout,
		Properties: props,
		Children:   m.RenderStream(groups.Stream("regions")),
	})
}

func transformRegion(m *transform.Base) api.Renderable {
	node := typed.MustWrap[typed.Region, regionComponent](m.Node)
	content := m.RenderStream(stream.Of(node.Children()).Wrap("div"))[0].(*api.Tag)
	return transform.CreateComponent(transform.Component{
		Tag:    "region",
		Typeof: TypeRegion,
		Properties: map[string]any{
			"name": m.Attrs.String("name"),
			"mode": m.Attrs.String("mode"),
		},
		Refs:     map[string]any{"content": content},
		Children: []api.Renderable{content},
	})
}
