package runes

import (
	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/transform"
)

// HintTypes are the accepted values of the hint type attribute.
var HintTypes = []any{"note", "warning", "caution", "check"}

func hintModel() *schema.Model {
	return schema.NewModel("hint").
		DeclareAttribute("type", schema.Attribute{
			Type:        schema.TypeString,
			Default:     "note",
			Matches:     HintTypes,
			ErrorLevel:  schema.SeverityCritical,
			Description: "Visual style of the callout",
		}).
		DeclareGroup("title", schema.Group{
			Section: 0,
			Include: []schema.Filter{{Kind: api.KindHeading}},
			Limit:   1,
		}).
		DeclareGroup("body", schema.Group{Section: 1})
}

// transformHint renders a callout. A leading heading becomes the title; the
// remaining children are wrapped into the body ref.
func transformHint(m *transform.Base) api.Renderable {
	hintType := m.Attrs.String("type")
	groups := m.Partition()

	body := m.RenderStream(groups.Stream("body").Wrap("div"))[0].(*api.Tag)
	props := map[string]any{"hintType": hintType}
	children := []api.Renderable{}

	if title := m.RenderStream(groups.Stream("title")); len(title) > 0 {
		props["title"] = title[0]
		children = append(children, title[0])
	}
	children = append(children, body)

	return transform.CreateComponent(transform.Component{
		Tag:        "section",
		Typeof:     "Hint",
		Attributes: map[string]any{"data-hint-type": hintType},
		Properties: props,
		Refs:       map[string]any{"body": body},
		Children:   children,
	})
}
