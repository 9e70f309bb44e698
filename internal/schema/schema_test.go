package schema

import (
	"errors"
	"testing"

	"github.com/agentic-research/runekit/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hintModel() *Model {
	return NewModel("hint").
		DeclareAttribute("type", Attribute{
			Type:    TypeString,
			Default: "note",
			Matches: []any{"note", "warning", "caution", "check"},
		}).
		DeclareAttribute("level", Attribute{Type: TypeNumber}).
		DeclareAttribute("open", Attribute{Type: TypeBoolean, Default: false})
}

func TestModel_DuplicateAttribute(t *testing.T) {
	m := NewModel("x").
		DeclareAttribute("a", Attribute{}).
		DeclareAttribute("a", Attribute{})
	err := m.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateAttribute))
	assert.Len(t, m.Attributes(), 1)
}

func TestModel_UnknownTypeAndDuplicateGroup(t *testing.T) {
	m := NewModel("x").
		DeclareAttribute("a", Attribute{Type: "Date"}).
		DeclareGroup("body", Group{}).
		DeclareGroup("body", Group{Section: 1})
	err := m.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.ErrorIs(t, err, ErrDuplicateGroup)
}

func TestValidate_AppliesDefault(t *testing.T) {
	res, diags := hintModel().Validate("hint", nil)
	assert.Empty(t, diags)
	assert.Equal(t, "note", res.String("type"))
	assert.False(t, res.Bool("open"))
	assert.False(t, res.Has("level"))
}

func TestValidate_DisallowedValueIsCritical(t *testing.T) {
	res, diags := hintModel().Validate("hint", map[string]any{"type": "shout"})
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityCritical, diags[0].Level)
	assert.Equal(t, DiagInvalidValue, diags[0].ID)
	assert.Equal(t, "type", diags[0].Attribute)
	assert.Equal(t, "hint", diags[0].Tag)
	assert.False(t, res.Has("type"))
	assert.True(t, Blocking(diags))
}

func TestValidate_Coercion(t *testing.T) {
	res, diags := hintModel().Validate("hint", map[string]any{"level": "3", "open": "true"})
	assert.Empty(t, diags)
	assert.Equal(t, 3.0, res.Number("level"))
	assert.True(t, res.Bool("open"))
}

func TestValidate_TypeMismatch(t *testing.T) {
	_, diags := hintModel().Validate("hint", map[string]any{"type": 7, "level": "high"})
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, DiagInvalidType, d.ID)
		assert.Equal(t, SeverityError, d.Level)
	}
}

func TestValidate_RequiredAndErrorLevelOverride(t *testing.T) {
	m := NewModel("region").
		DeclareAttribute("name", Attribute{Required: true, ErrorLevel: SeverityCritical})
	_, diags := m.Validate("region", map[string]any{})
	require.Len(t, diags, 1)
	assert.Equal(t, DiagMissingRequired, diags[0].ID)
	assert.Equal(t, SeverityCritical, diags[0].Level)
}

func TestValidate_UndefinedAttributeWarns(t *testing.T) {
	res, diags := hintModel().Validate("hint", map[string]any{"zeta": 1, "alpha": 2, "id": "x"})
	require.Len(t, diags, 2)
	assert.Equal(t, "alpha", diags[0].Attribute)
	assert.Equal(t, "zeta", diags[1].Attribute)
	assert.Equal(t, SeverityWarning, diags[0].Level)
	assert.False(t, Blocking(diags))
	assert.Equal(t, "x", res.String("id"))
}

func TestFilter_Match(t *testing.T) {
	heading := &api.Node{Kind: api.KindHeading, Attributes: map[string]any{"level": 2}}
	para := api.ElementNode(api.KindParagraph, api.TextNode("hi"))
	wrapped := api.ElementNode(api.KindItem, api.ElementNode(api.KindParagraph, heading))

	assert.True(t, Filter{Kind: api.KindHeading}.Match(heading))
	assert.False(t, Filter{Kind: api.KindHeading}.Match(para))
	assert.True(t, Filter{}.Match(para))

	deep := Filter{Kind: api.KindHeading, Deep: true}
	assert.True(t, deep.Match(wrapped))
	assert.False(t, Filter{Kind: api.KindHeading, Deep: true, Depth: 1}.Match(wrapped))
	assert.True(t, Filter{Kind: api.KindHeading, Deep: true, Depth: 2}.Match(wrapped))

	level2 := Filter{Kind: api.KindHeading, Predicate: func(n *api.Node) bool {
		return n.Attributes["level"] == 2
	}}
	assert.True(t, level2.Match(heading))

	tagged := Filter{Tag: "region"}
	assert.True(t, tagged.Match(api.TagNode("region", nil)))
	assert.False(t, tagged.Match(api.TagNode("hint", nil)))
}

func TestGroup_MatchAnyInclude(t *testing.T) {
	g := Group{Include: []Filter{{Kind: api.KindHeading}, {Kind: api.KindParagraph}}}
	assert.True(t, g.Match(api.ElementNode(api.KindParagraph)))
	assert.False(t, g.Match(api.ElementNode(api.KindList)))
	assert.True(t, Group{}.Match(api.ElementNode(api.KindList)))
}
