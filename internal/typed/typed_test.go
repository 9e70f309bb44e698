package typed

import (
	"testing"

	"github.com/agentic-research/runekit/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type layoutContent struct{}

func TestWrap(t *testing.T) {
	n := api.TagNode(LayoutTag, map[string]any{"extends": "none"})

	l, ok := Wrap[Layout, layoutContent](n)
	require.True(t, ok)
	assert.True(t, l.Valid())
	assert.Same(t, n, l.Unwrap())
	assert.Equal(t, "layout", l.KindName())
	v, ok := l.Attr("extends")
	require.True(t, ok)
	assert.Equal(t, "none", v)

	_, ok = Wrap[Region, layoutContent](n)
	assert.False(t, ok)
	assert.Panics(t, func() { MustWrap[Heading, layoutContent](n) })
}

func TestFind(t *testing.T) {
	region := api.TagNode(RegionTag, map[string]any{"name": "header"})
	doc := api.ElementNode(api.KindDocument,
		api.ElementNode(api.KindParagraph, api.TextNode("x")),
		api.TagNode(LayoutTag, nil, region))

	found, ok := Find[Region](doc)
	require.True(t, ok)
	assert.Same(t, region, found)

	_, ok = Find[List](doc)
	assert.False(t, ok)

	assert.True(t, Is[AnyNode](doc))
	assert.True(t, Is[Text](doc.Children[0].Children[0]))
}

func TestNode_ZeroValue(t *testing.T) {
	var n Node[Paragraph, struct{}]
	assert.False(t, n.Valid())
	assert.Nil(t, n.Children())
}
