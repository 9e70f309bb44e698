package stream

import (
	"testing"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/typed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heading(text string) *api.Node {
	return &api.Node{
		Kind:       api.KindHeading,
		Attributes: map[string]any{"level": 2},
		Children:   []*api.Node{api.ElementNode(api.KindInline, api.TextNode(text))},
	}
}

func para(text string) *api.Node {
	return api.ElementNode(api.KindParagraph, api.ElementNode(api.KindInline, api.TextNode(text)))
}

func sample() []*api.Node {
	return []*api.Node{
		heading("Title"),
		para("one"),
		api.TagNode("region", map[string]any{"name": "nav"}),
		para("two"),
		api.ElementNode(api.KindList,
			api.ElementNode(api.KindItem, para("a")),
			api.ElementNode(api.KindItem, heading("b")),
		),
	}
}

func TestStream_FilterAndComplementPartition(t *testing.T) {
	children := sample()
	s := Of(children)

	for _, m := range []Matcher{Kind(api.KindParagraph), Kind(api.KindHeading), Tag("region"), Typed[typed.List]()} {
		kept := s.Filter(m).ToArray()
		rest := s.Exclude(m).ToArray()
		assert.Equal(t, len(children), len(kept)+len(rest))

		seen := make(map[*api.Node]int)
		for _, n := range kept {
			seen[n]++
		}
		for _, n := range rest {
			seen[n]++
		}
		require.Len(t, seen, len(children))
		for _, n := range children {
			assert.Equal(t, 1, seen[n], "node %s must appear exactly once", n.Kind)
		}
	}
}

func TestStream_ReIterable(t *testing.T) {
	s := Of(sample()).Filter(Kind(api.KindParagraph))
	first := s.ToArray()
	second := s.ToArray()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, s.Len())
}

func TestStream_ImmutableDerivation(t *testing.T) {
	base := Of(sample())
	_ = base.Filter(Kind(api.KindHeading)).Limit(1)
	assert.Equal(t, 5, base.Len())
}

func TestStream_Limit(t *testing.T) {
	s := Of(sample()).Filter(Kind(api.KindParagraph)).Limit(1)
	got := s.ToArray()
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].TextContent())
	assert.Empty(t, Of(sample()).Limit(0).ToArray())
}

func TestStream_FilterDeep(t *testing.T) {
	got := Of(sample()).FilterDeep(Typed[typed.Heading]()).ToArray()
	require.Len(t, got, 2)
	assert.Equal(t, "Title", got[0].TextContent())
	assert.Equal(t, "b", got[1].TextContent())
}

func TestStream_Flatten(t *testing.T) {
	items := Of(sample()).Filter(Kind(api.KindList)).Flatten().ToArray()
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, api.KindItem, it.Kind)
	}
}

func TestStream_Wrap(t *testing.T) {
	wrapped := Of(sample()).Filter(Kind(api.KindParagraph)).Wrap("div").ToArray()
	require.Len(t, wrapped, 1)
	assert.Equal(t, api.KindElement, wrapped[0].Kind)
	assert.Equal(t, "div", wrapped[0].Tag)
	assert.Len(t, wrapped[0].Children, 2)

	empty := Of(nil).Wrap("div").ToArray()
	require.Len(t, empty, 1)
	assert.Empty(t, empty[0].Children)
}

func TestStream_Next(t *testing.T) {
	n, ok := Of(sample()).Filter(Tag("region")).Next()
	require.True(t, ok)
	assert.Equal(t, "nav", n.Attributes["name"])

	_, ok = Of(sample()).Filter(Tag("missing")).Next()
	assert.False(t, ok)
}

func TestStream_AnyMatcher(t *testing.T) {
	got := Of(sample()).Filter(Any(Kind(api.KindHeading), Tag("region"))).Len()
	assert.Equal(t, 2, got)
}

func TestPredicateAndAny(t *testing.T) {
	nodes := []*api.Node{
		api.TextNode("short"),
		api.TextNode("a much longer text"),
		api.ElementNode(api.KindHr),
	}
	long := Predicate(func(n *api.Node) bool { return len(n.TextContent()) > 10 })

	got := Of(nodes).Filter(Any(long, Kind(api.KindHr))).ToArray()
	require.Len(t, got, 2)
	assert.Equal(t, "a much longer text", got[0].TextContent())
	assert.Equal(t, api.KindHr, got[1].Kind)
}
