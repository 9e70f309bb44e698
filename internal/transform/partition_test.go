package transform

import (
	"testing"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/stretchr/testify/assert"
)

func TestPartition_SectionsCloseEarlierGroups(t *testing.T) {
	h1 := &api.Node{Kind: api.KindHeading}
	p1 := api.ElementNode(api.KindParagraph)
	list := api.ElementNode(api.KindList)
	p2 := api.ElementNode(api.KindParagraph)

	groups := []schema.Group{
		{Name: "body", Section: 1, Include: []schema.Filter{{Kind: api.KindList}}},
		{Name: "header", Section: 0, Include: []schema.Filter{{Kind: api.KindHeading}, {Kind: api.KindParagraph}}},
	}
	g := Partition([]*api.Node{h1, p1, list, p2}, groups)

	assert.Equal(t, []*api.Node{h1, p1}, g.Get("header"))
	assert.Equal(t, []*api.Node{list}, g.Get("body"))
	// header closed once body claimed the list
	assert.Equal(t, []*api.Node{p2}, g.Rest())
}

func TestPartition_TieBreakDeclarationOrder(t *testing.T) {
	p := api.ElementNode(api.KindParagraph)
	groups := []schema.Group{
		{Name: "first", Section: 0},
		{Name: "second", Section: 0},
	}
	g := Partition([]*api.Node{p}, groups)
	assert.Equal(t, 1, g.Count("first"))
	assert.Equal(t, 0, g.Count("second"))
}

func TestPartition_LowerSectionWins(t *testing.T) {
	p := api.ElementNode(api.KindParagraph)
	groups := []schema.Group{
		{Name: "late", Section: 2},
		{Name: "early", Section: 1},
	}
	g := Partition([]*api.Node{p}, groups)
	assert.Equal(t, 1, g.Count("early"))
}

func TestPartition_LimitClosesGroup(t *testing.T) {
	a := &api.Node{Kind: api.KindHeading}
	b := &api.Node{Kind: api.KindHeading}
	groups := []schema.Group{
		{Name: "title", Include: []schema.Filter{{Kind: api.KindHeading}}, Limit: 1},
		{Name: "body", Section: 1},
	}
	g := Partition([]*api.Node{a, b}, groups)
	assert.Equal(t, []*api.Node{a}, g.Get("title"))
	assert.Equal(t, []*api.Node{b}, g.Get("body"))
	assert.Empty(t, g.Rest())
}

func TestPartition_NoGroupsPassesEverythingThrough(t *testing.T) {
	nodes := []*api.Node{api.ElementNode(api.KindParagraph), nil, api.ElementNode(api.KindList)}
	g := Partition(nodes, nil)
	assert.Len(t, g.Rest(), 2)
	assert.Nil(t, g.Get("missing"))
	assert.Equal(t, 0, g.Stream("missing").Len())
}
