package site

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/content"
	"github.com/agentic-research/runekit/internal/layout"
	"github.com/agentic-research/runekit/internal/runes"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(text string) *api.Node {
	return api.ElementNode(api.KindParagraph, api.ElementNode(api.KindInline, api.TextNode(text)))
}

func region(name, mode string, children ...*api.Node) *api.Node {
	attrs := map[string]any{"name": name}
	if mode != "" {
		attrs["mode"] = mode
	}
	return api.TagNode("region", attrs, children...)
}

func doc(children ...*api.Node) *api.Node {
	return api.ElementNode(api.KindDocument, children...)
}

func layoutDoc(attrs map[string]any, regions ...*api.Node) *api.Node {
	return doc(api.TagNode("layout", attrs, regions...))
}

func writeTree(t *testing.T, files map[string]*api.Node) *content.Tree {
	t.Helper()
	fs := memfs.New()
	for name, n := range files {
		data, err := json.Marshal(n)
		require.NoError(t, err)
		require.NoError(t, util.WriteFile(fs, name, data, 0o644))
	}
	return content.New(fs)
}

func newBuilder(t *testing.T, tree *content.Tree, opts ...Option) *Builder {
	t.Helper()
	reg := runes.NewRegistry()
	res, err := layout.NewResolver(tree, reg)
	require.NoError(t, err)
	return NewBuilder(tree, reg, res, opts...)
}

func texts(content []api.Renderable) []string {
	var out []string
	for _, c := range content {
		if t, ok := c.(*api.Tag); ok {
			out = append(out, t.Text())
		}
	}
	return out
}

func byURL(pages []*Page) map[string]*Page {
	m := make(map[string]*Page, len(pages))
	for _, p := range pages {
		m[p.URL] = p
	}
	return m
}

func TestBuild_ComposesPages(t *testing.T) {
	tree := writeTree(t, map[string]*api.Node{
		"/_layout.json": layoutDoc(map[string]any{"block": "site"},
			region("header", "", para("Site"))),
		"/docs/_layout.json": layoutDoc(nil,
			region("header", "append", para("Docs"))),
		"/index.json":      doc(para("Welcome")),
		"/docs/intro.json": doc(para("Intro"), region("header", "prepend", para("Intro header"))),
	})

	pages, err := newBuilder(t, tree, WithWorkers(2)).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	got := byURL(pages)

	home := got["/"]
	require.NoError(t, home.Err)
	assert.Equal(t, "site", home.Template)
	assert.Equal(t, []string{"Welcome"}, texts(home.Slots[layout.MainSlot]))
	assert.Equal(t, []string{"Site"}, texts(home.Slots["header"]))

	intro := got["/docs/intro"]
	require.NoError(t, intro.Err)
	assert.Equal(t, []string{"Intro header", "Site", "Docs"}, texts(intro.Slots["header"]))
	assert.Equal(t, []string{"Intro"}, texts(intro.Slots[layout.MainSlot]))
	assert.Equal(t, []string{"main", "header"}, intro.Order)
}

func TestBuild_RouteOverridesBlock(t *testing.T) {
	tree := writeTree(t, map[string]*api.Node{
		"/_layout.json":     layoutDoc(map[string]any{"block": "site"}),
		"/blog/post.json":   doc(para("Post")),
		"/blog/a/deep.json": doc(para("Deep")),
	})
	routes, err := layout.NewRouteTable(layout.RouteRule{Pattern: "blog/*", Layout: "post"})
	require.NoError(t, err)

	pages, err := newBuilder(t, tree, WithRoutes(routes)).Build(context.Background())
	require.NoError(t, err)
	got := byURL(pages)
	assert.Equal(t, "post", got["/blog/post"].Template)
	assert.Equal(t, "site", got["/blog/a/deep"].Template)
}

func TestBuild_UnknownRegionIsDiagnostic(t *testing.T) {
	tree := writeTree(t, map[string]*api.Node{
		"/page.json": doc(para("Body"), region("sidebar", "", para("Side"))),
	})

	pages, err := newBuilder(t, tree).Build(context.Background())
	require.NoError(t, err)
	p := pages[0]
	require.NoError(t, p.Err)
	fallback := p.Slots[layout.FallbackSlot]
	require.Len(t, fallback, 2)
	require.True(t, transform.IsErrorNode(fallback[0]), "unknown region is shown in the tree")
	notice := fallback[0].(*api.Tag)
	assert.Equal(t, schema.DiagUnknownRegion, notice.Attr("data-id"))
	assert.Equal(t, string(schema.SeverityWarning), notice.Attr("data-severity"))
	assert.Contains(t, notice.Text(), "sidebar")
	assert.Equal(t, []string{"Side"}, texts(fallback[1:]))

	var ids []string
	for _, d := range p.Diagnostics {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, schema.DiagUnknownRegion)
}

func TestBuild_FailedLayoutDoesNotStopSiblings(t *testing.T) {
	tree := writeTree(t, map[string]*api.Node{
		"/broken/_layout.json": layoutDoc(map[string]any{"extends": "loop"}),
		"/_layouts/loop.json":  layoutDoc(map[string]any{"extends": "loop"}),
		"/broken/page.json":    doc(para("A")),
		"/fine.json":           doc(para("B")),
	})

	pages, err := newBuilder(t, tree).Build(context.Background())
	require.NoError(t, err)
	got := byURL(pages)

	assert.True(t, errors.Is(got["/broken/page"].Err, layout.ErrCyclicLayout))
	assert.NoError(t, got["/fine"].Err)
}

func TestBuild_NavigationFromLayoutSlot(t *testing.T) {
	navRune := api.TagNode("nav", nil,
		api.ElementNode(api.KindList,
			api.ElementNode(api.KindItem, api.ElementNode(api.KindInline,
				&api.Node{Kind: api.KindLink, Attributes: map[string]any{"href": "/a"}, Children: []*api.Node{api.TextNode("A")}}))))
	tree := writeTree(t, map[string]*api.Node{
		"/_layout.json": layoutDoc(nil, region("sidebar", "", navRune)),
		"/a.json":       doc(para("A")),
	})

	pages, err := newBuilder(t, tree).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pages[0].Navigation)
	seq := pages[0].Navigation.Sequence()
	require.Len(t, seq, 1)
	assert.Equal(t, "/a", seq[0].Href)
}

func TestBuild_Cancelled(t *testing.T) {
	tree := writeTree(t, map[string]*api.Node{"/a.json": doc(para("A"))})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(t, tree).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
