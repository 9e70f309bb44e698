package content

import (
	"errors"
	"testing"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/layout"
	"github.com/agentic-research/runekit/internal/runes"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutJSON = `{"type":"document","children":[{"type":"tag","tag":"layout","attributes":{"block":"site"}}]}`

const pageJSON = `{"type":"document","children":[{"type":"paragraph","children":[{"type":"text","attributes":{"content":"Hi"}}]}]}`

func newTree(t *testing.T, files map[string]string) *Tree {
	t.Helper()
	fs := memfs.New()
	for name, body := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(body), 0o644))
	}
	return New(fs)
}

func TestLayoutDocument(t *testing.T) {
	tree := newTree(t, map[string]string{
		"/docs/_layout.json": layoutJSON,
	})

	doc, ok, err := tree.LayoutDocument("/docs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, api.KindDocument, doc.Kind)
	require.Len(t, doc.Children, 1)
	assert.True(t, doc.Children[0].IsTag("layout"))

	_, ok, err = tree.LayoutDocument("/blog")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNamedLayout(t *testing.T) {
	tree := newTree(t, map[string]string{"/_layouts/wide.json": layoutJSON})

	_, ok, err := tree.NamedLayout("wide")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = tree.NamedLayout("narrow")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, id := range []string{"../secrets", "a/b", "..", ""} {
		_, ok, err = tree.NamedLayout(id)
		require.NoError(t, err, id)
		assert.False(t, ok, id)
	}
}

func TestNamedLayout_InvalidIDIsMissingLayout(t *testing.T) {
	tree := newTree(t, map[string]string{
		"/docs/_layout.json": `{"type":"document","children":[{"type":"tag","tag":"layout","attributes":{"extends":"../secrets"}}]}`,
	})
	r, err := layout.NewResolver(tree, runes.NewRegistry())
	require.NoError(t, err)

	_, err = r.Resolve("/docs")
	var missing *layout.MissingLayoutError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "../secrets", missing.ID)
	assert.Equal(t, layout.Failed, r.State("/docs"))
}

func TestReadDocument_Malformed(t *testing.T) {
	tree := newTree(t, map[string]string{"/_layout.json": "{nope"})
	_, _, err := tree.LayoutDocument("/")
	assert.Error(t, err)
}

func TestPages(t *testing.T) {
	tree := newTree(t, map[string]string{
		"/index.json":          pageJSON,
		"/about.json":          pageJSON,
		"/docs/index.json":     pageJSON,
		"/docs/intro.json":     pageJSON,
		"/docs/_layout.json":   layoutJSON,
		"/_layouts/wide.json":  layoutJSON,
		"/_drafts/secret.json": pageJSON,
		"/docs/notes.txt":      "ignored",
	})

	pages, err := tree.Pages()
	require.NoError(t, err)

	var urls []string
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{"/", "/about", "/docs", "/docs/intro"}, urls)
	assert.Equal(t, "/docs", pages[3].Dir)
	assert.Equal(t, "/docs/intro.json", pages[3].Path)
}

func TestURLFor(t *testing.T) {
	assert.Equal(t, "/", URLFor("/index.json"))
	assert.Equal(t, "/blog/post", URLFor("blog/post.json"))
	assert.Equal(t, "/blog", URLFor("/blog/index.json"))
}
