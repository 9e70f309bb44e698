// Package nav reads the transformed output of the nav rune back into a
// navigation tree: named groups, ungrouped items, and the flat sequence
// used for previous/next pagination when the nav is ordered.
package nav

import (
	"errors"
	"fmt"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/runes"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/spf13/cast"
)

var ErrNoNav = errors.New("no nav component")

var (
	groupPath = fmt.Sprintf("$.children[?(@.attributes.typeof == '%s')]", runes.TypeNavGroup)
	itemPath  = fmt.Sprintf("$.children[?(@.attributes.typeof == '%s')]", runes.TypeNavItem)
)

// Item is a single navigation link.
type Item struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Group is a titled set of items.
type Group struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Tree is the navigation of a page.
type Tree struct {
	Groups  []Group `json:"groups,omitempty"`
	Items   []Item  `json:"items,omitempty"`
	Ordered bool    `json:"ordered"`
}

// Builder builds a Tree from rendered output.
type Builder interface {
	Build(r api.Renderable) (*Tree, error)
}

// DefaultBuilder reads nav, nav-group and nav-item components.
type DefaultBuilder struct{}

// Build returns the tree of the first nav component found in r.
func Build(r api.Renderable) (*Tree, error) {
	return DefaultBuilder{}.Build(r)
}

// Build implements Builder.
func (DefaultBuilder) Build(r api.Renderable) (*Tree, error) {
	root := Find(r)
	if root == nil {
		return nil, ErrNoNav
	}

	tree := &Tree{}
	if v, ok := transform.PropertyValue(root, "ordered"); ok {
		tree.Ordered = cast.ToBool(v)
	}

	items, err := readItems(root)
	if err != nil {
		return nil, err
	}
	tree.Items = items

	groups, err := transform.QueryTags(root, groupPath)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		title, _ := transform.PropertyValue(g, "title")
		groupItems, err := readItems(g)
		if err != nil {
			return nil, err
		}
		tree.Groups = append(tree.Groups, Group{Title: cast.ToString(title), Items: groupItems})
	}
	return tree, nil
}

func readItems(parent *api.Tag) ([]Item, error) {
	tags, err := transform.QueryTags(parent, itemPath)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(tags))
	for _, t := range tags {
		href, _ := transform.PropertyValue(t, "href")
		title, _ := transform.PropertyValue(t, "title")
		items = append(items, Item{Title: cast.ToString(title), Href: cast.ToString(href)})
	}
	return items, nil
}

// Find returns the first nav component in r, depth-first.
func Find(r api.Renderable) *api.Tag {
	var found *api.Tag
	api.Walk(r, func(t *api.Tag) bool {
		if found != nil {
			return false
		}
		if t.Attr(transform.AttrTypeof) == runes.TypeNav {
			found = t
			return false
		}
		return true
	})
	return found
}

// Sequence flattens the tree: ungrouped items first, then each group.
func (t *Tree) Sequence() []Item {
	out := append([]Item(nil), t.Items...)
	for _, g := range t.Groups {
		out = append(out, g.Items...)
	}
	return out
}

// Adjacent returns the items before and after href in the sequence. Both
// are nil when the tree is unordered or href is not part of it.
func (t *Tree) Adjacent(href string) (prev, next *Item) {
	if !t.Ordered {
		return nil, nil
	}
	seq := t.Sequence()
	for i := range seq {
		if seq[i].Href != href {
			continue
		}
		if i > 0 {
			prev = &seq[i-1]
		}
		if i < len(seq)-1 {
			next = &seq[i+1]
		}
		return prev, next
	}
	return nil, nil
}
