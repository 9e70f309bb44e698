// Package typed wraps AST nodes with phantom type parameters so group filters
// and transforms can be checked against the rune they belong to. At runtime a
// typed node is the underlying node and nothing more.
package typed

import "github.com/agentic-research/runekit/api"

// Kind is a marker type describing which AST nodes it stands for.
// Implementations are empty structs; their zero value is used for matching.
type Kind interface {
	Name() string
	Match(n *api.Node) bool
}

// Rune names that carry structural meaning for page composition.
const (
	LayoutTag = "layout"
	RegionTag = "region"
)

// Layout marks the layout rune at the root of a layout document.
type Layout struct{}

func (Layout) Name() string { return LayoutTag }
func (Layout) Match(n *api.Node) bool { return n.IsTag(LayoutTag) }

// Region marks a named, mode-tagged content slot.
type Region struct{}

func (Region) Name() string { return RegionTag }
func (Region) Match(n *api.Node) bool { return n.IsTag(RegionTag) }

// Heading marks heading nodes.
type Heading struct{}

func (Heading) Name() string { return string(api.KindHeading) }
func (Heading) Match(n *api.Node) bool { return n != nil && n.Kind == api.KindHeading }

// Paragraph marks paragraph nodes.
type Paragraph struct{}

func (Paragraph) Name() string { return string(api.KindParagraph) }
func (Paragraph) Match(n *api.Node) bool { return n != nil && n.Kind == api.KindParagraph }

// List marks list nodes.
type List struct{}

func (List) Name() string { return string(api.KindList) }
func (List) Match(n *api.Node) bool { return n != nil && n.Kind == api.KindList }

// Item marks list item nodes.
type Item struct{}

func (Item) Name() string { return string(api.KindItem) }
func (Item) Match(n *api.Node) bool { return n != nil && n.Kind == api.KindItem }

// Text marks text nodes.
type Text struct{}

func (Text) Name() string { return string(api.KindText) }
func (Text) Match(n *api.Node) bool { return n != nil && n.Kind == api.KindText }

// AnyNode matches every node.
type AnyNode struct{}

func (AnyNode) Name() string { return "node" }
func (AnyNode) Match(n *api.Node) bool { return n != nil }

// Node is an AST node known to match K; C names the component the rune
// produces from it. Neither parameter is stored.
type Node[K Kind, C any] struct {
	node *api.Node
}

// Wrap checks n against K.
func Wrap[K Kind, C any](n *api.Node) (Node[K, C], bool) {
	var k K
	if !k.Match(n) {
		return Node[K, C]{}, false
	}
	return Node[K, C]{node: n}, true
}

// MustWrap is Wrap for callers that already checked the kind.
func MustWrap[K Kind, C any](n *api.Node) Node[K, C] {
	t, ok := Wrap[K, C](n)
	if !ok {
		var k K
		panic("typed: node does not match kind " + k.Name())
	}
	return t
}

// Is reports whether n matches K.
func Is[K Kind](n *api.Node) bool {
	var k K
	return k.Match(n)
}

// Find returns the first node below root (root included) matching K,
// depth-first.
func Find[K Kind](root *api.Node) (*api.Node, bool) {
	var k K
	var found *api.Node
	root.Walk(func(n *api.Node, _ int) bool {
		if found != nil {
			return false
		}
		if k.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Unwrap returns the underlying node.
func (t Node[K, C]) Unwrap() *api.Node { return t.node }

// Valid reports whether t wraps a node.
func (t Node[K, C]) Valid() bool { return t.node != nil }

// Children returns the children of the underlying node.
func (t Node[K, C]) Children() []*api.Node {
	if t.node == nil {
		return nil
	}
	return t.node.Children
}

// Attr returns a raw attribute of the underlying node.
func (t Node[K, C]) Attr(name string) (any, bool) { return t.node.Attr(name) }

// KindName returns K's name.
func (t Node[K, C]) KindName() string {
	var k K
	return k.Name()
}
