package api

// NodeKind identifies the structural kind of a parsed AST node.
type NodeKind string

// Node kinds produced by the markup parser.
const (
	KindDocument  NodeKind = "document"
	KindParagraph NodeKind = "paragraph"
	KindHeading   NodeKind = "heading"
	KindText      NodeKind = "text"
	KindTag       NodeKind = "tag"
	KindList      NodeKind = "list"
	KindItem      NodeKind = "item"
	KindInline    NodeKind = "inline"
	KindStrong    NodeKind = "strong"
	KindEm        NodeKind = "em"
	KindCode      NodeKind = "code"
	KindLink      NodeKind = "link"
	KindFence     NodeKind = "fence"
	KindHr        NodeKind = "hr"
	KindSoftbreak NodeKind = "softbreak"
	KindHardbreak NodeKind = "hardbreak"

	// KindElement is a synthetic container created during transform; Tag
	// holds the element name it renders as.
	KindElement NodeKind = "element"
)

// Node is an AST node as handed over by the external markup parser.
// Rune invocations are nodes of kind "tag" with Tag set to the rune name.
type Node struct {
	// Kind of the node (document, paragraph, tag, ...).
	Kind NodeKind `json:"type"`
	// Tag is the rune name for tag nodes.
	Tag string `json:"tag,omitempty"`
	// Attributes as written in the source, already typed by the parser.
	Attributes map[string]any `json:"attributes,omitempty"`
	// Children in document order.
	Children []*Node `json:"children,omitempty"`
}

// Attr returns the raw attribute value for name.
func (n *Node) Attr(name string) (any, bool) {
	if n == nil || n.Attributes == nil {
		return nil, false
	}
	v, ok := n.Attributes[name]
	return v, ok
}

// IsTag reports whether n is a rune invocation with the given name.
func (n *Node) IsTag(name string) bool {
	return n != nil && n.Kind == KindTag && n.Tag == name
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// TextContent concatenates the content of every text node below n.
func (n *Node) TextContent() string {
	var out []byte
	n.Walk(func(c *Node, _ int) bool {
		if c.Kind == KindText {
			if s, ok := c.Attributes["content"].(string); ok {
				out = append(out, s...)
			}
		}
		return true
	})
	return string(out)
}

// TextNode builds a text node carrying content.
func TextNode(content string) *Node {
	return &Node{Kind: KindText, Attributes: map[string]any{"content": content}}
}

// ElementNode builds a plain node of the given kind.
func ElementNode(kind NodeKind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// WrapperNode builds a synthetic container rendering as element name.
func WrapperNode(name string, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: name, Children: children}
}

// TagNode builds a rune invocation.
func TagNode(name string, attrs map[string]any, children ...*Node) *Node {
	return &Node{Kind: KindTag, Tag: name, Attributes: attrs, Children: children}
}
