// Package stream provides lazy, re-iterable views over a node's children.
//
// A Stream is a value: every operation returns a new stream and leaves the
// receiver untouched, so several groups can read the same children
// independently. Nothing is evaluated until the stream is iterated.
package stream

import (
	"iter"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/typed"
)

// Matcher selects nodes.
type Matcher func(n *api.Node) bool

// Kind matches nodes of kind k.
func Kind(k api.NodeKind) Matcher {
	return func(n *api.Node) bool { return n.Kind == k }
}

// Tag matches invocations of the named rune.
func Tag(name string) Matcher {
	return func(n *api.Node) bool { return n.IsTag(name) }
}

// Typed matches nodes of the marker kind K.
func Typed[K typed.Kind]() Matcher {
	return typed.Is[K]
}

// Predicate adapts an arbitrary test.
func Predicate(fn func(n *api.Node) bool) Matcher {
	return Matcher(fn)
}

// Any matches when one of ms matches.
func Any(ms ...Matcher) Matcher {
	return func(n *api.Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// Not inverts m.
func Not(m Matcher) Matcher {
	return func(n *api.Node) bool { return !m(n) }
}

type stage func(iter.Seq[*api.Node]) iter.Seq[*api.Node]

// Stream is an ordered, finite, lazily evaluated sequence of nodes.
type Stream struct {
	source []*api.Node
	stages []stage
}

// Of starts a stream over nodes. The slice is not copied and must not be
// mutated while the stream is in use.
func Of(nodes []*api.Node) Stream {
	return Stream{source: nodes}
}

func (s Stream) then(st stage) Stream {
	stages := make([]stage, len(s.stages), len(s.stages)+1)
	copy(stages, s.stages)
	return Stream{source: s.source, stages: append(stages, st)}
}

// All returns the sequence. Each call starts again from the source.
func (s Stream) All() iter.Seq[*api.Node] {
	seq := iter.Seq[*api.Node](func(yield func(*api.Node) bool) {
		for _, n := range s.source {
			if n == nil {
				continue
			}
			if !yield(n) {
				return
			}
		}
	})
	for _, st := range s.stages {
		seq = st(seq)
	}
	return seq
}

// Filter keeps nodes matching m.
func (s Stream) Filter(m Matcher) Stream {
	return s.then(func(in iter.Seq[*api.Node]) iter.Seq[*api.Node] {
		return func(yield func(*api.Node) bool) {
			for n := range in {
				if m(n) && !yield(n) {
					return
				}
			}
		}
	})
}

// Exclude keeps nodes not matching m. Filter(m) and Exclude(m) over the
// same stream partition it.
func (s Stream) Exclude(m Matcher) Stream {
	return s.Filter(Not(m))
}

// FilterDeep yields every node matching m at any depth, in document order.
// The children of a matched node are not searched.
func (s Stream) FilterDeep(m Matcher) Stream {
	return s.then(func(in iter.Seq[*api.Node]) iter.Seq[*api.Node] {
		return func(yield func(*api.Node) bool) {
			stop := false
			for n := range in {
				n.Walk(func(c *api.Node, _ int) bool {
					if stop {
						return false
					}
					if m(c) {
						if !yield(c) {
							stop = true
						}
						return false
					}
					return true
				})
				if stop {
					return
				}
			}
		}
	})
}

// Limit truncates the stream to its first n nodes.
func (s Stream) Limit(n int) Stream {
	return s.then(func(in iter.Seq[*api.Node]) iter.Seq[*api.Node] {
		return func(yield func(*api.Node) bool) {
			if n <= 0 {
				return
			}
			i := 0
			for node := range in {
				if !yield(node) {
					return
				}
				i++
				if i >= n {
					return
				}
			}
		}
	})
}

// Flatten replaces every node by its children. Leaf nodes are kept as is.
func (s Stream) Flatten() Stream {
	return s.then(func(in iter.Seq[*api.Node]) iter.Seq[*api.Node] {
		return func(yield func(*api.Node) bool) {
			for n := range in {
				if len(n.Children) == 0 {
					if !yield(n) {
						return
					}
					continue
				}
				for _, c := range n.Children {
					if c != nil && !yield(c) {
						return
					}
				}
			}
		}
	})
}

// Wrap collects the whole stream into a single container that renders as
// element name. An empty stream still yields the empty container.
func (s Stream) Wrap(name string) Stream {
	return s.then(func(in iter.Seq[*api.Node]) iter.Seq[*api.Node] {
		return func(yield func(*api.Node) bool) {
			var children []*api.Node
			for n := range in {
				children = append(children, n)
			}
			yield(api.WrapperNode(name, children...))
		}
	})
}

// Next returns the first node of the stream.
func (s Stream) Next() (*api.Node, bool) {
	for n := range s.All() {
		return n, true
	}
	return nil, false
}

// ToArray materializes the stream.
func (s Stream) ToArray() []*api.Node {
	var out []*api.Node
	for n := range s.All() {
		out = append(out, n)
	}
	return out
}

// Len counts the nodes of the stream.
func (s Stream) Len() int {
	count := 0
	for range s.All() {
		count++
	}
	return count
}
