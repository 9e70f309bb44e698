package transform

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/stream"
)

// Groups is the result of partitioning a child list by position.
type Groups struct {
	children []*api.Node
	claimed  map[string]*roaring.Bitmap
	all      *roaring.Bitmap
}

// Partition assigns children to groups in a single left-to-right scan.
//
// Candidate groups are ordered by section, then declaration order. Claiming
// a child with a group closes every group of a lower section; a group with
// a limit closes once it is full. Children no open group matches stay in
// Rest.
func Partition(children []*api.Node, groups []schema.Group) Groups {
	ordered := make([]schema.Group, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Section < ordered[j].Section })

	res := Groups{
		children: children,
		claimed:  make(map[string]*roaring.Bitmap, len(groups)),
		all:      roaring.New(),
	}
	for _, g := range ordered {
		res.claimed[g.Name] = roaring.New()
	}

	started := false
	current := 0
	for i, child := range children {
		if child == nil {
			continue
		}
		for _, g := range ordered {
			if started && g.Section < current {
				continue
			}
			bm := res.claimed[g.Name]
			if g.Limit > 0 && bm.GetCardinality() >= uint64(g.Limit) {
				continue
			}
			if !g.Match(child) {
				continue
			}
			bm.Add(uint32(i))
			res.all.Add(uint32(i))
			current = g.Section
			started = true
			break
		}
	}
	return res
}

// Get returns the children claimed by the named group, in document order.
func (g Groups) Get(name string) []*api.Node {
	bm, ok := g.claimed[name]
	if !ok {
		return nil
	}
	return g.collect(bm)
}

// Stream returns a stream over the named group.
func (g Groups) Stream(name string) stream.Stream {
	return stream.Of(g.Get(name))
}

// Count returns how many children the named group claimed.
func (g Groups) Count(name string) int {
	bm, ok := g.claimed[name]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Rest returns the children no group claimed.
func (g Groups) Rest() []*api.Node {
	var out []*api.Node
	for i, c := range g.children {
		if c != nil && !g.all.Contains(uint32(i)) {
			out = append(out, c)
		}
	}
	return out
}

func (g Groups) collect(bm *roaring.Bitmap) []*api.Node {
	out := make([]*api.Node, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, g.children[it.Next()])
	}
	return out
}
