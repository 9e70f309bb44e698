package layout

import (
	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/runes"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/spf13/cast"
)

// Mode is how region content combines with the slot it targets.
type Mode string

const (
	ModeReplace Mode = runes.ModeReplace
	ModePrepend Mode = runes.ModePrepend
	ModeAppend  Mode = runes.ModeAppend
)

// FallbackSlot holds page regions no layout slot matched.
const FallbackSlot = "_unassigned"

// MainSlot receives the page body.
const MainSlot = "main"

// Region is named content with a merge mode.
type Region struct {
	Name    string           `json:"name"`
	Mode    Mode             `json:"mode"`
	Content []api.Renderable `json:"content"`
}

// RegionFromTag reads a rendered region component.
func RegionFromTag(t *api.Tag) (Region, bool) {
	if t == nil || t.Attr(transform.AttrTypeof) != runes.TypeRegion {
		return Region{}, false
	}
	name, _ := transform.PropertyValue(t, "name")
	mode, _ := transform.PropertyValue(t, "mode")
	r := Region{Name: cast.ToString(name), Mode: Mode(cast.ToString(mode))}
	if r.Mode == "" {
		r.Mode = ModeReplace
	}
	if content, ok := transform.Ref(t, "content"); ok {
		r.Content = append([]api.Renderable(nil), content.Children...)
	}
	return r, r.Name != ""
}

// SplitRegions separates region components from the other renderables of
// a list, keeping both in order.
func SplitRegions(children []api.Renderable) (regions []Region, rest []api.Renderable) {
	for _, c := range children {
		if t, ok := c.(*api.Tag); ok {
			if r, ok := RegionFromTag(t); ok {
				regions = append(regions, r)
				continue
			}
		}
		rest = append(rest, c)
	}
	return regions, rest
}

// Merged is the slot content of a page after its regions were applied.
type Merged struct {
	Slots  map[string][]api.Renderable `json:"slots"`
	Order  []string                    `json:"order"`
	Errors []*UnknownRegionError       `json:"-"`
}

// MergeRegions applies page region overrides to layout slots. The inputs
// are not modified. Overrides for slots the layout does not declare are
// kept under FallbackSlot and reported.
func MergeRegions(slots map[string][]api.Renderable, order []string, overrides []Region) Merged {
	m := Merged{
		Slots: make(map[string][]api.Renderable, len(slots)+1),
		Order: append([]string(nil), order...),
	}
	for name, content := range slots {
		m.Slots[name] = append([]api.Renderable(nil), content...)
	}

	for _, r := range overrides {
		existing, ok := m.Slots[r.Name]
		if !ok {
			m.Errors = append(m.Errors, &UnknownRegionError{Region: r.Name})
			if _, used := m.Slots[FallbackSlot]; !used {
				m.Order = append(m.Order, FallbackSlot)
			}
			m.Slots[FallbackSlot] = append(m.Slots[FallbackSlot], r.Content...)
			continue
		}
		m.Slots[r.Name] = mergeSlot(existing, r.Content, r.Mode)
	}
	return m
}

func mergeSlot(existing, content []api.Renderable, mode Mode) []api.Renderable {
	out := make([]api.Renderable, 0, len(existing)+len(content))
	switch mode {
	case ModePrepend:
		out = append(out, content...)
		out = append(out, existing...)
	case ModeAppend:
		out = append(out, existing...)
		out = append(out, content...)
	default:
		out = append(out, content...)
	}
	return out
}
