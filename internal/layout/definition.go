package layout

import (
	"path"
	"strings"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/runes"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/spf13/cast"
)

// Definition is one layout document after transformation.
type Definition struct {
	Key     string
	Extends string
	Block   string
	Regions []Region
}

// Extract reads the first layout component in a transformed document.
func Extract(key string, r api.Renderable) (*Definition, error) {
	var root *api.Tag
	api.Walk(r, func(t *api.Tag) bool {
		if root != nil {
			return false
		}
		if t.Attr(transform.AttrTypeof) == runes.TypeLayout {
			root = t
			return false
		}
		return true
	})
	if root == nil {
		return nil, ErrNotLayout
	}

	def := &Definition{Key: key, Extends: runes.ExtendsParent}
	if v, ok := transform.PropertyValue(root, "extends"); ok {
		if s := cast.ToString(v); s != "" {
			def.Extends = s
		}
	}
	if v, ok := transform.PropertyValue(root, "block"); ok {
		def.Block = cast.ToString(v)
	}
	def.Regions, _ = SplitRegions(root.Children)
	return def, nil
}

// CleanDir normalizes a directory to an absolute slash path.
func CleanDir(dir string) string {
	return path.Clean("/" + strings.TrimPrefix(dir, "/"))
}

// DirKey is the dependency key of a directory layout document.
func DirKey(dir string) string { return "dir:" + CleanDir(dir) }

// LayoutKey is the dependency key of a named layout.
func LayoutKey(id string) string { return "layout:" + id }
