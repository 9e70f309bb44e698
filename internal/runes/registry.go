// Package runes registers the built-in node schemas and runes.
package runes

import (
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/agentic-research/runekit/internal/typed"
)

// NewRegistry creates a registry with every built-in schema registered.
func NewRegistry() *transform.Registry {
	r := transform.NewRegistry()
	registerNodes(r)

	r.MustRegister(transform.Definition{Name: "hint", Model: hintModel(), Transform: transformHint})

	// Structural runes for page composition
	r.MustRegister(transform.Definition{Name: typed.LayoutTag, Model: layoutModel(), Transform: transformLayout})
	r.MustRegister(transform.Definition{Name: typed.RegionTag, Model: regionModel(), Transform: transformRegion})

	r.MustRegister(transform.Definition{Name: "nav", Model: navModel(), Transform: transformNav})
	r.MustRegister(transform.Definition{Name: "nav-group", Model: navGroupModel(), Transform: transformNavGroup})
	r.MustRegister(transform.Definition{Name: "nav-item", Model: navItemModel(), Transform: transformNavItem})

	return r
}
