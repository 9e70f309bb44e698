package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// RouteRule maps URLs matching Pattern to a layout block. "*" matches one
// path segment and "**" any number of them.
type RouteRule struct {
	Pattern string `json:"pattern"`
	Layout  string `json:"layout"`
}

// RouteTable matches URLs against rules in declaration order.
type RouteTable struct {
	rules []RouteRule
}

// NewRouteTable validates the rule patterns.
func NewRouteTable(rules ...RouteRule) (*RouteTable, error) {
	rules = slices.Clone(rules)
	for i, rule := range rules {
		p := NormalizeURL(rule.Pattern)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("route %d: invalid pattern %q", i, rule.Pattern)
		}
		if rule.Layout == "" {
			return nil, fmt.Errorf("route %d (%s): empty layout", i, rule.Pattern)
		}
		rules[i].Pattern = p
	}
	return &RouteTable{rules: rules}, nil
}

// Rules returns the table's rules with normalized patterns.
func (t *RouteTable) Rules() []RouteRule {
	if t == nil {
		return nil
	}
	return append([]RouteRule(nil), t.rules...)
}

// Lookup returns the layout of the first rule matching url.
func (t *RouteTable) Lookup(url string) (string, bool) {
	if t == nil {
		return "", false
	}
	u := NormalizeURL(url)
	for _, rule := range t.rules {
		if rule.Pattern == "**" {
			return rule.Layout, true
		}
		if ok, _ := doublestar.Match(rule.Pattern, u); ok {
			return rule.Layout, true
		}
	}
	return "", false
}

// Match returns the layout for url, or DefaultBlock when nothing matches.
func (t *RouteTable) Match(url string) string {
	if l, ok := t.Lookup(url); ok {
		return l
	}
	return DefaultBlock
}

// NormalizeURL strips surrounding slashes, the query and the fragment.
func NormalizeURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.Trim(url, "/")
}
