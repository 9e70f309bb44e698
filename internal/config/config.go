// Package config reads the HCL site configuration.
//
//	content    = "content"
//	output     = "site.db"
//	workers    = 4
//	cache_size = 256
//
//	route "docs/**" {
//	  layout = "docs"
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/runekit/internal/layout"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "runekit.hcl"

var ErrInvalidConfig = errors.New("invalid config")

// Config is the site configuration.
type Config struct {
	Content   string  `hcl:"content,optional"`
	Output    string  `hcl:"output,optional"`
	Workers   int     `hcl:"workers,optional"`
	CacheSize int     `hcl:"cache_size,optional"`
	Routes    []Route `hcl:"route,block"`
}

// Route maps a URL pattern to a layout block.
type Route struct {
	Pattern string `hcl:"pattern,label"`
	Layout  string `hcl:"layout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Content:   "content",
		Output:    "site.db",
		CacheSize: layout.DefaultCacheSize,
	}
}

// Load reads path. A missing file yields Default.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(path, src)
	if err != nil {
		return nil, err
	}
	// Relative paths are relative to the config file.
	base := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Content) {
		cfg.Content = filepath.Join(base, cfg.Content)
	}
	if !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(base, cfg.Output)
	}
	return cfg, nil
}

// Parse decodes src in native HCL syntax. Unset values keep their
// defaults.
func Parse(filename string, src []byte) (*Config, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, diags.Error())
	}
	cfg := Default()
	if diags := gohcl.DecodeBody(f.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, diags.Error())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var diags hcl.Diagnostics
	if c.Workers < 0 {
		diags = append(diags, &hcl.Diagnostic{Severity: hcl.DiagError, Summary: "workers must not be negative"})
	}
	if c.CacheSize < 0 {
		diags = append(diags, &hcl.Diagnostic{Severity: hcl.DiagError, Summary: "cache_size must not be negative"})
	}
	if c.Content == "" {
		diags = append(diags, &hcl.Diagnostic{Severity: hcl.DiagError, Summary: "content must be set"})
	}
	if diags.HasErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, diags.Error())
	}
	return nil
}

// RouteTable builds the route table in declaration order.
func (c *Config) RouteTable() (*layout.RouteTable, error) {
	rules := make([]layout.RouteRule, 0, len(c.Routes))
	for _, r := range c.Routes {
		rules = append(rules, layout.RouteRule{Pattern: r.Pattern, Layout: r.Layout})
	}
	t, err := layout.NewRouteTable(rules...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return t, nil
}
