// Package site composes pages: each page is transformed, its regions are
// merged into the layout resolved for its directory and its template is
// picked from the route table.
package site

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/content"
	"github.com/agentic-research/runekit/internal/layout"
	"github.com/agentic-research/runekit/internal/nav"
	"github.com/agentic-research/runekit/internal/schema"
	"github.com/agentic-research/runekit/internal/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source lists and reads pages.
type Source interface {
	Pages() ([]content.PageFile, error)
	ReadDocument(path string) (*api.Node, error)
}

// Page is a composed page.
type Page struct {
	URL         string                      `json:"url"`
	Path        string                      `json:"path"`
	Dir         string                      `json:"dir"`
	Template    string                      `json:"template"`
	Slots       map[string][]api.Renderable `json:"slots"`
	Order       []string                    `json:"order"`
	Regions     []layout.Region             `json:"regions,omitempty"`
	Navigation  *nav.Tree                   `json:"navigation,omitempty"`
	Diagnostics []schema.Diagnostic         `json:"diagnostics,omitempty"`
	Err         error                       `json:"-"`
}

// Builder composes every page of a source.
type Builder struct {
	src      Source
	registry *transform.Registry
	resolver *layout.Resolver
	routes   *layout.RouteTable
	nav      nav.Builder
	workers  int
	logger   *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithRoutes(t *layout.RouteTable) Option {
	return func(b *Builder) { b.routes = t }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithNavBuilder replaces the navigation tree builder.
func WithNavBuilder(nb nav.Builder) Option {
	return func(b *Builder) { b.nav = nb }
}

// NewBuilder creates a builder. The resolver is shared by every page.
func NewBuilder(src Source, registry *transform.Registry, resolver *layout.Resolver, opts ...Option) *Builder {
	b := &Builder{
		src:      src,
		registry: registry,
		resolver: resolver,
		nav:      nav.DefaultBuilder{},
		workers:  runtime.GOMAXPROCS(0),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build composes all pages in URL order. A page that fails keeps its error
// on Page.Err; Build itself only fails when pages cannot be listed or ctx
// is cancelled.
func (b *Builder) Build(ctx context.Context) ([]*Page, error) {
	files, err := b.src.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	start := time.Now()
	pages := make([]*Page, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pages[i] = b.BuildPage(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, p := range pages {
		if p.Err != nil {
			failed++
		}
	}
	b.logger.Info("site built",
		zap.Int("pages", len(pages)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return pages, nil
}

// BuildPage transforms and composes one page.
func (b *Builder) BuildPage(f content.PageFile) *Page {
	page := &Page{URL: f.URL, Path: f.Path, Dir: f.Dir}
	log := b.logger.With(zap.String("url", f.URL))

	doc, err := b.src.ReadDocument(f.Path)
	if err != nil {
		page.Err = fmt.Errorf("read %s: %w", f.Path, err)
		log.Error("page read failed", zap.Error(err))
		return page
	}

	cfg := b.registry.Config(f.Path)
	out := transform.Transform(doc, cfg)
	page.Diagnostics = cfg.Variables.Diagnostics

	resolved, err := b.resolver.Resolve(f.Dir)
	if err != nil {
		page.Err = fmt.Errorf("layout for %s: %w", f.URL, err)
		log.Error("layout resolution failed", zap.Error(err))
		return page
	}

	regions, body := layout.SplitRegions(topLevel(out))
	if len(body) > 0 {
		regions = append([]layout.Region{{Name: layout.MainSlot, Mode: layout.ModeReplace, Content: body}}, regions...)
	}
	page.Regions = regions

	merged := resolved.Merge(regions)
	page.Slots, page.Order = merged.Slots, merged.Order
	if len(merged.Errors) > 0 {
		notices := make([]api.Renderable, 0, len(merged.Errors))
		for _, e := range merged.Errors {
			d := schema.Diagnostic{
				ID:      schema.DiagUnknownRegion,
				Level:   schema.SeverityWarning,
				Message: e.Error(),
				Tag:     "region",
			}
			page.Diagnostics = append(page.Diagnostics, d)
			notices = append(notices, transform.ErrorNode([]schema.Diagnostic{d}))
		}
		page.Slots[layout.FallbackSlot] = append(notices, page.Slots[layout.FallbackSlot]...)
	}

	page.Template = resolved.Block
	if t, ok := b.routes.Lookup(f.URL); ok {
		page.Template = t
	}

	page.Navigation = b.navigation(out, page)
	if w, ok := schema.Worst(page.Diagnostics); ok {
		log.Debug("page diagnostics",
			zap.Int("count", len(page.Diagnostics)),
			zap.String("worst", string(w.Level)))
	}
	return page
}

// topLevel returns the children of the document root, or the output
// itself when it is not a single tag.
func topLevel(out api.Renderable) []api.Renderable {
	switch v := out.(type) {
	case *api.Tag:
		if transform.IsErrorNode(v) {
			return []api.Renderable{v}
		}
		return v.Children
	case transform.Fragment:
		return v
	case nil:
		return nil
	default:
		return []api.Renderable{v}
	}
}

// navigation reads the first nav component of the page, then of the
// merged slots in order.
func (b *Builder) navigation(out api.Renderable, page *Page) *nav.Tree {
	candidates := []api.Renderable{out}
	for _, name := range page.Order {
		candidates = append(candidates, page.Slots[name]...)
	}
	for _, r := range candidates {
		tree, err := b.nav.Build(r)
		if errors.Is(err, nav.ErrNoNav) {
			continue
		}
		if err != nil {
			page.Diagnostics = append(page.Diagnostics, schema.Diagnostic{
				ID:      schema.DiagInvalidNav,
				Level:   schema.SeverityWarning,
				Message: err.Error(),
				Tag:     "nav",
			})
			return nil
		}
		return tree
	}
	return nil
}
