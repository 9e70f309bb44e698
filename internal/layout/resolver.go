package layout

import (
	"fmt"
	"path"
	"slices"
	"sync"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/runes"
	"github.com/agentic-research/runekit/internal/transform"
	"github.com/agentic-research/runekit/internal/typed"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultBlock is the block of the built-in root layout.
const DefaultBlock = "default"

// DefaultCacheSize bounds the number of resolved directories kept.
const DefaultCacheSize = 1024

// Source supplies layout documents. A directory without a layout document
// reports found=false and a nil error.
type Source interface {
	LayoutDocument(dir string) (doc *api.Node, found bool, err error)
	NamedLayout(id string) (doc *api.Node, found bool, err error)
}

// State is where a directory is in its resolution lifecycle.
type State int

const (
	Unresolved State = iota
	Resolving
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unresolved"
	}
}

// ResolvedLayout is the flattened layout for one directory. It is shared
// between callers and must be treated as read-only.
type ResolvedLayout struct {
	Dir   string                      `json:"dir"`
	Block string                      `json:"block"`
	Slots map[string][]api.Renderable `json:"slots"`
	Order []string                    `json:"order"`
	Chain []string                    `json:"chain"`
}

// Slot returns the content of a named slot.
func (l *ResolvedLayout) Slot(name string) ([]api.Renderable, bool) {
	c, ok := l.Slots[name]
	return c, ok
}

// Merge applies page regions to the layout's slots.
func (l *ResolvedLayout) Merge(overrides []Region) Merged {
	return MergeRegions(l.Slots, l.Order, overrides)
}

type entry struct {
	layout *ResolvedLayout
	err    error
	deps   []string
}

// Resolver resolves and caches directory layouts. Concurrent requests for
// the same directory share one resolution.
type Resolver struct {
	src      Source
	registry *transform.Registry
	logger   *zap.Logger
	size     int

	cache *lru.Cache[string, *entry]
	group singleflight.Group

	mu         sync.Mutex
	generation uint64
	inflight   map[string]int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithCacheSize bounds the resolution cache.
func WithCacheSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.size = n
		}
	}
}

// NewResolver creates a resolver reading layouts from src and transforming
// them with registry, which must know the layout and region runes.
func NewResolver(src Source, registry *transform.Registry, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		src:      src,
		registry: registry,
		logger:   zap.NewNop(),
		size:     DefaultCacheSize,
		inflight: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	cache, err := lru.New[string, *entry](r.size)
	if err != nil {
		return nil, fmt.Errorf("layout cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Resolve returns the flattened layout for dir. Structural failures
// (cycles, missing or malformed layouts) are cached until invalidated;
// source errors are not.
func (r *Resolver) Resolve(dir string) (*ResolvedLayout, error) {
	dir = CleanDir(dir)
	if e, ok := r.cache.Get(dir); ok {
		return e.layout, e.err
	}

	v, _, _ := r.group.Do(dir, func() (any, error) {
		if e, ok := r.cache.Get(dir); ok {
			return e, nil
		}

		r.mu.Lock()
		gen := r.generation
		r.inflight[dir]++
		r.mu.Unlock()

		e := &entry{}
		e.layout, e.deps, e.err = r.compute(dir)

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.inflight[dir]--; r.inflight[dir] == 0 {
			delete(r.inflight, dir)
		}
		if e.err != nil {
			if !cacheable(e.err) {
				r.logger.Warn("layout source error", zap.String("dir", dir), zap.Error(e.err))
				return e, nil
			}
			r.logger.Error("layout resolution failed", zap.String("dir", dir), zap.Error(e.err))
		}
		if r.generation == gen {
			r.cache.Add(dir, e)
		}
		return e, nil
	})
	e := v.(*entry)
	return e.layout, e.err
}

// State reports the lifecycle state of dir.
func (r *Resolver) State(dir string) State {
	dir = CleanDir(dir)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[dir] > 0 {
		return Resolving
	}
	e, ok := r.cache.Peek(dir)
	switch {
	case !ok:
		return Unresolved
	case e.err != nil:
		return Failed
	default:
		return Resolved
	}
}

// Invalidate evicts every cached directory whose resolution read key
// (see DirKey and LayoutKey) and returns how many were evicted. Results
// still being computed when Invalidate runs are returned but not cached.
func (r *Resolver) Invalidate(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	n := 0
	for _, dir := range r.cache.Keys() {
		if e, ok := r.cache.Peek(dir); ok && slices.Contains(e.deps, key) {
			r.cache.Remove(dir)
			n++
		}
	}
	if n > 0 {
		r.logger.Debug("layouts invalidated", zap.String("key", key), zap.Int("evicted", n))
	}
	return n
}

// Purge drops every cached resolution.
func (r *Resolver) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.cache.Purge()
}

type target struct {
	dir   string
	id    string
	named bool
}

func (t target) key() string {
	if t.named {
		return LayoutKey(t.id)
	}
	return DirKey(t.dir)
}

// compute walks the extends chain from dir towards the root and flattens
// it. deps lists every key read, including directories without a layout.
func (r *Resolver) compute(dir string) (*ResolvedLayout, []string, error) {
	var (
		chain   []*Definition
		deps    []string
		visited = make(map[string]bool)
		cursor  = dir
		cur     = target{dir: dir}
	)

walk:
	for {
		key := cur.key()
		deps = append(deps, key)
		// A named layout continues from the directory that referenced it,
		// so the same id reached from two directories is two steps.
		step := key
		if cur.named {
			step += "@" + cursor
		}
		if visited[step] {
			return nil, deps, &CyclicLayoutError{Dir: dir, Chain: slices.Clone(deps)}
		}
		visited[step] = true

		def, found, err := r.load(cur)
		if err != nil {
			return nil, deps, err
		}
		if !found {
			if cur.named {
				return nil, deps, &MissingLayoutError{Dir: cursor, ID: cur.id}
			}
			if cur.dir == "/" {
				break walk
			}
			cursor = path.Dir(cur.dir)
			cur = target{dir: cursor}
			continue
		}
		chain = append(chain, def)

		switch def.Extends {
		case runes.ExtendsNone:
			break walk
		case runes.ExtendsParent:
			if cursor == "/" {
				break walk
			}
			cursor = path.Dir(cursor)
			cur = target{dir: cursor}
		default:
			cur = target{id: def.Extends, named: true}
		}
	}

	return flatten(dir, chain), deps, nil
}

func (r *Resolver) load(t target) (*Definition, bool, error) {
	var (
		doc   *api.Node
		found bool
		err   error
	)
	if t.named {
		doc, found, err = r.src.NamedLayout(t.id)
	} else {
		doc, found, err = r.src.LayoutDocument(t.dir)
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", t.key(), err)
	}
	if !found {
		return nil, false, nil
	}
	if _, ok := typed.Find[typed.Layout](doc); !ok {
		return nil, false, fmt.Errorf("%s: %w", t.key(), ErrNotLayout)
	}

	cfg := r.registry.Config(t.key())
	out := transform.Transform(doc, cfg)
	for _, d := range cfg.Variables.Diagnostics {
		r.logger.Warn("layout diagnostic",
			zap.String("layout", t.key()),
			zap.String("id", d.ID),
			zap.String("level", string(d.Level)),
			zap.String("message", d.Message))
	}
	def, err := Extract(t.key(), out)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", t.key(), err)
	}
	return def, true, nil
}

// flatten applies chain from the root-most definition to the most
// specific one, on top of the built-in root layout.
func flatten(dir string, chain []*Definition) *ResolvedLayout {
	res := &ResolvedLayout{
		Dir:   dir,
		Block: DefaultBlock,
		Slots: map[string][]api.Renderable{MainSlot: {}},
		Order: []string{MainSlot},
		Chain: make([]string, 0, len(chain)),
	}
	for i := len(chain) - 1; i >= 0; i-- {
		def := chain[i]
		if def.Block != "" {
			res.Block = def.Block
		}
		for _, reg := range def.Regions {
			existing, ok := res.Slots[reg.Name]
			if !ok {
				res.Order = append(res.Order, reg.Name)
			}
			res.Slots[reg.Name] = mergeSlot(existing, reg.Content, reg.Mode)
		}
		res.Chain = append(res.Chain, def.Key)
	}
	return res
}
