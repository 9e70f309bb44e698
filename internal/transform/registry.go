// Package transform registers rune schemas and runs the per-document
// transform that turns an AST into a renderable tag tree.
package transform

import (
	"errors"
	"fmt"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
)

var (
	ErrDuplicateSchema = errors.New("schema already registered")
	ErrInvalidSchema   = errors.New("invalid schema definition")
)

// TransformFunc builds the output of one rune invocation.
type TransformFunc func(m *Base) api.Renderable

// Definition describes a schema to register. Tag runes set Name; node
// schemas set Kind.
type Definition struct {
	Name      string
	Kind      api.NodeKind
	Model     *schema.Model
	Transform TransformFunc
	// Render is the element name used when Transform is nil.
	Render string
}

// Schema is a registered rune or node schema.
type Schema struct {
	name      string
	kind      api.NodeKind
	model     *schema.Model
	transform TransformFunc
	render    string
}

// Name returns the rune name, or the node kind for node schemas.
func (s *Schema) Name() string { return s.name }

// Model returns the attribute and group declarations.
func (s *Schema) Model() *schema.Model { return s.model }

// Registry holds every schema known to a site. It is populated at start-up
// and only read afterwards.
type Registry struct {
	tags  map[string]*Schema
	nodes map[api.NodeKind]*Schema
}

func NewRegistry() *Registry {
	return &Registry{
		tags:  make(map[string]*Schema),
		nodes: make(map[api.NodeKind]*Schema),
	}
}

// Register validates def and stores the resulting schema.
func (r *Registry) Register(def Definition) (*Schema, error) {
	isNode := def.Kind != "" && def.Kind != api.KindTag
	name := def.Name
	if isNode {
		name = string(def.Kind)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidSchema)
	}

	model := def.Model
	if model == nil {
		model = schema.NewModel(name)
	}
	if err := model.Err(); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidSchema, name, err)
	}

	s := &Schema{
		name:      name,
		kind:      def.Kind,
		model:     model,
		transform: def.Transform,
		render:    def.Render,
	}

	if isNode {
		if _, exists := r.nodes[def.Kind]; exists {
			return nil, fmt.Errorf("%w: node %s", ErrDuplicateSchema, def.Kind)
		}
		r.nodes[def.Kind] = s
		return s, nil
	}
	if _, exists := r.tags[name]; exists {
		return nil, fmt.Errorf("%w: tag %s", ErrDuplicateSchema, name)
	}
	r.tags[name] = s
	return s, nil
}

// MustRegister is Register for package initialization code.
func (r *Registry) MustRegister(def Definition) *Schema {
	s, err := r.Register(def)
	if err != nil {
		panic(err)
	}
	return s
}

// Tag looks up a rune schema.
func (r *Registry) Tag(name string) (*Schema, bool) {
	s, ok := r.tags[name]
	return s, ok
}

// Node looks up a node schema.
func (r *Registry) Node(kind api.NodeKind) (*Schema, bool) {
	s, ok := r.nodes[kind]
	return s, ok
}

// Tags lists the registered rune schemas.
func (r *Registry) Tags() []*Schema {
	out := make([]*Schema, 0, len(r.tags))
	for _, s := range r.tags {
		out = append(out, s)
	}
	return out
}

// Config returns a transform configuration for one document. Each call
// gets its own id set, so configs must not be shared across documents.
func (r *Registry) Config(path string) *Config {
	return &Config{
		Tags:  r.tags,
		Nodes: r.nodes,
		Variables: &Variables{
			GeneratedIDs: make(map[string]struct{}),
			Path:         path,
			Extra:        make(map[string]any),
		},
	}
}
