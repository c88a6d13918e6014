package container

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/specialistvlad/wiregrid/internal/config"
	"github.com/specialistvlad/wiregrid/internal/configurer"
	"github.com/specialistvlad/wiregrid/internal/dag"
	"github.com/specialistvlad/wiregrid/internal/metric"
	"github.com/specialistvlad/wiregrid/internal/registry"
	"github.com/specialistvlad/wiregrid/internal/typeinfo"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// MaxBuildDepth bounds nested builds. Deeper recursion is reported as a
// structural error.
const MaxBuildDepth = 64

// Reserved top-level keys of a container configuration.
const (
	KeyTypes    = "-types"
	KeyPatterns = "-patterns"
	KeyPriority = "-priority"
)

// Internal scheme names.
const (
	SchemeMake  = "make"
	SchemeNamed = "named"
	SchemePost  = "post"
	SchemeNew   = "new"
)

// Container builds and owns a graph of named objects.
type Container struct {
	id       string
	parent   *Container
	registry *registry.Registry
	types    *typeinfo.Registry
	metrics  *metric.Metrics
	base     *uri.Handler
	handler  *uri.Handler
	conf     *configurer.Configurer
	arena    *arena
	graph    *dag.Graph

	cfg      *config.Configuration
	patterns *config.Configuration
	typeMap  map[string]string
	priority []string

	// building maps names under construction to their slots.
	building map[string]*slot
	failed   map[string]error

	// mu guards the fields read while running.
	mu        sync.RWMutex
	named     map[string]any
	order     []string
	lifecycle []*slot
	started   []any
	running   bool
}

// Option configures a Container.
type Option func(*Container)

// WithRegistry sets the class registry.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Container) { c.registry = r }
}

// WithTypeInfo sets the property schema cache.
func WithTypeInfo(t *typeinfo.Registry) Option {
	return func(c *Container) { c.types = t }
}

// WithMetrics enables build metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Container) { c.metrics = m }
}

// WithURIHandler sets the resolver used for configuration built from raw
// data. Schemes registered by modules are added to it.
func WithURIHandler(h *uri.Handler) Option {
	return func(c *Container) { c.base = h }
}

// New creates an empty top-level container.
func New(opts ...Option) *Container {
	c := &Container{
		id:       uuid.NewString(),
		arena:    &arena{},
		graph:    dag.New(),
		typeMap:  make(map[string]string),
		building: make(map[string]*slot),
		failed:   make(map[string]error),
		named:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = registry.New()
	}
	if c.types == nil {
		c.types = typeinfo.NewRegistry()
	}
	if c.base == nil {
		c.base = uri.NewHandler()
	}
	c.init()
	return c
}

// NewChild creates a container nested in c. It shares c's classes and build
// arena, and falls back to c for names and type names it does not define.
func (c *Container) NewChild() *Container {
	child := &Container{
		id:       uuid.NewString(),
		typeMap:  make(map[string]string),
		building: make(map[string]*slot),
		failed:   make(map[string]error),
		named:    make(map[string]any),
	}
	child.adopt(c)
	return child
}

// adopt makes c a child of parent.
func (c *Container) adopt(parent *Container) {
	c.parent = parent
	c.registry = parent.registry
	c.types = parent.types
	c.metrics = parent.metrics
	c.arena = parent.arena
	c.graph = parent.graph
	c.base = parent.handler
	c.init()
}

func (c *Container) init() {
	c.conf = configurer.New(c.types, &factory{c: c})
	c.handler = c.bindSchemes(c.base)
	c.cfg = config.Empty(c.handler)
}

// bindSchemes returns h with module schemes added where missing and the
// internal schemes bound to c.
func (c *Container) bindSchemes(h *uri.Handler) *uri.Handler {
	schemes := c.registry.Schemes()
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !h.HasHandlerForScheme(name) {
			h = h.ReplaceScheme(name, schemes[name])
		}
	}
	h = h.ReplaceScheme(SchemeMake, &makeScheme{c: c})
	h = h.ReplaceScheme(SchemeNamed, &namedScheme{c: c})
	h = h.ReplaceScheme(SchemePost, &postScheme{c: c})
	h = h.ReplaceScheme(SchemeNew, &newScheme{c: c})
	if c.metrics != nil {
		h = h.WithObserver(c.metrics.ObserveDereference)
	}
	return h
}

// ID returns the container's instance id.
func (c *Container) ID() string { return c.id }

// Parent returns the enclosing container, or nil.
func (c *Container) Parent() *Container { return c.parent }

// Registry returns the class registry.
func (c *Container) Registry() *registry.Registry { return c.registry }

// URIHandler returns the resolver with this container's internal schemes.
func (c *Container) URIHandler() *uri.Handler { return c.handler }

// Configuration returns the configuration the container was configured with.
func (c *Container) Configuration() *config.Configuration { return c.cfg }

// AddTypes adds logical type name to class name mappings. Local entries
// shadow the parent's.
func (c *Container) AddTypes(types map[string]string) {
	maps.Copy(c.typeMap, types)
}

// SetPriorityNames sets the names built first, in order, by ConfigureWith.
func (c *Container) SetPriorityNames(names ...string) {
	c.priority = append([]string(nil), names...)
}

// resolveType maps a logical type name to a class name through the type map
// chain, then the registry defaults. Unknown names map to themselves.
func (c *Container) resolveType(name string) string {
	for cur := c; cur != nil; cur = cur.parent {
		if class, ok := cur.typeMap[name]; ok {
			return class
		}
	}
	if class, ok := c.registry.Types()[name]; ok {
		return class
	}
	return name
}

// pattern returns the `make:` pattern with the given name, searching the
// parent chain.
func (c *Container) pattern(ctx context.Context, name string) *config.Configuration {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.patterns == nil {
			continue
		}
		if p, ok := cur.patterns.ValueForKey(ctx, name, config.ReprConfiguration); ok {
			return p.(*config.Configuration)
		}
	}
	return nil
}

// Names returns the names of the objects built so far, sorted.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.named))
	for name := range c.named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Running reports whether the container has been started and not stopped.
func (c *Container) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Lookup returns a built named object without building anything. It is
// safe to call from any goroutine.
func (c *Container) Lookup(name string) (any, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		obj, ok := cur.named[name]
		cur.mu.RUnlock()
		if ok {
			return obj, true
		}
	}
	return nil, false
}

func (c *Container) setNamed(name string, obj any) {
	c.mu.Lock()
	_, existed := c.named[name]
	c.named[name] = obj
	if !existed {
		c.order = append(c.order, name)
	}
	c.mu.Unlock()
	if !existed {
		c.metrics.AddNamed(1)
	}
}

// SetContainer implements ContainerAware: a container built from
// configuration becomes a child of the container that built it.
func (c *Container) SetContainer(parent *Container) {
	if parent == c {
		return
	}
	c.adopt(parent)
}

func (c *Container) String() string {
	return fmt.Sprintf("container(%s)", c.id)
}
