package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/specialistvlad/wiregrid/internal/uri"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// ClassKind tells the container how to obtain instances of a class.
type ClassKind int

const (
	// Ordinary classes are instantiated once per configured object.
	Ordinary ClassKind = iota
	// Singleton classes share the instance returned by their provider.
	Singleton
)

func (k ClassKind) String() string {
	if k == Singleton {
		return "singleton"
	}
	return "ordinary"
}

// Class describes one instantiable type.
type Class struct {
	Name string
	Kind ClassKind
	// New creates an instance of an ordinary class, or returns the shared
	// instance of a singleton.
	New func() any
	// Parent names the class this one derives from, for proxy lookup.
	Parent string
	// Type is the dynamic type of instances. Filled in on registration.
	Type reflect.Type
}

// Instantiate returns an instance of the class.
func (c *Class) Instantiate() any {
	return c.New()
}

// Proxy is a configurable stand-in for a type that cannot be configured
// directly. After configuration the container replaces it by the object
// Unwrap returns.
type Proxy interface {
	Unwrap() (any, error)
}

// TargetAware proxies receive a fresh instance of the class they stand in
// for before they are configured.
type TargetAware interface {
	SetTarget(target any)
}

// Registry holds the classes, proxies, type names and schemes of a single
// application instance.
type Registry struct {
	classes map[string]*Class
	byType  map[reflect.Type]string
	proxies map[string]func() any
	types   map[string]string
	schemes map[string]uri.SchemeHandler
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		classes: make(map[string]*Class),
		byType:  make(map[reflect.Type]string),
		proxies: make(map[string]func() any),
		types:   make(map[string]string),
		schemes: make(map[string]uri.SchemeHandler),
	}
}

// RegisterClass registers an ordinary class.
func (r *Registry) RegisterClass(name string, ctor func() any) {
	r.register(&Class{Name: name, Kind: Ordinary, New: ctor})
}

// RegisterSubclass registers an ordinary class deriving from parent.
func (r *Registry) RegisterSubclass(name, parent string, ctor func() any) {
	r.register(&Class{Name: name, Kind: Ordinary, New: ctor, Parent: parent})
}

// RegisterSingleton registers a class whose instances are all the value
// returned by provider.
func (r *Registry) RegisterSingleton(name string, provider func() any) {
	r.register(&Class{Name: name, Kind: Singleton, New: provider})
}

func (r *Registry) register(c *Class) {
	if _, exists := r.classes[c.Name]; exists {
		panic(fmt.Sprintf("class with name '%s' already registered", c.Name))
	}
	if c.New == nil {
		panic(fmt.Sprintf("class '%s' registered without a constructor", c.Name))
	}
	if c.Kind == Ordinary {
		c.Type = reflect.TypeOf(c.New())
		if _, taken := r.byType[c.Type]; !taken {
			r.byType[c.Type] = c.Name
		}
	}
	slog.Debug("Registering class.", "name", c.Name, "kind", c.Kind.String())
	r.classes[c.Name] = c
}

// RegisterProxy registers the proxy constructor for a class and, through
// parent links, its subclasses. A nil constructor disables an inherited
// proxy.
func (r *Registry) RegisterProxy(class string, ctor func() any) {
	if _, exists := r.proxies[class]; exists {
		panic(fmt.Sprintf("proxy for class '%s' already registered", class))
	}
	slog.Debug("Registering proxy.", "class", class, "disabled", ctor == nil)
	r.proxies[class] = ctor
}

// RegisterType adds a default entry to the type map, naming a class by a
// logical type name.
func (r *Registry) RegisterType(typeName, class string) {
	if _, exists := r.types[typeName]; exists {
		panic(fmt.Sprintf("type name '%s' already registered", typeName))
	}
	slog.Debug("Registering type name.", "type", typeName, "class", class)
	r.types[typeName] = class
}

// RegisterScheme adds a URI scheme available to every container.
func (r *Registry) RegisterScheme(scheme string, h uri.SchemeHandler) {
	if _, exists := r.schemes[scheme]; exists {
		panic(fmt.Sprintf("scheme '%s' already registered", scheme))
	}
	slog.Debug("Registering scheme.", "scheme", scheme)
	r.schemes[scheme] = h
}

// Class returns the class registered under name.
func (r *Registry) Class(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// ClassNames returns all registered class names, sorted.
func (r *Registry) ClassNames() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassForType returns the name of the first ordinary class registered for
// instances of t.
func (r *Registry) ClassForType(t reflect.Type) (string, bool) {
	name, ok := r.byType[t]
	return name, ok
}

// ProxyFor returns the proxy constructor for class, walking parent links to
// the nearest class with a registration. It returns nil when no proxy
// applies, including when the nearest registration disables proxying.
func (r *Registry) ProxyFor(class string) func() any {
	seen := map[string]bool{}
	for name := class; name != "" && !seen[name]; {
		seen[name] = true
		if ctor, ok := r.proxies[name]; ok {
			return ctor
		}
		c, ok := r.classes[name]
		if !ok {
			return nil
		}
		name = c.Parent
	}
	return nil
}

// Types returns a copy of the default type map.
func (r *Registry) Types() map[string]string {
	out := make(map[string]string, len(r.types))
	for k, v := range r.types {
		out[k] = v
	}
	return out
}

// Schemes returns a copy of the module-contributed schemes.
func (r *Registry) Schemes() map[string]uri.SchemeHandler {
	out := make(map[string]uri.SchemeHandler, len(r.schemes))
	for k, v := range r.schemes {
		out[k] = v
	}
	return out
}
