package config

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/keypath"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// Root is a shared handle on the top-level configuration. Every
// configuration derived from the same document holds the same Root.
type Root struct {
	cfg *Configuration
}

// Configuration returns the top-level configuration.
func (r *Root) Configuration() *Configuration {
	return r.cfg
}

// Configuration wraps a raw configuration tree. All derived operations
// return new instances; the receiver is never modified.
type Configuration struct {
	data        any
	source      any
	root        *Root
	dataContext map[string]any
	uriHandler  *uri.Handler
	id          string
}

// New creates a top-level configuration over data.
func New(data any, handler *uri.Handler) *Configuration {
	if handler == nil {
		handler = uri.NewHandler()
	}
	c := &Configuration{
		data:        data,
		source:      data,
		dataContext: map[string]any{},
		uriHandler:  handler,
		id:          identity(data),
	}
	c.root = &Root{cfg: c}
	return c
}

// Empty creates a top-level configuration with no keys.
func Empty(handler *uri.Handler) *Configuration {
	return New(map[string]any{}, handler)
}

// derive returns a copy of c over different data, keeping its source
// identity, root, context and resolver.
func (c *Configuration) derive(data any) *Configuration {
	return &Configuration{
		data:        data,
		source:      c.source,
		root:        c.root,
		dataContext: c.dataContext,
		uriHandler:  c.uriHandler,
		id:          c.id,
	}
}

// child returns a sub-configuration read from a nested value or resource.
func (c *Configuration) child(data any, handler *uri.Handler, id string) *Configuration {
	if handler == nil {
		handler = c.uriHandler
	}
	return &Configuration{
		data:        data,
		source:      data,
		root:        c.root,
		dataContext: c.dataContext,
		uriHandler:  handler,
		id:          id,
	}
}

// Data returns the raw, unresolved tree.
func (c *Configuration) Data() any { return c.data }

// Source returns the tree as it was before any merge.
func (c *Configuration) Source() any { return c.source }

// Root returns the top-level configuration.
func (c *Configuration) Root() *Configuration { return c.root.cfg }

// URIHandler returns the resolver in scope for this configuration.
func (c *Configuration) URIHandler() *uri.Handler { return c.uriHandler }

// ID returns the source identity used to detect inheritance cycles.
func (c *Configuration) ID() string { return c.id }

// DataContext returns a copy of the template variables in scope.
func (c *Configuration) DataContext() map[string]any {
	out := make(map[string]any, len(c.dataContext))
	for k, v := range c.dataContext {
		out[k] = v
	}
	return out
}

// Keys returns the top-level keys of a mapping, sorted.
func (c *Configuration) Keys() []string {
	m, ok := c.data.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries of a mapping or sequence.
func (c *Configuration) Len() int {
	switch d := c.data.(type) {
	case map[string]any:
		return len(d)
	case []any:
		return len(d)
	}
	return 0
}

// IsList reports whether the configuration wraps a sequence.
func (c *Configuration) IsList() bool {
	_, ok := c.data.([]any)
	return ok
}

// Has reports whether key is present at the top level.
func (c *Configuration) Has(key string) bool {
	_, ok := c.Raw(key)
	return ok
}

// Raw returns the unresolved top-level value for key.
func (c *Configuration) Raw(key string) (any, bool) {
	return keypath.Step(c.data, keypath.NewSegment(key))
}

// Get navigates keyPath and converts the terminal value to repr. Intermediate
// values are resolved as they are crossed, so a path can descend into a
// referenced resource. A missing path or failed conversion yields (nil, false).
func (c *Configuration) Get(ctx context.Context, keyPath string, repr Representation) (any, bool) {
	path, err := keypath.Parse(keyPath)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Malformed configuration key path.", "key_path", keyPath, "error", err)
		return nil, false
	}
	value, owner, ok := c.lookup(ctx, steps(path))
	if !ok {
		return nil, false
	}
	return owner.convert(ctx, keyPath, value, repr)
}

// ValueForKey is like Get for a single top-level key, taken literally.
func (c *Configuration) ValueForKey(ctx context.Context, key string, repr Representation) (any, bool) {
	value, owner, ok := c.lookup(ctx, []string{key})
	if !ok {
		return nil, false
	}
	return owner.convert(ctx, key, value, repr)
}

// Value returns the resolved value at keyPath.
func (c *Configuration) Value(ctx context.Context, keyPath string) (any, bool) {
	return c.Get(ctx, keyPath, ReprDefault)
}

// GetString returns the value at keyPath as a string.
func (c *Configuration) GetString(ctx context.Context, keyPath string) (string, bool) {
	v, ok := c.Get(ctx, keyPath, ReprString)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// GetNumber returns the value at keyPath as a number.
func (c *Configuration) GetNumber(ctx context.Context, keyPath string) (float64, bool) {
	v, ok := c.Get(ctx, keyPath, ReprNumber)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

// GetBool returns the value at keyPath as a boolean.
func (c *Configuration) GetBool(ctx context.Context, keyPath string) (bool, bool) {
	v, ok := c.Get(ctx, keyPath, ReprBool)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// GetJSON returns a deep copy of the raw structured data at keyPath.
func (c *Configuration) GetJSON(ctx context.Context, keyPath string) (any, bool) {
	return c.Get(ctx, keyPath, ReprJSON)
}

// GetConfiguration returns the value at keyPath as a configuration, or nil.
func (c *Configuration) GetConfiguration(ctx context.Context, keyPath string) *Configuration {
	v, ok := c.Get(ctx, keyPath, ReprConfiguration)
	if !ok {
		return nil
	}
	return v.(*Configuration)
}

// GetConfigurationList returns the items of the sequence at keyPath that can
// be interpreted as configuration.
func (c *Configuration) GetConfigurationList(ctx context.Context, keyPath string) []*Configuration {
	list := c.GetConfiguration(ctx, keyPath)
	if list == nil || !list.IsList() {
		return nil
	}
	var out []*Configuration
	for i := 0; i < list.Len(); i++ {
		if item, ok := list.ValueForKey(ctx, strconv.Itoa(i), ReprConfiguration); ok {
			out = append(out, item.(*Configuration))
		}
	}
	return out
}

// GetConfigurationMap returns the entries of the mapping at keyPath that can
// be interpreted as configuration.
func (c *Configuration) GetConfigurationMap(ctx context.Context, keyPath string) map[string]*Configuration {
	m := c.GetConfiguration(ctx, keyPath)
	if m == nil || m.IsList() {
		return nil
	}
	out := make(map[string]*Configuration)
	for _, key := range m.Keys() {
		if item, ok := m.ValueForKey(ctx, key, ReprConfiguration); ok {
			out[key] = item.(*Configuration)
		}
	}
	return out
}

// AsConfiguration wraps v as a child configuration. v may be a mapping, a
// sequence, a configuration, a resource with structured content, or a string
// that resolves to one of those. Anything else returns nil.
func (c *Configuration) AsConfiguration(ctx context.Context, v any) *Configuration {
	switch t := v.(type) {
	case *Configuration:
		return t
	case map[string]any:
		return c.child(t, nil, identity(t))
	case []any:
		return c.child(t, nil, identity(t))
	case *uri.Resource:
		data, err := t.AsJSONData()
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Resource content is not configuration.", "uri", t.URI.String(), "error", err)
			return nil
		}
		switch data.(type) {
		case map[string]any, []any:
		default:
			return nil
		}
		id := identity(data)
		if t.URI != nil {
			id = t.URI.String()
		}
		return c.child(data, t.Handler, id)
	case string:
		resolved, ok := c.resolve(ctx, t)
		if !ok {
			return nil
		}
		if _, still := resolved.(string); still {
			return nil
		}
		return c.AsConfiguration(ctx, resolved)
	}
	return nil
}

// lookup walks keys, resolving each value it crosses.
func (c *Configuration) lookup(ctx context.Context, keys []string) (any, *Configuration, bool) {
	raw, ok := keypath.Step(c.data, keypath.NewSegment(keys[0]))
	if !ok {
		return nil, nil, false
	}
	value, ok := c.resolve(ctx, raw)
	if !ok {
		return nil, nil, false
	}
	if len(keys) == 1 {
		return value, c, true
	}
	sub := c.AsConfiguration(ctx, value)
	if sub == nil {
		ctxlog.FromContext(ctx).Debug("Key path crosses a non-configuration value.", "key", keys[0])
		return nil, nil, false
	}
	return sub.lookup(ctx, keys[1:])
}

// steps flattens a path into single keys, turning `name[i]` into `name`, `i`.
func steps(p *keypath.Path) []string {
	var keys []string
	for _, seg := range p.Segments {
		keys = append(keys, seg.Name)
		if seg.HasIndex() {
			keys = append(keys, strconv.Itoa(seg.Index))
		}
	}
	return keys
}

// identity returns a source identity for inline mappings and sequences.
func identity(data any) string {
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return fmt.Sprintf("%T@%x", data, rv.Pointer())
	}
	return ""
}
