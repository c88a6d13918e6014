package typeinfo

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

const tagName = "ioc"

// TypeInfo is the schema of one configurable type.
type TypeInfo struct {
	Type  reflect.Type
	props map[string]*PropertyInfo
	order []string
}

// Property returns the property configured by key name.
func (ti *TypeInfo) Property(name string) (*PropertyInfo, bool) {
	p, ok := ti.props[name]
	return p, ok
}

// Properties returns all properties in field declaration order.
func (ti *TypeInfo) Properties() []*PropertyInfo {
	out := make([]*PropertyInfo, 0, len(ti.order))
	for _, name := range ti.order {
		out = append(out, ti.props[name])
	}
	return out
}

// Names returns the property names in field declaration order.
func (ti *TypeInfo) Names() []string {
	return append([]string(nil), ti.order...)
}

// Registry caches TypeInfo per type. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]*TypeInfo
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[reflect.Type]*TypeInfo)}
}

// InfoOf is InfoFor applied to the dynamic type of v.
func (r *Registry) InfoOf(v any) (*TypeInfo, error) {
	return r.InfoFor(reflect.TypeOf(v))
}

// InfoFor returns the schema of t, computing it on first use. Pointer types
// describe their element type; non-struct types have no properties.
func (r *Registry) InfoFor(t reflect.Type) (*TypeInfo, error) {
	if t == nil {
		return nil, fmt.Errorf("type info requested for nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	ti, ok := r.types[t]
	r.mu.RUnlock()
	if ok {
		return ti, nil
	}

	ti, err := build(t)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	if existing, ok := r.types[t]; ok {
		ti = existing
	} else {
		r.types[t] = ti
	}
	r.mu.Unlock()
	return ti, nil
}

// Len returns the number of cached types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

func build(t reflect.Type) (*TypeInfo, error) {
	ti := &TypeInfo{Type: t, props: make(map[string]*PropertyInfo)}
	if t.Kind() != reflect.Struct {
		return ti, nil
	}

	var memberTypes map[string]reflect.Type
	if typer, ok := reflect.New(t).Interface().(CollectionMemberTyper); ok {
		memberTypes = typer.CollectionMemberTypes()
	}

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && (f.Type.Kind() == reflect.Struct || (f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct)) {
			// Promoted fields are listed separately.
			continue
		}
		name, raw, skip := parseTag(f)
		if skip {
			continue
		}
		if existing, ok := ti.props[name]; ok {
			return nil, fmt.Errorf("type %s: property %q declared by both %s and %s", t, name, existing.Field, f.Name)
		}

		p := &PropertyInfo{
			Name:  name,
			Field: f.Name,
			Type:  f.Type,
			Kind:  KindOf(f.Type),
			Raw:   raw,
			index: f.Index,
		}
		switch p.Kind {
		case KindList, KindMap:
			p.ElemType = f.Type.Elem()
			if mt, ok := memberTypes[name]; ok && mt != nil {
				p.ElemType = mt
			}
			p.ElemKind = KindOf(p.ElemType)
		}
		ti.props[name] = p
		ti.order = append(ti.order, name)
	}
	return ti, nil
}

// parseTag returns the configuration key for f and its options.
func parseTag(f reflect.StructField) (name string, raw bool, skip bool) {
	tag, ok := f.Tag.Lookup(tagName)
	if ok && tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "raw" {
			raw = true
		}
	}
	if name == "" {
		name = lowerCamel(f.Name)
	}
	return name, raw, false
}

// lowerCamel lowers the leading upper-case run of s: "URL" -> "url",
// "HTTPClient" -> "httpClient", "Name" -> "name".
func lowerCamel(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == 1 || n == len(runes):
		for i := 0; i < n; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	default:
		// Keep the last upper-case rune as the start of the next word.
		for i := 0; i < n-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}
