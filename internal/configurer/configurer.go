package configurer

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/specialistvlad/wiregrid/internal/config"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/keypath"
	"github.com/specialistvlad/wiregrid/internal/typeinfo"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

var configurationType = reflect.TypeOf((*config.Configuration)(nil))

// Configurer sets the properties of objects from configuration.
type Configurer struct {
	types   *typeinfo.Registry
	factory ObjectFactory
}

// New creates a Configurer. types must not be nil; factory may be nil, in
// which case nested mappings are only injected into untyped properties.
func New(types *typeinfo.Registry, factory ObjectFactory) *Configurer {
	return &Configurer{types: types, factory: factory}
}

// Configure injects cfg into obj. keyPath locates cfg in the root and is
// used for diagnostics and for naming nested objects. Only structural errors
// are returned; bad values are logged and their properties left unset.
func (c *Configurer) Configure(ctx context.Context, obj any, cfg *config.Configuration, keyPath string) error {
	logger := ctxlog.FromContext(ctx).With("key_path", keyPath, "type", fmt.Sprintf("%T", obj))

	if self, ok := obj.(Configurable); ok {
		logger.Debug("Configure: object configures itself.")
		if err := self.ConfigureWith(ctx, cfg); err != nil {
			return errs.Wrap(err, "configurer", keyPath, "self-configure")
		}
		return nil
	}

	info, err := c.types.InfoOf(obj)
	if err != nil {
		return errs.WrapConfiguration(err, "configurer", keyPath, "describe type")
	}

	logger.Debug("Configure: injecting properties.", "properties", len(info.Properties()))
	for _, prop := range info.Properties() {
		if !cfg.Has(prop.Name) {
			continue
		}
		path := keypath.Join(keyPath, prop.Name)
		value, built, ok, err := c.resolve(ctx, cfg, prop.Name, path, prop.Type, prop.Kind, prop.ElemType, prop.Raw)
		if err != nil {
			return err
		}
		if !ok {
			logger.Debug("Configure: property value absent.", "property", prop.Name)
			continue
		}

		apply := func(resolved any) error {
			c.inject(ctx, obj, prop, resolved, path, built)
			return nil
		}
		if c.factory != nil && ContainsPlaceholder(value) {
			logger.Debug("Configure: property waits on objects under construction.", "property", prop.Name)
			c.factory.Defer(ctx, obj, path, value, apply)
			continue
		}
		_ = apply(value)
	}
	return nil
}

// inject sets a resolved value, logging instead of failing on coercion
// errors.
func (c *Configurer) inject(ctx context.Context, obj any, prop *typeinfo.PropertyInfo, value any, path string, built bool) {
	if err := prop.Set(obj, value); err != nil {
		ctxlog.FromContext(ctx).Warn("Property coercion failed, property left unset.",
			"key_path", path, "error", err)
		return
	}
	if aware, ok := obj.(ObjectAware); ok && (built || isObject(value)) {
		aware.ObjectAdded(ctx, prop.Name, value)
	}
}

// isObject reports whether v is an object reference rather than data.
func isObject(v any) bool {
	switch v.(type) {
	case nil, *config.Configuration, *url.URL:
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Pointer || k == reflect.Struct
}

// resolve reads key from scope in the representation expected by typ. built
// reports whether any part of the value was built through the factory.
func (c *Configurer) resolve(ctx context.Context, scope *config.Configuration, key, path string,
	typ reflect.Type, kind typeinfo.Kind, elemType reflect.Type, raw bool) (value any, built bool, ok bool, err error) {

	if raw {
		v, ok := scope.ValueForKey(ctx, key, config.ReprJSON)
		return v, false, ok, nil
	}
	if typ == configurationType {
		v, ok := scope.ValueForKey(ctx, key, config.ReprConfiguration)
		return v, false, ok, nil
	}

	switch kind {
	case typeinfo.KindString:
		v, ok := scope.ValueForKey(ctx, key, config.ReprString)
		return v, false, ok, nil
	case typeinfo.KindNumber:
		v, ok := scope.ValueForKey(ctx, key, config.ReprNumber)
		return v, false, ok, nil
	case typeinfo.KindBool:
		v, ok := scope.ValueForKey(ctx, key, config.ReprBool)
		return v, false, ok, nil
	case typeinfo.KindData:
		v, ok := scope.ValueForKey(ctx, key, config.ReprData)
		return v, false, ok, nil
	case typeinfo.KindURL:
		v, ok := scope.ValueForKey(ctx, key, config.ReprURL)
		return v, false, ok, nil
	case typeinfo.KindList:
		return c.resolveList(ctx, scope, key, path, elemType)
	case typeinfo.KindMap:
		return c.resolveMap(ctx, scope, key, path, elemType)
	}

	v, ok := scope.ValueForKey(ctx, key, config.ReprDefault)
	if !ok {
		return nil, false, false, nil
	}
	sub := c.nested(ctx, scope, v)
	if sub == nil || sub.IsList() {
		return unwrap(v), false, true, nil
	}
	if kind == typeinfo.KindAny {
		if _, hinted := TypeHint(sub); !hinted {
			return sub.Data(), false, true, nil
		}
	}
	obj, err := c.build(ctx, sub, path, typ)
	if err != nil {
		return nil, false, false, err
	}
	return obj, obj != nil, obj != nil, nil
}

func (c *Configurer) resolveList(ctx context.Context, scope *config.Configuration, key, path string, elemType reflect.Type) (any, bool, bool, error) {
	list := scope.GetConfiguration(ctx, key)
	if list == nil || !list.IsList() {
		// A single value stands for a one-element list.
		v, built, ok, err := c.resolve(ctx, scope, key, path, elemType, typeinfo.KindOf(elemType), nil, false)
		if err != nil || !ok {
			return nil, false, false, err
		}
		return []any{v}, built, true, nil
	}

	elemKind := typeinfo.KindOf(elemType)
	var elemElem reflect.Type
	if elemKind == typeinfo.KindList || elemKind == typeinfo.KindMap {
		elemElem = elemType.Elem()
	}
	out := make([]any, 0, list.Len())
	anyBuilt := false
	for i := 0; i < list.Len(); i++ {
		v, built, ok, err := c.resolve(ctx, list, strconv.Itoa(i), keypath.JoinIndex(path, i), elemType, elemKind, elemElem, false)
		if err != nil {
			return nil, false, false, err
		}
		if !ok {
			continue
		}
		anyBuilt = anyBuilt || built
		out = append(out, v)
	}
	return out, anyBuilt, true, nil
}

func (c *Configurer) resolveMap(ctx context.Context, scope *config.Configuration, key, path string, elemType reflect.Type) (any, bool, bool, error) {
	m := scope.GetConfiguration(ctx, key)
	if m == nil || m.IsList() {
		return nil, false, false, nil
	}

	elemKind := typeinfo.KindOf(elemType)
	var elemElem reflect.Type
	if elemKind == typeinfo.KindList || elemKind == typeinfo.KindMap {
		elemElem = elemType.Elem()
	}
	out := make(map[string]any, m.Len())
	anyBuilt := false
	for _, k := range m.Keys() {
		v, built, ok, err := c.resolve(ctx, m, k, keypath.Join(path, k), elemType, elemKind, elemElem, false)
		if err != nil {
			return nil, false, false, err
		}
		if !ok {
			continue
		}
		anyBuilt = anyBuilt || built
		out[k] = v
	}
	return out, anyBuilt, true, nil
}

// nested returns v as configuration when it describes a nested object.
func (c *Configurer) nested(ctx context.Context, scope *config.Configuration, v any) *config.Configuration {
	switch t := v.(type) {
	case map[string]any, []any, *config.Configuration:
		return scope.AsConfiguration(ctx, t)
	case *uri.Resource:
		if t.IsStructured() {
			return scope.AsConfiguration(ctx, t)
		}
	}
	return nil
}

// build asks the factory for the object described by sub. Resolution
// failures are logged and make the value absent; structural failures abort.
func (c *Configurer) build(ctx context.Context, sub *config.Configuration, path string, hint reflect.Type) (any, error) {
	if c.factory == nil {
		return sub.Data(), nil
	}
	obj, err := c.factory.BuildObject(ctx, sub, path, hint)
	if err != nil {
		if errs.IsStructural(err) {
			return nil, err
		}
		ctxlog.FromContext(ctx).Error("Nested object failed to build, value is absent.", "key_path", path, "error", err)
		return nil, nil
	}
	return obj, nil
}

// unwrap returns the content of scalar resources.
func unwrap(v any) any {
	if res, ok := v.(*uri.Resource); ok {
		return res.Data
	}
	return v
}
