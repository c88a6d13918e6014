package configurer

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/wiregrid/internal/config"
)

// Type hint keys naming the type or pattern of a nested object.
const (
	KeyType    = "-type"
	KeyAltType = "&type"
)

// Placeholder stands in for an object that is still being built. It is an
// index into the builder's slot arena.
type Placeholder struct {
	Slot int
	Name string
}

func (p Placeholder) String() string {
	return fmt.Sprintf("placeholder(%d:%s)", p.Slot, p.Name)
}

// ObjectFactory builds nested objects and completes deferred injections.
type ObjectFactory interface {
	// BuildObject builds the object described by cfg. hint is the static
	// type expected by the receiving property, used when cfg has no type
	// hint of its own.
	BuildObject(ctx context.Context, cfg *config.Configuration, keyPath string, hint reflect.Type) (any, error)
	// Defer registers an injection into owner that must wait until every
	// placeholder inside value resolves. apply receives value with the
	// placeholders replaced.
	Defer(ctx context.Context, owner any, keyPath string, value any, apply func(resolved any) error)
}

// Configurable objects configure themselves from the raw configuration.
type Configurable interface {
	ConfigureWith(ctx context.Context, cfg *config.Configuration) error
}

// ObjectAware objects are told when an object-valued property was injected.
type ObjectAware interface {
	ObjectAdded(ctx context.Context, property string, value any)
}

// TypeHint returns the raw type hint of cfg, if any.
func TypeHint(cfg *config.Configuration) (any, bool) {
	if cfg == nil {
		return nil, false
	}
	for _, key := range []string{KeyType, KeyAltType} {
		if v, ok := cfg.Raw(key); ok {
			return v, true
		}
	}
	return nil, false
}

// ContainsPlaceholder reports whether v is or holds a Placeholder.
func ContainsPlaceholder(v any) bool {
	switch t := v.(type) {
	case Placeholder:
		return true
	case []any:
		for _, item := range t {
			if ContainsPlaceholder(item) {
				return true
			}
		}
	case map[string]any:
		for _, item := range t {
			if ContainsPlaceholder(item) {
				return true
			}
		}
	}
	return false
}

// ReplacePlaceholders returns v with every Placeholder swapped for the result
// of lookup. Collections are copied, never modified.
func ReplacePlaceholders(v any, lookup func(Placeholder) (any, bool)) (any, bool) {
	switch t := v.(type) {
	case Placeholder:
		return lookup(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			r, ok := ReplacePlaceholders(item, lookup)
			if !ok {
				return nil, false
			}
			out[i] = r
		}
		return out, true
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			r, ok := ReplacePlaceholders(item, lookup)
			if !ok {
				return nil, false
			}
			out[k] = r
		}
		return out, true
	}
	return v, true
}
