// Package typeinfo describes the configurable properties of Go types.
//
// A type's schema is derived once from its exported struct fields and cached.
// Field names map to configuration keys in lower camel case unless an `ioc`
// struct tag overrides them:
//
//	type Server struct {
//		Addr    string            `ioc:"address"`
//		Options map[string]any    `ioc:"options,raw"`
//		Logger  *slog.Logger      `ioc:"-"`
//	}
//
// The `raw` option marks structured values that are passed through as data
// instead of being built into objects.
package typeinfo
