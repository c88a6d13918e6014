package config

import (
	"context"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

func asMap(data any) map[string]any {
	if m, ok := data.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Mixin returns a shallow top-level merge in which other's keys take
// precedence. The receiver's root, context and resolver are kept.
func (c *Configuration) Mixin(other *Configuration) *Configuration {
	if other == nil {
		return c
	}
	base, overlay := asMap(c.data), asMap(other.data)
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return c.derive(merged)
}

// Mixover returns a shallow top-level merge in which the receiver's keys take
// precedence. The receiver's root, context and resolver are kept.
func (c *Configuration) Mixover(other *Configuration) *Configuration {
	if other == nil {
		return c
	}
	base, overlay := asMap(other.data), asMap(c.data)
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return c.derive(merged)
}

// WithKeysExcluded returns a copy without the given top-level keys.
func (c *Configuration) WithKeysExcluded(keys ...string) *Configuration {
	m, ok := c.data.(map[string]any)
	if !ok {
		return c
	}
	skip := make(map[string]bool, len(keys))
	for _, k := range keys {
		skip[k] = true
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if !skip[k] {
			out[k] = v
		}
	}
	return c.derive(out)
}

// ExtendWithParameters returns a copy whose data context has every entry of
// params added under a `$`-prefixed name, shadowing existing entries.
func (c *Configuration) ExtendWithParameters(params map[string]any) *Configuration {
	if len(params) == 0 {
		return c
	}
	extended := make(map[string]any, len(params))
	for k, v := range params {
		extended["$"+k] = v
	}
	return c.WithDataContext(extended)
}

// WithDataContext returns a copy with values added to the data context.
func (c *Configuration) WithDataContext(values map[string]any) *Configuration {
	out := c.derive(c.data)
	out.dataContext = c.DataContext()
	for k, v := range values {
		out.dataContext[k] = v
	}
	return out
}

// WithURIHandler returns a copy resolving URIs through h.
func (c *Configuration) WithURIHandler(h *uri.Handler) *Configuration {
	out := c.derive(c.data)
	out.uriHandler = h
	return out
}

// Flatten resolves `-config` and `-mixin` splices. Each referenced value (a
// single value or a list) is resolved to a configuration, flattened itself,
// and mixed into the current level; the splice keys are removed.
func (c *Configuration) Flatten(ctx context.Context) *Configuration {
	return c.flatten(ctx, map[string]bool{})
}

func (c *Configuration) flatten(ctx context.Context, visited map[string]bool) *Configuration {
	m, ok := c.data.(map[string]any)
	if !ok {
		return c
	}
	var splices []any
	for _, key := range []string{KeyConfig, KeyMixin} {
		v, ok := m[key]
		if !ok {
			continue
		}
		if list, isList := v.([]any); isList {
			splices = append(splices, list...)
		} else {
			splices = append(splices, v)
		}
	}
	if len(splices) == 0 {
		return c
	}

	logger := ctxlog.FromContext(ctx)
	result := c.WithKeysExcluded(KeyConfig, KeyMixin)
	for _, splice := range splices {
		resolved, ok := c.resolve(ctx, splice)
		if !ok {
			logger.Warn("Configuration splice could not be resolved.", "splice", splice)
			continue
		}
		fragment := c.AsConfiguration(ctx, resolved)
		if fragment == nil {
			logger.Warn("Configuration splice is not configuration.", "splice", splice)
			continue
		}
		if fragment.id != "" {
			if visited[fragment.id] {
				logger.Debug("Configuration splice already applied, skipping.", "source", fragment.id)
				continue
			}
			visited[fragment.id] = true
		}
		result = result.Mixin(fragment.flatten(ctx, visited))
	}
	return result
}

// Normalize flattens the configuration and then walks its `-extends` chain to
// the root ancestor. Children win over parents. A chain that revisits a
// source already seen ends there without error.
func (c *Configuration) Normalize(ctx context.Context) *Configuration {
	visited := map[string]bool{}
	if c.id != "" {
		visited[c.id] = true
	}
	return c.normalize(ctx, visited)
}

func (c *Configuration) normalize(ctx context.Context, visited map[string]bool) *Configuration {
	flat := c.Flatten(ctx)
	m, ok := flat.data.(map[string]any)
	if !ok {
		return flat
	}
	ext, ok := m[KeyExtends]
	if !ok {
		return flat
	}

	logger := ctxlog.FromContext(ctx)
	own := flat.WithKeysExcluded(KeyExtends)
	resolved, ok := c.resolve(ctx, ext)
	if !ok {
		logger.Warn("Inherited configuration could not be resolved.", "extends", ext)
		return own
	}
	parent := c.AsConfiguration(ctx, resolved)
	if parent == nil {
		logger.Warn("Inherited value is not configuration.", "extends", ext)
		return own
	}
	if parent.id != "" {
		if visited[parent.id] {
			logger.Debug("Inheritance cycle detected, chain ends here.", "source", parent.id)
			return own
		}
		visited[parent.id] = true
	}
	return own.Mixover(parent.normalize(ctx, visited))
}
