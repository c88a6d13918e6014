package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/go-multierror"

	"github.com/specialistvlad/wiregrid/internal/config"
	"github.com/specialistvlad/wiregrid/internal/configurer"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/registry"
	"github.com/specialistvlad/wiregrid/internal/typeinfo"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

type frameKey struct{}

// frame is the build in progress on the current call path.
type frame struct {
	slot  *slot
	depth int
	// dependent is the nearest named object being built.
	dependent string
}

func frameFrom(ctx context.Context) frame {
	f, _ := ctx.Value(frameKey{}).(frame)
	return f
}

// ConfigureWith configures the container from cfg and builds every named
// object it declares: first the priority names, in order, then the other
// top-level keys in sorted order. Objects that fail are logged and skipped;
// structural failures are collected and returned.
func (c *Container) ConfigureWith(ctx context.Context, cfg *config.Configuration) error {
	logger := ctxlog.FromContext(ctx).With("container", c.id)
	logger.Debug("Configure: binding container configuration.")

	c.handler = c.bindSchemes(cfg.URIHandler())
	c.cfg = cfg.WithURIHandler(c.handler).Normalize(ctx)

	if types := c.cfg.GetConfiguration(ctx, KeyTypes); types != nil {
		for _, name := range types.Keys() {
			if class, ok := types.GetString(ctx, name); ok {
				c.typeMap[name] = class
			}
		}
	}
	if patterns := c.cfg.GetConfiguration(ctx, KeyPatterns); patterns != nil {
		c.patterns = patterns
	}
	for _, name := range c.configuredPriority(ctx) {
		if !slices.Contains(c.priority, name) {
			c.priority = append(c.priority, name)
		}
	}

	var result *multierror.Error
	record := func(err error) {
		if result != nil && slices.ContainsFunc(result.Errors, func(prev error) bool { return errors.Is(prev, err) }) {
			return
		}
		result = multierror.Append(result, err)
	}
	// Structural errors hit while resolving property values leave the
	// property absent; they still fail the configuration.
	ctx = config.WithErrorSink(ctx, record)

	for _, name := range c.buildOrder() {
		if _, err := c.BuildNamedObject(ctx, name); err != nil {
			if errs.IsStructural(err) {
				record(err)
				continue
			}
			logger.Error("Named object failed to build.", "name", name, "error", err)
		}
	}

	// A nested container cannot judge placeholders owned by its ancestors'
	// builds; the outermost ConfigureWith does.
	if frameFrom(ctx).slot == nil {
		for _, s := range c.arena.unresolved() {
			err := errs.WrapStructural(
				fmt.Errorf("%w: %d injection(s) wait on %q", errs.ErrUnresolvedPlaceholder, len(s.waiters), s.key),
				"container", s.key, "resolve placeholders")
			record(err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("container configuration failed: %w", err)
	}
	logger.Info("Container configured.", "named_objects", len(c.Names()))
	return nil
}

// ConfigureWithData configures the container from a raw tree.
func (c *Container) ConfigureWithData(ctx context.Context, data map[string]any) error {
	return c.ConfigureWith(ctx, config.New(data, c.base))
}

func (c *Container) configuredPriority(ctx context.Context) []string {
	raw, ok := c.cfg.Value(ctx, KeyPriority)
	if !ok {
		return nil
	}
	var names []string
	switch t := raw.(type) {
	case string:
		names = append(names, t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
	}
	return names
}

func (c *Container) buildOrder() []string {
	seen := make(map[string]bool)
	var order []string
	for _, name := range c.priority {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, key := range c.cfg.Keys() {
		if strings.HasPrefix(key, "-") || seen[key] {
			continue
		}
		seen[key] = true
		order = append(order, key)
	}
	return order
}

// GetNamed returns the named object, building it from this container's
// configuration if needed, or asks the parent container when the name is not
// defined here. An object that cannot be completed is an
// ErrUnresolvedPlaceholder error.
func (c *Container) GetNamed(ctx context.Context, name string) (any, error) {
	obj, err := c.getNamed(ctx, name)
	if err != nil {
		return nil, err
	}
	if p, ok := obj.(configurer.Placeholder); ok {
		return nil, errs.WrapStructural(fmt.Errorf("%w: %s", errs.ErrUnresolvedPlaceholder, p), "container", name, "lookup")
	}
	return obj, nil
}

// getNamed is GetNamed for references made during a build, where objects
// under construction are returned as placeholders.
func (c *Container) getNamed(ctx context.Context, name string) (any, error) {
	if obj, ok := c.local(name); ok {
		return obj, nil
	}
	if _, ok := c.building[name]; ok || c.cfg.Has(name) {
		return c.BuildNamedObject(ctx, name)
	}
	if _, ok := c.failed[name]; ok {
		return c.BuildNamedObject(ctx, name)
	}
	if c.parent != nil {
		return c.parent.getNamed(ctx, name)
	}
	return nil, errs.WrapResolution(fmt.Errorf("%w: named object %q", errs.ErrNotFound, name), "container", name, "lookup")
}

func (c *Container) local(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.named[name]
	return obj, ok
}

// BuildNamedObject builds the object configured under name in this
// container. A request for an object already under construction returns a
// Placeholder for it.
func (c *Container) BuildNamedObject(ctx context.Context, name string) (any, error) {
	logger := ctxlog.FromContext(ctx).With("name", name)

	if obj, ok := c.local(name); ok {
		return obj, nil
	}
	if err, ok := c.failed[name]; ok {
		return nil, err
	}
	if s, ok := c.building[name]; ok {
		logger.Debug("Build: circular reference, returning placeholder.", "slot", s.id)
		return configurer.Placeholder{Slot: s.id, Name: name}, nil
	}

	if !c.cfg.Has(name) {
		return nil, errs.WrapResolution(fmt.Errorf("%w: named object %q", errs.ErrNotFound, name), "container", name, "build")
	}

	logger.Debug("Build: named object requested.")
	started := time.Now()
	s := c.arena.add(name, true, c)
	c.building[name] = s

	// The name is pending while its value resolves: references back to it
	// get a placeholder.
	f := frameFrom(ctx)
	valueCtx := context.WithValue(ctx, frameKey{}, frame{slot: f.slot, depth: f.depth, dependent: name})
	raw, ok := c.cfg.ValueForKey(valueCtx, name, config.ReprDefault)
	if !ok {
		err := c.fail(ctx, s, errs.WrapConfiguration(fmt.Errorf("value of %q is absent", name), "container", name, "resolve"))
		c.metrics.ObserveBuild("named", started, err)
		return nil, err
	}
	obj, err := c.buildValue(ctx, raw, name, nil, s)
	c.metrics.ObserveBuild("named", started, err)
	return obj, err
}

// buildValue builds raw into the object for s. Values that are not object
// configuration are taken as they are.
func (c *Container) buildValue(ctx context.Context, raw any, keyPath string, hint reflect.Type, s *slot) (any, error) {
	if len(placeholderSlots(raw)) > 0 {
		return c.bindPending(ctx, s, raw)
	}
	sub := c.objectConfig(ctx, raw)
	if sub == nil {
		s.instance = raw
		s.configured = true
		c.finalize(ctx, s, raw)
		c.complete(ctx, s)
		return raw, nil
	}
	return c.construct(ctx, sub, keyPath, hint, s)
}

// bindPending publishes s once the objects raw refers to are final. raw
// holds placeholders: s names, or contains, objects still being built. A
// value that can only complete through itself is a circular reference.
func (c *Container) bindPending(ctx context.Context, s *slot, raw any) (any, error) {
	var targets []*slot
	for _, id := range placeholderSlots(raw) {
		t, ok := c.arena.get(id)
		if !ok || t.final || t.state == Failed || slices.Contains(targets, t) {
			continue
		}
		if t == s || bindsTo(t, s, map[int]bool{}) {
			err := errs.WrapStructural(
				fmt.Errorf("%w: %q refers back to itself through %q", errs.ErrCircularReference, s.key, t.key),
				"container", s.key, "bind")
			return nil, c.fail(ctx, s, err)
		}
		targets = append(targets, t)
	}

	w := &deferral{
		keyPath: s.key,
		value:   raw,
		waiting: make(map[int]bool),
		apply: func(v any) error {
			if s.state == Failed {
				return nil
			}
			s.binding = nil
			s.instance, s.configured = v, true
			c.finalize(ctx, s, v)
			c.complete(ctx, s)
			return nil
		},
		drop: func(ctx context.Context) {
			if s.state != Failed {
				c.fail(ctx, s, errs.WrapResolution(fmt.Errorf("%w: an object %q refers to failed", errs.ErrNotFound, s.key), "container", s.key, "bind"))
			}
		},
	}
	if len(targets) == 0 {
		c.applyDeferral(ctx, w)
		return s.object, nil
	}
	for _, t := range targets {
		w.waiting[t.id] = true
		t.waiters = append(t.waiters, w)
	}
	s.binding = w
	c.arena.setState(s, AwaitingCycleResolution)
	c.metrics.IncDeferred()
	ctxlog.FromContext(ctx).Debug("Build: value waits on objects under construction.", "key_path", s.key, "waiting", len(targets))
	return configurer.Placeholder{Slot: s.id, Name: s.key}, nil
}

// bindsTo reports whether t, through pending bindings, waits on s.
func bindsTo(t, s *slot, seen map[int]bool) bool {
	if t.binding == nil || seen[t.id] {
		return false
	}
	seen[t.id] = true
	for id := range t.binding.waiting {
		if id == s.id {
			return true
		}
		if next, ok := t.owner.arena.get(id); ok && bindsTo(next, s, seen) {
			return true
		}
	}
	return false
}

// objectConfig returns raw as a mapping configuration, or nil.
func (c *Container) objectConfig(ctx context.Context, raw any) *config.Configuration {
	switch t := raw.(type) {
	case map[string]any, *config.Configuration:
	case *uri.Resource:
		if !t.IsStructured() {
			return nil
		}
	default:
		return nil
	}
	sub := c.cfg.AsConfiguration(ctx, raw)
	if sub == nil || sub.IsList() {
		return nil
	}
	return sub
}

// construct runs the build state machine for s.
func (c *Container) construct(ctx context.Context, cfg *config.Configuration, keyPath string, hint reflect.Type, s *slot) (any, error) {
	f := frameFrom(ctx)
	if f.depth >= MaxBuildDepth {
		err := errs.WrapStructural(fmt.Errorf("%w: more than %d nested builds", errs.ErrBuildDepth, MaxBuildDepth), "container", keyPath, "build")
		return nil, c.fail(ctx, s, err)
	}
	next := frame{slot: s, depth: f.depth + 1, dependent: f.dependent}
	if s.named {
		next.dependent = s.key
	}
	ctx = context.WithValue(ctx, frameKey{}, next)
	logger := ctxlog.FromContext(ctx).With("key_path", keyPath, "slot", s.id)

	c.arena.setState(s, Instantiating)
	instance, rest, proxied, err := c.instantiate(ctx, cfg, keyPath, hint)
	if err != nil {
		return nil, c.fail(ctx, s, err)
	}
	if instance == nil {
		if !s.named {
			err := errs.WrapResolution(fmt.Errorf("%w: nothing names the type to build", errs.ErrMissingTypeHint), "container", keyPath, "instantiate")
			return nil, c.fail(ctx, s, err)
		}
		// A named mapping without a type is published as configuration.
		logger.Debug("Build: untyped named mapping kept as configuration.")
		s.instance = rest
		s.configured = true
		c.finalize(ctx, s, rest)
		c.complete(ctx, s)
		return rest, nil
	}
	logger.Debug("Build: instantiated.", "type", fmt.Sprintf("%T", instance), "proxy", proxied)

	s.instance, s.proxy, s.cfg = instance, proxied, rest
	if aware, ok := instance.(ContainerAware); ok {
		aware.SetContainer(c)
	}
	if aware, ok := instance.(ConfigurationAware); ok {
		aware.BeforeConfiguration(ctx, rest)
	}

	c.arena.setState(s, ConfiguringProperties)
	if err := c.conf.Configure(ctx, instance, rest, keyPath); err != nil {
		return nil, c.fail(ctx, s, err)
	}
	s.configured = true
	if !s.proxy {
		c.finalize(ctx, s, instance)
	}
	c.complete(ctx, s)

	switch {
	case s.state == Failed:
		return nil, c.failure(s)
	case s.final:
		return s.object, nil
	}
	c.arena.setState(s, AwaitingCycleResolution)
	logger.Debug("Build: awaiting cycle resolution.", "pending", s.pending)
	return configurer.Placeholder{Slot: s.id, Name: s.key}, nil
}

// instantiate creates the instance described by cfg and returns it with the
// configuration left to inject. A nil instance means cfg names no type and
// hint gives none either.
func (c *Container) instantiate(ctx context.Context, cfg *config.Configuration, keyPath string, hint reflect.Type) (any, *config.Configuration, bool, error) {
	for i := 0; i < MaxBuildDepth; i++ {
		cfg = cfg.Normalize(ctx)
		raw, hinted := configurer.TypeHint(cfg)
		rest := cfg.WithKeysExcluded(configurer.KeyType, configurer.KeyAltType)

		if !hinted {
			instance, proxied, err := c.instantiateHint(ctx, hint, keyPath)
			return instance, rest, proxied, err
		}

		switch t := raw.(type) {
		case map[string]any:
			// An inline pattern.
			cfg = rest.AsConfiguration(ctx, t).Mixin(rest)
			continue
		case string:
			if scheme, ok := uri.SchemeOf(t); ok && cfg.URIHandler().HasHandlerForScheme(scheme) {
				next, obj, err := c.expandTypeURI(ctx, cfg, rest, t)
				if err != nil {
					return nil, nil, false, errs.WrapResolution(err, "container", keyPath, "expand type hint")
				}
				if next == nil {
					return obj, rest, false, nil
				}
				cfg = next
				continue
			}
			instance, proxied, err := c.instantiateClass(ctx, c.resolveType(t), keyPath)
			return instance, rest, proxied, err
		default:
			return nil, nil, false, errs.WrapConfiguration(fmt.Errorf("type hint must be a string, got %T", raw), "container", keyPath, "instantiate")
		}
	}
	return nil, nil, false, errs.WrapStructural(fmt.Errorf("%w: type hint chain longer than %d", errs.ErrBuildDepth, MaxBuildDepth), "container", keyPath, "instantiate")
}

// expandTypeURI interprets a URI type hint. A `make:` hint, or any URI that
// resolves to configuration, is a pattern the object's own keys are laid
// over; a URI resolving to anything else is the instance itself.
func (c *Container) expandTypeURI(ctx context.Context, cfg, rest *config.Configuration, ref string) (*config.Configuration, any, error) {
	u, err := uri.Parse(ref)
	if err != nil {
		return nil, nil, err
	}
	if u.Scheme == SchemeMake {
		params, err := cfg.URIHandler().DereferenceParameters(ctx, u)
		if err != nil {
			return nil, nil, err
		}
		pattern, params, err := c.patternFor(ctx, u, params)
		if err != nil {
			return nil, nil, err
		}
		return pattern.ExtendWithParameters(params).Mixin(rest), nil, nil
	}

	v, err := cfg.URIHandler().Dereference(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	if pattern := c.objectConfig(ctx, v); pattern != nil {
		return pattern.Mixin(rest), nil, nil
	}
	return nil, v, nil
}

// instantiateHint instantiates the static type expected by a property.
func (c *Container) instantiateHint(ctx context.Context, hint reflect.Type, keyPath string) (any, bool, error) {
	if hint == nil || typeinfo.KindOf(hint) != typeinfo.KindObject {
		return nil, false, nil
	}
	if class, ok := c.registry.ClassForType(hint); ok {
		return c.instantiateClass(ctx, class, keyPath)
	}
	switch {
	case hint.Kind() == reflect.Pointer && hint.Elem().Kind() == reflect.Struct:
		return reflect.New(hint.Elem()).Interface(), false, nil
	case hint.Kind() == reflect.Struct:
		return reflect.New(hint).Interface(), false, nil
	}
	return nil, false, errs.WrapResolution(
		fmt.Errorf("%w: %s cannot be instantiated without a type name", errs.ErrNotInstantiable, hint),
		"container", keyPath, "instantiate")
}

// instantiateClass creates an instance of class, or of its proxy.
func (c *Container) instantiateClass(ctx context.Context, class, keyPath string) (any, bool, error) {
	cls, ok := c.registry.Class(class)
	if !ok {
		return nil, false, errs.WrapResolution(
			fmt.Errorf("%w: %q%s", errs.ErrUnknownType, class, c.suggestClass(class)),
			"container", keyPath, "instantiate")
	}
	if ctor := c.registry.ProxyFor(class); ctor != nil {
		proxy := ctor()
		if _, ok := proxy.(registry.Proxy); !ok {
			return nil, false, errs.WrapConfiguration(fmt.Errorf("proxy %T for class %q does not implement Unwrap", proxy, class), "container", keyPath, "instantiate")
		}
		if aware, ok := proxy.(registry.TargetAware); ok {
			aware.SetTarget(cls.Instantiate())
		}
		ctxlog.FromContext(ctx).Debug("Build: substituting configuration proxy.", "class", class)
		return proxy, true, nil
	}
	return cls.Instantiate(), false, nil
}

func (c *Container) suggestClass(name string) string {
	best, bestDist := "", 3
	for _, candidate := range c.registry.ClassNames() {
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

// patternFor returns the pattern a `make:` URI names, and the parameters
// that become its context. An empty name takes the pattern inline from the
// `config` parameter.
func (c *Container) patternFor(ctx context.Context, u *uri.CompoundURI, params map[string]any) (*config.Configuration, map[string]any, error) {
	if u.Name == "" {
		inline, ok := params["config"]
		if !ok {
			return nil, nil, fmt.Errorf("%w: make: without a pattern name needs a config parameter", errs.ErrNotFound)
		}
		pattern := c.cfg.AsConfiguration(ctx, inline)
		if pattern == nil {
			return nil, nil, fmt.Errorf("%w: make: config parameter is %T", errs.ErrNotConfiguration, inline)
		}
		rest := make(map[string]any, len(params))
		for k, v := range params {
			if k != "config" {
				rest[k] = v
			}
		}
		return pattern, rest, nil
	}
	pattern := c.pattern(ctx, u.Name)
	if pattern == nil {
		return nil, nil, fmt.Errorf("%w: pattern %q", errs.ErrNotFound, u.Name)
	}
	return pattern, params, nil
}

// BuildObject builds an unnamed object from cfg.
func (c *Container) BuildObject(ctx context.Context, cfg *config.Configuration, keyPath string) (any, error) {
	return c.buildNested(ctx, cfg, keyPath, nil)
}

// BuildObjectWithData builds an unnamed object from a raw mapping. The data
// resolves `#` references against the container's configuration.
func (c *Container) BuildObjectWithData(ctx context.Context, data map[string]any, keyPath string) (any, error) {
	return c.buildNested(ctx, c.cfg.AsConfiguration(ctx, data), keyPath, nil)
}

func (c *Container) buildNested(ctx context.Context, cfg *config.Configuration, keyPath string, hint reflect.Type) (any, error) {
	started := time.Now()
	s := c.arena.add(keyPath, false, c)
	obj, err := c.construct(ctx, cfg, keyPath, hint, s)
	c.metrics.ObserveBuild("nested", started, err)
	return obj, err
}

// finalize publishes the final object of s and completes the injections
// that were waiting for it.
func (c *Container) finalize(ctx context.Context, s *slot, obj any) {
	s.object, s.final = obj, true
	if s.named {
		s.owner.setNamed(s.key, obj)
		delete(s.owner.building, s.key)
	}
	waiters := s.waiters
	s.waiters = nil
	for _, w := range waiters {
		delete(w.waiting, s.id)
		if len(w.waiting) == 0 {
			c.applyDeferral(ctx, w)
		}
	}
}

// complete runs AfterConfiguration once s is configured and holds no
// placeholder, unwraps proxies and records lifecycle participants.
func (c *Container) complete(ctx context.Context, s *slot) {
	if !s.configured || s.pending > 0 || s.afterDone || s.state == Failed {
		return
	}
	s.afterDone = true
	logger := ctxlog.FromContext(ctx).With("key_path", s.key, "slot", s.id)

	if aware, ok := s.instance.(ConfigurationAware); ok {
		if err := aware.AfterConfiguration(ctx); err != nil {
			c.fail(ctx, s, errs.WrapConfiguration(err, "container", s.key, "after configuration"))
			return
		}
	}
	if s.proxy {
		target, err := s.instance.(registry.Proxy).Unwrap()
		if err != nil {
			c.fail(ctx, s, errs.WrapConfiguration(err, "container", s.key, "unwrap proxy"))
			return
		}
		logger.Debug("Build: proxy unwrapped.", "type", fmt.Sprintf("%T", target))
		c.finalize(ctx, s, target)
	}
	c.arena.setState(s, Configured)
	s.owner.track(s)
	logger.Debug("Build: configured.")
}

func (c *Container) track(s *slot) {
	if s.object == any(c) {
		return
	}
	switch s.object.(type) {
	case Service, Stopper:
		c.mu.Lock()
		c.lifecycle = append(c.lifecycle, s)
		c.mu.Unlock()
	}
}

// fail marks s failed. Injections waiting for it are dropped, leaving their
// properties unset.
func (c *Container) fail(ctx context.Context, s *slot, err error) error {
	c.arena.setState(s, Failed)
	if s.named {
		s.owner.mu.Lock()
		s.owner.failed[s.key] = err
		s.owner.mu.Unlock()
		delete(s.owner.building, s.key)
	}
	if w := s.binding; w != nil {
		s.binding = nil
		for id := range w.waiting {
			if t, ok := c.arena.get(id); ok {
				t.waiters = removeDeferral(t.waiters, w)
			}
		}
	}
	ctxlog.FromContext(ctx).Debug("Build: failed.", "key_path", s.key, "error", err)

	waiters := s.waiters
	s.waiters = nil
	for _, w := range waiters {
		c.dropDeferral(ctx, w)
	}
	return err
}

func (c *Container) failure(s *slot) error {
	if err, ok := s.owner.failed[s.key]; ok && s.named {
		return err
	}
	return errs.WrapConfiguration(fmt.Errorf("object failed after configuration"), "container", s.key, "build")
}

// Defer registers an injection waiting for the placeholders inside value.
func (c *Container) Defer(ctx context.Context, owner any, keyPath string, value any, apply func(any) error) {
	w := &deferral{
		owner:   frameFrom(ctx).slot,
		keyPath: keyPath,
		value:   value,
		apply:   apply,
		waiting: make(map[int]bool),
	}
	for _, id := range placeholderSlots(value) {
		t, ok := c.arena.get(id)
		if !ok || t.final || t.state == Failed {
			continue
		}
		if !w.waiting[id] {
			w.waiting[id] = true
			t.waiters = append(t.waiters, w)
		}
	}
	if len(w.waiting) == 0 {
		c.applyDeferral(ctx, w)
		return
	}
	if w.owner != nil {
		w.owner.pending++
		w.counted = true
	}
	c.metrics.IncDeferred()
	ctxlog.FromContext(ctx).Debug("Build: injection deferred.", "key_path", keyPath, "waiting", len(w.waiting), "owner", fmt.Sprintf("%T", owner))
}

func (c *Container) applyDeferral(ctx context.Context, w *deferral) {
	resolved, _ := configurer.ReplacePlaceholders(w.value, func(p configurer.Placeholder) (any, bool) {
		t, ok := c.arena.get(p.Slot)
		if !ok || !t.final {
			return nil, true
		}
		return t.object, true
	})
	if err := w.apply(resolved); err != nil {
		ctxlog.FromContext(ctx).Warn("Deferred injection failed.", "key_path", w.keyPath, "error", err)
	}
	c.release(ctx, w)
}

func (c *Container) dropDeferral(ctx context.Context, w *deferral) {
	for id := range w.waiting {
		if t, ok := c.arena.get(id); ok {
			t.waiters = removeDeferral(t.waiters, w)
		}
	}
	w.waiting = nil
	ctxlog.FromContext(ctx).Warn("Referenced object failed, property left unset.", "key_path", w.keyPath)
	c.release(ctx, w)
	if w.drop != nil {
		w.drop(ctx)
	}
}

func (c *Container) release(ctx context.Context, w *deferral) {
	if w.owner == nil || !w.counted {
		return
	}
	w.counted = false
	w.owner.pending--
	w.owner.owner.complete(ctx, w.owner)
}

func removeDeferral(ws []*deferral, w *deferral) []*deferral {
	out := ws[:0]
	for _, x := range ws {
		if x != w {
			out = append(out, x)
		}
	}
	return out
}

// placeholderSlots returns the slot ids referenced inside v.
func placeholderSlots(v any) []int {
	var ids []int
	configurer.ReplacePlaceholders(v, func(p configurer.Placeholder) (any, bool) {
		ids = append(ids, p.Slot)
		return nil, true
	})
	return ids
}

// factory lets the configurer build nested objects through the container.
type factory struct {
	c *Container
}

func (f *factory) BuildObject(ctx context.Context, cfg *config.Configuration, keyPath string, hint reflect.Type) (any, error) {
	return f.c.buildNested(ctx, cfg, keyPath, hint)
}

func (f *factory) Defer(ctx context.Context, owner any, keyPath string, value any, apply func(any) error) {
	f.c.Defer(ctx, owner, keyPath, value, apply)
}

var _ configurer.ObjectFactory = (*factory)(nil)

// slotLabel formats a slot for diagnostics.
func slotLabel(s *slot) string {
	return s.key + "/" + strconv.Itoa(s.id)
}
