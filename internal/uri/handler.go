package uri

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"github.com/agext/levenshtein"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
)

// SchemeHandler dereferences URIs of one scheme. params holds the fully
// resolved parameter values keyed by parameter name.
type SchemeHandler interface {
	Dereference(ctx context.Context, u *CompoundURI, params map[string]any) (any, error)
}

// SchemeHandlerFunc adapts a function to the SchemeHandler interface.
type SchemeHandlerFunc func(ctx context.Context, u *CompoundURI, params map[string]any) (any, error)

// Dereference calls f.
func (f SchemeHandlerFunc) Dereference(ctx context.Context, u *CompoundURI, params map[string]any) (any, error) {
	return f(ctx, u, params)
}

// RelativeResolver is implemented by scheme handlers supporting relative
// names. Resolve returns the absolute form of u given the reference URI the
// current subtree was read from.
type RelativeResolver interface {
	Resolve(u *CompoundURI, reference *CompoundURI) *CompoundURI
}

// FragmentHandler is implemented by scheme handlers that interpret the
// fragment themselves. The Handler then skips fragment selection.
type FragmentHandler interface {
	HandlesFragment() bool
}

// ContextAware values learn the URI they were dereferenced from and the
// handler that produced them.
type ContextAware interface {
	SetURIContext(u *CompoundURI, h *Handler)
}

// Observer is notified after every dereference attempt.
type Observer func(scheme string, err error)

// Handler dispatches compound URIs to registered scheme handlers.
type Handler struct {
	schemes  map[string]SchemeHandler
	contexts map[string]*CompoundURI
	observer Observer
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{
		schemes:  make(map[string]SchemeHandler),
		contexts: make(map[string]*CompoundURI),
	}
}

func (h *Handler) clone() *Handler {
	return &Handler{
		schemes:  maps.Clone(h.schemes),
		contexts: maps.Clone(h.contexts),
		observer: h.observer,
	}
}

// AddHandler registers a scheme handler in place. It is meant for setup
// before the handler is shared; use ReplaceScheme to derive handlers later.
func (h *Handler) AddHandler(scheme string, sh SchemeHandler) {
	h.schemes[scheme] = sh
}

// HasHandlerForScheme reports whether scheme is registered.
func (h *Handler) HasHandlerForScheme(scheme string) bool {
	_, ok := h.schemes[scheme]
	return ok
}

// HandlerForScheme returns the handler registered for scheme.
func (h *Handler) HandlerForScheme(scheme string) (SchemeHandler, bool) {
	sh, ok := h.schemes[scheme]
	return sh, ok
}

// SchemeNames returns the registered scheme names, sorted.
func (h *Handler) SchemeNames() []string {
	names := make([]string, 0, len(h.schemes))
	for name := range h.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SchemeContext returns the reference URI for scheme, if any.
func (h *Handler) SchemeContext(scheme string) *CompoundURI {
	return h.contexts[scheme]
}

// IsURI reports whether s is a compound URI whose scheme is registered.
func (h *Handler) IsURI(s string) bool {
	scheme, ok := SchemeOf(s)
	return ok && h.HasHandlerForScheme(scheme)
}

// ModifySchemeContext returns a handler whose reference URI for u's scheme
// is u. Relative names of that scheme then resolve against u.
func (h *Handler) ModifySchemeContext(u *CompoundURI) *Handler {
	c := h.clone()
	c.contexts[u.Scheme] = u
	return c
}

// ReplaceScheme returns a handler with the handler for scheme substituted.
// Everything else, scheme contexts included, is shared with the receiver.
func (h *Handler) ReplaceScheme(scheme string, sh SchemeHandler) *Handler {
	c := h.clone()
	c.schemes[scheme] = sh
	return c
}

// WithObserver returns a handler that reports dereferences to fn.
func (h *Handler) WithObserver(fn Observer) *Handler {
	c := h.clone()
	c.observer = fn
	return c
}

// ResolveRelative returns the absolute form of u using the scheme context.
func (h *Handler) ResolveRelative(u *CompoundURI) *CompoundURI {
	sh, ok := h.schemes[u.Scheme]
	if !ok {
		return u
	}
	rr, ok := sh.(RelativeResolver)
	if !ok {
		return u
	}
	ref := h.contexts[u.Scheme]
	if ref == nil {
		return u
	}
	return rr.Resolve(u, ref)
}

// Dereference resolves ref, a URI string or *CompoundURI, to a value.
// Parameters are resolved depth first before the scheme handler runs.
func (h *Handler) Dereference(ctx context.Context, ref any) (any, error) {
	var u *CompoundURI
	switch r := ref.(type) {
	case *CompoundURI:
		u = r
	case string:
		parsed, err := Parse(r)
		if err != nil {
			return nil, errs.WrapResolution(err, "uri", r, "parse")
		}
		u = parsed
	default:
		return nil, errs.WrapResolution(fmt.Errorf("%w: unsupported reference %T", errs.ErrInvalidURI, ref), "uri", "", "dereference")
	}

	sh, ok := h.schemes[u.Scheme]
	if !ok {
		err := fmt.Errorf("%w: %q%s", errs.ErrUnknownScheme, u.Scheme, h.suggest(u.Scheme))
		h.observe(u.Scheme, err)
		return nil, errs.WrapResolution(err, "uri", u.String(), "dereference")
	}
	u = h.ResolveRelative(u)

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Dereferencing URI.", "uri", u.String())

	params, err := h.DereferenceParameters(ctx, u)
	if err != nil {
		h.observe(u.Scheme, err)
		return nil, err
	}

	value, err := sh.Dereference(ctx, u, params)
	if err != nil {
		h.observe(u.Scheme, err)
		return nil, errs.WrapResolution(err, "uri", u.String(), "dereference")
	}

	if ca, ok := value.(ContextAware); ok {
		ca.SetURIContext(u, h)
	}

	if u.Fragment != "" {
		if fh, ok := sh.(FragmentHandler); !ok || !fh.HandlesFragment() {
			value, err = ApplyFragment(value, u.Fragment)
			if err != nil {
				h.observe(u.Scheme, err)
				return nil, errs.WrapResolution(err, "uri", u.String(), "select fragment")
			}
		}
	}

	h.observe(u.Scheme, nil)
	return value, nil
}

// DereferenceParameters resolves every parameter of u in name order. A
// literal resolves to its string value.
func (h *Handler) DereferenceParameters(ctx context.Context, u *CompoundURI) (map[string]any, error) {
	params := make(map[string]any, len(u.Parameters))
	for _, name := range u.ParameterNames() {
		p := u.Parameters[name]
		if p.IsLiteral() {
			params[name] = p.Name
			continue
		}
		value, err := h.Dereference(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		params[name] = value
	}
	return params, nil
}

func (h *Handler) observe(scheme string, err error) {
	if h.observer != nil {
		h.observer(scheme, err)
	}
}

// suggest returns a "did you mean" hint for an unknown scheme.
func (h *Handler) suggest(scheme string) string {
	best, bestDist := "", 3
	for name := range h.schemes {
		if d := levenshtein.Distance(scheme, name, nil); d < bestDist || (d == bestDist && name < best) {
			best, bestDist = name, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
