package config

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/keypath"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// maxReferenceDepth bounds chains of root references (`#a` -> `#b` -> ...).
const maxReferenceDepth = 32

var (
	contextRefRegex  = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_-]*(?:\.[A-Za-z0-9_-]+)*)$`)
	placeholderRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)`)
)

type refStateKey struct{}

type errorSinkKey struct{}

// WithErrorSink returns a context whose value resolutions pass structural
// errors to fn. Such values are still absent to the caller.
func WithErrorSink(ctx context.Context, fn func(error)) context.Context {
	return context.WithValue(ctx, errorSinkKey{}, fn)
}

func reportStructural(ctx context.Context, err error) {
	if !errs.IsStructural(err) {
		return
	}
	if fn, ok := ctx.Value(errorSinkKey{}).(func(error)); ok {
		fn(err)
	}
}

// refState tracks a chain of root references across nested resolutions.
type refState struct {
	depth    int
	exceeded bool
}

// resolve interprets a raw value. Only strings carry templates or references;
// everything else is returned unchanged.
func (c *Configuration) resolve(ctx context.Context, raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return raw, true
	}
	logger := ctxlog.FromContext(ctx)

	switch {
	case strings.HasPrefix(s, "?"):
		return c.renderTemplate(ctx, s[1:])

	case contextRefRegex.MatchString(s):
		v, ok := c.contextValue(s[1:])
		if !ok {
			logger.Warn("Unresolved context reference.", "reference", s)
			return nil, false
		}
		return v, true

	case strings.HasPrefix(s, "#") && len(s) > 1:
		st, _ := ctx.Value(refStateKey{}).(*refState)
		if st == nil {
			st = &refState{}
			ctx = context.WithValue(ctx, refStateKey{}, st)
		}
		if st.depth >= maxReferenceDepth {
			st.exceeded = true
			logger.Warn("Root reference chain too deep, value is absent.", "reference", s)
			return nil, false
		}
		st.depth++
		v, ok := c.rootValue(ctx, s[1:])
		st.depth--
		if ok {
			return v, true
		}
		if st.exceeded {
			return nil, false
		}
		// Not a path into the root: a plain string such as a color.
		return s, true

	case c.uriHandler.IsURI(s):
		v, err := c.uriHandler.Dereference(ctx, s)
		if err != nil {
			logger.Warn("URI dereference failed, value is absent.", "uri", s, "error", err)
			reportStructural(ctx, err)
			return nil, false
		}
		return v, true
	}
	return s, true
}

// contextValue looks up name, possibly a dotted path, in the data context.
// `$name` entries take precedence over plain `name` entries.
func (c *Configuration) contextValue(name string) (any, bool) {
	name = strings.TrimPrefix(name, "$")
	head, rest, _ := strings.Cut(name, ".")
	v, ok := c.dataContext["$"+head]
	if !ok {
		v, ok = c.dataContext[head]
	}
	if !ok {
		return nil, false
	}
	if rest == "" {
		return v, true
	}

	switch t := v.(type) {
	case *Configuration:
		v = t.data
	case *uri.Resource:
		data, err := t.AsJSONData()
		if err != nil {
			return nil, false
		}
		v = data
	}
	selected, err := uri.ApplyFragment(v, rest)
	if err != nil {
		return nil, false
	}
	if res, ok := selected.(*uri.Resource); ok {
		return res.Data, true
	}
	return selected, true
}

// rootValue resolves a `#keypath` reference against the root tree, using the
// receiver's resolver and context.
func (c *Configuration) rootValue(ctx context.Context, raw string) (any, bool) {
	path, err := keypath.Parse(raw)
	if err != nil {
		return nil, false
	}
	rootData := c.root.cfg.data
	scope := c.child(rootData, c.uriHandler, identity(rootData))
	value, _, ok := scope.lookup(ctx, steps(path))
	return value, ok
}

// renderTemplate substitutes `$name` and `${name}` placeholders. Any
// unresolved placeholder makes the whole value absent.
func (c *Configuration) renderTemplate(ctx context.Context, tmpl string) (any, bool) {
	var missing []string
	out := placeholderRegex.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := placeholderRegex.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		v, ok := c.contextValue(strings.TrimSpace(name))
		if !ok {
			missing = append(missing, name)
			return m
		}
		return formatValue(v)
	})
	if len(missing) > 0 {
		ctxlog.FromContext(ctx).Warn("Unresolved template variables, value is absent.", "template", tmpl, "missing", missing)
		return nil, false
	}
	return out, true
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case *uri.Resource:
		s, err := t.AsString()
		if err != nil {
			return ""
		}
		return s
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
