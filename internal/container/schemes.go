package container

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wiregrid/internal/config"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// makeScheme builds a new object from a pattern: `make:name+param@uri`.
// Parameters become context values of the pattern.
type makeScheme struct{ c *Container }

func (s *makeScheme) Dereference(ctx context.Context, u *uri.CompoundURI, params map[string]any) (any, error) {
	pattern, params, err := s.c.patternFor(ctx, u, params)
	if err != nil {
		return nil, err
	}
	return s.c.buildNested(ctx, pattern.ExtendWithParameters(params), "make:"+u.Name, nil)
}

// namedScheme returns named objects, building them on first use:
// `named:name`. The reference is recorded in the dependency graph.
type namedScheme struct{ c *Container }

func (s *namedScheme) Dereference(ctx context.Context, u *uri.CompoundURI, _ map[string]any) (any, error) {
	if u.Name == "" {
		return nil, fmt.Errorf("%w: named: needs an object name", errs.ErrInvalidURI)
	}
	if dependent := frameFrom(ctx).dependent; dependent != "" {
		s.c.graph.Reference(dependent, u.Name)
	}
	return s.c.getNamed(ctx, u.Name)
}

// newScheme instantiates a class without the pattern and proxy machinery:
// `new:Class+prop@value`. Parameters are injected as properties.
type newScheme struct{ c *Container }

func (s *newScheme) Dereference(ctx context.Context, u *uri.CompoundURI, params map[string]any) (any, error) {
	class := s.c.resolveType(u.Name)
	cls, ok := s.c.registry.Class(class)
	if !ok {
		return nil, fmt.Errorf("%w: %q%s", errs.ErrUnknownType, class, s.c.suggestClass(class))
	}
	instance := cls.Instantiate()
	if aware, ok := instance.(ContainerAware); ok {
		aware.SetContainer(s.c)
	}
	if len(params) == 0 {
		return instance, nil
	}
	props := config.New(params, s.c.handler)
	if err := s.c.conf.Configure(ctx, instance, props, "new:"+u.Name); err != nil {
		return nil, err
	}
	return instance, nil
}

// postScheme posts a message when dereferenced:
// `post:target#message+param@uri`. The value is the delivered *Message.
type postScheme struct{ c *Container }

// HandlesFragment reports that the fragment names the message.
func (s *postScheme) HandlesFragment() bool { return true }

func (s *postScheme) Dereference(ctx context.Context, u *uri.CompoundURI, params map[string]any) (any, error) {
	msg := messageFromURI(u, params, nil)
	if err := s.c.dispatch(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
