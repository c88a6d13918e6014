package schemes

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/locals"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// Local serves `local:` URIs from a locals.Store. A `default` parameter is
// used for missing keys.
type Local struct {
	store locals.Store
}

// NewLocal returns the scheme for store.
func NewLocal(store locals.Store) *Local {
	return &Local{store: store}
}

func (l *Local) Dereference(ctx context.Context, u *uri.CompoundURI, params map[string]any) (any, error) {
	v, err := l.store.Get(ctx, u.Name)
	if errors.Is(err, locals.ErrNotFound) {
		if def, ok := params["default"]; ok {
			return def, nil
		}
		return nil, fmt.Errorf("%w: local %q", errs.ErrNotFound, u.Name)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
