package schemes

import (
	"context"

	"github.com/specialistvlad/wiregrid/internal/uri"
)

// Literal serves `s:` URIs: the value is the name itself.
type Literal struct{}

func (Literal) Dereference(_ context.Context, u *uri.CompoundURI, _ map[string]any) (any, error) {
	return u.Name, nil
}
