package container

import (
	"github.com/specialistvlad/wiregrid/internal/registry"
)

// ClassName is the class under which nested containers are configured.
const ClassName = "Container"

// Module registers the Container class, so that configuration can declare
// nested containers with `-type: Container`.
type Module struct{}

// Register adds the Container class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass(ClassName, func() any { return New() })
}

var (
	_ Configurable    = (*Container)(nil)
	_ ContainerAware  = (*Container)(nil)
	_ Service         = (*Container)(nil)
	_ Stopper         = (*Container)(nil)
	_ registry.Module = (*Module)(nil)
)
