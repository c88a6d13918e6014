package schemes

import (
	"github.com/specialistvlad/wiregrid/internal/registry"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// Scheme names.
const (
	SchemeEnv    = "env"
	SchemeApp    = "app"
	SchemeDirMap = "dirmap"
	SchemeLocal  = "local"
)

// Module registers the built-in schemes. Nil handlers are left out; `s:` is
// always registered.
type Module struct {
	Env    *Env
	App    *App
	DirMap *DirMap
	Local  *Local
}

// Register adds the schemes to r.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterScheme(uri.LiteralScheme, Literal{})
	if m.Env != nil {
		r.RegisterScheme(SchemeEnv, m.Env)
	}
	if m.App != nil {
		r.RegisterScheme(SchemeApp, m.App)
	}
	if m.DirMap != nil {
		r.RegisterScheme(SchemeDirMap, m.DirMap)
	}
	if m.Local != nil {
		r.RegisterScheme(SchemeLocal, m.Local)
	}
}

var _ registry.Module = (*Module)(nil)
