// Package env_vars provides an object holding a snapshot of the process
// environment.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/wiregrid/internal/config"
	"github.com/specialistvlad/wiregrid/internal/registry"
)

// ClassName is the class name of EnvSnapshot.
const ClassName = "EnvSnapshot"

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnvSnapshot captures the environment variables starting with Prefix when
// it finishes configuration. With TrimPrefix set the keys lose the prefix.
type EnvSnapshot struct {
	Prefix     string
	TrimPrefix bool

	All map[string]string `ioc:"-"`

	environ func() []string
}

// BeforeConfiguration is part of the configuration-aware lifecycle.
func (e *EnvSnapshot) BeforeConfiguration(context.Context, *config.Configuration) {}

// AfterConfiguration takes the snapshot.
func (e *EnvSnapshot) AfterConfiguration(context.Context) error {
	environ := e.environ
	if environ == nil {
		environ = os.Environ
	}
	e.All = make(map[string]string)
	for _, kv := range environ() {
		pair := strings.SplitN(kv, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], e.Prefix) {
			continue
		}
		key := pair[0]
		if e.TrimPrefix {
			key = strings.TrimPrefix(key, e.Prefix)
		}
		e.All[key] = pair[1]
	}
	return nil
}

// Get returns one captured variable.
func (e *EnvSnapshot) Get(name string) (string, bool) {
	v, ok := e.All[name]
	return v, ok
}

// Register registers the EnvSnapshot class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass(ClassName, func() any { return new(EnvSnapshot) })
}
