package schemes

import (
	"context"
	"fmt"
	"maps"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// Env serves `env:` URIs. The process environment wins over values read
// from dotenv files; a `default` parameter is used when neither has the
// variable.
type Env struct {
	dotenv map[string]string
	lookup func(string) (string, bool)
}

// NewEnv reads the dotenv files from fs. Later files win.
func NewEnv(fs afero.Fs, files ...string) (*Env, error) {
	e := &Env{dotenv: make(map[string]string), lookup: os.LookupEnv}
	for _, name := range files {
		f, err := fs.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open env file %s: %w", name, err)
		}
		values, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse env file %s: %w", name, err)
		}
		maps.Copy(e.dotenv, values)
	}
	return e, nil
}

// Lookup returns the value of a variable.
func (e *Env) Lookup(name string) (string, bool) {
	if v, ok := e.lookup(name); ok {
		return v, true
	}
	v, ok := e.dotenv[name]
	return v, ok
}

func (e *Env) Dereference(_ context.Context, u *uri.CompoundURI, params map[string]any) (any, error) {
	if v, ok := e.Lookup(u.Name); ok {
		return v, nil
	}
	if def, ok := params["default"]; ok {
		return def, nil
	}
	return nil, fmt.Errorf("%w: environment variable %q", errs.ErrNotFound, u.Name)
}
