package schemes

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/specialistvlad/wiregrid/internal/config"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// App serves `app:` URIs: files on an afero file system rooted at the
// application base directory. Configuration documents are decoded by their
// extension when read as structured data.
type App struct {
	fs afero.Fs
}

// NewApp returns the scheme for fs. Wrap the OS file system in an
// afero.BasePathFs to root it at a directory.
func NewApp(fs afero.Fs) *App {
	return &App{fs: fs}
}

// Clean returns name as a slash separated path below the root.
func Clean(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (a *App) Dereference(_ context.Context, u *uri.CompoundURI, _ map[string]any) (any, error) {
	name := Clean(u.Name)
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("%w: app file %q", errs.ErrNotFound, name)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("app file %q is a directory", name)
	}
	data, err := afero.ReadFile(a.fs, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read app file %q: %w", name, err)
	}
	res := uri.NewResource(data)
	res.Location = name
	if config.IsSupported(name) {
		res.Decoder = config.DecoderFor(name)
	}
	return res, nil
}

// Resolve makes relative names relative to the directory of reference.
// Names starting with a slash are relative to the root.
func (a *App) Resolve(u *uri.CompoundURI, reference *uri.CompoundURI) *uri.CompoundURI {
	if strings.HasPrefix(u.Name, "/") {
		return u
	}
	return u.WithName(path.Join(path.Dir(Clean(reference.Name)), u.Name))
}

var _ uri.RelativeResolver = (*App)(nil)
