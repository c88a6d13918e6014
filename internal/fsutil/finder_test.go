package fsutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("{}"), 0o644))
	}
	return fs
}

func TestFindFilesByExtension(t *testing.T) {
	fs := newTestFs(t, "/cfg/a.json", "/cfg/nested/b.json", "/cfg/c.yaml", "/other/d.json")

	files, err := FindFilesByExtension(fs, "/cfg", ".json")
	require.NoError(t, err)
	require.Equal(t, []string{"/cfg/a.json", "/cfg/nested/b.json"}, files)
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	require.Panics(t, func() {
		_, _ = FindFilesByExtension(afero.NewMemMapFs(), "/", "")
	})
}

func TestFindConfigFiles(t *testing.T) {
	fs := newTestFs(t, "/cfg/b.yaml", "/cfg/a.json", "/cfg/x/c.hcl", "/cfg/readme.md")

	files, err := FindConfigFiles(fs, "/cfg")
	require.NoError(t, err)
	require.Equal(t, []string{"/cfg/a.json", "/cfg/b.yaml", "/cfg/x/c.hcl"}, files)
}
