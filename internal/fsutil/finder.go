// Package fsutil provides file system utility functions.
package fsutil

import (
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ConfigExtensions lists the file extensions recognised as configuration.
var ConfigExtensions = []string{".json", ".yaml", ".yml", ".hcl"}

// FindFilesByExtension recursively searches root on fsys for all files ending
// with the given extension. Paths are returned sorted, with root as prefix.
func FindFilesByExtension(fsys afero.Fs, root string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}
	return Glob(fsys, root, "**/*"+extension)
}

// FindConfigFiles returns every configuration file below root, sorted.
func FindConfigFiles(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	for _, ext := range ConfigExtensions {
		found, err := FindFilesByExtension(fsys, root, ext)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	return files, nil
}

// Glob matches pattern below root on fsys. Returned paths include root.
func Glob(fsys afero.Fs, root string, pattern string) ([]string, error) {
	sub := fsys
	if root != "" && root != "." {
		sub = afero.NewBasePathFs(fsys, root)
	}
	matches, err := doublestar.Glob(afero.NewIOFS(sub), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, path.Join(root, m))
	}
	sort.Strings(out)
	return out, nil
}
