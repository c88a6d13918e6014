package schemes

import (
	"context"
	"fmt"
	"maps"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/specialistvlad/wiregrid/internal/config"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/fsutil"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// DefaultDirMapCacheSize is the number of directories a DirMap keeps decoded.
const DefaultDirMapCacheSize = 64

// DirMap serves `dirmap:` URIs: every configuration document below a
// directory becomes one entry of a mapping, keyed by its path relative to the
// directory without the extension. URI parameters are added as static
// entries and win over documents.
type DirMap struct {
	fs    afero.Fs
	cache *lru.Cache[string, map[string]any]
}

// NewDirMap returns the scheme for fs. size bounds the directory cache.
func NewDirMap(fs afero.Fs, size int) (*DirMap, error) {
	if size <= 0 {
		size = DefaultDirMapCacheSize
	}
	cache, err := lru.New[string, map[string]any](size)
	if err != nil {
		return nil, err
	}
	return &DirMap{fs: fs, cache: cache}, nil
}

func (d *DirMap) Dereference(ctx context.Context, u *uri.CompoundURI, params map[string]any) (any, error) {
	dir := Clean(u.Name)
	if dir == "" {
		dir = "."
	}
	entries, ok := d.cache.Get(dir)
	if !ok {
		var err error
		entries, err = d.read(ctx, dir)
		if err != nil {
			return nil, err
		}
		d.cache.Add(dir, entries)
	}

	out := make(map[string]any, len(entries)+len(params))
	maps.Copy(out, entries)
	maps.Copy(out, params)
	return out, nil
}

func (d *DirMap) read(ctx context.Context, dir string) (map[string]any, error) {
	files, err := fsutil.FindConfigFiles(d.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", dir, err)
	}
	entries := make(map[string]any, len(files))
	for _, file := range files {
		data, err := afero.ReadFile(d.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", file, err)
		}
		doc, err := config.Decode(file, data)
		if err != nil {
			return nil, err
		}
		rel := file
		if dir != "." {
			rel = strings.TrimPrefix(file, dir+"/")
		}
		key := strings.TrimSuffix(rel, path.Ext(rel))
		if _, dup := entries[key]; dup {
			ctxlog.FromContext(ctx).Warn("Two documents map to the same dirmap entry, the later one wins.", "key", key, "file", file)
		}
		entries[key] = doc
	}
	ctxlog.FromContext(ctx).Debug("Directory mapped.", "dir", dir, "entries", len(entries))
	return entries, nil
}

// Invalidate drops the cached content of every directory.
func (d *DirMap) Invalidate() {
	d.cache.Purge()
}
