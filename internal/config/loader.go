package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/fsutil"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// FileLoader reads configuration documents from a file system. Paths may be
// files or directories; directories are searched recursively.
type FileLoader struct {
	fs      afero.Fs
	handler *uri.Handler
	scheme  string
}

// NewFileLoader creates a loader. The configuration it returns resolves URIs
// through handler, with relative names of scheme resolving against the first
// file loaded.
func NewFileLoader(fs afero.Fs, handler *uri.Handler, scheme string) *FileLoader {
	return &FileLoader{fs: fs, handler: handler, scheme: scheme}
}

// Load reads every document named by paths and merges them in order. Later
// documents win on conflicting top-level keys.
func (l *FileLoader) Load(ctx context.Context, paths ...string) (*Configuration, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.expand(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no configuration files found in %v", paths)
	}

	merged := make(map[string]any)
	for _, file := range files {
		logger.Debug("Loading configuration file.", "path", file)
		data, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		doc, err := Decode(file, data)
		if err != nil {
			return nil, err
		}
		m, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("configuration file %s must contain a mapping, got %T", file, doc)
		}
		for k, v := range m {
			merged[k] = v
		}
	}

	handler := l.handler
	if handler == nil {
		handler = uri.NewHandler()
	}
	if l.scheme != "" && handler.HasHandlerForScheme(l.scheme) {
		handler = handler.ModifySchemeContext(&uri.CompoundURI{Scheme: l.scheme, Name: files[0]})
	}
	cfg := New(merged, handler)
	cfg.id = l.scheme + ":" + files[0]

	logger.Info("Configuration loaded.", "files", len(files), slog.Int("keys", len(merged)))
	return cfg, nil
}

func (l *FileLoader) expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := l.fs.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access configuration path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := fsutil.FindConfigFiles(l.fs, p)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration directory %s: %w", p, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
