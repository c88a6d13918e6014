package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/specialistvlad/wiregrid/internal/config"
	"github.com/specialistvlad/wiregrid/internal/container"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/locals"
	"github.com/specialistvlad/wiregrid/internal/metric"
	"github.com/specialistvlad/wiregrid/internal/registry"
	"github.com/specialistvlad/wiregrid/internal/uri"
	"github.com/specialistvlad/wiregrid/internal/uri/schemes"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	promReg    *prometheus.Registry
	store      locals.Store
	root       *config.Configuration
	container  *container.Container
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It registers the
// modules, loads the configuration documents and prepares an unconfigured
// container. fs is the file system the base directory lives on; modules
// default to the core modules.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, fs afero.Fs, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	if cfg.BaseDir != "." {
		fs = afero.NewBasePathFs(fs, cfg.BaseDir)
	}

	store, err := newStore(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	schemeModule, err := newSchemeModule(fs, cfg.EnvFiles, store)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	schemeModule.Register(reg)
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "classes", len(reg.ClassNames()))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between modules is a programmer error.
		panic(err)
	}

	promReg := prometheus.NewRegistry()
	metrics, err := metric.New(promReg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	handler := uri.NewHandler()
	for _, name := range sortedSchemeNames(reg) {
		handler.AddHandler(name, reg.Schemes()[name])
	}

	var loader config.Loader = config.NewFileLoader(fs, handler, schemes.SchemeApp)
	root, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	c := container.New(
		container.WithRegistry(reg),
		container.WithMetrics(metrics),
		container.WithURIHandler(handler),
	)

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		promReg:   promReg,
		store:     store,
		root:      root,
		container: c,
	}, nil
}

func newStore(ctx context.Context, redisAddr string) (locals.Store, error) {
	if redisAddr == "" {
		return locals.NewMemory(nil), nil
	}
	store, err := locals.DialRedis(ctx, redisAddr)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Local values stored in redis.", "addr", redisAddr)
	return store, nil
}

func newSchemeModule(fs afero.Fs, envFiles []string, store locals.Store) (*schemes.Module, error) {
	env, err := schemes.NewEnv(fs, envFiles...)
	if err != nil {
		return nil, err
	}
	dirmap, err := schemes.NewDirMap(fs, 0)
	if err != nil {
		return nil, err
	}
	return &schemes.Module{
		Env:    env,
		App:    schemes.NewApp(fs),
		DirMap: dirmap,
		Local:  schemes.NewLocal(store),
	}, nil
}

func sortedSchemeNames(reg *registry.Registry) []string {
	var names []string
	for name := range reg.Schemes() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Container returns the application's container.
func (a *App) Container() *container.Container {
	return a.container
}

// Locals returns the store behind the `local:` scheme.
func (a *App) Locals() locals.Store {
	return a.store
}
