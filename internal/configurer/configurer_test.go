package configurer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/wiregrid/internal/config"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/typeinfo"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

type endpoint struct {
	Host string
	Port int
}

type service struct {
	Name     string
	Port     int
	Enabled  bool
	Primary  *endpoint
	Backups  []*endpoint
	ByRegion map[string]*endpoint
	Extra    any
	Meta     map[string]any `ioc:"meta,raw"`
	Tags     []string
	Settings *config.Configuration
	Peer     any

	added []string
}

func (s *service) ObjectAdded(_ context.Context, property string, _ any) {
	s.added = append(s.added, property)
}

type selfConfigured struct {
	got *config.Configuration
}

func (s *selfConfigured) ConfigureWith(_ context.Context, cfg *config.Configuration) error {
	s.got = cfg
	return nil
}

type deferred struct {
	owner any
	path  string
	value any
	apply func(any) error
}

// fakeFactory builds *endpoint values and records deferrals.
type fakeFactory struct {
	c        *Configurer
	builds   []string
	deferred []deferred
	failWith error
}

func (f *fakeFactory) BuildObject(ctx context.Context, cfg *config.Configuration, keyPath string, hint reflect.Type) (any, error) {
	f.builds = append(f.builds, keyPath)
	if f.failWith != nil {
		return nil, f.failWith
	}
	var obj any
	switch hint {
	case reflect.TypeOf(&endpoint{}):
		obj = &endpoint{}
	default:
		if name, ok := TypeHint(cfg); ok && name == "Endpoint" {
			obj = &endpoint{}
		} else {
			return nil, fmt.Errorf("%w: %v", errs.ErrUnknownType, hint)
		}
	}
	if err := f.c.Configure(ctx, obj, cfg.WithKeysExcluded(KeyType), keyPath); err != nil {
		return nil, err
	}
	return obj, nil
}

func (f *fakeFactory) Defer(_ context.Context, owner any, keyPath string, value any, apply func(any) error) {
	f.deferred = append(f.deferred, deferred{owner, keyPath, value, apply})
}

func newTestConfigurer() (*Configurer, *fakeFactory) {
	f := &fakeFactory{}
	c := New(typeinfo.NewRegistry(), f)
	f.c = c
	return c, f
}

func newTestHandler(values map[string]any) *uri.Handler {
	h := uri.NewHandler()
	h.AddHandler("named", uri.SchemeHandlerFunc(func(_ context.Context, u *uri.CompoundURI, _ map[string]any) (any, error) {
		v, ok := values[u.Name]
		if !ok {
			return nil, errs.ErrNotFound
		}
		return v, nil
	}))
	return h
}

func TestConfigurer_Configure(t *testing.T) {
	ctx := context.Background()
	c, f := newTestConfigurer()

	peer := &endpoint{Host: "peer"}
	cfg := config.New(map[string]any{
		"name":    "?svc-$env",
		"port":    "8080",
		"enabled": true,
		"primary": map[string]any{"host": "a", "port": 1.0},
		"backups": []any{
			map[string]any{"host": "b"},
			map[string]any{"host": "c"},
		},
		"byRegion": map[string]any{"eu": map[string]any{"host": "d"}},
		"extra":    map[string]any{"k": "v"},
		"meta":     map[string]any{"owner": "team"},
		"tags":     "single",
		"settings": map[string]any{"depth": 2.0},
		"peer":     "named:peer",
		"unknown":  "ignored",
	}, newTestHandler(map[string]any{"peer": peer})).WithDataContext(map[string]any{"env": "prod"})

	var s service
	require.NoError(t, c.Configure(ctx, &s, cfg, "svc"))

	assert.Equal(t, "svc-prod", s.Name)
	assert.Equal(t, 8080, s.Port)
	assert.True(t, s.Enabled)
	require.NotNil(t, s.Primary)
	assert.Equal(t, endpoint{Host: "a", Port: 1}, *s.Primary)
	require.Len(t, s.Backups, 2)
	assert.Equal(t, "c", s.Backups[1].Host)
	require.Contains(t, s.ByRegion, "eu")
	assert.Equal(t, "d", s.ByRegion["eu"].Host)
	assert.Equal(t, map[string]any{"k": "v"}, s.Extra, "untyped mapping without type hint stays data")
	assert.Equal(t, map[string]any{"owner": "team"}, s.Meta)
	assert.Equal(t, []string{"single"}, s.Tags)
	require.NotNil(t, s.Settings)
	n, _ := s.Settings.GetNumber(ctx, "depth")
	assert.Equal(t, 2.0, n)
	assert.Same(t, peer, s.Peer)

	assert.Equal(t, []string{"svc.primary", "svc.backups[0]", "svc.backups[1]", "svc.byRegion.eu"}, f.builds)
	assert.ElementsMatch(t, []string{"primary", "backups", "byRegion", "peer"}, s.added)
}

func TestConfigurer_RawIsACopy(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestConfigurer()
	meta := map[string]any{"owner": "team"}
	var s service
	require.NoError(t, c.Configure(ctx, &s, config.New(map[string]any{"meta": meta}, nil), ""))
	s.Meta["owner"] = "changed"
	assert.Equal(t, "team", meta["owner"])
}

func TestConfigurer_HintedUntypedProperty(t *testing.T) {
	ctx := context.Background()
	c, f := newTestConfigurer()
	var s service
	cfg := config.New(map[string]any{"extra": map[string]any{"-type": "Endpoint", "host": "x"}}, nil)
	require.NoError(t, c.Configure(ctx, &s, cfg, "svc"))
	require.IsType(t, &endpoint{}, s.Extra)
	assert.Equal(t, "x", s.Extra.(*endpoint).Host)
	assert.Equal(t, []string{"svc.extra"}, f.builds)
}

func TestConfigurer_CoercionFailureLeavesUnset(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestConfigurer()
	s := service{Port: 7}
	cfg := config.New(map[string]any{"port": "seven", "name": "ok"}, nil)
	require.NoError(t, c.Configure(ctx, &s, cfg, ""))
	assert.Equal(t, 7, s.Port)
	assert.Equal(t, "ok", s.Name)
}

func TestConfigurer_FailedReferencesLeaveSiblingsSet(t *testing.T) {
	c, _ := newTestConfigurer()
	h := newTestHandler(map[string]any{})
	h.AddHandler("broken", uri.SchemeHandlerFunc(func(context.Context, *uri.CompoundURI, map[string]any) (any, error) {
		return nil, errors.New("backend down")
	}))
	h.AddHandler("deep", uri.SchemeHandlerFunc(func(context.Context, *uri.CompoundURI, map[string]any) (any, error) {
		return nil, errs.WrapStructural(errs.ErrBuildDepth, "test", "deep", "build")
	}))

	var structural []error
	ctx := config.WithErrorSink(context.Background(), func(err error) { structural = append(structural, err) })

	cfg := config.New(map[string]any{
		"name":    "ok",
		"port":    "8080",
		"peer":    "named:missing",
		"extra":   "broken:thing",
		"primary": "deep:thing",
		"tags":    "nosuch:thing",
	}, h)
	var s service
	require.NoError(t, c.Configure(ctx, &s, cfg, "svc"))

	assert.Equal(t, "ok", s.Name)
	assert.Equal(t, 8080, s.Port)
	assert.Nil(t, s.Peer)
	assert.Nil(t, s.Extra)
	assert.Nil(t, s.Primary)
	assert.Equal(t, []string{"nosuch:thing"}, s.Tags, "unregistered schemes are plain strings")

	require.Len(t, structural, 1)
	assert.ErrorIs(t, structural[0], errs.ErrBuildDepth)
}

func TestConfigurer_SelfConfiguring(t *testing.T) {
	ctx := context.Background()
	c, f := newTestConfigurer()
	obj := &selfConfigured{}
	cfg := config.New(map[string]any{"anything": map[string]any{"-type": "Endpoint"}}, nil)
	require.NoError(t, c.Configure(ctx, obj, cfg, ""))
	assert.Same(t, cfg, obj.got)
	assert.Empty(t, f.builds)
}

func TestConfigurer_PlaceholdersAreDeferred(t *testing.T) {
	ctx := context.Background()
	c, f := newTestConfigurer()
	ph := Placeholder{Slot: 3, Name: "a"}
	cfg := config.New(map[string]any{
		"peer":    "named:a",
		"backups": []any{"named:a"},
	}, newTestHandler(map[string]any{"a": ph}))

	var s service
	require.NoError(t, c.Configure(ctx, &s, cfg, "obj"))
	assert.Nil(t, s.Peer)
	assert.Nil(t, s.Backups)
	require.Len(t, f.deferred, 2)

	target := &endpoint{Host: "late"}
	for _, d := range f.deferred {
		assert.Same(t, &s, d.owner)
		resolved, ok := ReplacePlaceholders(d.value, func(p Placeholder) (any, bool) {
			assert.Equal(t, ph, p)
			return target, true
		})
		require.True(t, ok)
		require.NoError(t, d.apply(resolved))
	}
	assert.Same(t, target, s.Peer)
	require.Len(t, s.Backups, 1)
	assert.Same(t, target, s.Backups[0])
}

func TestConfigurer_BuildFailures(t *testing.T) {
	ctx := context.Background()
	cfg := config.New(map[string]any{"primary": map[string]any{"host": "a"}, "name": "n"}, nil)

	t.Run("resolution failure makes the value absent", func(t *testing.T) {
		c, f := newTestConfigurer()
		f.failWith = errs.WrapResolution(errs.ErrUnknownType, "container", "primary", "instantiate")
		var s service
		require.NoError(t, c.Configure(ctx, &s, cfg, ""))
		assert.Nil(t, s.Primary)
		assert.Equal(t, "n", s.Name)
	})

	t.Run("structural failure aborts", func(t *testing.T) {
		c, f := newTestConfigurer()
		f.failWith = errs.WrapStructural(errs.ErrBuildDepth, "container", "primary", "build")
		var s service
		err := c.Configure(ctx, &s, cfg, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrBuildDepth))
	})
}

func TestContainsAndReplacePlaceholders(t *testing.T) {
	ph := Placeholder{Slot: 1, Name: "x"}
	value := map[string]any{"list": []any{"a", ph}, "plain": 1.0}
	assert.True(t, ContainsPlaceholder(value))
	assert.False(t, ContainsPlaceholder(map[string]any{"list": []any{"a"}}))

	out, ok := ReplacePlaceholders(value, func(Placeholder) (any, bool) { return "X", true })
	require.True(t, ok)
	assert.Equal(t, map[string]any{"list": []any{"a", "X"}, "plain": 1.0}, out)
	assert.Equal(t, ph, value["list"].([]any)[1], "input is not modified")

	_, ok = ReplacePlaceholders(value, func(Placeholder) (any, bool) { return nil, false })
	assert.False(t, ok)
}
