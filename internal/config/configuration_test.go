package config

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/wiregrid/internal/uri"
)

// memScheme serves documents from a map, decoding them by extension.
type memScheme map[string]string

func (m memScheme) Dereference(_ context.Context, u *uri.CompoundURI, _ map[string]any) (any, error) {
	content, ok := m[u.Name]
	if !ok {
		return nil, assert.AnError
	}
	return &uri.Resource{Data: []byte(content), Decoder: DecoderFor(u.Name)}, nil
}

func newTestHandler(files map[string]string) *uri.Handler {
	h := uri.NewHandler()
	h.AddHandler(uri.LiteralScheme, uri.SchemeHandlerFunc(func(_ context.Context, u *uri.CompoundURI, _ map[string]any) (any, error) {
		return u.Name, nil
	}))
	h.AddHandler("mem", memScheme(files))
	return h
}

func TestConfiguration_Get(t *testing.T) {
	ctx := context.Background()
	cfg := New(map[string]any{
		"port":    "8080",
		"enabled": "true",
		"count":   float64(3),
		"name":    "svc",
		"list":    []any{"a", "b", map[string]any{"deep": "c"}},
		"nested":  map[string]any{"inner": map[string]any{"value": "x"}},
		"literal": "s:plain-text",
	}, newTestHandler(nil))

	t.Run("number from string", func(t *testing.T) {
		n, ok := cfg.GetNumber(ctx, "port")
		require.True(t, ok)
		assert.Equal(t, 8080.0, n)
	})

	t.Run("bool from string", func(t *testing.T) {
		b, ok := cfg.GetBool(ctx, "enabled")
		require.True(t, ok)
		assert.True(t, b)
	})

	t.Run("string from number", func(t *testing.T) {
		s, ok := cfg.GetString(ctx, "count")
		require.True(t, ok)
		assert.Equal(t, "3", s)
	})

	t.Run("indexed path", func(t *testing.T) {
		s, ok := cfg.GetString(ctx, "list[1]")
		require.True(t, ok)
		assert.Equal(t, "b", s)

		s, ok = cfg.GetString(ctx, "list[2].deep")
		require.True(t, ok)
		assert.Equal(t, "c", s)
	})

	t.Run("dotted path", func(t *testing.T) {
		s, ok := cfg.GetString(ctx, "nested.inner.value")
		require.True(t, ok)
		assert.Equal(t, "x", s)
	})

	t.Run("literal URI", func(t *testing.T) {
		s, ok := cfg.GetString(ctx, "literal")
		require.True(t, ok)
		assert.Equal(t, "plain-text", s)
	})

	t.Run("missing key is absent", func(t *testing.T) {
		_, ok := cfg.Value(ctx, "nope.deeper")
		assert.False(t, ok)
	})

	t.Run("failed conversion is absent", func(t *testing.T) {
		_, ok := cfg.GetNumber(ctx, "name")
		assert.False(t, ok)
	})

	t.Run("malformed key path is absent", func(t *testing.T) {
		_, ok := cfg.Value(ctx, "a..b")
		assert.False(t, ok)
	})
}

func TestConfiguration_References(t *testing.T) {
	ctx := context.Background()
	cfg := New(map[string]any{
		"defaults": map[string]any{"port": float64(80)},
		"port":     "#defaults.port",
		"chained":  "#port",
		"color":    "#fff",
		"greeting": "?Hello $name",
		"braced":   "?${name}!",
		"nested":   "?at $server.host",
		"missing":  "?Hello $nobody",
		"ctx":      "$name",
		"ctxPath":  "$server.host",
		"noCtx":    "$nobody",
	}, newTestHandler(nil)).WithDataContext(map[string]any{
		"name":   "World",
		"server": map[string]any{"host": "example.org"},
	})

	tests := []struct {
		key      string
		expected any
		present  bool
	}{
		{"port", float64(80), true},
		{"chained", float64(80), true},
		{"color", "#fff", true},
		{"greeting", "Hello World", true},
		{"braced", "World!", true},
		{"nested", "at example.org", true},
		{"missing", nil, false},
		{"ctx", "World", true},
		{"ctxPath", "example.org", true},
		{"noCtx", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := cfg.Value(ctx, tt.key)
			require.Equal(t, tt.present, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestConfiguration_ReferenceCycleIsBounded(t *testing.T) {
	cfg := New(map[string]any{"a": "#b", "b": "#a"}, newTestHandler(nil))
	_, ok := cfg.Value(context.Background(), "a")
	assert.False(t, ok)
}

func TestConfiguration_ParameterShadowsContext(t *testing.T) {
	ctx := context.Background()
	cfg := New(map[string]any{"v": "$name"}, nil).
		WithDataContext(map[string]any{"name": "global"}).
		ExtendWithParameters(map[string]any{"name": "param"})

	s, ok := cfg.GetString(ctx, "v")
	require.True(t, ok)
	assert.Equal(t, "param", s)
}

func TestConfiguration_Resources(t *testing.T) {
	ctx := context.Background()
	handler := newTestHandler(map[string]string{
		"/child.json": `{"value": "from-json", "port": 9000}`,
		"/child.yaml": "value: from-yaml\nitems:\n  - 1\n  - 2\n",
		"/text.txt":   "plain text",
	})
	cfg := New(map[string]any{
		"json": "mem:/child.json",
		"yaml": "mem:/child.yaml",
		"text": "mem:/text.txt",
		"frag": "mem:/child.json#port",
	}, handler)

	s, ok := cfg.GetString(ctx, "json.value")
	require.True(t, ok)
	assert.Equal(t, "from-json", s)

	n, ok := cfg.GetNumber(ctx, "yaml.items[1]")
	require.True(t, ok)
	assert.Equal(t, 2.0, n)

	s, ok = cfg.GetString(ctx, "text")
	require.True(t, ok)
	assert.Equal(t, "plain text", s)

	n, ok = cfg.GetNumber(ctx, "frag")
	require.True(t, ok)
	assert.Equal(t, 9000.0, n)

	sub := cfg.GetConfiguration(ctx, "json")
	require.NotNil(t, sub)
	assert.Equal(t, "mem:/child.json", sub.ID())
	assert.Same(t, cfg.Root(), sub.Root())
}

func TestConfiguration_Collections(t *testing.T) {
	ctx := context.Background()
	cfg := New(map[string]any{
		"items": []any{
			map[string]any{"n": "1"},
			"not-a-config",
			map[string]any{"n": "2"},
		},
		"named": map[string]any{
			"a": map[string]any{"n": "a"},
			"b": float64(5),
		},
	}, nil)

	list := cfg.GetConfigurationList(ctx, "items")
	require.Len(t, list, 2)
	s, _ := list[1].GetString(ctx, "n")
	assert.Equal(t, "2", s)

	m := cfg.GetConfigurationMap(ctx, "named")
	require.Len(t, m, 1)
	assert.Contains(t, m, "a")
}

func TestConfiguration_GetJSONIsACopy(t *testing.T) {
	ctx := context.Background()
	nested := map[string]any{"k": "v"}
	cfg := New(map[string]any{"nested": nested}, nil)

	v, ok := cfg.GetJSON(ctx, "nested")
	require.True(t, ok)
	if diff := cmp.Diff(nested, v); diff != "" {
		t.Errorf("GetJSON mismatch (-want +got):\n%s", diff)
	}
	v.(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", nested["k"])
}
