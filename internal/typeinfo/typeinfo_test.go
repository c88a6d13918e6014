package typeinfo

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Base struct {
	ID string
}

type sample struct {
	Base
	Name     string
	Port     int
	Ratio    float32
	Enabled  bool
	Timeout  time.Duration
	Endpoint *url.URL
	Payload  []byte
	Tags     []string
	Labels   map[string]string
	Options  map[string]any `ioc:"opts,raw"`
	Peer     *sample
	Items    []any
	Ignored  string `ioc:"-"`
	HTTPHost string
	secret   string
}

func (sample) CollectionMemberTypes() map[string]reflect.Type {
	return map[string]reflect.Type{"items": reflect.TypeOf(&sample{})}
}

func TestRegistry_InfoFor(t *testing.T) {
	r := NewRegistry()
	ti, err := r.InfoOf(&sample{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"id", "name", "port", "ratio", "enabled", "timeout", "endpoint", "payload",
		"tags", "labels", "opts", "peer", "items", "httpHost",
	}, ti.Names())

	tests := []struct {
		name string
		kind Kind
	}{
		{"id", KindString},
		{"port", KindNumber},
		{"ratio", KindNumber},
		{"enabled", KindBool},
		{"timeout", KindAny},
		{"endpoint", KindURL},
		{"payload", KindData},
		{"tags", KindList},
		{"labels", KindMap},
		{"opts", KindMap},
		{"peer", KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ti.Property(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.kind, p.Kind)
		})
	}

	opts, _ := ti.Property("opts")
	assert.True(t, opts.Raw)

	items, _ := ti.Property("items")
	assert.Equal(t, reflect.TypeOf(&sample{}), items.ElemType)
	assert.Equal(t, KindObject, items.ElemKind)

	_, ok := ti.Property("ignored")
	assert.False(t, ok)
	_, ok = ti.Property("secret")
	assert.False(t, ok)
}

func TestRegistry_Caches(t *testing.T) {
	r := NewRegistry()
	a, err := r.InfoOf(&sample{})
	require.NoError(t, err)
	b, err := r.InfoFor(reflect.TypeOf(sample{}))
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_DuplicateName(t *testing.T) {
	type dup struct {
		A string `ioc:"x"`
		B string `ioc:"x"`
	}
	_, err := NewRegistry().InfoOf(&dup{})
	assert.ErrorContains(t, err, `property "x"`)
}

func TestRegistry_NonStruct(t *testing.T) {
	ti, err := NewRegistry().InfoOf(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, ti.Properties())
}

func TestPropertyInfo_Set(t *testing.T) {
	ti, err := NewRegistry().InfoOf(&sample{})
	require.NoError(t, err)

	set := func(t *testing.T, target *sample, name string, value any) {
		t.Helper()
		p, ok := ti.Property(name)
		require.True(t, ok)
		require.NoError(t, p.Set(target, value))
	}

	var s sample
	set(t, &s, "id", "abc")
	set(t, &s, "name", "svc")
	set(t, &s, "port", 8080.0)
	set(t, &s, "ratio", 0.5)
	set(t, &s, "enabled", true)
	set(t, &s, "timeout", "5s")
	set(t, &s, "endpoint", "https://example.org/x")
	set(t, &s, "tags", []any{"a", "b"})
	set(t, &s, "labels", map[string]any{"k": "v"})
	set(t, &s, "peer", &sample{Name: "other"})
	set(t, &s, "httpHost", "localhost")

	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "svc", s.Name)
	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, float32(0.5), s.Ratio)
	assert.True(t, s.Enabled)
	assert.Equal(t, 5*time.Second, s.Timeout)
	require.NotNil(t, s.Endpoint)
	assert.Equal(t, "example.org", s.Endpoint.Host)
	assert.Equal(t, []string{"a", "b"}, s.Tags)
	assert.Equal(t, map[string]string{"k": "v"}, s.Labels)
	assert.Equal(t, "other", s.Peer.Name)
	assert.Equal(t, "localhost", s.HTTPHost)

	t.Run("weak coercion", func(t *testing.T) {
		var s sample
		set(t, &s, "port", "9090")
		set(t, &s, "enabled", "true")
		set(t, &s, "timeout", float64(time.Millisecond))
		assert.Equal(t, 9090, s.Port)
		assert.True(t, s.Enabled)
		assert.Equal(t, time.Millisecond, s.Timeout)
	})

	t.Run("nil resets to zero", func(t *testing.T) {
		s := sample{Name: "x"}
		set(t, &s, "name", nil)
		assert.Empty(t, s.Name)
	})

	t.Run("coercion failure", func(t *testing.T) {
		var s sample
		p, _ := ti.Property("port")
		assert.Error(t, p.Set(&s, "not-a-number"))
		assert.Zero(t, s.Port)
	})

	t.Run("target must be a struct pointer", func(t *testing.T) {
		p, _ := ti.Property("name")
		assert.Error(t, p.Set(sample{}, "x"))
	})
}

type limits struct {
	Port  uint16
	Count int
	Level int8
	Size  uint
	Ratio float32
}

func TestPropertyInfo_SetNumbers(t *testing.T) {
	ti, err := NewRegistry().InfoOf(&limits{})
	require.NoError(t, err)

	testCases := []struct {
		name     string
		property string
		value    any
		want     limits
		wantErr  string
	}{
		{name: "integral float into uint16", property: "port", value: 8080.0, want: limits{Port: 8080}},
		{name: "uint16 overflow", property: "port", value: 70000.0, wantErr: "out of range"},
		{name: "negative into uint", property: "size", value: -1.0, wantErr: "out of range"},
		{name: "negative int into uint", property: "size", value: -3, wantErr: "out of range"},
		{name: "fraction into int", property: "count", value: 3.7, wantErr: "not an integer"},
		{name: "int8 overflow", property: "level", value: 200, wantErr: "out of range"},
		{name: "int8 lower bound", property: "level", value: -128.0, want: limits{Level: -128}},
		{name: "uint into int", property: "count", value: uint64(42), want: limits{Count: 42}},
		{name: "float32 overflow", property: "ratio", value: 1e300, wantErr: "out of range"},
		{name: "int into float32", property: "ratio", value: 3, want: limits{Ratio: 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := ti.Property(tc.property)
			require.True(t, ok)
			var got limits
			err := p.Set(&got, tc.value)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				assert.Equal(t, limits{}, got, "a rejected value leaves the property unset")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPropertyInfo_GetAndEmbeddedPointer(t *testing.T) {
	type Inner struct{ Level int }
	type outer struct {
		*Inner
	}
	ti, err := NewRegistry().InfoOf(&outer{})
	require.NoError(t, err)
	p, ok := ti.Property("level")
	require.True(t, ok)

	var o outer
	v, err := p.Get(&o)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, p.Set(&o, 3.0))
	require.NotNil(t, o.Inner)
	v, err = p.Get(&o)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestLowerCamel(t *testing.T) {
	for in, want := range map[string]string{
		"Name":       "name",
		"URL":        "url",
		"HTTPClient": "httpClient",
		"ID":         "id",
		"already":    "already",
	} {
		assert.Equal(t, want, lowerCamel(in), in)
	}
}
