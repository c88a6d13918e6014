package config

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_MixinAndMixover(t *testing.T) {
	a := New(map[string]any{"x": 1.0, "y": 2.0}, nil)
	b := New(map[string]any{"y": 3.0, "z": 4.0}, nil)

	assert.Equal(t, map[string]any{"x": 1.0, "y": 3.0, "z": 4.0}, a.Mixin(b).Data())
	assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0, "z": 4.0}, a.Mixover(b).Data())

	// Receiver is untouched.
	assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, a.Data())
	assert.Same(t, a.Root(), a.Mixin(b).Root())
}

func TestConfiguration_WithKeysExcluded(t *testing.T) {
	cfg := New(map[string]any{"a": 1.0, "-type": "X", "b": 2.0}, nil)
	assert.Equal(t, []string{"a", "b"}, cfg.WithKeysExcluded("-type").Keys())
	assert.Equal(t, []string{"-type", "a", "b"}, cfg.Keys())
}

func TestConfiguration_Flatten(t *testing.T) {
	ctx := context.Background()
	root := New(map[string]any{
		"common": map[string]any{"timeout": "5s", "retries": 3.0},
		"extra":  map[string]any{"verbose": true},
		"svc": map[string]any{
			"-config": []any{"#common", "#extra"},
			"retries": 1.0,
		},
		"single": map[string]any{"-mixin": "#extra", "verbose": false},
	}, nil)

	flat := root.GetConfiguration(ctx, "svc").Flatten(ctx)
	expected := map[string]any{"timeout": "5s", "retries": 3.0, "verbose": true}
	if diff := cmp.Diff(expected, flat.Data()); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}

	single := root.GetConfiguration(ctx, "single").Flatten(ctx)
	assert.Equal(t, map[string]any{"verbose": true}, single.Data())
}

func TestConfiguration_Normalize(t *testing.T) {
	ctx := context.Background()
	root := New(map[string]any{
		"base":   map[string]any{"host": "localhost", "port": 80.0, "scheme": "http"},
		"middle": map[string]any{"-extends": "#base", "port": 8080.0},
		"leaf":   map[string]any{"-extends": "#middle", "scheme": "https"},
	}, nil)

	leaf := root.GetConfiguration(ctx, "leaf").Normalize(ctx)
	expected := map[string]any{"host": "localhost", "port": 8080.0, "scheme": "https"}
	if diff := cmp.Diff(expected, leaf.Data()); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestConfiguration_NormalizeCycleTerminates(t *testing.T) {
	ctx := context.Background()
	root := New(map[string]any{
		"a": map[string]any{"-extends": "#b", "x": 1.0},
		"b": map[string]any{"-extends": "#a", "y": 2.0},
	}, nil)

	a := root.GetConfiguration(ctx, "a").Normalize(ctx)
	assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, a.Data())
}

func TestConfiguration_FlattenBeforeExtends(t *testing.T) {
	ctx := context.Background()
	root := New(map[string]any{
		"base":     map[string]any{"y": 2.0, "x": 0.0},
		"fragment": map[string]any{"-extends": "#base"},
		"obj":      map[string]any{"-config": "#fragment", "x": 1.0},
	}, nil)

	obj := root.GetConfiguration(ctx, "obj").Normalize(ctx)
	assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, obj.Data())
}

func TestConfiguration_NormalizeUnresolvableParent(t *testing.T) {
	ctx := context.Background()
	root := New(map[string]any{
		"obj": map[string]any{"-extends": "$missing", "x": 1.0},
	}, nil)

	obj := root.GetConfiguration(ctx, "obj").Normalize(ctx)
	require.NotNil(t, obj)
	assert.Equal(t, map[string]any{"x": 1.0}, obj.Data())
}
