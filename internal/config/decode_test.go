package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	expected := map[string]any{
		"name":   "svc",
		"port":   8080.0,
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"enabled": true},
	}

	tests := []struct {
		file string
		data string
	}{
		{"c.json", `{"name":"svc","port":8080,"tags":["a","b"],"nested":{"enabled":true}}`},
		{"c.yaml", "name: svc\nport: 8080\ntags: [a, b]\nnested:\n  enabled: true\n"},
		{"c.yml", "name: svc\nport: 8080\ntags: [a, b]\nnested:\n  enabled: true\n"},
		{"c.hcl", "name = \"svc\"\nport = 8080\ntags = [\"a\", \"b\"]\nnested = { enabled = true }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := Decode(tt.file, []byte(tt.data))
			require.NoError(t, err)
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("bad.json", []byte(`{"a":`))
	assert.Error(t, err)

	_, err = Decode("bad.yaml", []byte("a: [1,"))
	assert.Error(t, err)

	_, err = Decode("bad.hcl", []byte("a = "))
	assert.Error(t, err)

	_, err = Decode("c.toml", []byte("a = 1"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestDecoderFor(t *testing.T) {
	assert.Nil(t, DecoderFor("notes.txt"))
	dec := DecoderFor("x.yaml")
	require.NotNil(t, dec)
	v, err := dec([]byte("a: 1"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, v)
}
