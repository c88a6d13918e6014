package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/wiregrid/internal/uri"
)

// IsSupported reports whether name has a configuration file extension.
func IsSupported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml", ".hcl":
		return true
	}
	return false
}

// DecoderFor returns the decoder matching name's extension, or nil.
func DecoderFor(name string) uri.Decoder {
	if !IsSupported(name) {
		return nil
	}
	return func(data []byte) (any, error) {
		return Decode(name, data)
	}
}

// Decode parses a configuration document, choosing the format from name's
// extension. Numbers are always float64 and mappings map[string]any.
func Decode(name string, data []byte) (any, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return decodeJSON(name, data)
	case ".yaml", ".yml":
		return decodeYAML(name, data)
	case ".hcl":
		return decodeHCL(name, data)
	}
	return nil, fmt.Errorf("unsupported configuration format: %s", name)
}

func decodeJSON(name string, data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %s", name)
	}
	return gjson.ParseBytes(data).Value(), nil
}

func decodeYAML(name string, data []byte) (any, error) {
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", name, err)
	}
	return normalizeYAML(out), nil
}

// normalizeYAML converts yaml.v3 output to the JSON-shaped tree used
// everywhere else.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeYAML(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalizeYAML(item)
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	}
	return v
}

// decodeHCL reads an HCL document made of top-level attributes. Each
// attribute expression is evaluated without variables or functions.
func decodeHCL(name string, data []byte) (any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", name, diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read attributes of %s: %w", name, diags)
	}

	out := make(map[string]any, len(attrs))
	for key, attr := range attrs {
		val, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate %s in %s: %w", key, name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s in %s: %w", key, name, err)
		}
		out[key] = native
	}
	return out, nil
}
