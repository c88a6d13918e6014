package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/copystructure"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/uri"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// convert turns a resolved value into the requested representation.
func (c *Configuration) convert(ctx context.Context, keyPath string, value any, repr Representation) (any, bool) {
	out, err := c.represent(ctx, value, repr)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Configuration value cannot be converted, value is absent.",
			"key_path", keyPath, "representation", repr.String(), "error", err)
		return nil, false
	}
	return out, true
}

func (c *Configuration) represent(ctx context.Context, value any, repr Representation) (any, error) {
	switch repr {
	case ReprDefault:
		return value, nil

	case ReprConfiguration:
		if sub := c.AsConfiguration(ctx, value); sub != nil {
			return sub, nil
		}
		return nil, fmt.Errorf("%T cannot be interpreted as configuration", value)

	case ReprJSON:
		return jsonData(value)

	case ReprString:
		v, err := toScalar(value, cty.String)
		if err != nil {
			return nil, err
		}
		return v.AsString(), nil

	case ReprNumber:
		v, err := toScalar(value, cty.Number)
		if err != nil {
			return nil, err
		}
		f, _ := v.AsBigFloat().Float64()
		return f, nil

	case ReprBool:
		v, err := toScalar(value, cty.Bool)
		if err != nil {
			return nil, err
		}
		return v.True(), nil

	case ReprURI:
		switch t := value.(type) {
		case *uri.CompoundURI:
			return t, nil
		case *uri.Resource:
			if t.URI != nil {
				return t.URI, nil
			}
		case string:
			return uri.Parse(t)
		}
		return nil, fmt.Errorf("%T is not a URI", value)

	case ReprURL:
		switch t := value.(type) {
		case *url.URL:
			return t, nil
		case *uri.Resource:
			return t.AsURL()
		case string:
			return url.Parse(t)
		}
		return nil, fmt.Errorf("%T is not a URL", value)

	case ReprData:
		switch t := value.(type) {
		case []byte:
			return t, nil
		case string:
			return []byte(t), nil
		case *uri.Resource:
			return t.AsData()
		}
		return nil, fmt.Errorf("%T is not raw data", value)
	}
	return nil, fmt.Errorf("unsupported representation %d", repr)
}

// jsonData returns a deep copy of the structured data behind value.
func jsonData(value any) (any, error) {
	switch t := value.(type) {
	case *Configuration:
		value = t.data
	case *uri.Resource:
		data, err := t.AsJSONData()
		if err != nil {
			return nil, err
		}
		value = data
	}
	return copystructure.Copy(value)
}

// toScalar converts value to a primitive cty value of type ty.
func toScalar(value any, ty cty.Type) (cty.Value, error) {
	switch t := value.(type) {
	case *uri.Resource:
		s, err := t.AsString()
		if err != nil {
			return cty.NilVal, err
		}
		value = s
	case []byte:
		value = string(t)
	}
	if s, ok := value.(string); ok && ty != cty.String {
		value = strings.TrimSpace(s)
	}

	src, err := toCtyValue(value)
	if err != nil {
		return cty.NilVal, err
	}
	out, err := convert.Convert(src, ty)
	if err != nil {
		return cty.NilVal, err
	}
	if out.IsNull() || !out.IsKnown() {
		return cty.NilVal, fmt.Errorf("value is null")
	}
	return out, nil
}
