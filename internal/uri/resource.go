package uri

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Decoder turns raw resource bytes into structured data.
type Decoder func(data []byte) (any, error)

// Resource is a value produced by a scheme handler together with the URI it
// was read from. Its Handler has the scheme context rooted at that URI, so
// configuration read from the resource resolves relative names correctly.
type Resource struct {
	Data     any
	URI      *CompoundURI
	Handler  *Handler
	Decoder  Decoder
	Location string

	decoded any
	done    bool
}

// NewResource wraps data in a Resource.
func NewResource(data any) *Resource {
	return &Resource{Data: data}
}

// SetURIContext implements ContextAware.
func (r *Resource) SetURIContext(u *CompoundURI, h *Handler) {
	r.URI = u
	r.Handler = h.ModifySchemeContext(u)
}

// AsString returns the resource content as a string.
func (r *Resource) AsString() (string, error) {
	switch d := r.Data.(type) {
	case string:
		return d, nil
	case []byte:
		return string(d), nil
	case nil:
		return "", fmt.Errorf("resource %s is empty", r.URI)
	}
	return fmt.Sprint(r.Data), nil
}

// AsData returns the resource content as bytes.
func (r *Resource) AsData() ([]byte, error) {
	switch d := r.Data.(type) {
	case []byte:
		return d, nil
	case string:
		return []byte(d), nil
	}
	return nil, fmt.Errorf("resource %s holds %T, not raw data", r.URI, r.Data)
}

// AsNumber parses the resource content as a number.
func (r *Resource) AsNumber() (float64, error) {
	if f, ok := r.Data.(float64); ok {
		return f, nil
	}
	s, err := r.AsString()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// AsBool parses the resource content as a boolean.
func (r *Resource) AsBool() (bool, error) {
	if b, ok := r.Data.(bool); ok {
		return b, nil
	}
	s, err := r.AsString()
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// AsURL returns a URL locating the resource.
func (r *Resource) AsURL() (*url.URL, error) {
	if r.Location != "" {
		return &url.URL{Scheme: "file", Path: r.Location}, nil
	}
	if r.URI == nil {
		return nil, fmt.Errorf("resource has no URI")
	}
	return url.Parse(r.URI.String())
}

// AsJSONData returns the resource content as structured data: mappings,
// sequences and scalars. Raw content is decoded with the resource's Decoder,
// or as JSON when none is set. The decoded value is cached.
func (r *Resource) AsJSONData() (any, error) {
	if r.done {
		return r.decoded, nil
	}
	var raw []byte
	switch d := r.Data.(type) {
	case []byte:
		raw = d
	case string:
		raw = []byte(d)
	default:
		return r.Data, nil
	}

	var (
		value any
		err   error
	)
	if r.Decoder != nil {
		value, err = r.Decoder(raw)
	} else {
		value, err = decodeJSON(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding resource %s: %w", r.URI, err)
	}
	r.decoded, r.done = value, true
	return value, nil
}

// IsStructured reports whether the resource content is a mapping or sequence.
func (r *Resource) IsStructured() bool {
	data, err := r.AsJSONData()
	if err != nil {
		return false
	}
	switch data.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// Representation returns the resource content in the named representation:
// "string", "number", "bool", "json", "data", "url" or "default".
func (r *Resource) Representation(name string) (any, error) {
	switch name {
	case "string":
		return r.AsString()
	case "number":
		return r.AsNumber()
	case "bool", "boolean":
		return r.AsBool()
	case "json":
		return r.AsJSONData()
	case "data":
		return r.AsData()
	case "url":
		return r.AsURL()
	case "", "default":
		return r.Data, nil
	}
	return nil, fmt.Errorf("unknown representation %q", name)
}

// Refresh dereferences the resource URI again and replaces its content.
func (r *Resource) Refresh(ctx context.Context) error {
	if r.URI == nil || r.Handler == nil {
		return fmt.Errorf("resource has no URI context")
	}
	value, err := r.Handler.Dereference(ctx, r.URI)
	if err != nil {
		return err
	}
	if fresh, ok := value.(*Resource); ok {
		r.Data, r.Decoder, r.Location = fresh.Data, fresh.Decoder, fresh.Location
	} else {
		r.Data = value
	}
	r.decoded, r.done = nil, false
	return nil
}

func decodeJSON(raw []byte) (any, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	return gjson.ParseBytes(raw).Value(), nil
}
