// internal/keypath/path.go
package keypath

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// String serializes the Path into its canonical string representation.
func (p *Path) String() string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range p.Segments {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Path pointers.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return reflect.DeepEqual(p.Segments, other.Segments)
}

// Lookup navigates data along the path. Mappings are indexed by segment
// name, lists by a numeric segment name or an explicit segment index.
func (p *Path) Lookup(data any) (any, bool) {
	if p == nil {
		return data, true
	}
	current := data
	for _, segment := range p.Segments {
		next, ok := Step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Step navigates a single segment into data.
func Step(data any, segment Segment) (any, bool) {
	value, ok := member(data, segment.Name)
	if !ok {
		return nil, false
	}
	if segment.HasIndex() {
		return element(value, segment.Index)
	}
	return value, true
}

func member(data any, name string) (any, bool) {
	switch typed := data.(type) {
	case map[string]any:
		v, ok := typed[name]
		return v, ok
	case []any:
		index, err := strconv.Atoi(name)
		if err != nil {
			return nil, false
		}
		return element(typed, index)
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		index, err := strconv.Atoi(name)
		if err != nil {
			return nil, false
		}
		return element(data, index)
	}
	return nil, false
}

func element(data any, index int) (any, bool) {
	if list, ok := data.([]any); ok {
		if index < 0 || index >= len(list) {
			return nil, false
		}
		return list[index], true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if index < 0 || index >= rv.Len() {
		return nil, false
	}
	return rv.Index(index).Interface(), true
}
