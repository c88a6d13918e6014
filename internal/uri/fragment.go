package uri

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/PaesslerAG/jsonpath"
	"github.com/specialistvlad/wiregrid/internal/keypath"
)

// ApplyFragment selects the path named by fragment inside value. A fragment
// is a key path (`a.b[0]`) or a JSON pointer (`/a/b/0`). Structured data is
// queried with JSONPath; other values are walked by exported field name.
func ApplyFragment(value any, fragment string) (any, error) {
	if strings.HasPrefix(fragment, "/") {
		fragment = strings.ReplaceAll(strings.TrimPrefix(fragment, "/"), "/", ".")
	}
	path, err := keypath.Parse(fragment)
	if err != nil {
		return nil, err
	}

	res, isResource := value.(*Resource)
	data := value
	if isResource {
		if data, err = res.AsJSONData(); err != nil {
			return nil, err
		}
	}

	var selected any
	switch data.(type) {
	case map[string]any, []any:
		selected, err = jsonpath.Get(jsonPathExpr(path), data)
		if err != nil {
			return nil, fmt.Errorf("fragment %q: %w", fragment, err)
		}
	default:
		var ok bool
		if selected, ok = selectMember(data, path); !ok {
			return nil, fmt.Errorf("fragment %q not found in %T", fragment, data)
		}
	}

	if isResource {
		return &Resource{Data: selected, URI: res.URI, Handler: res.Handler}, nil
	}
	return selected, nil
}

func jsonPathExpr(p *keypath.Path) string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, seg := range p.Segments {
		if _, err := strconv.Atoi(seg.Name); err == nil {
			sb.WriteString("[" + seg.Name + "]")
		} else {
			sb.WriteString("[" + strconv.Quote(seg.Name) + "]")
		}
		if seg.HasIndex() {
			fmt.Fprintf(&sb, "[%d]", seg.Index)
		}
	}
	return sb.String()
}

// selectMember walks exported struct fields, falling back to keypath
// navigation for maps and slices.
func selectMember(data any, p *keypath.Path) (any, bool) {
	current := data
	for _, seg := range p.Segments {
		rv := reflect.ValueOf(current)
		for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil, false
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			next, ok := keypath.Step(current, seg)
			if !ok {
				return nil, false
			}
			current = next
			continue
		}

		field := rv.FieldByName(exportedName(seg.Name))
		if !field.IsValid() || !field.CanInterface() {
			return nil, false
		}
		current = field.Interface()
		if seg.HasIndex() {
			next, ok := keypath.Step(map[string]any{"v": current}, keypath.NewSegmentWithIndex("v", seg.Index))
			if !ok {
				return nil, false
			}
			current = next
		}
	}
	return current, true
}

func exportedName(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
