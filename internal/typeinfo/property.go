package typeinfo

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// PropertyInfo describes one configurable property.
type PropertyInfo struct {
	// Name is the configuration key.
	Name string
	// Field is the Go field name.
	Field string
	Type  reflect.Type
	Kind  Kind
	// ElemType and ElemKind describe list and map members.
	ElemType reflect.Type
	ElemKind Kind
	// Raw properties take structured data as-is.
	Raw bool

	index []int
}

// Get returns the current value of the property on target, a pointer to a
// struct.
func (p *PropertyInfo) Get(target any) (any, error) {
	field, err := p.field(target, false)
	if err != nil {
		return nil, err
	}
	if !field.IsValid() {
		return nil, nil
	}
	return field.Interface(), nil
}

// Set injects value into the property on target, a pointer to a struct.
// Values that are not assignable are coerced: numeric and string conversions
// first, then element by element for collections, and finally a weakly typed
// decode.
func (p *PropertyInfo) Set(target any, value any) error {
	field, err := p.field(target, true)
	if err != nil {
		return err
	}
	if value == nil {
		field.Set(reflect.Zero(p.Type))
		return nil
	}
	if err := assign(field, value); err != nil {
		return fmt.Errorf("property %q: %w", p.Name, err)
	}
	return nil
}

// field returns the settable field on target, allocating nil embedded
// pointers on the way when alloc is set.
func (p *PropertyInfo) field(target any, alloc bool) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	v = v.Elem()
	for i, idx := range p.index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, nil
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(idx)
	}
	return v, nil
}

// Assign stores value into dst using the same coercion rules as Set.
func Assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	return assign(dst, value)
}

func assign(dst reflect.Value, value any) error {
	v := reflect.ValueOf(value)
	t := dst.Type()

	if v.Type().AssignableTo(t) {
		dst.Set(v)
		return nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		n, err := convertNumber(v, t)
		if err != nil {
			return err
		}
		dst.Set(n)
		return nil
	}
	if sameFamily(v.Kind(), t.Kind()) && v.Type().ConvertibleTo(t) {
		dst.Set(v.Convert(t))
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if v.Type().AssignableTo(t.Elem()) {
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(v)
			dst.Set(ptr)
			return nil
		}
	case reflect.Slice:
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			out := reflect.MakeSlice(t, v.Len(), v.Len())
			for i := 0; i < v.Len(); i++ {
				if err := Assign(out.Index(i), v.Index(i).Interface()); err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
			}
			dst.Set(out)
			return nil
		}
	case reflect.Map:
		if v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String && t.Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(t, v.Len())
			iter := v.MapRange()
			for iter.Next() {
				elem := reflect.New(t.Elem()).Elem()
				if err := Assign(elem, iter.Value().Interface()); err != nil {
					return fmt.Errorf("entry %q: %w", iter.Key().String(), err)
				}
				out.SetMapIndex(iter.Key().Convert(t.Key()), elem)
			}
			dst.Set(out)
			return nil
		}
	}

	return weakDecode(dst, value)
}

// weakDecode is the last-chance coercion, e.g. "8080" into an int or a
// mapping into a plain struct.
func weakDecode(dst reflect.Value, value any) error {
	out := reflect.New(dst.Type())
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out.Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToURLHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("cannot coerce %T to %s: %w", value, dst.Type(), err)
	}
	dst.Set(out.Elem())
	return nil
}

// convertNumber converts v to the numeric type t. Values t cannot hold
// exactly, out of range or with a fraction for an integer type, are errors.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	rangeErr := fmt.Errorf("%v is out of range for %s", v.Interface(), t)
	switch {
	case isInt(t.Kind()):
		var n int64
		switch {
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("%v is not an integer, cannot set %s", f, t)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, rangeErr
			}
			n = int64(f)
		case isUint(v.Kind()):
			if v.Uint() > math.MaxInt64 {
				return reflect.Value{}, rangeErr
			}
			n = int64(v.Uint())
		default:
			n = v.Int()
		}
		if reflect.Zero(t).OverflowInt(n) {
			return reflect.Value{}, rangeErr
		}
		return reflect.ValueOf(n).Convert(t), nil

	case isUint(t.Kind()):
		var u uint64
		switch {
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("%v is not an integer, cannot set %s", f, t)
			}
			if f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, rangeErr
			}
			u = uint64(f)
		case isUint(v.Kind()):
			u = v.Uint()
		default:
			if v.Int() < 0 {
				return reflect.Value{}, rangeErr
			}
			u = uint64(v.Int())
		}
		if reflect.Zero(t).OverflowUint(u) {
			return reflect.Value{}, rangeErr
		}
		return reflect.ValueOf(u).Convert(t), nil
	}

	var f float64
	switch {
	case isFloat(v.Kind()):
		f = v.Float()
	case isUint(v.Kind()):
		f = float64(v.Uint())
	default:
		f = float64(v.Int())
	}
	if reflect.Zero(t).OverflowFloat(f) {
		return reflect.Value{}, rangeErr
	}
	return reflect.ValueOf(f).Convert(t), nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func sameFamily(a, b reflect.Kind) bool {
	return (isNumeric(a) && isNumeric(b)) || (a == reflect.String && b == reflect.String) || (a == reflect.Bool && b == reflect.Bool)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
