package typeinfo

import (
	"net/url"
	"reflect"
	"time"
)

// Kind is the representation a property expects from configuration.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindData
	KindURL
	KindObject
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindData:
		return "data"
	case KindURL:
		return "url"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "any"
}

// CollectionMemberTyper is implemented by types whose collection properties
// hold elements of a more specific type than the static field type says.
// The returned map is keyed by property name.
type CollectionMemberTyper interface {
	CollectionMemberTypes() map[string]reflect.Type
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	urlType      = reflect.TypeOf(url.URL{})
	bytesType    = reflect.TypeOf([]byte(nil))
)

// KindOf classifies t.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindAny
	}
	switch t {
	case durationType:
		// Accepts both "5s" and a number of nanoseconds.
		return KindAny
	case bytesType:
		return KindData
	case urlType, reflect.PointerTo(urlType):
		return KindURL
	}

	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		return KindMap
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return KindAny
		}
		return KindObject
	case reflect.Pointer, reflect.Struct, reflect.Func, reflect.Chan:
		return KindObject
	}
	return KindAny
}
