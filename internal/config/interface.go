package config

import (
	"context"
)

// Loader is the interface for a configuration loader.
type Loader interface {
	// Load reads configuration documents from the given paths, merges them
	// in order and returns the root configuration.
	Load(ctx context.Context, paths ...string) (*Configuration, error)
}

// Representation selects the form a value is converted to on retrieval.
type Representation int

const (
	// ReprDefault returns the resolved value as is.
	ReprDefault Representation = iota
	ReprString
	ReprNumber
	ReprBool
	// ReprJSON returns a deep copy of raw structured data.
	ReprJSON
	ReprConfiguration
	ReprURI
	ReprURL
	ReprData
)

// String returns the representation name.
func (r Representation) String() string {
	switch r {
	case ReprDefault:
		return "default"
	case ReprString:
		return "string"
	case ReprNumber:
		return "number"
	case ReprBool:
		return "bool"
	case ReprJSON:
		return "json"
	case ReprConfiguration:
		return "configuration"
	case ReprURI:
		return "uri"
	case ReprURL:
		return "url"
	case ReprData:
		return "data"
	default:
		return "unknown"
	}
}

// Reserved keys understood by the configuration model.
const (
	KeyExtends = "-extends"
	KeyConfig  = "-config"
	KeyMixin   = "-mixin"
)
