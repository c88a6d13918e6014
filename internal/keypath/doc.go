// internal/keypath/doc.go

/*
Package keypath provides a structured representation of the key paths used
to address values inside a configuration tree.

The format is a dot-separated sequence of segments, each optionally followed
by a bracketed list index, e.g. `services.http.headers[0].name`. A purely
numeric segment (`items.0`) also indexes into a list.

This package centralizes all formatting, parsing and navigation logic so that
every component addresses configuration data the same way.
*/
package keypath
