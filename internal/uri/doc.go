// Package uri implements compound URIs, the universal addressing scheme used
// to pull resources and objects into the configuration space.
//
// A compound URI has a scheme, a scheme-specific name, an optional fragment
// selecting a path inside the resolved value, and named parameters which are
// themselves compound URIs (or literals):
//
//	scheme:name#fragment+param=literal+param@other:uri+param@[nested:uri+x=y]
//
// A Handler owns the registered SchemeHandlers together with a per-scheme
// reference URI used to resolve relative names. Handlers are values: every
// derivation (ModifySchemeContext, ReplaceScheme) returns a new Handler and
// leaves the receiver untouched.
package uri
