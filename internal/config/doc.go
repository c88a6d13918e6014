// Package config implements the configuration model: an immutable tree of
// JSON-like data (mappings, sequences and scalars) with value conversion,
// template resolution and merge/inheritance operators.
//
// A Configuration never fails loudly while resolving values. A missing key,
// an unresolvable template variable, a failed URI dereference or a failed
// representation conversion all produce an absent value and a logged
// diagnostic, so a single bad leaf cannot abort a whole object graph build.
//
// String values carry meaning through their prefix:
//
//	?Hello $name      string template, placeholders read from the data context
//	$item             the data context value named item
//	#services.db      a value addressed from the root configuration
//	scheme:rest       a compound URI, when the scheme is registered
//
// Concrete document formats (JSON, YAML, HCL) are decoded by Decode, and a
// Loader turns files into the root Configuration.
package config
