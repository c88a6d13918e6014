// Package errors provides the error taxonomy used while turning configuration
// into an object graph. Errors are classified so that callers can tell apart
// the failures that only degrade a single value or object from the ones that
// must abort a container's build or start sequence.
//
//   - Configuration: a missing or malformed key, an unresolvable template, a
//     failed representation conversion. The value degrades to absent.
//   - Resolution: an unknown URI scheme or type name. The affected object or
//     property fails, siblings still build.
//   - Structural: a circular dependency that never completes, or runaway
//     recursion. Reported to the embedding application.
//   - Lifecycle: a service failing to start. Fatal to the start sequence.
package errors
