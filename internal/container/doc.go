// Package container turns configuration into a live object graph.
//
// A Container owns a registry of named objects built from the top-level keys
// of its configuration. Objects are instantiated from classes in the class
// registry, configured property by property, and notified through optional
// capability interfaces. References between objects may form cycles: a
// reference to an object still under construction yields a Placeholder that
// is replaced once the object exists, and AfterConfiguration is deferred
// until an object no longer holds any placeholder.
//
// Containers nest. A child container sees its parent's named objects and
// type names unless it defines its own.
package container
