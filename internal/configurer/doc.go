// Package configurer injects configuration values into objects.
//
// For every property reported by the type registry, the configurer looks up
// the same-named key, resolves it to the representation the property expects
// and sets it. Nested mappings are built into objects through an
// ObjectFactory, which is how the container takes part in the recursion.
// Values that still hold Placeholders for objects under construction are
// handed back to the factory to be injected once those objects exist.
package configurer
