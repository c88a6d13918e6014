// Package registry provides the central "glue" for the module system.
//
// The Registry maps the class names used in configuration (e.g. "Printer")
// to the Go constructors that implement them. Modules contribute classes,
// configuration proxies for foreign types, default type names and extra URI
// schemes through their Register method.
//
// During application startup the registry is populated and then validated,
// so that a misnamed parent class or a type name pointing nowhere is caught
// before any object is built.
package registry
