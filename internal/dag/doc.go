// Package dag records which named objects reference which. The container
// adds a reference every time one object's configuration resolves another
// through `named:`. Reference cycles are legal in configuration, since they
// are completed through placeholders, and are reported by Cycles for
// diagnostics.
package dag
