// Package locals provides the key/value stores behind the `local:` scheme.
//
// A Store holds small application values that configuration can read by
// name, such as settings written by a previous run. Memory is an ephemeral
// store for a single process; Redis shares values between processes.
package locals
