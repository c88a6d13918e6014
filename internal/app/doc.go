// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the lifecycle that loads a configuration
// document, builds the object graph in a container and runs its services,
// decoupled from any specific entrypoint like a CLI.
package app
