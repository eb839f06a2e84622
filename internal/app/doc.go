// Package app wires the rule model, the library resolver, and the action
// executor into a runnable application. It owns configuration and the
// execution lifecycle, decoupled from any specific entrypoint like a CLI.
package app
