// Package registry provides the central "glue" between pipeline declarations
// and compiled Go code.
//
// The Registry maps the handler names used in pipeline files (for example
// "physics.gravity") to the Go task bodies that implement them, and owns the
// Symbols table that interns resource names into the dense indices the
// resolver sizes its bitsets from. A Registry is constructed once at startup,
// populated by modules, validated against the loaded configuration, and then
// passed explicitly to everything that builds pipelines. It is never torn
// down and never stored in a package-level variable.
package registry
