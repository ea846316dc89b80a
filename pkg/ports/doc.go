// Package ports defines the boundary interfaces between the interpreter
// core and its external collaborators: journey/screen persistence, run
// state stores, the external service caller, the answer recorder, and
// distributed locking. Adapters live under pkg/adapters.
package ports
