/*
Package session orchestrates concurrent access to persisted run state.

A Manager serializes read-modify-write cycles per run with refcounted
in-process locks, and optionally coordinates across replicas through a
ports.DistributedLocker. The dispatch loop is load, mutate, save under
WithLock; everything else builds on that.
*/
package session
