// Package reconcile implements the idempotent create-or-update
// protocol shared by the Docker and Kubernetes tool paths.
//
// Apply attempts an optimistic create and falls back to an update only
// when the backend itself reports that the resource already exists.
// There is deliberately no read-before-write: a separate existence
// check would reintroduce a race window between the check and the act,
// while the backend's own conflict response is authoritative.
//
// Apply is always invoked from inside a locking.Registry critical
// section keyed by the resource identity, so at most one reconciliation
// per identity is in flight within the process.
package reconcile
