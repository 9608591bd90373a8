// Package tools implements the api.ToolProvider surface of the
// server: a Docker provider (build, tag, push, pull, remove, list,
// inspect, ping), a Kubernetes provider (apply manifest, get resource,
// cluster ping) and an optional status provider exposing the lock
// registry.
//
// Every mutating tool derives a lock key from its operation's
// identity, acquires the keyed lock with the configured timeout, and
// runs the backend call inside the critical section. A lock timeout is
// reported to the caller as a hard failure; the operation is never
// attempted without the lock. Read-only tools bypass the registry
// entirely.
package tools
