// Package locking provides a process-wide registry of named locks used
// to serialize non-atomic create-or-update operations against external
// control planes (the Docker daemon and the Kubernetes API server).
//
// Every mutating tool operation derives a string key identifying the
// logical resource it touches (a build context digest, an image
// reference, a kind/namespace/name triple) and runs its critical
// section through Registry.WithLock. Operations on the same key
// execute strictly one at a time in FIFO acquisition order; operations
// on different keys run fully in parallel.
//
// Acquisition is always bounded by a timeout. A waiter that times out
// is removed from the queue and receives a *TimeoutError naming the
// key and the bound; it never proceeds without the lock and never
// blocks later waiters.
//
// The registry is process-local. Two horizontally scaled server
// instances have no mutual visibility on each other's locks; deploying
// more than one instance against the same daemon or cluster requires
// external coordination.
package locking
