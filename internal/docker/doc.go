// Package docker drives the local Docker CLI for image operations:
// build, tag, push, pull, remove, list, inspect, and a daemon
// reachability ping.
//
// The package exposes two things to the tool layer:
//
//   - Client, a thin wrapper over the docker binary. All mutating
//     client calls are expected to run inside a locking.Registry
//     critical section owned by the calling tool.
//   - ImageBackend, the reconcile.Backend adapter for image builds,
//     plus the lock key derivation helpers (BuildKey, TagKey, PushKey,
//     PullKey, RemoveKey) that define which operations serialize
//     against each other.
//
// Commands are created through the execCommandContext variable so
// tests can substitute a helper process for the real docker binary.
package docker
