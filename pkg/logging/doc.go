// Package logging provides the structured logging facility used by all
// stevedore subsystems.
//
// It wraps log/slog with a small printf-style API keyed by subsystem
// name, so call sites stay terse:
//
//	logging.Info("Docker", "Built image %s", ref)
//	logging.Error("Kubernetes", err, "Apply failed for %s/%s", ns, name)
//
// Init must be called once at startup. Log output always goes to the
// writer passed to Init (stderr for stdio-transport servers, where
// stdout is reserved for the protocol stream).
package logging
