package locking

import "sort"

// KeyStatus is a read-only view of one key's lock state.
type KeyStatus struct {
	Key     string `json:"key"`
	Held    bool   `json:"held"`
	Waiters int    `json:"waiters"`
}

// Snapshot returns the state of every key currently tracked by the
// registry, sorted by key for stable output. It only inspects the
// registry structure and never waits on any key's lock, so it is safe
// to call from monitoring paths while operations are in flight.
func (r *Registry) Snapshot() []KeyStatus {
	r.mu.Lock()
	statuses := make([]KeyStatus, 0, len(r.entries))
	for key, e := range r.entries {
		statuses = append(statuses, KeyStatus{
			Key:     key,
			Held:    e.held,
			Waiters: len(e.waiters),
		})
	}
	r.mu.Unlock()

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Key < statuses[j].Key })
	return statuses
}
