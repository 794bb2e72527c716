package types

import "sort"

// Dataset is the normalized result of read operations: record id to key to
// the distinct values stored under that key. Variants that address a single
// record or key still return a Dataset with one entry.
type Dataset map[int64]map[string][]Value

// Records returns the record ids present in the dataset, sorted ascending.
func (d Dataset) Records() []int64 {
	ids := make([]int64, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AuditEntry is one change in a record's history.
type AuditEntry struct {
	// Timestamp is when the change was committed, microseconds since epoch.
	Timestamp int64 `json:"timestamp"`
	// Description is a human-readable summary of the change.
	Description string `json:"description"`
}
