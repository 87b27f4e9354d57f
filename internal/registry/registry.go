// Package registry maps catalog identifiers to the records the details view
// has rendered, so gallery clicks can be resolved back to their program.
package registry

import "showcase/internal/catalog"

// Registry is only touched from the UI goroutine and carries no lock.
type Registry struct {
	records map[string]*catalog.Record
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{records: make(map[string]*catalog.Record)}
}

// Register stores rec under its ID, replacing any previous entry.
// Nil records and records without an ID are ignored.
func (r *Registry) Register(rec *catalog.Record) {
	if rec == nil || rec.ID == "" {
		return
	}
	r.records[rec.ID] = rec
}

// Resolve returns the record registered under id.
func (r *Registry) Resolve(id string) (*catalog.Record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}
