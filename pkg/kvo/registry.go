package kvo

import (
	"reflect"
	"slices"
	"sync"
)

// record is one stored observer.
type record struct {
	id        uint64
	interest  Interest
	valueType reflect.Type
	callback  any // func(ChangeKind, T) for the key's T
}

// registry maps each key to its observers in registration order.
// It is owned by exactly one Proxy.
type registry struct {
	mu      sync.Mutex
	entries map[KeyID][]*record
	nextID  uint64
	closed  bool

	// onRemove is called outside the lock after a record was removed by a
	// handle. implicit is true when the runtime cleanup removed it.
	onRemove func(key KeyID, id uint64, implicit bool)
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[KeyID][]*record),
	}
}

// insert stores a new record and returns it with its freshly allocated id.
// Ids are never reused, even after removal.
func (r *registry) insert(key KeyID, interest Interest, valueType reflect.Type, callback any) (*record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrProxyClosed
	}

	r.nextID++
	rec := &record{
		id:        r.nextID,
		interest:  interest,
		valueType: valueType,
		callback:  callback,
	}
	r.entries[key] = append(r.entries[key], rec)
	return rec, nil
}

// remove deletes (key, id). It returns false if the record is already gone
// or the registry is closed.
func (r *registry) remove(key KeyID, id uint64, implicit bool) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}

	recs := r.entries[key]
	i := slices.IndexFunc(recs, func(rec *record) bool { return rec.id == id })
	if i < 0 {
		r.mu.Unlock()
		return false
	}

	recs = slices.Delete(recs, i, i+1)
	if len(recs) == 0 {
		delete(r.entries, key)
	} else {
		r.entries[key] = recs
	}
	onRemove := r.onRemove
	r.mu.Unlock()

	if onRemove != nil {
		onRemove(key, id, implicit)
	}
	return true
}

// snapshot returns a copy of the records for key whose interest has kind.
// Later structural changes do not affect the returned slice.
func (r *registry) snapshot(key KeyID, kind ChangeKind) ([]*record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrProxyClosed
	}

	var out []*record
	for _, rec := range r.entries[key] {
		if rec.interest.Has(kind) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// contains reports whether (key, id) is still registered.
func (r *registry) contains(key KeyID, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.ContainsFunc(r.entries[key], func(rec *record) bool { return rec.id == id })
}

// close drops every record. It returns the number of records dropped and
// false if the registry was already closed.
func (r *registry) close() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, false
	}

	n := 0
	for _, recs := range r.entries {
		n += len(recs)
	}
	r.entries = nil
	r.closed = true
	return n, true
}

func (r *registry) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, recs := range r.entries {
		n += len(recs)
	}
	return n
}

func (r *registry) countFor(key KeyID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries[key])
}

// keys returns the keys that currently have observers.
func (r *registry) keys() []KeyID {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]KeyID, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	return out
}
