package launcher

import "sync"

// Registry is the only shared mutable state of the launcher: an owned,
// internally synchronized map from installation key to the running process
// group. Callers never need an external lock.
//
// Put intentionally overwrites without checking for a live prior group:
// launching twice for the same key drops supervision of the first group
// while its processes keep running. The replaced group is returned so the
// caller can surface that, rather than hiding the overwrite.
type Registry struct {
	mu     sync.Mutex
	groups map[string]*Group
	locks  map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]*Group),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Put stores the group under key and returns the entry it replaced, if any.
func (r *Registry) Put(key string, g *Group) *Group {
	r.mu.Lock()
	prev := r.groups[key]
	r.groups[key] = g
	r.mu.Unlock()
	return prev
}

// Take atomically removes and returns the entry for key. Two concurrent
// Take calls for the same key cannot both obtain the group.
func (r *Registry) Take(key string) (*Group, bool) {
	r.mu.Lock()
	g, ok := r.groups[key]
	if ok {
		delete(r.groups, key)
	}
	r.mu.Unlock()
	return g, ok
}

// Contains reports whether a group is tracked for key.
func (r *Registry) Contains(key string) bool {
	r.mu.Lock()
	_, ok := r.groups[key]
	r.mu.Unlock()
	return ok
}

// Len returns the number of tracked groups.
func (r *Registry) Len() int {
	r.mu.Lock()
	n := len(r.groups)
	r.mu.Unlock()
	return n
}

// Snapshot returns a copy of the current key→group mapping for listings.
// The groups themselves are shared; their member list is immutable.
func (r *Registry) Snapshot() map[string]*Group {
	r.mu.Lock()
	out := make(map[string]*Group, len(r.groups))
	for k, g := range r.groups {
		out[k] = g
	}
	r.mu.Unlock()
	return out
}

// LockKey serializes launch sequences per installation: the returned unlock
// must be called when the swap-launch-restore sequence completes. Locks for
// different keys never block each other. Lock entries are retained for the
// lifetime of the registry, bounded by the number of distinct installations.
func (r *Registry) LockKey(key string) (unlock func()) {
	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()
	l.Lock()
	return l.Unlock
}
