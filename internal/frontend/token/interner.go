// Package token defines the canonical preprocessing-token and token
// enums (spec §3, component A) plus the process-wide string interner
// they share.
package token

import "sync"

// StringRef is a cheap, copyable handle into an Interner.
type StringRef int32

// Interner is a process-wide table mapping strings to small integer
// handles, internally synchronized so StringRef values may be copied
// freely across worker goroutines (spec §5).
type Interner struct {
	mu   sync.RWMutex
	ids  map[string]StringRef
	strs []string
}

// NewInterner constructs an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]StringRef)}
}

// Intern returns the StringRef for s, assigning it a new one on first
// sight.
func (in *Interner) Intern(s string) StringRef {
	in.mu.RLock()
	if r, ok := in.ids[s]; ok {
		in.mu.RUnlock()
		return r
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if r, ok := in.ids[s]; ok {
		return r
	}
	r := StringRef(len(in.strs))
	in.strs = append(in.strs, s)
	in.ids[s] = r
	return r
}

// Lookup resolves a StringRef back to its string. Panics if r was
// never produced by this Interner — a programmer error, not a user
// one.
func (in *Interner) Lookup(r StringRef) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.strs[r]
}
