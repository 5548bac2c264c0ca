// ABOUTME: In-memory contact directory keyed by normalized phone
// ABOUTME: Lookups never fail; a synthetic default contact stands in for unknowns

package roster

import (
	"sort"
	"sync"
)

// DefaultName is the placeholder used when a phone has no roster entry.
const DefaultName = "Cliente"

// Directory maps normalized phones to contacts. Last write wins; there is no
// deletion path.
type Directory struct {
	mu       sync.RWMutex
	contacts map[string]Contact
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{contacts: make(map[string]Contact)}
}

// Get returns the contact for a normalized phone. Unknown phones get a
// synthetic default so callers never deal with a missing contact.
func (d *Directory) Get(phone string) Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if c, ok := d.contacts[phone]; ok {
		return c
	}
	return Contact{Phone: phone, Name: DefaultName}
}

// Lookup reports whether a phone has a real roster entry.
func (d *Directory) Lookup(phone string) (Contact, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.contacts[phone]
	return c, ok
}

// Put registers one contact. Records whose phone does not normalize to ten
// digits are dropped. Reports whether the contact was stored.
func (d *Directory) Put(c Contact) bool {
	phone := NormalizePhone(c.Phone)
	if phone == "" {
		return false
	}
	c.Phone = phone
	d.mu.Lock()
	d.contacts[phone] = c
	d.mu.Unlock()
	return true
}

// Load merges a batch of contacts and returns how many were stored.
func (d *Directory) Load(contacts []Contact) int {
	stored := 0
	for _, c := range contacts {
		if d.Put(c) {
			stored++
		}
	}
	return stored
}

// Len returns the number of registered contacts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.contacts)
}

// All returns every contact ordered by phone.
func (d *Directory) All() []Contact {
	d.mu.RLock()
	out := make([]Contact, 0, len(d.contacts))
	for _, c := range d.contacts {
		out = append(out, c)
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Phone < out[j].Phone })
	return out
}
