// ABOUTME: Human collector directory with round-robin escalation assignment
// ABOUTME: Cursor is monotonic and applied modulo the current active count

package agents

import (
	"errors"
	"sync"
)

// ErrNoActiveAgents indicates every collector is deactivated.
var ErrNoActiveAgents = errors.New("no active agents")

// Agent is one human collector. Inactive agents stay in the list but are
// skipped by assignment.
type Agent struct {
	Name   string `json:"nombre" yaml:"nombre"`
	Phone  string `json:"telefono" yaml:"telefono"`
	Active bool   `json:"activo" yaml:"activo"`
}

// Directory holds the collector list and the assignment cursor. The list is
// only ever replaced wholesale.
type Directory struct {
	mu     sync.Mutex
	agents []Agent
	cursor int
}

// NewDirectory returns a directory over the given collectors.
func NewDirectory(list []Agent) *Directory {
	d := &Directory{}
	d.Replace(list)
	return d
}

// Replace swaps the whole collector list. The cursor is deliberately kept:
// the previous system indexed a monotonic counter modulo the current active
// count, so changing the active set shifts future assignments relative to
// history. That behavior is load-bearing for operators who expect it.
func (d *Directory) Replace(list []Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents = make([]Agent, len(list))
	copy(d.agents, list)
}

// All returns a copy of the collector list.
func (d *Directory) All() []Agent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Agent, len(d.agents))
	copy(out, d.agents)
	return out
}

// Next assigns the next active collector round-robin and advances the cursor.
func (d *Directory) Next() (Agent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var active []Agent
	for _, a := range d.agents {
		if a.Active {
			active = append(active, a)
		}
	}
	if len(active) == 0 {
		return Agent{}, ErrNoActiveAgents
	}
	a := active[d.cursor%len(active)]
	d.cursor++
	return a, nil
}

// First returns the first active collector without moving the cursor, used
// for the fallback contact number shown to waiting debtors.
func (d *Directory) First() (Agent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.agents {
		if a.Active {
			return a, true
		}
	}
	if len(d.agents) > 0 {
		return d.agents[0], true
	}
	return Agent{}, false
}
