// ABOUTME: In-memory Port implementation backed by slices and a handler callback
// ABOUTME: Used by tests and by the gateway binary's dry-run mode

package transport

import (
	"context"
	"sync"
	"time"
)

// Sent records one outbound message accepted by the Memory port.
type Sent struct {
	To   string
	Text string
}

// Memory is a Port that keeps everything in process. Outbound messages are
// recorded, inbound messages are injected with Deliver. Send can be made to
// fail per destination to exercise error paths.
type Memory struct {
	mu        sync.Mutex
	connected bool
	handler   Handler
	sent      []Sent
	failTo    map[string]error
	session   SessionInfo
	sink      func(Sent)
}

// NewMemory returns a connected in-memory port.
func NewMemory() *Memory {
	return &Memory{
		connected: true,
		failTo:    make(map[string]error),
		session:   SessionInfo{Name: "memoria", Connected: true},
	}
}

func (m *Memory) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	m.session.Connected = true
	return nil
}

func (m *Memory) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Memory) Send(ctx context.Context, to, text string) error {
	m.mu.Lock()
	if err, ok := m.failTo[to]; ok {
		m.mu.Unlock()
		return err
	}
	s := Sent{To: to, Text: text}
	m.sent = append(m.sent, s)
	sink := m.sink
	m.mu.Unlock()
	if sink != nil {
		sink(s)
	}
	return nil
}

// OnSend registers a callback invoked for every accepted outbound message.
// The dry-run console uses it to echo replies to the terminal.
func (m *Memory) OnSend(fn func(Sent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = fn
}

func (m *Memory) OnMessage(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

func (m *Memory) GetSessionInfo() SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Memory) GetPairingArtifact() string { return "" }

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.session.Connected = false
	return nil
}

// Deliver injects an inbound message, invoking the registered handler
// synchronously. No-op when no handler is registered.
func (m *Memory) Deliver(msg Message) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h == nil {
		return
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	h(msg)
}

// FailSendsTo makes Send return err for the given destination.
func (m *Memory) FailSendsTo(to string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTo[to] = err
}

// SentMessages returns a copy of everything sent so far.
func (m *Memory) SentMessages() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sent, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns the messages sent to one destination.
func (m *Memory) SentTo(to string) []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Sent
	for _, s := range m.sent {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}
