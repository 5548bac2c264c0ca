// ABOUTME: Port interface for the external chat transport (WhatsApp or similar)
// ABOUTME: The core only ever sends text and consumes an inbound message feed

package transport

import (
	"context"
	"time"
)

// MessageKind classifies the payload of an inbound message.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	// KindOther covers stickers, audio, reactions and anything else the
	// channel can carry; the bot ignores these.
	KindOther MessageKind = "other"
)

// Message is one inbound event from the chat channel.
type Message struct {
	// From is the raw channel address of the sender (JID for WhatsApp).
	From string
	// Text is empty for non-text payloads.
	Text      string
	Kind      MessageKind
	Timestamp time.Time
	// Group marks messages from group or broadcast channels.
	Group bool
	// FromSelf marks the bot's own echoes.
	FromSelf bool
}

// Handler receives inbound messages, one at a time in arrival order.
type Handler func(msg Message)

// AddressForPhone builds the channel address for a normalized ten-digit
// Mexican phone number.
func AddressForPhone(phone string) string {
	return "52" + phone + "@s.whatsapp.net"
}

// SessionInfo describes the authenticated channel session, when there is one.
type SessionInfo struct {
	Name      string
	Phone     string
	Connected bool
}

// Port is the contract the external chat client satisfies. Connection
// lifecycle, pairing and credential storage are the client's problem; the
// core only queries them.
type Port interface {
	// Initialize establishes the channel. Safe to call when already connected.
	Initialize(ctx context.Context) error

	IsConnected() bool

	// Send delivers text to a destination address. A nil error means the
	// channel accepted the message; it says nothing about end delivery.
	Send(ctx context.Context, to, text string) error

	// OnMessage registers the inbound handler. Only one handler is active;
	// registering again replaces it.
	OnMessage(h Handler)

	GetSessionInfo() SessionInfo

	// GetPairingArtifact returns the current pairing payload (a QR code for
	// WhatsApp) or empty when none is pending.
	GetPairingArtifact() string

	Close() error
}
