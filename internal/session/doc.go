// Package session tracks per-phone conversation state. Sessions are created
// on first contact and live for the process lifetime; there is no expiry, so
// memory use is bounded by distinct phone count rather than time.
package session
