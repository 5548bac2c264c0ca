// Package transport defines the chat-channel boundary the bot speaks through.
//
// The real WhatsApp client lives outside this repository; everything here is
// the contract it must satisfy (Port) plus an in-memory implementation used by
// tests and the dry-run mode of the gateway binary.
package transport
