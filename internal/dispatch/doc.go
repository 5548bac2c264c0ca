// Package dispatch runs rate-gated bulk sends over the contact list.
//
// One job at a time walks the contact list in order, expanding a `{campo}`
// template per contact and pacing sends to stay under the channel's abuse
// detection: a fixed delay between messages, a longer pause after every
// batch, and a hard time-of-day window that suspends the job entirely.
// Every contact in the job is registered into the roster first, so the
// conversational engine can answer replies with the right name and balance.
package dispatch
